package main

import (
	"fmt"

	"github.com/veylang/defer-runtime/interp"
	"github.com/veylang/defer-runtime/sched"
)

// demo is one runnable showcase program. run appends the program's log
// output through emit and returns the program's escaping error, if any.
type demo struct {
	name string
	desc string
	run  func(in *interp.Interp, emit func(string)) error
}

func demos() []demo {
	return []demo{
		{
			name: "lifo",
			desc: "deferred actions drain in reverse registration order",
			run:  runLIFO,
		},
		{
			name: "loop",
			desc: "each loop iteration drains its own frame",
			run:  runLoop,
		},
		{
			name: "switch",
			desc: "switch clauses share one frame across fallthrough",
			run:  runSwitch,
		},
		{
			name: "catch",
			desc: "a deferred throw is caught by the enclosing catch",
			run:  runCatch,
		},
		{
			name: "chain",
			desc: "two deferred failures aggregate into a failure chain",
			run:  runChain,
		},
		{
			name: "generator",
			desc: "pending actions survive yields and drain on close",
			run:  runGenerator,
		},
		{
			name: "async",
			desc: "defer await settles sequentially inside an async function",
			run:  runAsync,
		},
	}
}

func lit(v any) interp.Expr { return &interp.Lit{Value: v} }

func ident(name string) interp.Expr { return &interp.Ident{Name: name} }

func logCall(arg interp.Expr) interp.Stmt {
	return &interp.ExprStmt{X: &interp.Call{Fn: ident("log"), Args: []interp.Expr{arg}}}
}

func deferLog(v any) interp.Stmt {
	return &interp.Defer{Body: []interp.Stmt{logCall(lit(v))}}
}

func newInterp(emit func(string)) *interp.Interp {
	in := interp.New()
	in.Builtin("log", func(args []interp.Value) (interp.Value, error) {
		s := ""
		for i, a := range args {
			if i > 0 {
				s += " "
			}
			s += fmt.Sprint(a)
		}
		emit(s)
		return nil, nil
	})
	return in
}

func runLIFO(in *interp.Interp, emit func(string)) error {
	fn := &interp.Func{Body: []interp.Stmt{
		deferLog("3"),
		&interp.Defer{Block: true, Body: []interp.Stmt{logCall(lit("1")), logCall(lit("2"))}},
		logCall(lit("body")),
	}}
	return in.Run(&interp.Program{Name: "lifo.vey", Stmts: []interp.Stmt{
		&interp.Let{Name: "f", Value: fn},
		&interp.ExprStmt{X: &interp.Call{Fn: ident("f")}},
	}})
}

func runLoop(in *interp.Interp, emit func(string)) error {
	return in.Run(&interp.Program{Name: "loop.vey", Stmts: []interp.Stmt{
		&interp.ForRange{Var: "i", From: lit(0), To: lit(3), Body: []interp.Stmt{
			logCall(lit("looped")),
			&interp.Defer{Body: []interp.Stmt{logCall(ident("i"))}},
		}},
	}})
}

func runSwitch(in *interp.Interp, emit func(string)) error {
	return in.Run(&interp.Program{Name: "switch.vey", Stmts: []interp.Stmt{
		&interp.Switch{Subject: lit(1), Cases: []interp.SwitchCase{
			{Match: lit(1), Body: []interp.Stmt{
				&interp.Block{Stmts: []interp.Stmt{deferLog("one")}},
			}},
			{Match: lit(5), Body: []interp.Stmt{deferLog("three")}},
			{Match: nil, Body: []interp.Stmt{
				logCall(lit("default")),
				deferLog("two"),
				&interp.Break{},
			}},
			{Match: lit(2), Body: []interp.Stmt{deferLog("last")}},
		}},
	}})
}

func runCatch(in *interp.Interp, emit func(string)) error {
	return in.Run(&interp.Program{Name: "catch.vey", Stmts: []interp.Stmt{
		&interp.Try{
			Body: []interp.Stmt{
				&interp.Defer{Block: true, Body: []interp.Stmt{
					&interp.Throw{Value: lit("late failure")},
				}},
				logCall(lit("body")),
			},
			HasCatch:  true,
			CatchName: "e",
			Catch:     []interp.Stmt{logCall(ident("e"))},
		},
	}})
}

func runChain(in *interp.Interp, emit func(string)) error {
	err := in.Run(&interp.Program{Name: "chain.vey", Stmts: []interp.Stmt{
		deferLog("draining"),
		&interp.Defer{Body: []interp.Stmt{&interp.Throw{Value: lit("A")}}},
		&interp.Defer{Body: []interp.Stmt{&interp.Throw{Value: lit("B")}}},
	}})
	if err != nil {
		emit("escaped: " + err.Error())
	}
	return nil
}

func runGenerator(in *interp.Interp, emit func(string)) error {
	var gen *interp.Generator
	in.Builtin("capture", func(args []interp.Value) (interp.Value, error) {
		gen = args[0].(*interp.Generator)
		return nil, nil
	})

	mk := &interp.Func{Generator: true, Body: []interp.Stmt{
		deferLog("cleanup"),
		&interp.ExprStmt{X: &interp.Yield{X: lit(1)}},
		&interp.ExprStmt{X: &interp.Yield{X: lit(2)}},
	}}
	err := in.Run(&interp.Program{Name: "generator.vey", Stmts: []interp.Stmt{
		&interp.Let{Name: "mk", Value: mk},
		&interp.ExprStmt{X: &interp.Call{Fn: ident("capture"), Args: []interp.Expr{
			&interp.Call{Fn: ident("mk")},
		}}},
	}})
	if err != nil {
		return err
	}

	v, _, _ := gen.Next(nil)
	emit(fmt.Sprintf("yielded %v, nothing drained yet", v))
	if _, _, err := gen.Return(nil); err != nil {
		return err
	}
	emit("closed")
	return nil
}

func runAsync(in *interp.Interp, emit func(string)) error {
	in.Builtin("op", func(args []interp.Value) (interp.Value, error) {
		name := args[0].(string)
		emit(name + ":start")
		c := sched.NewCompletion(in.Loop())
		in.Loop().Post(func() {
			emit(name + ":settle")
			c.Resolve(name)
		})
		return c, nil
	})

	deferAwait := func(name string) interp.Stmt {
		return &interp.Defer{Await: true, Block: true, Body: []interp.Stmt{
			&interp.ExprStmt{X: &interp.Await{X: &interp.Call{
				Fn: ident("op"), Args: []interp.Expr{lit(name)},
			}}},
		}}
	}
	fn := &interp.Func{Async: true, Body: []interp.Stmt{
		deferAwait("a"),
		deferAwait("b"),
		logCall(lit("body")),
	}}
	return in.Run(&interp.Program{Name: "async.vey", Stmts: []interp.Stmt{
		&interp.Let{Name: "f", Value: fn},
		&interp.ExprStmt{X: &interp.Call{Fn: ident("f")}},
	}})
}
