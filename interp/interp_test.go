package interp

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	rterrors "github.com/veylang/defer-runtime/errors"
)

func lit(v any) Expr { return &Lit{Value: v} }

func id(name string) Expr { return &Ident{Name: name} }

func call(fn string, args ...Expr) Expr {
	return &Call{Fn: id(fn), Args: args}
}

func expr(e Expr) Stmt { return &ExprStmt{X: e} }

func logOf(e Expr) Stmt { return expr(call("log", e)) }

func logLit(v any) Stmt { return logOf(lit(v)) }

func deferLog(v any) Stmt {
	return &Defer{Body: []Stmt{logLit(v)}}
}

func throwLit(v any) Stmt { return &Throw{Value: lit(v)} }

// recorder wires a log builtin that appends rendered arguments.
func recorder() (*Interp, *[]string) {
	in := New()
	out := &[]string{}
	in.Builtin("log", func(args []Value) (Value, error) {
		s := ""
		for i, a := range args {
			if i > 0 {
				s += " "
			}
			s += fmt.Sprint(a)
		}
		*out = append(*out, s)
		return nil, nil
	})
	return in, out
}

func mustRun(t *testing.T, in *Interp, p *Program) {
	t.Helper()
	if err := in.Run(p); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func wantLog(t *testing.T, got *[]string, want []string) {
	t.Helper()
	if !reflect.DeepEqual(*got, want) {
		t.Fatalf("log = %v, want %v", *got, want)
	}
}

func TestRun_DeferLIFOWithBlockBody(t *testing.T) {
	in, out := recorder()

	fn := &Func{Body: []Stmt{
		&Defer{Body: []Stmt{logLit("3")}},
		&Defer{Block: true, Body: []Stmt{logLit("1"), logLit("2")}},
	}}
	mustRun(t, in, &Program{Stmts: []Stmt{
		&Let{Name: "f", Value: fn},
		expr(call("f")),
	}})

	wantLog(t, out, []string{"1", "2", "3"})
}

func TestRun_LoopIterationDrains(t *testing.T) {
	in, out := recorder()

	mustRun(t, in, &Program{Stmts: []Stmt{
		&ForRange{Var: "i", From: lit(0), To: lit(3), Body: []Stmt{
			logLit("looped"),
			&Defer{Body: []Stmt{logOf(id("i"))}},
		}},
	}})

	wantLog(t, out, []string{"looped", "0", "looped", "1", "looped", "2"})
}

func TestRun_IterationActionsNeverMerge(t *testing.T) {
	in, out := recorder()

	mustRun(t, in, &Program{Stmts: []Stmt{
		&ForRange{Var: "i", From: lit(0), To: lit(2), Body: []Stmt{
			&Defer{Body: []Stmt{logOf(&Bin{Op: "+", L: lit("a"), R: id("i")})}},
			&Defer{Body: []Stmt{logOf(&Bin{Op: "+", L: lit("b"), R: id("i")})}},
		}},
	}})

	// Per-iteration LIFO, iterations in order, never interleaved.
	wantLog(t, out, []string{"b0", "a0", "b1", "a1"})
}

func TestRun_SwitchFallthroughSharedFrame(t *testing.T) {
	in, out := recorder()

	mustRun(t, in, &Program{Stmts: []Stmt{
		&Switch{Subject: lit(1), Cases: []SwitchCase{
			{Match: lit(1), Body: []Stmt{
				&Block{Stmts: []Stmt{deferLog("one")}},
			}},
			{Match: lit(5), Body: []Stmt{deferLog("three")}},
			{Match: nil, Body: []Stmt{
				logLit("default"),
				deferLog("two"),
				&Break{},
			}},
			{Match: lit(2), Body: []Stmt{deferLog("last")}},
		}},
	}})

	// The nested block drains on its own; the clause-level defers share
	// the switch frame and drain LIFO at the break. The clause after the
	// break never runs.
	wantLog(t, out, []string{"one", "default", "two", "three"})
}

func TestRun_DeferredThrowCaughtByEnclosingCatch(t *testing.T) {
	in, out := recorder()

	mustRun(t, in, &Program{Stmts: []Stmt{
		&Try{
			Body: []Stmt{
				&Defer{Block: true, Body: []Stmt{throwLit("late failure")}},
				logLit("body"),
			},
			HasCatch:  true,
			CatchName: "e",
			Catch:     []Stmt{logOf(id("e"))},
		},
	}})

	wantLog(t, out, []string{"body", "late failure"})
}

func TestRun_TwoDeferredFailuresChain(t *testing.T) {
	in, _ := recorder()

	err := in.Run(&Program{Stmts: []Stmt{
		&Defer{Body: []Stmt{throwLit("A")}},
		&Defer{Body: []Stmt{throwLit("B")}},
	}})
	if err == nil {
		t.Fatal("expected an escaping failure chain")
	}

	chain, ok := err.(*rterrors.FailureChain)
	if !ok {
		t.Fatalf("error is %T, want *errors.FailureChain", err)
	}
	if got := chain.Primary().Error(); got != "A" {
		t.Fatalf("primary = %q, want A", got)
	}
	sup := chain.Suppressed()
	if sup == nil || sup.Primary().Error() != "B" {
		t.Fatalf("suppressed = %v, want B", sup)
	}
	if sup.Suppressed() != nil {
		t.Fatalf("chain longer than two links: %v", chain.Errors())
	}
}

func TestRun_FunctionFramesAreIsolated(t *testing.T) {
	in, out := recorder()

	inner := &Func{Body: []Stmt{
		deferLog("inner-defer"),
		logLit("inner-body"),
	}}
	mustRun(t, in, &Program{Stmts: []Stmt{
		deferLog("outer-defer"),
		&Let{Name: "f", Value: inner},
		expr(call("f")),
		logLit("after-call"),
	}})

	wantLog(t, out, []string{"inner-body", "inner-defer", "after-call", "outer-defer"})
}

func TestRun_BlockDrainsBeforeFollowingStatement(t *testing.T) {
	in, out := recorder()

	mustRun(t, in, &Program{Stmts: []Stmt{
		&Block{Stmts: []Stmt{deferLog("block"), logLit("in")}},
		logLit("after"),
	}})

	wantLog(t, out, []string{"in", "block", "after"})
}

func TestRun_ReturnDrainsThenPropagatesValue(t *testing.T) {
	in, out := recorder()

	fn := &Func{Body: []Stmt{
		deferLog("cleanup"),
		logLit("work"),
		&Return{Value: lit(7)},
	}}
	mustRun(t, in, &Program{Stmts: []Stmt{
		&Let{Name: "f", Value: fn},
		&Let{Name: "v", Value: call("f")},
		logOf(id("v")),
	}})

	wantLog(t, out, []string{"work", "cleanup", "7"})
}

func TestRun_BreakDrainsEnclosingFramesOutward(t *testing.T) {
	in, out := recorder()

	mustRun(t, in, &Program{Stmts: []Stmt{
		&While{Cond: lit(true), Body: []Stmt{
			deferLog("iteration"),
			&Block{Stmts: []Stmt{
				deferLog("block"),
				&Break{},
			}},
			logLit("unreached"),
		}},
		logLit("after"),
	}})

	// Innermost frame first, then the iteration frame, then the loop
	// consumes the break.
	wantLog(t, out, []string{"block", "iteration", "after"})
}

func TestRun_LabeledBreakLeavesOuterLoop(t *testing.T) {
	in, out := recorder()

	mustRun(t, in, &Program{Stmts: []Stmt{
		&While{Label: "outer", Cond: lit(true), Body: []Stmt{
			deferLog("outer-iter"),
			&While{Cond: lit(true), Body: []Stmt{
				deferLog("inner-iter"),
				&Break{Label: "outer"},
			}},
		}},
		logLit("done"),
	}})

	wantLog(t, out, []string{"inner-iter", "outer-iter", "done"})
}

func TestRun_ContinueDrainsCurrentIteration(t *testing.T) {
	in, out := recorder()

	mustRun(t, in, &Program{Stmts: []Stmt{
		&ForRange{Var: "i", From: lit(0), To: lit(2), Body: []Stmt{
			&Defer{Body: []Stmt{logOf(id("i"))}},
			&Continue{},
			logLit("unreached"),
		}},
	}})

	wantLog(t, out, []string{"0", "1"})
}

func TestRun_FinallyRunsAfterCatch(t *testing.T) {
	in, out := recorder()

	mustRun(t, in, &Program{Stmts: []Stmt{
		&Try{
			Body:      []Stmt{deferLog("try-defer"), throwLit("oops")},
			HasCatch:  true,
			CatchName: "e",
			Catch:     []Stmt{logOf(id("e"))},
			Finally:   []Stmt{logLit("finally")},
		},
	}})

	wantLog(t, out, []string{"try-defer", "oops", "finally"})
}

func TestRun_DeferredFailureOverridesReturn(t *testing.T) {
	in, _ := recorder()

	fn := &Func{Body: []Stmt{
		&Defer{Body: []Stmt{throwLit("boom")}},
		&Return{Value: lit(1)},
	}}
	err := in.Run(&Program{Stmts: []Stmt{
		&Let{Name: "f", Value: fn},
		expr(call("f")),
	}})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestRun_UncaughtThrowEscapesModule(t *testing.T) {
	in, out := recorder()

	err := in.Run(&Program{Stmts: []Stmt{
		deferLog("module-defer"),
		throwLit("fatal"),
	}})
	if err == nil || err.Error() != "fatal" {
		t.Fatalf("err = %v, want fatal", err)
	}
	// The module frame still drains on the way out.
	wantLog(t, out, []string{"module-defer"})
}

func TestRun_UnboundNameThrows(t *testing.T) {
	in, _ := recorder()

	err := in.Run(&Program{Stmts: []Stmt{expr(id("nope"))}})
	var e *rterrors.Error
	if !errors.As(err, &e) || e.Kind != rterrors.KindUnboundName {
		t.Fatalf("err = %v, want kind unbound_name", err)
	}
}

func TestValidate_StaticRejections(t *testing.T) {
	cases := []struct {
		name string
		prog *Program
		kind rterrors.Kind
	}{
		{
			name: "escaping return in deferred body",
			prog: &Program{Stmts: []Stmt{
				&Let{Name: "f", Value: &Func{Body: []Stmt{
					&Defer{Body: []Stmt{&Return{Value: lit(1)}}},
				}}},
			}},
			kind: rterrors.KindEscapingTransfer,
		},
		{
			name: "escaping break in deferred body",
			prog: &Program{Stmts: []Stmt{
				&While{Cond: lit(true), Body: []Stmt{
					&Defer{Body: []Stmt{&Break{}}},
				}},
			}},
			kind: rterrors.KindEscapingTransfer,
		},
		{
			name: "escaping continue in deferred body",
			prog: &Program{Stmts: []Stmt{
				&While{Cond: lit(true), Body: []Stmt{
					&Defer{Body: []Stmt{&Continue{}}},
				}},
			}},
			kind: rterrors.KindEscapingTransfer,
		},
		{
			name: "yield in deferred body",
			prog: &Program{Stmts: []Stmt{
				&Let{Name: "g", Value: &Func{Generator: true, Body: []Stmt{
					&Defer{Body: []Stmt{expr(&Yield{X: lit(1)})}},
				}}},
			}},
			kind: rterrors.KindYieldInDeferred,
		},
		{
			name: "defer await outside async",
			prog: &Program{Stmts: []Stmt{
				&Let{Name: "f", Value: &Func{Body: []Stmt{
					&Defer{Await: true, Body: []Stmt{logLit("x")}},
				}}},
			}},
			kind: rterrors.KindAsyncOutsideAsync,
		},
		{
			name: "defer as unbraced loop body",
			prog: &Program{Stmts: []Stmt{
				&While{Cond: lit(true), Unbraced: true, Body: []Stmt{
					&Defer{Body: []Stmt{logLit("x")}},
				}},
			}},
			kind: rterrors.KindUnbracedBody,
		},
		{
			name: "await outside async function",
			prog: &Program{Stmts: []Stmt{
				&Let{Name: "f", Value: &Func{Body: []Stmt{
					expr(&Await{X: lit(1)}),
				}}},
			}},
			kind: rterrors.KindInvalidInput,
		},
		{
			name: "break outside loop or switch",
			prog: &Program{Stmts: []Stmt{&Break{}}},
			kind: rterrors.KindInvalidInput,
		},
		{
			name: "return outside function",
			prog: &Program{Stmts: []Stmt{&Return{}}},
			kind: rterrors.KindInvalidInput,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.prog)
			if err == nil {
				t.Fatal("expected a static rejection")
			}
			var e *rterrors.Error
			if !errors.As(err, &e) {
				t.Fatalf("error is %T, want *errors.Error", err)
			}
			if e.Kind != tc.kind {
				t.Fatalf("kind = %s, want %s", e.Kind, tc.kind)
			}
			if !rterrors.IsStatic(err) {
				t.Fatalf("err %v not classified as static", err)
			}
		})
	}
}

func TestValidate_BreakInsideDeferredLoopIsLocal(t *testing.T) {
	prog := &Program{Stmts: []Stmt{
		&While{Cond: lit(true), Body: []Stmt{
			&Defer{Body: []Stmt{
				&While{Cond: lit(true), Body: []Stmt{&Break{}}},
			}},
			&Break{},
		}},
	}}
	if err := Validate(prog); err != nil {
		t.Fatalf("local break inside deferred body rejected: %v", err)
	}
}
