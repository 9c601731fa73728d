package interp

import (
	"fmt"

	deferruntime "github.com/veylang/defer-runtime"
	"github.com/veylang/defer-runtime/errors"
	"github.com/veylang/defer-runtime/frame"
	"github.com/veylang/defer-runtime/sched"
	"github.com/veylang/defer-runtime/unwind"
)

// evaluator runs one execution context: the main script or a single
// generator activation. Contexts share the interpreter and its loop but
// own their frame registry.
type evaluator struct {
	in   *Interp
	reg  *frame.Registry
	disp *unwind.Dispatcher
	loop *sched.Loop
}

// flow is the lexical state threaded through evaluation: the current
// binding scope, the handle of the innermost frame (registration
// target), whether an async context encloses us, and the generator
// session when inside a generator body.
type flow struct {
	env   *Env
	h     frame.Handle
	async bool
	gen   *Generator
}

// abruptError smuggles a non-throw control transfer through expression
// evaluation. It happens for exactly one construct: a generator close
// injected at a suspended yield. It is never catchable.
type abruptError struct {
	reason unwind.Reason
}

func (e abruptError) Error() string { return e.reason.String() }

// reasonFromErr lifts an expression error into a statement completion.
func reasonFromErr(err error) unwind.Reason {
	if ab, ok := err.(abruptError); ok {
		return ab.reason
	}
	return unwind.ThrowWith(err)
}

// runFrame runs stmts inside a fresh engine frame of the given kind and
// departs it with the body's completion, returning the reason that
// survives the drain.
func (ev *evaluator) runFrame(kind frame.Kind, fl flow, stmts []Stmt) unwind.Reason {
	h := ev.reg.EnterFrame(kind, fl.async)
	fl.h = h
	r := ev.execStmts(stmts, fl)
	return ev.depart(h, r, fl)
}

// depart drains and exits a frame, synchronously or through the
// scheduler depending on the enclosing context.
func (ev *evaluator) depart(h frame.Handle, r unwind.Reason, fl flow) unwind.Reason {
	if fl.async {
		c, err := ev.disp.DepartAsync(h, r, ev.loop)
		if err != nil {
			return unwind.ThrowWith(err)
		}
		v, _, ok := c.Await()
		if !ok {
			return unwind.ThrowWith(errors.New(errors.PhaseSchedule, errors.KindNotSettled).
				Detail("drain never settled").Build())
		}
		return v.(unwind.Reason)
	}
	out, err := ev.disp.Depart(h, r)
	if err != nil {
		return unwind.ThrowWith(err)
	}
	return out
}

func (ev *evaluator) execStmts(stmts []Stmt, fl flow) unwind.Reason {
	for _, s := range stmts {
		if r := ev.execStmt(s, fl); r.Abrupt() {
			return r
		}
	}
	return unwind.NormalCompletion()
}

func (ev *evaluator) execStmt(s Stmt, fl flow) unwind.Reason {
	switch st := s.(type) {
	case *Block:
		sub := fl
		sub.env = NewEnv(fl.env)
		return ev.runFrame(frame.KindBlock, sub, st.Stmts)

	case *Let:
		v, err := ev.evalExpr(st.Value, fl)
		if err != nil {
			return reasonFromErr(err)
		}
		fl.env.Define(st.Name, v)
		return unwind.NormalCompletion()

	case *Assign:
		v, err := ev.evalExpr(st.Value, fl)
		if err != nil {
			return reasonFromErr(err)
		}
		if !fl.env.Set(st.Name, v) {
			return unwind.ThrowWith(errors.New(errors.PhaseEval, errors.KindUnboundName).
				Detail("assignment to undeclared name %q", st.Name).Build())
		}
		return unwind.NormalCompletion()

	case *ExprStmt:
		if _, err := ev.evalExpr(st.X, fl); err != nil {
			return reasonFromErr(err)
		}
		return unwind.NormalCompletion()

	case *If:
		v, err := ev.evalExpr(st.Cond, fl)
		if err != nil {
			return reasonFromErr(err)
		}
		branch := st.Then
		if !truthy(v) {
			branch = st.Else
		}
		if len(branch) == 0 {
			return unwind.NormalCompletion()
		}
		sub := fl
		sub.env = NewEnv(fl.env)
		return ev.runFrame(frame.KindBlock, sub, branch)

	case *While:
		for {
			v, err := ev.evalExpr(st.Cond, fl)
			if err != nil {
				return reasonFromErr(err)
			}
			if !truthy(v) {
				return unwind.NormalCompletion()
			}
			r, done := ev.runIteration(st.Label, st.Body, fl, nil)
			if done {
				return r
			}
		}

	case *ForRange:
		from, err := ev.intOperand(st.From, fl)
		if err != nil {
			return reasonFromErr(err)
		}
		to, err := ev.intOperand(st.To, fl)
		if err != nil {
			return reasonFromErr(err)
		}
		for i := from; i < to; i++ {
			bind := func(env *Env) { env.Define(st.Var, i) }
			r, done := ev.runIteration(st.Label, st.Body, fl, bind)
			if done {
				return r
			}
		}
		return unwind.NormalCompletion()

	case *Switch:
		return ev.execSwitch(st, fl)

	case *Break:
		return unwind.BreakTo(st.Label)

	case *Continue:
		return unwind.ContinueTo(st.Label)

	case *Return:
		var v Value
		if st.Value != nil {
			var err error
			if v, err = ev.evalExpr(st.Value, fl); err != nil {
				return reasonFromErr(err)
			}
		}
		return unwind.ReturnWith(v)

	case *Throw:
		v, err := ev.evalExpr(st.Value, fl)
		if err != nil {
			return reasonFromErr(err)
		}
		return unwind.ThrowWith(throwValue(v))

	case *Try:
		return ev.execTry(st, fl)

	case *Defer:
		return ev.registerDefer(st, fl)

	default:
		return unwind.ThrowWith(errors.InvalidInput(errors.PhaseEval,
			fmt.Sprintf("unknown statement %T", s)))
	}
}

// runIteration runs one loop-iteration body in its own frame and folds
// the post-drain reason into the loop's control flow. done reports that
// the loop must stop and propagate r.
func (ev *evaluator) runIteration(label string, body []Stmt, fl flow, bind func(*Env)) (r unwind.Reason, done bool) {
	sub := fl
	sub.env = NewEnv(fl.env)
	if bind != nil {
		bind(sub.env)
	}

	h := ev.reg.EnterFrame(frame.KindLoopIteration, sub.async)
	sub.h = h
	r = ev.execStmts(body, sub)
	if r.Cause == unwind.Normal {
		r = unwind.IterationEnded()
	}
	r = ev.depart(h, r, sub)

	switch r.Cause {
	case unwind.IterationEnd:
		return r, false
	case unwind.Continue:
		if r.Label == "" || r.Label == label {
			return r, false
		}
		return r, true
	case unwind.Break:
		if r.Label == "" || r.Label == label {
			return unwind.NormalCompletion(), true
		}
		return r, true
	default:
		return r, true
	}
}

// execSwitch runs a switch. The whole clause list shares one frame;
// clauses fall through until a break, which the switch consumes after
// the drain.
func (ev *evaluator) execSwitch(st *Switch, fl flow) unwind.Reason {
	subject, err := ev.evalExpr(st.Subject, fl)
	if err != nil {
		return reasonFromErr(err)
	}

	start := -1
	def := -1
	for i, c := range st.Cases {
		if c.Match == nil {
			def = i
			continue
		}
		v, err := ev.evalExpr(c.Match, fl)
		if err != nil {
			return reasonFromErr(err)
		}
		if v == subject {
			start = i
			break
		}
	}
	if start < 0 {
		start = def
	}
	if start < 0 {
		return unwind.NormalCompletion()
	}

	sub := fl
	sub.env = NewEnv(fl.env)
	h := ev.reg.EnterFrame(frame.KindSwitchBody, sub.async)
	sub.h = h

	r := unwind.NormalCompletion()
	for i := start; i < len(st.Cases); i++ {
		if r = ev.execStmts(st.Cases[i].Body, sub); r.Abrupt() {
			break
		}
	}
	r = ev.depart(h, r, sub)

	if r.Cause == unwind.Break && r.Label == "" {
		return unwind.NormalCompletion()
	}
	return r
}

func (ev *evaluator) execTry(st *Try, fl flow) unwind.Reason {
	sub := fl
	sub.env = NewEnv(fl.env)
	r := ev.runFrame(frame.KindBlock, sub, st.Body)

	if r.Cause == unwind.Throw && st.HasCatch {
		cs := fl
		cs.env = NewEnv(fl.env)
		cs.env.Define(st.CatchName, catchBinding(r.Err))
		r = ev.runFrame(frame.KindBlock, cs, st.Catch)
	}

	if len(st.Finally) > 0 {
		fs := fl
		fs.env = NewEnv(fl.env)
		if fr := ev.runFrame(frame.KindBlock, fs, st.Finally); fr.Abrupt() {
			return fr
		}
	}
	return r
}

// registerDefer lowers a defer statement into an engine action. The
// body closure captures the current scope; static facts about the body
// were established by Validate and are restated here so the registry's
// own checks stay exercised.
func (ev *evaluator) registerDefer(st *Defer, fl flow) unwind.Reason {
	captured := fl
	run := func() error {
		sub := captured
		sub.env = NewEnv(captured.env)
		r := ev.runFrame(frame.KindBlock, sub, st.Body)
		if r.Cause == unwind.Throw {
			return r.Err
		}
		return nil
	}

	a := frame.Action{
		Pos:  st.Pos,
		Kind: frame.BodyStatement,
		Mode: frame.ModeSync,
		Body: run,
	}
	if st.Block {
		a.Kind = frame.BodyBlock
	}
	if st.Await {
		// The body itself pumps the scheduler through any awaits it
		// contains, so from the coordinator's view it settles in one hop.
		a.Mode = frame.ModeAsync
		a.Body = nil
		a.Async = func() deferruntime.Awaitable {
			return deferruntime.Settled{Err: run()}
		}
	}

	if err := ev.reg.RegisterAction(fl.h, a, deferFacts(st)); err != nil {
		return unwind.ThrowWith(err)
	}
	return unwind.NormalCompletion()
}

func (ev *evaluator) evalExpr(e Expr, fl flow) (Value, error) {
	switch x := e.(type) {
	case *Lit:
		return normalize(x.Value), nil

	case *Ident:
		v, ok := fl.env.Get(x.Name)
		if !ok {
			return nil, errors.New(errors.PhaseEval, errors.KindUnboundName).
				Detail("undefined name %q", x.Name).Build()
		}
		return v, nil

	case *Bin:
		return ev.evalBin(x, fl)

	case *Call:
		return ev.evalCall(x, fl)

	case *Func:
		return &Closure{fn: x, env: fl.env}, nil

	case *Await:
		v, err := ev.evalExpr(x.X, fl)
		if err != nil {
			return nil, err
		}
		c, ok := v.(*sched.Completion)
		if !ok {
			return v, nil
		}
		val, cerr, settled := c.Await()
		if !settled {
			return nil, errors.New(errors.PhaseSchedule, errors.KindNotSettled).
				Detail("awaited value never settled").Build()
		}
		if cerr != nil {
			return nil, cerr
		}
		return val, nil

	case *Yield:
		if fl.gen == nil {
			return nil, errors.InvalidInput(errors.PhaseEval, "yield outside a generator")
		}
		v, err := ev.evalExpr(x.X, fl)
		if err != nil {
			return nil, err
		}
		return fl.gen.yieldValue(v)

	default:
		return nil, errors.InvalidInput(errors.PhaseEval,
			fmt.Sprintf("unknown expression %T", e))
	}
}

func (ev *evaluator) evalCall(x *Call, fl flow) (Value, error) {
	fv, err := ev.evalExpr(x.Fn, fl)
	if err != nil {
		return nil, err
	}
	args := make([]Value, len(x.Args))
	for i, a := range x.Args {
		if args[i], err = ev.evalExpr(a, fl); err != nil {
			return nil, err
		}
	}

	switch fn := fv.(type) {
	case BuiltinFunc:
		return fn(args)
	case *Closure:
		return ev.callClosure(fn, args)
	default:
		return nil, errors.New(errors.PhaseEval, errors.KindNotCallable).
			Detail("%T is not callable", fv).Build()
	}
}

func (ev *evaluator) callClosure(cl *Closure, args []Value) (Value, error) {
	if cl.fn.Generator {
		return newGenerator(ev.in, ev.loop, cl, args), nil
	}
	if cl.fn.Async {
		return ev.callAsync(cl, args), nil
	}
	r := ev.runFuncBody(cl, args, flow{})
	switch r.Cause {
	case unwind.Return:
		return r.Value, nil
	case unwind.Throw:
		return nil, r.Err
	default:
		return nil, nil
	}
}

// callAsync activates an async function. Its body runs to completion
// here, pumping the shared loop through awaits; the returned completion
// carries the outcome to the caller.
func (ev *evaluator) callAsync(cl *Closure, args []Value) *sched.Completion {
	c := sched.NewCompletion(ev.loop)
	r := ev.runFuncBody(cl, args, flow{async: true})
	if r.Cause == unwind.Throw {
		c.Reject(r.Err)
	} else {
		c.Resolve(r.Value)
	}
	return c
}

// runFuncBody pushes a function frame on this context's registry and
// runs the closure's body in a scope derived from its captured
// environment. Plain nested calls leave any enclosing generator's yield
// surface behind.
func (ev *evaluator) runFuncBody(cl *Closure, args []Value, fl flow) unwind.Reason {
	env := NewEnv(cl.env)
	for i, p := range cl.fn.Params {
		var v Value
		if i < len(args) {
			v = args[i]
		}
		env.Define(p, v)
	}
	fl.env = env
	fl.gen = nil
	return ev.runFrame(frame.KindFunction, fl, cl.fn.Body)
}

func (ev *evaluator) evalBin(x *Bin, fl flow) (Value, error) {
	l, err := ev.evalExpr(x.L, fl)
	if err != nil {
		return nil, err
	}
	r, err := ev.evalExpr(x.R, fl)
	if err != nil {
		return nil, err
	}

	if ls, ok := l.(string); ok && x.Op == "+" {
		return ls + fmt.Sprint(r), nil
	}

	switch x.Op {
	case "==":
		return l == r, nil
	case "!=":
		return l != r, nil
	}

	li, lok := l.(int64)
	ri, rok := r.(int64)
	if !lok || !rok {
		return nil, errors.New(errors.PhaseEval, errors.KindInvalidInput).
			Detail("operator %q needs integer operands, got %T and %T", x.Op, l, r).Build()
	}
	switch x.Op {
	case "+":
		return li + ri, nil
	case "-":
		return li - ri, nil
	case "*":
		return li * ri, nil
	case "/":
		if ri == 0 {
			return nil, &ScriptError{Value: "division by zero"}
		}
		return li / ri, nil
	case "<":
		return li < ri, nil
	case "<=":
		return li <= ri, nil
	case ">":
		return li > ri, nil
	case ">=":
		return li >= ri, nil
	default:
		return nil, errors.InvalidInput(errors.PhaseEval,
			fmt.Sprintf("unknown operator %q", x.Op))
	}
}

func (ev *evaluator) intOperand(e Expr, fl flow) (int64, error) {
	v, err := ev.evalExpr(e, fl)
	if err != nil {
		return 0, err
	}
	i, ok := v.(int64)
	if !ok {
		return 0, errors.New(errors.PhaseEval, errors.KindBadIteration).
			Detail("range bound must be an integer, got %T", v).Build()
	}
	return i, nil
}

// normalize widens literal integers so arithmetic sees one integer type.
func normalize(v any) Value {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	default:
		return v
	}
}
