package interp

import (
	"github.com/veylang/defer-runtime/frame"
	"github.com/veylang/defer-runtime/sched"
	"github.com/veylang/defer-runtime/unwind"
)

// Interp evaluates programs against a single cooperative scheduler.
// One Interp can run many programs in sequence; builtins and the loop
// persist across runs.
type Interp struct {
	loop     *sched.Loop
	builtins map[string]Value
	trace    *unwind.Trace
}

// New creates an interpreter with an empty global scope.
func New() *Interp {
	return &Interp{
		loop:     sched.NewLoop(),
		builtins: make(map[string]Value),
	}
}

// Builtin installs a host function under name in the global scope.
func (in *Interp) Builtin(name string, fn BuiltinFunc) {
	in.builtins[name] = fn
}

// Loop exposes the interpreter's scheduler, mainly so builtins can mint
// completions that settle on later turns.
func (in *Interp) Loop() *sched.Loop {
	return in.loop
}

// SetTrace records drain events of subsequent runs into t; nil detaches.
// Generator activations use their own dispatchers and are not traced.
func (in *Interp) SetTrace(t *unwind.Trace) {
	in.trace = t
}

// Run validates and executes a program. The module top level is a frame
// of its own: its deferred actions drain when the last statement
// finishes or an uncaught throw leaves the module. The returned error
// is the validation failure or the module's escaping throw.
func (in *Interp) Run(p *Program) error {
	if err := Validate(p); err != nil {
		return err
	}

	reg := frame.NewRegistry()
	disp := unwind.NewDispatcher(reg)
	if in.trace != nil {
		disp.SetTrace(in.trace)
	}
	ev := &evaluator{in: in, reg: reg, disp: disp, loop: in.loop}

	env := NewEnv(nil)
	for name, v := range in.builtins {
		env.Define(name, v)
	}

	pos := p.Name
	h := reg.EnterFrameAt(frame.KindModule, false, pos)
	r := ev.execStmts(p.Stmts, flow{env: env, h: h})
	out := ev.depart(h, r, flow{})

	// Flush stragglers so unhandled rejections get reported.
	in.loop.Run()

	if out.Cause == unwind.Throw {
		return out.Err
	}
	return nil
}
