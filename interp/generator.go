package interp

import (
	"github.com/veylang/defer-runtime/frame"
	"github.com/veylang/defer-runtime/sched"
	"github.com/veylang/defer-runtime/unwind"
)

type genCmdKind uint8

const (
	genNext genCmdKind = iota
	genReturn
	genThrow
)

type genCmd struct {
	kind  genCmdKind
	value Value
	err   error
}

type genStep struct {
	value Value
	done  bool
	err   error
}

// Generator is a suspended generator activation. It runs on its own
// goroutine with its own frame registry, so frames holding pending
// deferred actions survive across yields. Control is a strict
// handoff: the body runs only while a driver call blocks on it, so the
// activation stays single-threaded in effect.
type Generator struct {
	cmds chan genCmd
	outs chan genStep
	done bool
	last genStep
}

func newGenerator(in *Interp, loop *sched.Loop, cl *Closure, args []Value) *Generator {
	g := &Generator{
		cmds: make(chan genCmd),
		outs: make(chan genStep),
	}
	go g.run(in, loop, cl, args)
	return g
}

func (g *Generator) run(in *Interp, loop *sched.Loop, cl *Closure, args []Value) {
	first := <-g.cmds
	switch first.kind {
	case genReturn:
		// Closed before the first resume: the body never starts, there
		// is nothing to drain.
		g.outs <- genStep{value: first.value, done: true}
		return
	case genThrow:
		g.outs <- genStep{done: true, err: first.err}
		return
	}

	reg := frame.NewRegistry()
	ev := &evaluator{in: in, reg: reg, disp: unwind.NewDispatcher(reg), loop: loop}

	env := NewEnv(cl.env)
	for i, p := range cl.fn.Params {
		var v Value
		if i < len(args) {
			v = args[i]
		}
		env.Define(p, v)
	}

	r := ev.runFrame(frame.KindFunction, flow{env: env, gen: g}, cl.fn.Body)

	out := genStep{done: true}
	switch r.Cause {
	case unwind.Return:
		out.value = r.Value
	case unwind.Throw:
		out.err = r.Err
	}
	g.outs <- out
}

// yieldValue suspends the body with v and blocks until the driver
// resumes it. A throw resumption surfaces as the yield expression's
// error; a close resumption surfaces as a return completion that
// drains every live frame on the way out but is not catchable.
func (g *Generator) yieldValue(v Value) (Value, error) {
	g.outs <- genStep{value: v}
	cmd := <-g.cmds
	switch cmd.kind {
	case genThrow:
		return nil, cmd.err
	case genReturn:
		return nil, abruptError{reason: unwind.ReturnWith(cmd.value)}
	default:
		return cmd.value, nil
	}
}

// Next resumes the generator with v, returning the next yielded value,
// whether the activation finished, and any error it threw.
func (g *Generator) Next(v Value) (Value, bool, error) {
	return g.drive(genCmd{kind: genNext, value: v})
}

// Return closes the generator. The close is an exit event at the
// suspension point: every frame between the suspended yield and the
// function frame drains in order before the activation completes with v.
func (g *Generator) Return(v Value) (Value, bool, error) {
	return g.drive(genCmd{kind: genReturn, value: v})
}

// Throw resumes the generator with err raised at the suspension point.
// An uncaught err drains the live frames and completes the activation.
func (g *Generator) Throw(err error) (Value, bool, error) {
	return g.drive(genCmd{kind: genThrow, err: err})
}

// Done reports whether the activation has completed.
func (g *Generator) Done() bool {
	return g.done
}

func (g *Generator) drive(cmd genCmd) (Value, bool, error) {
	if g.done {
		return g.last.value, true, nil
	}
	g.cmds <- cmd
	step := <-g.outs
	if step.done {
		g.done = true
		g.last = step
	}
	return step.value, step.done, step.err
}
