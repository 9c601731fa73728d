package unwind

import (
	"github.com/veylang/defer-runtime/errors"
	"github.com/veylang/defer-runtime/frame"
)

// drainSync executes acts back to front, folding every failure into the
// chain. A failing action never stops its siblings; each action runs
// exactly once.
func (d *Dispatcher) drainSync(h frame.Handle, acts []frame.Action, chain *errors.FailureChain) *errors.FailureChain {
	for i := len(acts) - 1; i >= 0; i-- {
		chain = d.runOne(h, acts[i], chain)
	}
	return chain
}

// runOne executes a single action synchronously and records its failure,
// if any. An async-mode action reaching a synchronous drain is an engine
// invariant break; it is recorded as a drain failure rather than executed.
func (d *Dispatcher) runOne(h frame.Handle, a frame.Action, chain *errors.FailureChain) *errors.FailureChain {
	if a.Mode == frame.ModeAsync {
		err := errors.New(errors.PhaseDrain, errors.KindModeMismatch).
			Pos(a.Pos).
			Frame(d.reg.Kind(h).String()).
			Detail("async action in a synchronous drain").
			Build()
		d.emitAction(h, a, err)
		return errors.Record(chain, err)
	}

	err := a.Body()
	d.emitAction(h, a, err)
	if err != nil {
		debugf("frame %d action at %s failed: %v", h, a.Pos, err)
	}
	return errors.Record(chain, err)
}
