package unwind

import (
	"github.com/veylang/defer-runtime/errors"
	"github.com/veylang/defer-runtime/frame"
)

// Dispatcher intercepts scope-exit events for one registry and runs the
// drain before the exit reason propagates. It is not safe for concurrent
// use; each execution context owns its own dispatcher.
type Dispatcher struct {
	reg   *frame.Registry
	trace *Trace
}

// NewDispatcher creates a dispatcher over reg.
func NewDispatcher(reg *frame.Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// Registry returns the registry this dispatcher drains.
func (d *Dispatcher) Registry() *frame.Registry {
	return d.reg
}

// SetTrace attaches an event trace; nil detaches it.
func (d *Dispatcher) SetTrace(t *Trace) {
	d.trace = t
}

// Depart handles an exit event for frame h: the frame's deferred actions
// run exactly once in reverse-registration order, the frame is exited, and
// the reason to propagate is returned. Failures raised by deferred actions
// fold into a failure chain that overrides a non-throw reason and chains
// onto a throw already in flight. The returned error reports engine misuse
// (double drain, stale handle), never an action failure.
func (d *Dispatcher) Depart(h frame.Handle, reason Reason) (Reason, error) {
	acts, err := d.reg.Take(h)
	if err != nil {
		return reason, err
	}

	seed := seedChain(reason)
	chain := d.drainSync(h, acts, seed)
	out := d.settleReason(h, reason, seed, chain)

	if err := d.reg.ExitFrame(h); err != nil {
		return out, err
	}
	return out, nil
}

// seedChain starts the drain's failure chain from a throw already in
// flight, so that deferred failures suppress it rather than lose it.
func seedChain(reason Reason) *errors.FailureChain {
	if reason.Cause == Throw {
		return errors.Record(nil, reason.Err)
	}
	return nil
}

// settleReason applies the override rules after a drain: if no action
// failed the incoming reason propagates untouched (a pending throw stays
// the very error it was); otherwise the chain's throwable replaces
// whatever was in flight.
func (d *Dispatcher) settleReason(h frame.Handle, reason Reason, seed, chain *errors.FailureChain) Reason {
	if chain == seed {
		return reason
	}
	out := ThrowWith(chain.Err())
	d.emitOverride(h, reason, out)
	debugf("frame %d reason override: %s -> %s", h, reason, out)
	return out
}
