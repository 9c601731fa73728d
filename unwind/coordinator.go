package unwind

import (
	"github.com/veylang/defer-runtime/errors"
	"github.com/veylang/defer-runtime/frame"
	"github.com/veylang/defer-runtime/sched"
)

// DepartAsync handles an exit event for an async-capable frame. The
// returned completion resolves to the reason that must propagate once
// every deferred action has settled; it never rejects: a throw travels
// inside the resolved reason. Actions settle strictly sequentially in
// reverse-registration order: an await-bearing action fully settles before
// the next action starts, and a sync-mode action executes synchronously on
// the same turn without suspending.
//
// The caller must chain its own completion on the returned one; the
// frame's exit is not observable to any outer scope until the drain
// settles.
func (d *Dispatcher) DepartAsync(h frame.Handle, reason Reason, loop *sched.Loop) (*sched.Completion, error) {
	acts, err := d.reg.Take(h)
	if err != nil {
		return nil, err
	}

	seed := seedChain(reason)
	result := sched.NewCompletion(loop)

	var step func(i int, chain *errors.FailureChain)
	step = func(i int, chain *errors.FailureChain) {
		if i < 0 {
			out := d.settleReason(h, reason, seed, chain)
			if err := d.reg.ExitFrame(h); err != nil {
				debugf("frame %d exit after async drain: %v", h, err)
			}
			result.Resolve(out)
			return
		}

		a := acts[i]
		if a.Mode == frame.ModeSync {
			// Only defer await may suspend.
			step(i-1, d.runOne(h, a, chain))
			return
		}

		a.Async().OnSettle(func(err error) {
			d.emitAction(h, a, err)
			if err != nil {
				debugf("frame %d async action at %s failed: %v", h, a.Pos, err)
			}
			step(i-1, errors.Record(chain, err))
		})
	}
	step(len(acts)-1, seed)

	return result, nil
}
