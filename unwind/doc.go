// Package unwind dispatches scope-exit events and executes deferred
// actions.
//
// Every way control can leave a scope (return, throw, break, continue,
// normal fall-through, end of a loop iteration) is modeled as a single
// tagged Reason value. The Dispatcher consumes all of them uniformly: on
// any exit event it drains the departing frame's deferred actions exactly
// once, last-registered-first, before the reason is allowed to propagate
// past the frame boundary.
//
//	d := unwind.NewDispatcher(reg)
//	reason, err := d.Depart(h, unwind.ReturnWith(v))
//
// The returned reason is the one the evaluator must substitute for
// whatever was in flight: if any deferred action threw, the incoming
// reason is overridden by a throw carrying the failure chain (see the
// errors package), exactly the way a finally block's throw overrides a try
// block's return. A throw already in flight is never lost; new failures
// chain onto it.
//
// # Drain guarantees
//
// Every registered action executes exactly once, even when earlier actions
// in the same drain fail; failures never halt the drain. A block-bodied
// action runs as one atomic unit: its statements live in one closure, so
// no interleaving with sibling actions is possible. Ordering is pure LIFO
// and never depends on a sibling's success or failure.
//
// # Asynchronous drains
//
// DepartAsync is the await-capable variant for async scopes. It returns a
// completion that resolves to the final reason once every deferred action
// has settled. Actions settle strictly sequentially: action n fully
// settles, success or failure, before action n-1 starts. A sync
// action inside an async scope executes synchronously without suspending.
// The enclosing computation's own completion must be chained on the drain
// completion, so a frame's exit is not observable until its asynchronous
// deferred actions have settled.
//
// A Trace can be attached to a Dispatcher to record every executed action
// and reason override for diagnostics and the interactive CLI.
package unwind
