// Package sched provides the single-threaded cooperative scheduler that
// backs asynchronous execution in the runtime.
//
// A Loop holds a FIFO queue of tasks and runs each task to completion
// before starting the next; no task ever runs in parallel with another.
// There are no goroutines here; suspension is modeled by splitting work
// into tasks and settlement callbacks, the way an embedded event loop does.
//
// A Completion is the promise-like settlement handle: it starts pending and
// settles exactly once, either resolved with a value or rejected with an
// error. Settlement callbacks are posted to the loop, never invoked
// re-entrantly, so observable ordering is deterministic.
//
//	loop := sched.NewLoop()
//	c := sched.NewCompletion(loop)
//	c.OnSettle(func(err error) { ... })
//	loop.Post(func() { c.Resolve(42) })
//	loop.Run()
//
// RunUntil pumps the queue until a predicate holds and supports nesting: a
// task may itself pump the loop while waiting for an inner completion,
// which is how a tree-walking evaluator awaits without CPS conversion.
//
// A rejected Completion whose error is never observed is reported through
// the loop's unhandled-rejection hook once the queue goes idle. This is the
// surrounding async-failure channel for fire-and-forget operations.
package sched
