// Package deferruntime provides the scheduling engine for scoped, LIFO
// deferred actions in the Vey script runtime.
//
// A defer statement registers a statement or block to run once,
// unconditionally, when its enclosing scope exits, whatever the exit is:
// return, throw, break, continue, loop-iteration end, or plain fall-through.
// This library is the engine an evaluator embeds to get those semantics
// right, including the interactions with loops, switch bodies, generator
// suspension, and async functions.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	defer-runtime/       Root package with the shared Awaitable interface
//	├── frame/           Scope frames and the per-frame deferred-action store
//	├── unwind/          Exit reasons, exit-event dispatch, drain execution
//	├── sched/           Single-threaded cooperative scheduler and Completion
//	├── errors/          Structured errors and the failure chain
//	├── interp/          Reference tree-walking evaluator wired to the engine
//	└── cmd/run/         CLI for running demo programs and stepping traces
//
// # Quick Start
//
// An evaluator drives the engine through three calls per scope:
//
//	reg := frame.NewRegistry()
//	h := reg.EnterFrame(frame.KindFunction, false)
//
//	// each defer statement in the scope:
//	reg.RegisterAction(h, frame.Action{Body: cleanup}, frame.Static{})
//
//	// on any exit event:
//	d := unwind.NewDispatcher(reg)
//	reason, err := d.Depart(h, reason)
//
// Depart drains the frame's actions last-registered-first, folds every
// failure into a single failure chain without dropping any, and returns the
// reason that must now propagate, which is the incoming reason unless a
// deferred action threw.
//
// # Ordering Guarantees
//
// Within one frame, action n always settles (success or failure) before
// action n-1 begins, in both the synchronous and asynchronous modes. A
// frame's drain always completes before its exit reason is observed by any
// enclosing frame. No deferred action ever runs twice.
//
// # Concurrency Model
//
// Scheduling is single-threaded and cooperative. The engine never runs
// deferred actions in parallel and never introduces a suspension point on
// behalf of a synchronous action; only an await-bearing deferred body may
// suspend, and only inside an async-capable scope.
package deferruntime
