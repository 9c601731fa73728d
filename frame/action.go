package frame

import (
	deferruntime "github.com/veylang/defer-runtime"
)

// Action is one registered deferred unit of work. The body closures capture
// their lexical environment at registration time and are exclusively owned
// by the frame that registered them; the engine only ever calls them, it
// never mutates captured state.
type Action struct {
	// Body executes the deferred work synchronously. It is used for
	// ModeSync actions and must be non-nil for them.
	Body func() error

	// Async starts the deferred work and returns its settlement handle.
	// It is used for ModeAsync actions and must be non-nil for them.
	Async func() deferruntime.Awaitable

	// Pos is the source position of the defer statement, for diagnostics.
	Pos string

	Kind BodyKind
	Mode Mode
}

// Static carries the syntactic facts about a deferred body that the front
// end computed while lowering the defer statement. The registry validates
// them at registration time; none of these conditions is ever checked
// during a drain.
type Static struct {
	// HasReturn is set when the body contains a return statement.
	HasReturn bool

	// HasBreak is set when the body contains a break targeting a
	// construct outside the deferred body itself.
	HasBreak bool

	// HasContinue is set when the body contains a continue targeting a
	// construct outside the deferred body itself.
	HasContinue bool

	// HasYield is set when the body contains a yield expression,
	// regardless of the enclosing function being a generator.
	HasYield bool

	// UnbracedLoopBody is set when the defer statement is the sole body
	// of an unbraced iteration statement.
	UnbracedLoopBody bool
}
