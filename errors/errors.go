package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseRegister Phase = "register" // action registration / static validation
	PhaseDrain    Phase = "drain"    // unwind execution
	PhaseSchedule Phase = "schedule" // cooperative scheduler
	PhaseEval     Phase = "eval"     // host evaluator
)

// Kind categorizes the error
type Kind string

const (
	// Static rejections, reported at registration time.
	KindAsyncOutsideAsync Kind = "async_outside_async"
	KindEscapingTransfer  Kind = "escaping_transfer"
	KindYieldInDeferred   Kind = "yield_in_deferred"
	KindUnbracedBody      Kind = "unbraced_body"

	// Engine misuse and runtime failures.
	KindFrameDead     Kind = "frame_dead"
	KindFrameLive     Kind = "frame_live"
	KindBadHandle     Kind = "bad_handle"
	KindModeMismatch  Kind = "mode_mismatch"
	KindNotSettled    Kind = "not_settled"
	KindInvalidInput  Kind = "invalid_input"
	KindUnboundName   Kind = "unbound_name"
	KindNotCallable   Kind = "not_callable"
	KindBadIteration  Kind = "bad_iteration"
	KindUncaughtThrow Kind = "uncaught_throw"
)

// staticKinds are the rejections that front ends surface as compile errors.
var staticKinds = map[Kind]bool{
	KindAsyncOutsideAsync: true,
	KindEscapingTransfer:  true,
	KindYieldInDeferred:   true,
	KindUnbracedBody:      true,
	KindInvalidInput:      true, // placement rejections from the validator
}

// Error is the structured error type used throughout the library
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Position string
	Frame    string
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Position != "" {
		b.WriteString(" at ")
		b.WriteString(e.Position)
	}

	if e.Frame != "" {
		b.WriteString(" in ")
		b.WriteString(e.Frame)
		b.WriteString(" frame")
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsStatic reports whether err is a registration-time rejection that the
// front end must surface as a compile error. Static rejections are never
// observable at runtime.
func IsStatic(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Phase == PhaseRegister && staticKinds[e.Kind]
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Pos sets the source position
func (b *Builder) Pos(pos string) *Builder {
	b.err.Position = pos
	return b
}

// Frame sets the frame kind the error relates to
func (b *Builder) Frame(kind string) *Builder {
	b.err.Frame = kind
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// AsyncOutsideAsync creates the rejection for a defer await registered in a
// frame whose enclosing context is not async-capable.
func AsyncOutsideAsync(pos, frameKind string) *Error {
	return &Error{
		Phase:    PhaseRegister,
		Kind:     KindAsyncOutsideAsync,
		Position: pos,
		Frame:    frameKind,
		Detail:   "defer await requires an async enclosing context",
	}
}

// EscapingTransfer creates the rejection for a deferred body that contains a
// control transfer targeting outside the body (return, break, continue).
func EscapingTransfer(pos, transfer string) *Error {
	return &Error{
		Phase:    PhaseRegister,
		Kind:     KindEscapingTransfer,
		Position: pos,
		Detail:   fmt.Sprintf("%s is not allowed inside a deferred body", transfer),
	}
}

// YieldInDeferred creates the rejection for a yield inside a deferred body.
func YieldInDeferred(pos string) *Error {
	return &Error{
		Phase:    PhaseRegister,
		Kind:     KindYieldInDeferred,
		Position: pos,
		Detail:   "yield is not allowed inside a deferred body",
	}
}

// UnbracedBody creates the rejection for a defer statement used as the sole
// body of an unbraced iteration statement.
func UnbracedBody(pos string) *Error {
	return &Error{
		Phase:    PhaseRegister,
		Kind:     KindUnbracedBody,
		Position: pos,
		Detail:   "defer cannot be the sole body of an unbraced loop",
	}
}

// FrameDead creates the error for an operation on an already-drained frame.
func FrameDead(frameKind string) *Error {
	return &Error{
		Phase:  PhaseDrain,
		Kind:   KindFrameDead,
		Frame:  frameKind,
		Detail: "frame already drained for this activation",
	}
}

// BadHandle creates the error for a handle that does not name a live frame.
func BadHandle(detail string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindBadHandle,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
