package unwind

import "fmt"

// Cause discriminates the kinds of scope-exit events.
type Cause uint8

const (
	// Normal is ordinary fall-through past the end of a scope.
	Normal Cause = iota
	// Return carries a function return value outward.
	Return
	// Throw carries an error outward.
	Throw
	// Break leaves a loop or switch, possibly by label.
	Break
	// Continue starts the next loop iteration, possibly by label.
	Continue
	// IterationEnd is the completion of one loop-iteration body.
	IterationEnd
)

// String returns the cause's name for diagnostics.
func (c Cause) String() string {
	switch c {
	case Normal:
		return "normal"
	case Return:
		return "return"
	case Throw:
		return "throw"
	case Break:
		return "break"
	case Continue:
		return "continue"
	case IterationEnd:
		return "iteration-end"
	default:
		return "unknown"
	}
}

// Reason is the tagged control-transfer value in flight when a scope ends.
// The dispatcher consumes every cause through the same path; nothing
// special-cases a particular control transfer.
type Reason struct {
	// Value is the return value for Return reasons.
	Value any
	// Err is the thrown error for Throw reasons.
	Err error
	// Label is the optional target label for Break and Continue.
	Label string
	Cause Cause
}

// NormalCompletion is the fall-through reason.
func NormalCompletion() Reason {
	return Reason{Cause: Normal}
}

// ReturnWith builds a return reason carrying v.
func ReturnWith(v any) Reason {
	return Reason{Cause: Return, Value: v}
}

// ThrowWith builds a throw reason carrying err.
func ThrowWith(err error) Reason {
	return Reason{Cause: Throw, Err: err}
}

// BreakTo builds a break reason; label may be empty.
func BreakTo(label string) Reason {
	return Reason{Cause: Break, Label: label}
}

// ContinueTo builds a continue reason; label may be empty.
func ContinueTo(label string) Reason {
	return Reason{Cause: Continue, Label: label}
}

// IterationEnded is the reason for a finished loop-iteration body.
func IterationEnded() Reason {
	return Reason{Cause: IterationEnd}
}

// Abrupt reports whether the reason interrupts ordinary sequential
// execution (anything but normal completion and iteration end).
func (r Reason) Abrupt() bool {
	return r.Cause == Return || r.Cause == Throw || r.Cause == Break || r.Cause == Continue
}

// String renders the reason for diagnostics.
func (r Reason) String() string {
	switch r.Cause {
	case Return:
		return fmt.Sprintf("return(%v)", r.Value)
	case Throw:
		return fmt.Sprintf("throw(%v)", r.Err)
	case Break:
		if r.Label != "" {
			return "break " + r.Label
		}
		return "break"
	case Continue:
		if r.Label != "" {
			return "continue " + r.Label
		}
		return "continue"
	default:
		return r.Cause.String()
	}
}
