package errors

import (
	"fmt"
	"strings"

	stderrors "errors"
)

// FailureChain is an immutable, strictly linear aggregation of the errors
// raised while draining one frame's deferred actions. The walk from Primary
// outward yields failures most-recent-first: the error raised by the last
// action to fail, then the one it suppressed, and so on. If an error was
// already in flight before the drain began it sits at the far end of the
// chain.
//
// A FailureChain is itself an error. A boundary that only inspects the
// top-level message observes just the primary failure.
type FailureChain struct {
	primary    error
	suppressed *FailureChain
}

// Record folds a new failure into chain and returns the resulting chain.
// A nil chain means no failure was pending; the new error becomes the
// primary of a fresh single-link chain. Otherwise the new error becomes the
// primary and the previous chain becomes its suppressed link. The input
// chain is never mutated.
func Record(chain *FailureChain, err error) *FailureChain {
	if err == nil {
		return chain
	}
	if chain == nil {
		return &FailureChain{primary: err}
	}
	return &FailureChain{primary: err, suppressed: chain}
}

// Primary returns the error currently designated as the outcome.
func (c *FailureChain) Primary() error {
	return c.primary
}

// Suppressed returns the chain this failure suppressed, or nil.
func (c *FailureChain) Suppressed() *FailureChain {
	return c.suppressed
}

// Len returns the number of failures in the chain.
func (c *FailureChain) Len() int {
	n := 0
	for cur := c; cur != nil; cur = cur.suppressed {
		n++
	}
	return n
}

// Errors returns every failure in the chain, most-recent-first.
func (c *FailureChain) Errors() []error {
	out := make([]error, 0, c.Len())
	for cur := c; cur != nil; cur = cur.suppressed {
		out = append(out, cur.primary)
	}
	return out
}

// Err returns the value to throw for this chain: the bare primary when
// nothing was suppressed, the chain itself otherwise. A nil chain yields
// nil.
func (c *FailureChain) Err() error {
	if c == nil {
		return nil
	}
	if c.suppressed == nil {
		return c.primary
	}
	return c
}

// Error reports the primary failure's message so that boundaries which only
// look at the top-level error see the designated outcome.
func (c *FailureChain) Error() string {
	return c.primary.Error()
}

// Unwrap steps outward to the suppressed chain.
func (c *FailureChain) Unwrap() error {
	if c.suppressed == nil {
		return nil
	}
	return c.suppressed.Err()
}

// Is reports whether target matches the primary failure, so errors.Is on a
// chain behaves the same as on the bare primary.
func (c *FailureChain) Is(target error) bool {
	return stderrors.Is(c.primary, target)
}

// As attempts target against the primary failure.
func (c *FailureChain) As(target any) bool {
	return stderrors.As(c.primary, target)
}

// Format renders the full chain for diagnostics:
//
//	primary message
//	  suppressed: earlier message
//	  suppressed: first message
func (c *FailureChain) Format() string {
	var b strings.Builder
	b.WriteString(c.primary.Error())
	for cur := c.suppressed; cur != nil; cur = cur.suppressed {
		fmt.Fprintf(&b, "\n  suppressed: %s", cur.primary.Error())
	}
	return b.String()
}
