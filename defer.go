package deferruntime

// Awaitable is the settlement handle an asynchronous deferred body returns.
// OnSettle registers a callback invoked exactly once when the underlying
// operation settles, with a nil error on success. A callback registered
// after settlement still fires, immediately or on the next scheduler turn.
type Awaitable interface {
	OnSettle(fn func(err error))
}

// Settled is an Awaitable that has already settled with a fixed outcome.
// It is useful for async deferred bodies that complete without suspending.
type Settled struct {
	Err error
}

// OnSettle invokes fn immediately with the fixed outcome.
func (s Settled) OnSettle(fn func(err error)) {
	fn(s.Err)
}
