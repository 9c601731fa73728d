package sched

type state uint8

const (
	pending state = iota
	resolved
	rejected
)

// Completion is a promise-like handle that settles exactly once. All
// methods must be called from the loop's thread of control.
type Completion struct {
	loop      *Loop
	value     any
	err       error
	callbacks []func(v any, err error)
	state     state
	handled   bool
}

// NewCompletion creates a pending completion bound to loop.
func NewCompletion(l *Loop) *Completion {
	return &Completion{loop: l}
}

// Resolved returns a completion already resolved with v.
func Resolved(l *Loop, v any) *Completion {
	return &Completion{loop: l, state: resolved, value: v}
}

// Rejected returns a completion already rejected with err. The rejection
// counts as unobserved until a callback is registered.
func Rejected(l *Loop, err error) *Completion {
	c := &Completion{loop: l, state: rejected, err: err}
	l.adopt(c)
	return c
}

// Resolve settles the completion with a value. Settling twice is a no-op.
func (c *Completion) Resolve(v any) {
	if c.state != pending {
		return
	}
	c.state = resolved
	c.value = v
	c.flush()
}

// Reject settles the completion with an error. Settling twice is a no-op.
func (c *Completion) Reject(err error) {
	if c.state != pending {
		return
	}
	c.state = rejected
	c.err = err
	if len(c.callbacks) == 0 {
		c.loop.adopt(c)
	}
	c.flush()
}

// Done reports whether the completion has settled.
func (c *Completion) Done() bool {
	return c.state != pending
}

// Value returns the resolved value, or nil before settlement.
func (c *Completion) Value() any {
	return c.value
}

// Err returns the rejection error, or nil.
func (c *Completion) Err() error {
	return c.err
}

// Then registers a callback for settlement. Callbacks run on the loop in
// registration order; a callback registered after settlement still runs on
// a later turn.
func (c *Completion) Then(fn func(v any, err error)) {
	c.handled = true
	if c.state != pending {
		v, err := c.value, c.err
		c.loop.Post(func() { fn(v, err) })
		return
	}
	c.callbacks = append(c.callbacks, fn)
}

// OnSettle implements the Awaitable contract used by deferred bodies.
func (c *Completion) OnSettle(fn func(err error)) {
	c.Then(func(_ any, err error) { fn(err) })
}

// Await pumps the loop until the completion settles and returns its
// outcome. It reports false if the queue drains without settlement.
func (c *Completion) Await() (any, error, bool) {
	c.handled = true
	ok := c.loop.RunUntil(c.Done)
	return c.value, c.err, ok
}

func (c *Completion) flush() {
	cbs := c.callbacks
	c.callbacks = nil
	v, err := c.value, c.err
	for _, fn := range cbs {
		fn := fn
		c.loop.Post(func() { fn(v, err) })
	}
}
