package sched

// Loop is a run-to-completion task queue. It is not safe for concurrent
// use; the whole point is that exactly one thread of control exists.
type Loop struct {
	queue     []func()
	unhandled func(err error)
	orphans   []*Completion
	pumping   int
}

// NewLoop creates an empty loop.
func NewLoop() *Loop {
	return &Loop{}
}

// Post enqueues fn to run on a later turn.
func (l *Loop) Post(fn func()) {
	l.queue = append(l.queue, fn)
}

// OnUnhandled sets the hook invoked for rejections nothing observed.
func (l *Loop) OnUnhandled(fn func(err error)) {
	l.unhandled = fn
}

// Idle reports whether no tasks are queued.
func (l *Loop) Idle() bool {
	return len(l.queue) == 0
}

// Run pumps the queue until it is empty, then reports any unobserved
// rejections through the unhandled hook.
func (l *Loop) Run() {
	l.RunUntil(func() bool { return false })
	if l.pumping == 0 {
		l.reportOrphans()
	}
}

// RunUntil pumps the queue until done reports true or the queue is
// exhausted, and returns whether done held. Nested calls share the same
// queue, so a task may pump the loop while waiting on an inner settlement.
func (l *Loop) RunUntil(done func() bool) bool {
	l.pumping++
	defer func() { l.pumping-- }()

	for {
		if done() {
			return true
		}
		if len(l.queue) == 0 {
			return done()
		}
		task := l.queue[0]
		l.queue = l.queue[1:]
		task()
	}
}

func (l *Loop) adopt(c *Completion) {
	l.orphans = append(l.orphans, c)
}

func (l *Loop) reportOrphans() {
	orphans := l.orphans
	l.orphans = nil
	for _, c := range orphans {
		if c.state == rejected && !c.handled {
			debugf("unhandled rejection: %v", c.err)
			if l.unhandled != nil {
				l.unhandled(c.err)
			}
		}
	}
}
