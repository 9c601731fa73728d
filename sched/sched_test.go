package sched

import (
	"errors"
	"testing"
)

func TestLoop_RunOrder(t *testing.T) {
	loop := NewLoop()
	var order []int

	loop.Post(func() { order = append(order, 1) })
	loop.Post(func() {
		order = append(order, 2)
		loop.Post(func() { order = append(order, 4) })
	})
	loop.Post(func() { order = append(order, 3) })
	loop.Run()

	want := []int{1, 2, 3, 4}
	if len(order) != len(want) {
		t.Fatalf("ran %d tasks, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %d, want %d", i, order[i], want[i])
		}
	}
}

func TestLoop_RunUntilNested(t *testing.T) {
	loop := NewLoop()
	inner := NewCompletion(loop)
	var order []string

	loop.Post(func() {
		order = append(order, "outer-start")
		// Pump the shared queue from inside a task.
		if _, _, ok := inner.Await(); !ok {
			t.Error("inner never settled")
		}
		order = append(order, "outer-end")
	})
	loop.Post(func() {
		order = append(order, "settle")
		inner.Resolve(nil)
	})
	loop.Run()

	want := []string{"outer-start", "settle", "outer-end"}
	for i := range want {
		if i >= len(order) || order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestCompletion_SettleOnce(t *testing.T) {
	loop := NewLoop()
	c := NewCompletion(loop)

	c.Resolve("first")
	c.Reject(errors.New("late"))
	c.Resolve("late")
	loop.Run()

	if c.Err() != nil {
		t.Errorf("err = %v, want nil", c.Err())
	}
	if c.Value() != "first" {
		t.Errorf("value = %v, want first", c.Value())
	}
}

func TestCompletion_ThenAfterSettlement(t *testing.T) {
	loop := NewLoop()
	c := Resolved(loop, 7)

	var got any
	c.Then(func(v any, err error) { got = v })
	if got != nil {
		t.Error("callback ran re-entrantly instead of on a loop turn")
	}
	loop.Run()
	if got != 7 {
		t.Errorf("got %v, want 7", got)
	}
}

func TestCompletion_CallbackOrder(t *testing.T) {
	loop := NewLoop()
	c := NewCompletion(loop)
	var order []int

	c.Then(func(any, error) { order = append(order, 1) })
	c.Then(func(any, error) { order = append(order, 2) })
	loop.Post(func() { c.Resolve(nil) })
	loop.Run()

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

func TestLoop_UnhandledRejection(t *testing.T) {
	loop := NewLoop()
	var reported []error
	loop.OnUnhandled(func(err error) { reported = append(reported, err) })

	boom := errors.New("ignored failure")
	loop.Post(func() {
		c := NewCompletion(loop)
		c.Reject(boom)
	})
	loop.Run()

	if len(reported) != 1 || !errors.Is(reported[0], boom) {
		t.Errorf("reported = %v, want [ignored failure]", reported)
	}
}

func TestLoop_ObservedRejectionNotReported(t *testing.T) {
	loop := NewLoop()
	var reported []error
	loop.OnUnhandled(func(err error) { reported = append(reported, err) })

	c := NewCompletion(loop)
	c.OnSettle(func(err error) {})
	loop.Post(func() { c.Reject(errors.New("seen")) })
	loop.Run()

	if len(reported) != 0 {
		t.Errorf("observed rejection was reported: %v", reported)
	}
}

func TestCompletion_AwaitUnsettled(t *testing.T) {
	loop := NewLoop()
	c := NewCompletion(loop)
	if _, _, ok := c.Await(); ok {
		t.Error("Await reported settlement on an idle queue")
	}
}
