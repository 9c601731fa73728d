package frame

import (
	"errors"
	"testing"

	deferruntime "github.com/veylang/defer-runtime"
	rterrors "github.com/veylang/defer-runtime/errors"
)

func noop() error { return nil }

func syncAction(pos string) Action {
	return Action{Body: noop, Pos: pos}
}

func asyncNoop() deferruntime.Awaitable { return deferruntime.Settled{} }

func TestRegistry_RegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	h := reg.EnterFrame(KindFunction, false)

	for _, pos := range []string{"a", "b", "c"} {
		if err := reg.RegisterAction(h, syncAction(pos), Static{}); err != nil {
			t.Fatalf("register %s: %v", pos, err)
		}
	}

	acts, err := reg.Take(h)
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if len(acts) != 3 {
		t.Fatalf("got %d actions, want 3", len(acts))
	}
	for i, want := range []string{"a", "b", "c"} {
		if acts[i].Pos != want {
			t.Errorf("acts[%d].Pos = %q, want %q", i, acts[i].Pos, want)
		}
	}
}

func TestRegistry_TakeExactlyOnce(t *testing.T) {
	reg := NewRegistry()
	h := reg.EnterFrame(KindBlock, false)
	if err := reg.RegisterAction(h, syncAction("x"), Static{}); err != nil {
		t.Fatal(err)
	}

	if _, err := reg.Take(h); err != nil {
		t.Fatalf("first take: %v", err)
	}
	_, err := reg.Take(h)
	if !errors.Is(err, &rterrors.Error{Phase: rterrors.PhaseDrain, Kind: rterrors.KindFrameDead}) {
		t.Errorf("second take = %v, want frame_dead", err)
	}
}

func TestRegistry_FrameIsolation(t *testing.T) {
	reg := NewRegistry()
	outer := reg.EnterFrame(KindFunction, false)
	if err := reg.RegisterAction(outer, syncAction("outer"), Static{}); err != nil {
		t.Fatal(err)
	}

	inner := reg.EnterFrame(KindBlock, false)
	if err := reg.RegisterAction(inner, syncAction("inner"), Static{}); err != nil {
		t.Fatal(err)
	}

	acts, err := reg.Take(inner)
	if err != nil {
		t.Fatal(err)
	}
	if len(acts) != 1 || acts[0].Pos != "inner" {
		t.Fatalf("inner drain saw %v, want only the inner action", acts)
	}
	if err := reg.ExitFrame(inner); err != nil {
		t.Fatal(err)
	}

	acts, err = reg.Take(outer)
	if err != nil {
		t.Fatal(err)
	}
	if len(acts) != 1 || acts[0].Pos != "outer" {
		t.Fatalf("outer drain saw %v, want only the outer action", acts)
	}
}

func TestRegistry_IterationFramesAreFresh(t *testing.T) {
	reg := NewRegistry()
	fn := reg.EnterFrame(KindFunction, false)

	for i := 0; i < 3; i++ {
		it := reg.EnterFrame(KindLoopIteration, false)
		if err := reg.RegisterAction(it, syncAction("iter"), Static{}); err != nil {
			t.Fatal(err)
		}
		acts, err := reg.Take(it)
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		if len(acts) != 1 {
			t.Fatalf("iteration %d saw %d actions, want 1", i, len(acts))
		}
		if err := reg.ExitFrame(it); err != nil {
			t.Fatal(err)
		}
	}

	acts, err := reg.Take(fn)
	if err != nil {
		t.Fatal(err)
	}
	if len(acts) != 0 {
		t.Errorf("function frame saw %d leaked iteration actions", len(acts))
	}
}

func TestRegistry_StaticRejections(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		static Static
		async  bool
		kind   rterrors.Kind
	}{
		{"return in body", syncAction("p"), Static{HasReturn: true}, false, rterrors.KindEscapingTransfer},
		{"break in body", syncAction("p"), Static{HasBreak: true}, false, rterrors.KindEscapingTransfer},
		{"continue in body", syncAction("p"), Static{HasContinue: true}, false, rterrors.KindEscapingTransfer},
		{"yield in body", syncAction("p"), Static{HasYield: true}, false, rterrors.KindYieldInDeferred},
		{"unbraced loop body", syncAction("p"), Static{UnbracedLoopBody: true}, false, rterrors.KindUnbracedBody},
		{"async outside async", Action{Mode: ModeAsync, Async: asyncNoop}, Static{}, false, rterrors.KindAsyncOutsideAsync},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			h := reg.EnterFrame(KindFunction, tt.async)
			err := reg.RegisterAction(h, tt.action, tt.static)
			if err == nil {
				t.Fatal("expected rejection")
			}
			var e *rterrors.Error
			if !errors.As(err, &e) || e.Kind != tt.kind {
				t.Errorf("got %v, want kind %s", err, tt.kind)
			}
			if !rterrors.IsStatic(err) {
				t.Errorf("rejection %v should be static", err)
			}
			if got := reg.Pending(h); got != 0 {
				t.Errorf("rejected action still pending: %d", got)
			}
		})
	}
}

func TestRegistry_AsyncAllowedInAsyncContext(t *testing.T) {
	reg := NewRegistry()
	h := reg.EnterFrame(KindFunction, true)
	err := reg.RegisterAction(h, Action{Mode: ModeAsync, Async: asyncNoop}, Static{})
	if err != nil {
		t.Fatalf("async action in async context rejected: %v", err)
	}
}

func TestRegistry_RegisterOutsideInnermost(t *testing.T) {
	reg := NewRegistry()
	outer := reg.EnterFrame(KindFunction, false)
	reg.EnterFrame(KindBlock, false)

	err := reg.RegisterAction(outer, syncAction("p"), Static{})
	var e *rterrors.Error
	if !errors.As(err, &e) || e.Kind != rterrors.KindBadHandle {
		t.Errorf("got %v, want bad_handle", err)
	}
}

func TestRegistry_ExitWithoutDrain(t *testing.T) {
	reg := NewRegistry()
	h := reg.EnterFrame(KindBlock, false)
	err := reg.ExitFrame(h)
	var e *rterrors.Error
	if !errors.As(err, &e) || e.Kind != rterrors.KindFrameLive {
		t.Errorf("got %v, want frame_live", err)
	}
}

func TestRegistry_Pending(t *testing.T) {
	reg := NewRegistry()
	h := reg.EnterFrame(KindModule, false)
	if got := reg.Pending(h); got != 0 {
		t.Errorf("fresh frame pending = %d", got)
	}
	for i := 0; i < 4; i++ {
		if err := reg.RegisterAction(h, syncAction("p"), Static{}); err != nil {
			t.Fatal(err)
		}
	}
	if got := reg.Pending(h); got != 4 {
		t.Errorf("pending = %d, want 4", got)
	}
	if _, err := reg.Take(h); err != nil {
		t.Fatal(err)
	}
	if got := reg.Pending(h); got != 0 {
		t.Errorf("drained frame pending = %d", got)
	}
}

func TestRegistry_ParentChain(t *testing.T) {
	reg := NewRegistry()
	mod := reg.EnterFrame(KindModule, false)
	fn := reg.EnterFrame(KindFunction, false)
	blk := reg.EnterFrame(KindBlock, false)

	if got := reg.Parent(blk); got != fn {
		t.Errorf("parent of block = %d, want %d", got, fn)
	}
	if got := reg.Parent(fn); got != mod {
		t.Errorf("parent of function = %d, want %d", got, mod)
	}
	if got := reg.Parent(mod); got != NoFrame {
		t.Errorf("parent of module = %d, want NoFrame", got)
	}
}
