package frame

import (
	"github.com/veylang/defer-runtime/errors"
)

// Handle names a live frame in a Registry. A handle is valid from
// EnterFrame until the matching ExitFrame and must not be retained past it.
type Handle int

// NoFrame is the handle of the frame enclosing the outermost scope.
const NoFrame Handle = -1

type frameRec struct {
	pos      string
	mark     int // action arena length at entry
	taken    int // actions taken by drain, for diagnostics
	kind     Kind
	asyncCtx bool
	dead     bool
}

// Registry tracks the frame stack of one execution context and the shared
// action arena behind it. A Registry is not safe for concurrent use; each
// execution context (main script, generator activation) owns its own.
type Registry struct {
	frames []frameRec
	arena  []Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// EnterFrame pushes a frame of the given kind and returns its handle.
// asyncCtx marks whether await-bearing deferred actions are permitted in
// this scope.
func (r *Registry) EnterFrame(kind Kind, asyncCtx bool) Handle {
	return r.EnterFrameAt(kind, asyncCtx, "")
}

// EnterFrameAt is EnterFrame with a source position for diagnostics.
func (r *Registry) EnterFrameAt(kind Kind, asyncCtx bool, pos string) Handle {
	h := Handle(len(r.frames))
	r.frames = append(r.frames, frameRec{
		kind:     kind,
		asyncCtx: asyncCtx,
		pos:      pos,
		mark:     len(r.arena),
	})
	debugf("enter frame %d kind=%s async=%v mark=%d", h, kind, asyncCtx, len(r.arena))
	return h
}

// RegisterAction appends a deferred action to the frame's store after
// validating the front end's syntactic facts. All rejections here are
// static semantics errors; a registered action can no longer fail to be
// scheduled.
func (r *Registry) RegisterAction(h Handle, a Action, st Static) error {
	rec, err := r.rec(h)
	if err != nil {
		return err
	}
	if int(h) != len(r.frames)-1 {
		return errors.BadHandle("registration outside the innermost frame")
	}
	if rec.dead {
		return errors.FrameDead(rec.kind.String())
	}

	switch {
	case st.HasReturn:
		return errors.EscapingTransfer(a.Pos, "return")
	case st.HasBreak:
		return errors.EscapingTransfer(a.Pos, "break")
	case st.HasContinue:
		return errors.EscapingTransfer(a.Pos, "continue")
	case st.HasYield:
		return errors.YieldInDeferred(a.Pos)
	case st.UnbracedLoopBody:
		return errors.UnbracedBody(a.Pos)
	}

	if a.Mode == ModeAsync && !rec.asyncCtx {
		return errors.AsyncOutsideAsync(a.Pos, rec.kind.String())
	}
	if a.Mode == ModeAsync && a.Async == nil {
		return errors.New(errors.PhaseRegister, errors.KindModeMismatch).
			Pos(a.Pos).Detail("async action without an async body").Build()
	}
	if a.Mode == ModeSync && a.Body == nil {
		return errors.New(errors.PhaseRegister, errors.KindModeMismatch).
			Pos(a.Pos).Detail("sync action without a body").Build()
	}

	r.arena = append(r.arena, a)
	debugf("register action frame=%d mode=%s kind=%s pos=%s", h, a.Mode, a.Kind, a.Pos)
	return nil
}

// Take removes and returns the frame's actions in registration order,
// marking the frame dead. It succeeds exactly once per frame; a second call
// reports frame_dead. The caller executes the returned slice back to front.
func (r *Registry) Take(h Handle) ([]Action, error) {
	rec, err := r.rec(h)
	if err != nil {
		return nil, err
	}
	if rec.dead {
		return nil, errors.FrameDead(rec.kind.String())
	}
	if int(h) != len(r.frames)-1 {
		return nil, errors.BadHandle("drain of a non-innermost frame")
	}

	rec.dead = true
	rec.taken = len(r.arena) - rec.mark

	if rec.taken == 0 {
		return nil, nil
	}

	// Copy out before truncating: bodies executed during the drain may
	// enter new frames and grow the arena over the reclaimed region.
	acts := make([]Action, rec.taken)
	copy(acts, r.arena[rec.mark:])
	r.arena = r.arena[:rec.mark]
	debugf("take frame=%d actions=%d", h, len(acts))
	return acts, nil
}

// ExitFrame pops the frame. The frame must be the innermost one and must
// already have been drained.
func (r *Registry) ExitFrame(h Handle) error {
	rec, err := r.rec(h)
	if err != nil {
		return err
	}
	if int(h) != len(r.frames)-1 {
		return errors.BadHandle("exit of a non-innermost frame")
	}
	if !rec.dead {
		return errors.New(errors.PhaseDrain, errors.KindFrameLive).
			Frame(rec.kind.String()).
			Detail("frame exited without a drain").Build()
	}
	r.frames = r.frames[:len(r.frames)-1]
	debugf("exit frame %d", h)
	return nil
}

// Kind returns the frame's kind.
func (r *Registry) Kind(h Handle) Kind {
	if rec, err := r.rec(h); err == nil {
		return rec.kind
	}
	return KindBlock
}

// AsyncContext reports whether await-bearing deferred actions are permitted
// in the frame.
func (r *Registry) AsyncContext(h Handle) bool {
	if rec, err := r.rec(h); err == nil {
		return rec.asyncCtx
	}
	return false
}

// Dead reports whether the frame has already been drained.
func (r *Registry) Dead(h Handle) bool {
	if rec, err := r.rec(h); err == nil {
		return rec.dead
	}
	return false
}

// Pending returns the number of actions currently registered in the frame.
func (r *Registry) Pending(h Handle) int {
	rec, err := r.rec(h)
	if err != nil || rec.dead {
		return 0
	}
	top := len(r.arena)
	if int(h) < len(r.frames)-1 {
		top = r.frames[h+1].mark
	}
	return top - rec.mark
}

// Parent returns the handle of the structurally enclosing frame, or
// NoFrame. The link is for diagnostics and nesting queries only; actions
// never migrate along it.
func (r *Registry) Parent(h Handle) Handle {
	if h <= 0 || int(h) >= len(r.frames) {
		return NoFrame
	}
	return h - 1
}

// Depth returns the number of live frames.
func (r *Registry) Depth() int {
	return len(r.frames)
}

func (r *Registry) rec(h Handle) (*frameRec, error) {
	if h < 0 || int(h) >= len(r.frames) {
		return nil, errors.BadHandle("handle does not name a live frame")
	}
	return &r.frames[h], nil
}
