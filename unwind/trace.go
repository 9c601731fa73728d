package unwind

import (
	"fmt"
	"strings"

	"github.com/veylang/defer-runtime/frame"
)

// EventKind discriminates trace entries.
type EventKind uint8

const (
	// EventAction records one executed deferred action.
	EventAction EventKind = iota
	// EventOverride records a reason replaced by a drain failure.
	EventOverride
)

// Event is one recorded step of a drain.
type Event struct {
	Err    error
	Frame  string
	Pos    string
	Mode   string
	Before string
	After  string
	Kind   EventKind
}

// String renders the event in one line.
func (e Event) String() string {
	switch e.Kind {
	case EventOverride:
		return fmt.Sprintf("%-14s %s -> %s", e.Frame, e.Before, e.After)
	default:
		status := "ok"
		if e.Err != nil {
			status = "failed: " + e.Err.Error()
		}
		pos := e.Pos
		if pos == "" {
			pos = "?"
		}
		return fmt.Sprintf("%-14s defer %s at %s: %s", e.Frame, e.Mode, pos, status)
	}
}

// Trace accumulates drain events for diagnostics and the interactive CLI.
// Attach one with Dispatcher.SetTrace.
type Trace struct {
	Events []Event
}

// String renders all events, one per line.
func (t *Trace) String() string {
	var b strings.Builder
	for i, e := range t.Events {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.String())
	}
	return b.String()
}

func (d *Dispatcher) emitAction(h frame.Handle, a frame.Action, err error) {
	if d.trace == nil {
		return
	}
	d.trace.Events = append(d.trace.Events, Event{
		Kind:  EventAction,
		Frame: d.reg.Kind(h).String(),
		Pos:   a.Pos,
		Mode:  a.Mode.String(),
		Err:   err,
	})
}

func (d *Dispatcher) emitOverride(h frame.Handle, before, after Reason) {
	if d.trace == nil {
		return
	}
	d.trace.Events = append(d.trace.Events, Event{
		Kind:   EventOverride,
		Frame:  d.reg.Kind(h).String(),
		Before: before.String(),
		After:  after.String(),
	})
}
