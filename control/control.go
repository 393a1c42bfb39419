// Package control is the input state machine of the interactive viewer.
//
// Transition is a pure function from (state, event, context) to the next
// state and a list of effects. It performs the zoom math itself, so every
// input rule can be tested without a window or a GPU; the caller applies
// the effects (install a view, resize GPU resources, redraw, shut down).
package control

import (
	"errors"
	"fmt"

	"github.com/gogpu/fractal"
)

// State is a controller state.
type State int

const (
	// Idle waits for input. Frames are produced only when a redraw is pending.
	Idle State = iota

	// AwaitingResize holds while the caller rebuilds size-dependent
	// resources. A ResizeApplied event returns to Idle.
	AwaitingResize

	// ExitRequested is terminal: no more frames are scheduled.
	ExitRequested
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case AwaitingResize:
		return "AwaitingResize"
	case ExitRequested:
		return "ExitRequested"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EventKind identifies an input event.
type EventKind int

const (
	PointerMove EventKind = iota
	ButtonPress
	Resize
	ResizeApplied
	Close
)

// String returns the string representation of EventKind.
func (k EventKind) String() string {
	switch k {
	case PointerMove:
		return "PointerMove"
	case ButtonPress:
		return "ButtonPress"
	case Resize:
		return "Resize"
	case ResizeApplied:
		return "ResizeApplied"
	case Close:
		return "Close"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Button is a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
	ButtonOther
)

// Event is one window or input event.
type Event struct {
	Kind EventKind

	// Pointer position in pixels for PointerMove.
	X, Y float64

	// Button for ButtonPress.
	Button Button

	// New drawable size for Resize.
	Width, Height int

	// Err is the outcome of the resize for ResizeApplied.
	Err error
}

// PointerMoved returns a PointerMove event.
func PointerMoved(x, y float64) Event { return Event{Kind: PointerMove, X: x, Y: y} }

// Pressed returns a ButtonPress event.
func Pressed(b Button) Event { return Event{Kind: ButtonPress, Button: b} }

// Resized returns a Resize event.
func Resized(width, height int) Event { return Event{Kind: Resize, Width: width, Height: height} }

// Applied returns the ResizeApplied event reporting the outcome of a resize.
func Applied(err error) Event { return Event{Kind: ResizeApplied, Err: err} }

// CloseRequested returns a Close event.
func CloseRequested() Event { return Event{Kind: Close} }

// Context is the read-only input of a transition.
type Context struct {
	View   fractal.ViewState
	Config *fractal.Config

	// Pointer is the last known pointer position in pixels.
	Pointer fractal.Point

	// Width and Height are the current drawable size.
	Width, Height int
}

// EffectKind identifies an effect the caller must apply.
type EffectKind int

const (
	// EffectTrackPointer stores Effect.Pointer as the last known position.
	EffectTrackPointer EffectKind = iota

	// EffectSetView installs Effect.View.
	EffectSetView

	// EffectResize rebuilds size-dependent resources for Effect.Width x
	// Effect.Height and answers with an Applied event.
	EffectResize

	// EffectRedraw sets the pending-redraw flag.
	EffectRedraw

	// EffectReport surfaces a recoverable condition in Effect.Err.
	EffectReport

	// EffectRelease stops frame scheduling and releases GPU resources.
	EffectRelease
)

// String returns the string representation of EffectKind.
func (k EffectKind) String() string {
	switch k {
	case EffectTrackPointer:
		return "TrackPointer"
	case EffectSetView:
		return "SetView"
	case EffectResize:
		return "Resize"
	case EffectRedraw:
		return "Redraw"
	case EffectReport:
		return "Report"
	case EffectRelease:
		return "Release"
	default:
		return fmt.Sprintf("EffectKind(%d)", int(k))
	}
}

// Effect is one side effect requested by Transition.
type Effect struct {
	Kind EffectKind

	Pointer       fractal.Point
	View          fractal.ViewState
	Width, Height int
	Err           error
}

// Transition computes the next state and the effects of handling e in s.
func Transition(s State, e Event, ctx Context) (State, []Effect) {
	if s == ExitRequested {
		return s, nil
	}
	if e.Kind == Close {
		return ExitRequested, []Effect{{Kind: EffectRelease}}
	}

	switch s {
	case Idle:
		return idle(e, ctx)
	case AwaitingResize:
		return awaitingResize(e)
	}
	return s, nil
}

func idle(e Event, ctx Context) (State, []Effect) {
	switch e.Kind {
	case PointerMove:
		return Idle, []Effect{{Kind: EffectTrackPointer, Pointer: fractal.Pt(e.X, e.Y)}}

	case ButtonPress:
		return Idle, zoom(e.Button, ctx)

	case Resize:
		if e.Width <= 0 || e.Height <= 0 {
			return Idle, nil
		}
		return AwaitingResize, []Effect{{Kind: EffectResize, Width: e.Width, Height: e.Height}}
	}
	return Idle, nil
}

func awaitingResize(e Event) (State, []Effect) {
	switch e.Kind {
	case ResizeApplied:
		if e.Err != nil {
			return Idle, []Effect{{Kind: EffectReport, Err: e.Err}}
		}
		return Idle, []Effect{{Kind: EffectRedraw}}

	case Resize:
		// A newer size supersedes the one in progress.
		if e.Width > 0 && e.Height > 0 {
			return AwaitingResize, []Effect{{Kind: EffectResize, Width: e.Width, Height: e.Height}}
		}
	}
	return AwaitingResize, nil
}

// zoom maps a button to a zoom about the last pointer position.
func zoom(b Button, ctx Context) []Effect {
	if ctx.Config == nil || ctx.Width <= 0 || ctx.Height <= 0 {
		return nil
	}
	var factor float64
	switch b {
	case ButtonLeft:
		factor = ctx.Config.ZoomIn
	case ButtonRight:
		factor = ctx.Config.ZoomOut
	default:
		return nil
	}

	norm := fractal.Normalize(ctx.Pointer.X, ctx.Pointer.Y, ctx.Width, ctx.Height)
	next, err := ctx.Config.Zoom(ctx.View, norm, factor)
	if err != nil {
		if errors.Is(err, fractal.ErrPrecisionLimitReached) {
			return []Effect{{Kind: EffectReport, Err: err}}
		}
		return []Effect{{Kind: EffectReport, Err: fmt.Errorf("zoom: %w", err)}}
	}
	return []Effect{
		{Kind: EffectSetView, View: next},
		{Kind: EffectRedraw},
	}
}
