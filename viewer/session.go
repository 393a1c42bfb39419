// Package viewer runs the interactive session: it owns the current view,
// feeds window events through the control state machine and drives a
// frame renderer.
package viewer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/control"
	"github.com/gogpu/wgpu/hal"
)

// ErrClosed is returned by Frame after the session has shut down.
var ErrClosed = errors.New("viewer: session closed")

// FrameRenderer is the GPU side of a session. *gpu.Renderer implements it.
type FrameRenderer interface {
	// Resize rebuilds size-dependent resources and returns view with its
	// extent fitted to the new aspect ratio.
	Resize(width, height int, view fractal.ViewState) (fractal.ViewState, error)

	// RenderFrame presents one frame into surface, recomputing the fractal
	// first when recompute is set.
	RenderFrame(view fractal.ViewState, surface hal.TextureView, recompute bool) error

	Close()
}

// Session is the single-threaded owner of the view state. All methods must
// be called from the window's event thread.
type Session struct {
	cfg      fractal.Config
	renderer FrameRenderer

	state   control.State
	view    fractal.ViewState
	pointer fractal.Point
	width   int
	height  int

	// pending is set whenever the view or the viewport changed and the
	// offscreen image must be recomputed.
	pending bool
	closed  bool
}

// NewSession validates cfg, allocates resources for the configured window
// size and schedules the first frame.
func NewSession(cfg fractal.Config, r FrameRenderer) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errors.New("viewer: nil renderer")
	}

	s := &Session{
		cfg:      cfg,
		renderer: r,
		state:    control.Idle,
		width:    cfg.Width,
		height:   cfg.Height,
		pointer:  fractal.Pt(float64(cfg.Width)/2, float64(cfg.Height)/2),
		pending:  true,
	}
	view, err := r.Resize(cfg.Width, cfg.Height, cfg.InitialView(cfg.Width, cfg.Height))
	if err != nil {
		return nil, fmt.Errorf("viewer: initial resources: %w", err)
	}
	s.view = view

	logger().Info("session started",
		"size", fmt.Sprintf("%dx%d", s.width, s.height),
		"family", cfg.Family.String(),
		"view", s.view.String())
	return s, nil
}

// View returns the current view.
func (s *Session) View() fractal.ViewState { return s.view }

// State returns the controller state.
func (s *Session) State() control.State { return s.state }

// Size returns the current viewport size in pixels.
func (s *Session) Size() (width, height int) { return s.width, s.height }

// NeedsRedraw reports whether the next frame will recompute the image.
func (s *Session) NeedsRedraw() bool { return s.pending }

// Closed reports whether the session has shut down.
func (s *Session) Closed() bool { return s.closed }

// Handle feeds one event through the controller and applies the resulting
// effects. The returned error is the last recoverable condition reported
// while handling the event, such as ErrPrecisionLimitReached; it never ends
// the session.
func (s *Session) Handle(e control.Event) error {
	queue := []control.Event{e}
	var reported error

	for len(queue) > 0 {
		ev := queue[0]
		queue = queue[1:]

		next, effects := control.Transition(s.state, ev, s.context())
		if next != s.state {
			logger().Debug("controller transition", "from", s.state.String(), "to", next.String(), "event", ev.Kind.String())
		}
		s.state = next

		for _, eff := range effects {
			switch eff.Kind {
			case control.EffectTrackPointer:
				s.pointer = eff.Pointer

			case control.EffectSetView:
				logger().Info("zoom", "view", eff.View.String())
				s.view = eff.View

			case control.EffectResize:
				queue = append(queue, control.Applied(s.resize(eff.Width, eff.Height)))

			case control.EffectRedraw:
				s.pending = true

			case control.EffectReport:
				reported = eff.Err
				s.report(eff.Err)

			case control.EffectRelease:
				s.Close()
			}
		}
	}
	return reported
}

// Frame renders into surface. A nil surface means the window had no
// presentable image: ErrSurfaceAcquireFailed is returned and the pending
// redraw is kept for the next frame. ErrDeviceLost closes the session.
func (s *Session) Frame(surface hal.TextureView) error {
	if s.closed {
		return ErrClosed
	}
	if surface == nil {
		logger().Debug("surface not available, frame skipped")
		return fractal.ErrSurfaceAcquireFailed
	}

	recompute := s.pending
	if err := s.renderer.RenderFrame(s.view, surface, recompute); err != nil {
		if fractal.IsFatal(err) {
			logger().Error("frame failed, closing session", "err", err)
			s.Close()
			return err
		}
		logger().Warn("frame failed, will retry", "err", err)
		return err
	}
	if recompute {
		s.pending = false
	}
	return nil
}

// Close releases the renderer. It is safe to call more than once.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.state = control.ExitRequested
	s.pending = false
	s.renderer.Close()
	logger().Info("session closed")
}

func (s *Session) context() control.Context {
	return control.Context{
		View:    s.view,
		Config:  &s.cfg,
		Pointer: s.pointer,
		Width:   s.width,
		Height:  s.height,
	}
}

// resize rebuilds resources and installs the fitted view. On failure the
// previous size and view stay in effect.
func (s *Session) resize(width, height int) error {
	view, err := s.renderer.Resize(width, height, s.view)
	if err != nil {
		if fractal.IsFatal(err) {
			s.Close()
		}
		return err
	}
	logger().Debug("resized", "size", fmt.Sprintf("%dx%d", width, height), "view", view.String())
	s.width, s.height = width, height
	s.view = view
	return nil
}

func (s *Session) report(err error) {
	switch {
	case errors.Is(err, fractal.ErrPrecisionLimitReached):
		logger().Warn("zoom rejected", "err", err, "min_extent", s.cfg.MinExtent, "max_extent", fractal.MaxExtent)
	default:
		logger().Error("recoverable error", "err", err)
	}
}

func logger() *slog.Logger {
	return fractal.Logger().With("component", "viewer")
}
