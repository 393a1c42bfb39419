// Command fractal opens an interactive Mandelbrot (or Julia) viewer.
//
// Left click zooms in about the pointer, right click zooms out. The image
// is recomputed on the GPU only when the view or the window size changes.
//
//	fractal -config fractal.toml
//	fractal -family julia
//	fractal -preset seahorse-valley -v
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/control"
	"github.com/gogpu/fractal/internal/gpu"
	"github.com/gogpu/fractal/viewer"
	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu"
	"github.com/gogpu/wgpu/hal"
)

var _ viewer.FrameRenderer = (*gpu.Renderer)(nil)

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		family     = flag.String("family", "", "fractal family: mandelbrot or julia (overrides config)")
		preset     = flag.String("preset", "", "start at a landmark ("+strings.Join(fractal.PresetNames(), ", ")+")")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	fractal.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := loadConfig(*configPath, *family, *preset)
	if err != nil {
		log.Fatalf("fractal: %v", err)
	}
	if err := runApp(cfg); err != nil {
		log.Fatalf("fractal: %v", err)
	}
}

// loadConfig reads the config file, if any, and applies the flag overrides.
func loadConfig(path, family, preset string) (fractal.Config, error) {
	cfg := fractal.DefaultConfig()
	if path != "" {
		loaded, err := fractal.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	var opts []fractal.Option
	if family != "" {
		f, err := fractal.ParseFamily(family)
		if err != nil {
			return cfg, err
		}
		opts = append(opts, fractal.WithFamily(f))
		if f == fractal.FamilyJulia && path == "" {
			opts = append(opts, fractal.WithCenter(0, 0), fractal.WithExtent(4, 3), fractal.WithTitle("Julia"))
		}
	}
	if preset != "" {
		if _, ok := fractal.Preset(preset); !ok {
			return cfg, fmt.Errorf("%w: unknown preset %q", fractal.ErrInvalidConfig, preset)
		}
		opts = append(opts, fractal.WithPreset(preset))
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg, cfg.Validate()
}

func runApp(cfg fractal.Config) error {
	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle(cfg.Title).
		WithSize(cfg.Width, cfg.Height).
		WithContinuousRender(false))

	var (
		dev       *gpu.Device
		session   *viewer.Session
		animToken *gogpu.AnimationToken
		fatal     error
	)

	// Frames are event driven: an animation token keeps OnDraw firing
	// until the pending redraw has been produced.
	schedule := func() {
		if session == nil || session.Closed() {
			return
		}
		if session.NeedsRedraw() && animToken == nil {
			animToken = app.StartAnimation()
		}
		if !session.NeedsRedraw() && animToken != nil {
			animToken.Stop()
			animToken = nil
		}
	}

	// fail records a fatal error and tears the viewer down: the app
	// stops rendering and Run returns fatal.
	fail := func(err error) {
		fatal = err
		var stop, closeSession, closeDev func()
		if animToken != nil {
			stop = animToken.Stop
		}
		if session != nil {
			closeSession = session.Close
		}
		if dev != nil {
			closeDev = dev.Close
		}
		animToken, dev = nil, nil
		shutdown(app.Quit, stop, closeSession, closeDev)
	}

	handle := func(e control.Event) {
		if session == nil {
			return
		}
		_ = session.Handle(e)
		schedule()
	}

	app.OnDraw(func(dc *gogpu.Context) {
		if fatal != nil {
			return
		}
		w, h := dc.Width(), dc.Height()
		if w <= 0 || h <= 0 {
			return
		}

		if session == nil {
			provider := app.GPUContextProvider()
			if provider == nil {
				return
			}
			var err error
			if dev, err = gpu.FromProvider(provider); err != nil {
				dev = nil
				fractal.Logger().Error("gpu device unavailable", "err", err)
				fail(err)
				return
			}
			renderer, err := gpu.NewRenderer(dev, gpu.ConfigFrom(cfg))
			if err != nil {
				fractal.Logger().Error("renderer setup failed", "err", err)
				fail(err)
				return
			}
			sessionCfg := cfg
			sessionCfg.Width, sessionCfg.Height = w, h
			if session, err = viewer.NewSession(sessionCfg, renderer); err != nil {
				renderer.Close()
				session = nil
				fractal.Logger().Error("session setup failed", "err", err)
				fail(err)
				return
			}
			fractal.Logger().Info("gpu ready", "adapter", dev.Name(), "backend", dc.Backend())
		}

		if sw, sh := session.Size(); sw != w || sh != h {
			_ = session.Handle(control.Resized(w, h))
		}

		if err := session.Frame(halSurface(dc.SurfaceView())); err != nil && fractal.IsFatal(err) {
			fractal.Logger().Error("frame failed", "err", err)
			fail(err)
			return
		}
		schedule()
	})

	events := app.EventSource()
	events.OnMouseMove(func(x, y float64) {
		handle(control.PointerMoved(x, y))
	})
	events.OnMousePress(func(button gpucontext.MouseButton, x, y float64) {
		handle(control.PointerMoved(x, y))
		handle(control.Pressed(mouseButton(button)))
	})

	app.OnClose(func() {
		if animToken != nil {
			animToken.Stop()
			animToken = nil
		}
		if session != nil {
			_ = session.Handle(control.CloseRequested())
		}
		if dev != nil {
			dev.Close()
		}
	})

	if err := app.Run(); err != nil {
		return err
	}
	return fatal
}

// halSurface unwraps the window's current surface view for the hal
// renderer. It is nil when no surface is acquired.
func halSurface(sv *wgpu.TextureView) hal.TextureView {
	if sv == nil {
		return nil
	}
	return sv.HalTextureView()
}

// shutdown runs each non-nil release step in order, then quits.
func shutdown(quit func(), release ...func()) {
	for _, f := range release {
		if f != nil {
			f()
		}
	}
	quit()
}

func mouseButton(b gpucontext.MouseButton) control.Button {
	switch b {
	case gpucontext.MouseButtonLeft:
		return control.ButtonLeft
	case gpucontext.MouseButtonRight:
		return control.ButtonRight
	case gpucontext.MouseButtonMiddle:
		return control.ButtonMiddle
	default:
		return control.ButtonOther
	}
}
