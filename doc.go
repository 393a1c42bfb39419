// Package fractal renders escape-time fractals (Mandelbrot and Julia sets).
//
// # Overview
//
// The package holds everything that does not need a GPU: the view state
// (center and extent in the complex plane plus an iteration budget), the
// cursor-anchored zoom math, the iteration budget curve, the escape-time
// kernels, a parallel CPU renderer for one-shot exports, and configuration.
//
// The interactive real-time renderer lives in the viewer package, which
// drives a WebGPU compute stage and a present stage (internal/gpu) from a
// window event loop.
//
// # Quick Start
//
//	cfg := fractal.DefaultConfig()
//	view := cfg.InitialView(1440, 960)
//	img, err := fractal.Render(fractal.RenderParams{
//	    Width: 1440, Height: 960, View: view, Kernel: fractal.Mandelbrot{},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = fractal.Save("mandelbrot.png", img)
//
// # Coordinate System
//
// Viewport pixels have their origin at the top-left corner with Y growing
// down. The complex plane has the imaginary axis growing up, so a pixel
// below the viewport center maps to a smaller imaginary part.
package fractal
