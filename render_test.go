package fractal

import (
	"errors"
	"testing"
)

func TestRenderInteriorIsWhite(t *testing.T) {
	// Every pixel lies within |c| < 1/4, inside the main cardioid.
	img, err := Render(RenderParams{
		Width:  16,
		Height: 12,
		View:   ViewState{Center: Pt(0, 0), Extent: Pt(0.2, 0.15), Iterations: 200},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if got := img.RGBAAt(x, y); got != InSetColor {
				t.Fatalf("pixel (%d, %d) = %v, want in-set white", x, y, got)
			}
		}
	}
}

func TestRenderExteriorIsBlack(t *testing.T) {
	img, err := Render(RenderParams{
		Width:  8,
		Height: 8,
		View:   ViewState{Center: Pt(10, 10), Extent: Pt(1, 1), Iterations: 50},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := img.RGBAAt(3, 5); got != Colorize(0, 50) {
		t.Errorf("pixel = %v, want %v", got, Colorize(0, 50))
	}
}

func TestRenderMatchesKernel(t *testing.T) {
	tests := []struct {
		name   string
		kernel Kernel
		view   ViewState
	}{
		{"mandelbrot", Mandelbrot{}, ViewState{Center: Pt(-0.75, 0), Extent: Pt(3.5, 2.2), Iterations: 64}},
		{"julia", Julia{C: complex(-0.8, 0.156)}, ViewState{Center: Pt(0, 0), Extent: Pt(3.2, 2.0), Iterations: 80}},
	}
	const w, h = 37, 23
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Render(RenderParams{
				Width: w, Height: h, View: tt.view, Kernel: tt.kernel,
				Workers: 3, TileSize: 8,
			})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			max := int(tt.view.Iterations)
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					c := tt.view.PixelToComplex(float64(x)+0.5, float64(y)+0.5, w, h)
					want := Colorize(tt.kernel.Depth(c.Complex(), max), max)
					if got := img.RGBAAt(x, y); got != want {
						t.Fatalf("pixel (%d, %d) = %v, want %v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestRenderInvalidParams(t *testing.T) {
	good := ViewState{Center: Pt(0, 0), Extent: Pt(1, 1), Iterations: 10}
	tests := []struct {
		name string
		p    RenderParams
		want error
	}{
		{"zero width", RenderParams{Width: 0, Height: 4, View: good}, ErrInvalidSize},
		{"negative height", RenderParams{Width: 4, Height: -1, View: good}, ErrInvalidSize},
		{"zero extent", RenderParams{Width: 4, Height: 4, View: ViewState{Extent: Pt(0, 1), Iterations: 10}}, ErrInvalidConfig},
		{"zero iterations", RenderParams{Width: 4, Height: 4, View: ViewState{Extent: Pt(1, 1)}}, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Render(tt.p); !errors.Is(err, tt.want) {
				t.Errorf("Render() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMandelbrotExport(t *testing.T) {
	p, err := MandelbrotExport(300, Pt(-0.5, 0), 2, 200)
	if err != nil {
		t.Fatalf("MandelbrotExport() error = %v", err)
	}
	if p.Width != 300 || p.Height != 200 {
		t.Errorf("size = %dx%d, want 300x200", p.Width, p.Height)
	}
	if p.View.Center != Pt(-0.5, 0) || p.View.Iterations != 300 {
		t.Errorf("view = %v", p.View)
	}
	if !near(p.View.Extent.Y, 1, eps) || !near(p.View.Extent.X, 1.5, eps) {
		t.Errorf("extent = %v, want (1.5, 1)", p.View.Extent)
	}

	def, err := MandelbrotExport(100, Pt(0, 0), 1, 0)
	if err != nil {
		t.Fatalf("MandelbrotExport(default height) error = %v", err)
	}
	if def.Height != ExportHeight || def.Width != ExportHeight*3/2 {
		t.Errorf("default size = %dx%d", def.Width, def.Height)
	}

	if _, err := MandelbrotExport(100, Pt(0, 0), -1, 10); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("negative zoom error = %v", err)
	}
}

func TestJuliaExport(t *testing.T) {
	p := JuliaExport(200, Pt(-0.8, 0.156), 300)
	if p.Width != 400 || p.Height != 300 {
		t.Errorf("size = %dx%d, want 400x300", p.Width, p.Height)
	}
	if p.View.Center != Pt(0, 0) || p.View.Extent != Pt(4, 3) {
		t.Errorf("view = %v", p.View)
	}
	j, ok := p.Kernel.(Julia)
	if !ok || j.C != complex(-0.8, 0.156) {
		t.Errorf("kernel = %#v", p.Kernel)
	}
	img, err := Render(p)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 300 {
		t.Errorf("bounds = %v", img.Bounds())
	}
}
