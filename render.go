package fractal

import (
	"fmt"
	"image"

	"github.com/gogpu/fractal/internal/parallel"
)

// RenderParams describes one CPU render.
type RenderParams struct {
	Width, Height int

	// View selects the complex-plane region and the iteration budget. It is
	// used as given; call FitAspect first if the extents do not already
	// match the image aspect ratio.
	View ViewState

	// Kernel defaults to Mandelbrot.
	Kernel Kernel

	// Workers is the goroutine count; 0 means GOMAXPROCS.
	Workers int

	// TileSize is the edge of a work unit; 0 means parallel.DefaultTileSize.
	TileSize int
}

// Render evaluates the kernel for every pixel and returns the colored
// image. Pixel (x, y) samples the complex point under its center, the same
// mapping the GPU compute stage uses.
func Render(p RenderParams) (*image.RGBA, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("render: %w: %dx%d", ErrInvalidSize, p.Width, p.Height)
	}
	if !p.View.Valid() {
		return nil, fmt.Errorf("render: %w: %s", ErrInvalidConfig, p.View)
	}
	if p.View.Iterations <= 0 {
		return nil, fmt.Errorf("render: %w: iteration budget %d", ErrInvalidConfig, p.View.Iterations)
	}
	kernel := p.Kernel
	if kernel == nil {
		kernel = Mandelbrot{}
	}

	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	tiles := parallel.SplitTiles(p.Width, p.Height, p.TileSize)

	pool := parallel.NewWorkerPool(p.Workers)
	defer pool.Close()

	Logger().Debug("cpu render",
		"width", p.Width, "height", p.Height,
		"tiles", len(tiles), "workers", pool.Workers(), "view", p.View.String())

	maxIter := int(p.View.Iterations)
	pool.ForEachTile(tiles, func(t parallel.Tile) {
		for y := t.Y0; y < t.Y1(); y++ {
			for x := t.X0; x < t.X1(); x++ {
				c := p.View.PixelToComplex(float64(x)+0.5, float64(y)+0.5, p.Width, p.Height)
				depth := kernel.Depth(c.Complex(), maxIter)
				img.SetRGBA(x, y, Colorize(depth, maxIter))
			}
		}
	})
	return img, nil
}

// Export geometry of the one-shot renderers.
const (
	// ExportHeight is the default height of exported images.
	ExportHeight = 1440

	mandelbrotExportAspect = 3.0 / 2.0
	juliaExportAspect      = 4.0 / 3.0

	// juliaExportExtent is the height of the complex-plane window of a
	// Julia export.
	juliaExportExtent = 3.0
)

// MandelbrotExport returns render parameters for a 3:2 Mandelbrot image of
// the given height centered on center at the given magnification
// (1 shows a region 2 units tall).
func MandelbrotExport(iterations int32, center Point, zoom float64, height int) (RenderParams, error) {
	if height <= 0 {
		height = ExportHeight
	}
	width := int(float64(height) * mandelbrotExportAspect)
	view, err := ViewFromZoom(center, zoom, width, height)
	if err != nil {
		return RenderParams{}, err
	}
	view.Iterations = iterations
	return RenderParams{Width: width, Height: height, View: view, Kernel: Mandelbrot{}}, nil
}

// JuliaExport returns render parameters for a 4:3 image of the filled
// Julia set of c, framed on the origin.
func JuliaExport(iterations int32, c Point, height int) RenderParams {
	if height <= 0 {
		height = ExportHeight
	}
	width := int(float64(height) * juliaExportAspect)
	view := ViewState{
		Extent:     Point{X: juliaExportExtent * float64(width) / float64(height), Y: juliaExportExtent},
		Iterations: iterations,
	}
	return RenderParams{Width: width, Height: height, View: view, Kernel: Julia{C: c.Complex()}}
}
