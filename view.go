package fractal

import (
	"fmt"
	"math"
)

// ViewState is the single source of truth for what the renderer shows:
// the complex-plane point under the viewport center, the width and height
// of the visible region, and the iteration budget.
//
// Extent.Y is always derived from Extent.X and the viewport aspect ratio
// (see FitAspect) so the image is never stretched.
type ViewState struct {
	Center     Point
	Extent     Point
	Iterations int32
}

// Valid reports whether both extents are positive and finite.
func (v ViewState) Valid() bool {
	return v.Extent.X > 0 && v.Extent.Y > 0 &&
		!math.IsInf(v.Extent.X, 0) && !math.IsInf(v.Extent.Y, 0)
}

// String implements fmt.Stringer.
func (v ViewState) String() string {
	return fmt.Sprintf("center=(%g, %g) extent=(%g, %g) iterations=%d",
		v.Center.X, v.Center.Y, v.Extent.X, v.Extent.Y, v.Iterations)
}

// NormalizedToComplex maps a viewport position normalized to [-0.5, 0.5]
// on both axes (0 is the viewport center, +Y is down) to the complex plane.
func (v ViewState) NormalizedToComplex(norm Point) Point {
	return Point{
		X: v.Center.X + norm.X*v.Extent.X,
		Y: v.Center.Y - norm.Y*v.Extent.Y,
	}
}

// ComplexToNormalized is the inverse of NormalizedToComplex.
func (v ViewState) ComplexToNormalized(c Point) Point {
	return Point{
		X: (c.X - v.Center.X) / v.Extent.X,
		Y: (v.Center.Y - c.Y) / v.Extent.Y,
	}
}

// PixelToComplex maps a continuous viewport position in pixels to the
// complex plane. Pass x+0.5, y+0.5 to address the center of pixel (x, y);
// this is the mapping the compute shader and the CPU renderer use.
func (v ViewState) PixelToComplex(px, py float64, width, height int) Point {
	return v.NormalizedToComplex(Normalize(px, py, width, height))
}

// ComplexToPixel is the inverse of PixelToComplex.
func (v ViewState) ComplexToPixel(c Point, width, height int) (px, py float64) {
	n := v.ComplexToNormalized(c)
	return (n.X + 0.5) * float64(width), (n.Y + 0.5) * float64(height)
}

// Normalize converts a pointer position in pixels into the [-0.5, 0.5]
// range relative to the viewport center.
func Normalize(px, py float64, width, height int) Point {
	return Point{
		X: px/float64(width) - 0.5,
		Y: py/float64(height) - 0.5,
	}
}

// FitAspect returns v with Extent.Y recomputed from Extent.X so that one
// complex-plane unit covers the same number of pixels on both axes.
// Non-positive dimensions leave v unchanged.
func (v ViewState) FitAspect(width, height int) ViewState {
	if width <= 0 || height <= 0 {
		return v
	}
	v.Extent.Y = v.Extent.X * float64(height) / float64(width)
	return v
}

// MaxExtent is the largest Extent.X a zoom-out may produce. The whole set
// fits in an extent of 4, and anything much larger only loses f32 precision
// in the kernel's uniforms.
const MaxExtent = 1e6

// PanZoom scales the extent by factor (<1 zooms in, >1 zooms out) while
// keeping the complex-plane point under the pointer fixed. norm is the
// pointer position normalized to [-0.5, 0.5] (see Normalize).
//
// If the zoom would shrink Extent.X below minExtent, or grow it past
// MaxExtent, PanZoom returns v unchanged together with
// ErrPrecisionLimitReached. The iteration budget is
// not touched; see Config.Zoom for the combined operation.
func (v ViewState) PanZoom(norm Point, factor, minExtent float64) (ViewState, error) {
	if factor <= 0 || math.IsNaN(factor) {
		return v, fmt.Errorf("%w: zoom factor %g", ErrInvalidConfig, factor)
	}
	if factor < 1 && v.Extent.X*factor < minExtent {
		return v, ErrPrecisionLimitReached
	}
	if factor > 1 && !(v.Extent.X*factor <= MaxExtent) {
		return v, ErrPrecisionLimitReached
	}

	anchor := v.NormalizedToComplex(norm)

	next := v
	next.Extent = v.Extent.Mul(factor)
	next.Center = Point{
		X: anchor.X - norm.X*next.Extent.X,
		Y: anchor.Y + norm.Y*next.Extent.Y,
	}
	return next, nil
}

// ViewFromZoom builds a view the way the one-shot exporter is
// parameterised: a center point and a magnification relative to a view
// that is 2 units tall.
func ViewFromZoom(center Point, zoom float64, width, height int) (ViewState, error) {
	if width <= 0 || height <= 0 {
		return ViewState{}, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if zoom <= 0 {
		return ViewState{}, fmt.Errorf("%w: zoom factor must be positive, got %g", ErrInvalidConfig, zoom)
	}
	h := 2 / zoom
	v := ViewState{
		Center: center,
		Extent: Point{X: h * float64(width) / float64(height), Y: h},
	}
	return v, nil
}
