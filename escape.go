package fractal

import (
	"fmt"
	"image/color"
	"strings"
)

// EscapeRadiusSquared is the squared magnitude beyond which an orbit is
// considered to have escaped.
const EscapeRadiusSquared = 4.0

// Family selects which escape-time map is iterated.
type Family uint32

const (
	// FamilyMandelbrot iterates z -> z² + c with c taken from the pixel.
	FamilyMandelbrot Family = iota

	// FamilyJulia iterates z -> z² + c with z starting at the pixel and c
	// fixed by the configuration.
	FamilyJulia
)

// String implements fmt.Stringer.
func (f Family) String() string {
	switch f {
	case FamilyMandelbrot:
		return "mandelbrot"
	case FamilyJulia:
		return "julia"
	default:
		return fmt.Sprintf("Family(%d)", uint32(f))
	}
}

// ParseFamily parses a family name ("mandelbrot" or "julia", case-insensitive).
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mandelbrot", "m", "0":
		return FamilyMandelbrot, nil
	case "julia", "j", "1":
		return FamilyJulia, nil
	}
	return 0, fmt.Errorf("%w: unknown fractal family %q", ErrInvalidConfig, s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Family) UnmarshalText(text []byte) error {
	v, err := ParseFamily(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Escape iterates z -> z² + c starting from z and returns the escape depth:
// the number of iterations performed before |z|² exceeds 4, or max if the
// orbit stays bounded. A starting point already outside the radius has
// depth 0.
func Escape(z, c complex128, max int) int {
	zr, zi := real(z), imag(z)
	cr, ci := real(c), imag(c)
	for depth := 0; depth < max; depth++ {
		if zr*zr+zi*zi > EscapeRadiusSquared {
			return depth
		}
		zr, zi = zr*zr-zi*zi+cr, 2*zr*zi+ci
	}
	return max
}

// Kernel computes the escape depth of one complex-plane point.
type Kernel interface {
	Depth(p complex128, max int) int
}

// Mandelbrot is the Kernel for the Mandelbrot set. The orbit starts at
// z1 = c, the first iterate of z0 = 0, so points outside the escape radius
// report depth 0 and interior points reach max.
type Mandelbrot struct{}

// Depth implements Kernel.
func (Mandelbrot) Depth(p complex128, max int) int {
	return Escape(p, p, max)
}

// Julia is the Kernel for the filled Julia set of C.
type Julia struct {
	C complex128
}

// Depth implements Kernel.
func (j Julia) Depth(p complex128, max int) int {
	return Escape(p, j.C, max)
}

// KernelFor returns the kernel for a family. julia is ignored for
// FamilyMandelbrot.
func KernelFor(f Family, julia Point) Kernel {
	if f == FamilyJulia {
		return Julia{C: julia.Complex()}
	}
	return Mandelbrot{}
}

// InSetColor is the sentinel color of points that never escape.
var InSetColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Colorize maps an escape depth to a color. Points that reach max get
// InSetColor; escaped points are interpolated by depth/max along a
// black-to-teal gradient on the green and blue channels.
func Colorize(depth, max int) color.RGBA {
	if max <= 0 || depth >= max {
		return InSetColor
	}
	alpha := float64(depth) / float64(max)
	return color.RGBA{
		R: 0,
		G: uint8(alpha * 255),
		B: uint8(alpha * 153),
		A: 255,
	}
}
