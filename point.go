package fractal

// Point represents a 2D point or vector. It is used both for complex-plane
// coordinates (X real, Y imaginary) and for viewport-relative positions.
type Point struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns the point scaled by a scalar.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Complex returns p as a complex number.
func (p Point) Complex() complex128 {
	return complex(p.X, p.Y)
}
