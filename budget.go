package fractal

import "math"

// IterationBudget returns the iteration budget for a view whose visible
// width is extentX. The budget grows along the sub-linear curve
//
//	Iterations * (Extent.X / extentX) ^ IterationExponent
//
// measured against the configured initial view, clamped to
// [MinIterations, MaxIterations]. Deeper zoom never lowers the budget.
func (c *Config) IterationBudget(extentX float64) int32 {
	if extentX <= 0 || math.IsNaN(extentX) {
		return c.MaxIterations
	}
	scaled := float64(c.Iterations) * math.Pow(c.Extent.X/extentX, c.IterationExponent)
	scaled = math.Max(float64(c.MinIterations), math.Min(scaled, float64(c.MaxIterations)))
	return int32(scaled)
}

// Zoom applies ViewState.PanZoom with the configured precision floor and
// then recomputes the iteration budget for the new extent.
func (c *Config) Zoom(v ViewState, norm Point, factor float64) (ViewState, error) {
	next, err := v.PanZoom(norm, factor, c.MinExtent)
	if err != nil {
		return v, err
	}
	next.Iterations = c.IterationBudget(next.Extent.X)
	return next, nil
}
