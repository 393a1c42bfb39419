package fractal

// Option configures a Config created by NewConfig.
//
// Example:
//
//	cfg := fractal.NewConfig(
//	    fractal.WithFamily(fractal.FamilyJulia),
//	    fractal.WithCenter(0, 0),
//	    fractal.WithExtent(3, 3),
//	)
type Option func(*Config)

// NewConfig returns DefaultConfig with the options applied in order.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithSize sets the window size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithTitle sets the window title.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}

// WithFamily selects the fractal family.
func WithFamily(f Family) Option {
	return func(c *Config) {
		c.Family = f
	}
}

// WithJuliaConstant sets c for the Julia map.
func WithJuliaConstant(re, im float64) Option {
	return func(c *Config) {
		c.Julia = Point{X: re, Y: im}
	}
}

// WithCenter sets the initial view center.
func WithCenter(re, im float64) Option {
	return func(c *Config) {
		c.Center = Point{X: re, Y: im}
	}
}

// WithExtent sets the initial visible width and height.
func WithExtent(w, h float64) Option {
	return func(c *Config) {
		c.Extent = Point{X: w, Y: h}
	}
}

// WithIterations sets the initial iteration budget, which is also the base
// of the budget curve.
func WithIterations(n int32) Option {
	return func(c *Config) {
		c.Iterations = n
	}
}

// WithIterationClamp bounds the adaptive iteration budget.
func WithIterationClamp(minIter, maxIter int32) Option {
	return func(c *Config) {
		c.MinIterations = minIter
		c.MaxIterations = maxIter
	}
}

// WithZoomFactors sets the zoom-in and zoom-out factors.
func WithZoomFactors(in, out float64) Option {
	return func(c *Config) {
		c.ZoomIn = in
		c.ZoomOut = out
	}
}

// WithMinExtent sets the precision floor for zooming in.
func WithMinExtent(e float64) Option {
	return func(c *Config) {
		c.MinExtent = e
	}
}

// WithTileSize sets the compute workgroup edge in pixels.
func WithTileSize(n uint32) Option {
	return func(c *Config) {
		c.TileSize = n
	}
}

// WithPreset centers the view on a named region.
// Unknown names leave the configuration unchanged.
func WithPreset(name string) Option {
	return func(c *Config) {
		if r, ok := Preset(name); ok {
			c.Family = FamilyMandelbrot
			c.Center = r.Center()
			c.Extent = r.Extent()
		}
	}
}
