package fractal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the bootstrap constants of the renderer. The zero value is
// not usable; start from DefaultConfig or NewConfig.
type Config struct {
	// Window geometry for the interactive viewer.
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`

	// Family selects Mandelbrot or Julia; Julia is the constant c of the
	// Julia map.
	Family Family `toml:"family"`
	Julia  Point  `toml:"julia"`

	// Initial view. Extent.Y is refitted to the window aspect ratio.
	Center     Point `toml:"center"`
	Extent     Point `toml:"extent"`
	Iterations int32 `toml:"iterations"`

	// MinExtent is the smallest Extent.X a zoom-in may produce.
	MinExtent float64 `toml:"min_extent"`

	// Zoom factors for the left (in) and right (out) mouse buttons.
	ZoomIn  float64 `toml:"zoom_in"`
	ZoomOut float64 `toml:"zoom_out"`

	// IterationExponent is the exponent of the budget curve, in (0, 1).
	IterationExponent float64 `toml:"iteration_exponent"`
	MinIterations     int32   `toml:"min_iterations"`
	MaxIterations     int32   `toml:"max_iterations"`

	// TileSize is the compute workgroup edge in pixels. The WGSL kernel is
	// specialised for it at pipeline build time.
	TileSize uint32 `toml:"tile_size"`
}

// DefaultConfig returns the stock configuration: the full Mandelbrot set
// in an 800x600 window with 500 iterations.
func DefaultConfig() Config {
	return Config{
		Width:             800,
		Height:            600,
		Title:             "Mandelbrot",
		Family:            FamilyMandelbrot,
		Julia:             Point{X: -0.8, Y: 0.156},
		Center:            Point{X: -0.75, Y: 0},
		Extent:            Point{X: 3.5, Y: 2.0},
		Iterations:        500,
		MinExtent:         6.2e-5,
		ZoomIn:            0.5,
		ZoomOut:           2.0,
		IterationExponent: 0.3,
		MinIterations:     128,
		MaxIterations:     5000,
		TileSize:          8,
	}
}

// Validate checks the configuration for values the renderer cannot use.
func (c *Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Width, c.Height))
	}
	if !(c.Extent.X > 0) || !(c.Extent.Y > 0) {
		errs = append(errs, fmt.Errorf("extent (%g, %g) must be positive", c.Extent.X, c.Extent.Y))
	}
	if c.Iterations <= 0 {
		errs = append(errs, fmt.Errorf("iterations %d must be positive", c.Iterations))
	}
	if !(c.MinExtent > 0) || c.MinExtent >= c.Extent.X {
		errs = append(errs, fmt.Errorf("min_extent %g must be in (0, extent.x)", c.MinExtent))
	}
	if !(c.ZoomIn > 0 && c.ZoomIn < 1) {
		errs = append(errs, fmt.Errorf("zoom_in %g must be in (0, 1)", c.ZoomIn))
	}
	if !(c.ZoomOut > 1) || math.IsInf(c.ZoomOut, 0) {
		errs = append(errs, fmt.Errorf("zoom_out %g must be greater than 1", c.ZoomOut))
	}
	if !(c.IterationExponent > 0 && c.IterationExponent < 1) {
		errs = append(errs, fmt.Errorf("iteration_exponent %g must be in (0, 1)", c.IterationExponent))
	}
	if c.MinIterations <= 0 || c.MinIterations > c.MaxIterations {
		errs = append(errs, fmt.Errorf("iteration clamp [%d, %d] is invalid", c.MinIterations, c.MaxIterations))
	}
	if c.TileSize == 0 || c.TileSize > 32 {
		errs = append(errs, fmt.Errorf("tile_size %d must be in [1, 32]", c.TileSize))
	}
	if c.Family != FamilyMandelbrot && c.Family != FamilyJulia {
		errs = append(errs, fmt.Errorf("unknown family %d", c.Family))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// InitialView returns the starting view for a viewport of the given size,
// with Extent.Y fitted to the aspect ratio.
func (c *Config) InitialView(width, height int) ViewState {
	v := ViewState{Center: c.Center, Extent: c.Extent, Iterations: c.Iterations}
	return v.FitAspect(width, height)
}

// Kernel returns the escape-time kernel selected by the configuration.
func (c *Config) Kernel() Kernel {
	return KernelFor(c.Family, c.Julia)
}

// DecodeConfig reads a TOML document over DefaultConfig and validates the
// result. Keys that are absent keep their default values; unknown keys are
// an error.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, sme.String())
		}
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a TOML configuration file. See DecodeConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg, err := DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// EncodeConfig writes c as TOML.
func EncodeConfig(w io.Writer, c Config) error {
	return toml.NewEncoder(w).Encode(c)
}
