package fractal

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	v := cfg.InitialView(800, 600)
	if v.Center != Pt(-0.75, 0) || v.Extent.X != 3.5 || v.Iterations != 500 {
		t.Errorf("InitialView = %v", v)
	}
	if !near(v.Extent.Y, 2.625, 1e-12) {
		t.Errorf("InitialView Extent.Y = %g, want 2.625", v.Extent.Y)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero size", WithSize(0, 600)},
		{"negative extent", WithExtent(-1, 2)},
		{"zero iterations", WithIterations(0)},
		{"zoom in >= 1", WithZoomFactors(1.5, 2)},
		{"zoom out <= 1", WithZoomFactors(0.5, 0.9)},
		{"floor above extent", WithMinExtent(10)},
		{"inverted clamp", WithIterationClamp(500, 100)},
		{"zero tile", WithTileSize(0)},
		{"huge tile", WithTileSize(64)},
		{"bad family", WithFamily(Family(9))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(tt.opt)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithSize(1024, 768),
		WithTitle("Julia"),
		WithFamily(FamilyJulia),
		WithJuliaConstant(-0.4, 0.6),
		WithCenter(0, 0),
		WithExtent(3, 3),
	)
	if cfg.Width != 1024 || cfg.Height != 768 || cfg.Title != "Julia" {
		t.Errorf("window = %dx%d %q", cfg.Width, cfg.Height, cfg.Title)
	}
	if cfg.Family != FamilyJulia || cfg.Julia != Pt(-0.4, 0.6) {
		t.Errorf("family = %v %v", cfg.Family, cfg.Julia)
	}
	if _, ok := cfg.Kernel().(Julia); !ok {
		t.Errorf("Kernel() = %T, want Julia", cfg.Kernel())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestWithPreset(t *testing.T) {
	cfg := NewConfig(WithPreset("Seahorse-Valley"))
	r, _ := Preset("seahorse-valley")
	if cfg.Center != r.Center() || cfg.Extent != r.Extent() {
		t.Errorf("preset not applied: %v %v", cfg.Center, cfg.Extent)
	}

	def := DefaultConfig()
	if got := NewConfig(WithPreset("nowhere")); got != def {
		t.Error("unknown preset changed the config")
	}
}

func TestDecodeConfig(t *testing.T) {
	doc := `
title = "Julia"
family = "julia"
iterations = 800

[julia]
x = -0.4
y = 0.6
`
	cfg, err := DecodeConfig(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if cfg.Family != FamilyJulia || cfg.Julia != Pt(-0.4, 0.6) || cfg.Iterations != 800 || cfg.Title != "Julia" {
		t.Errorf("decoded = %+v", cfg)
	}
	// Absent keys keep their defaults.
	def := DefaultConfig()
	if cfg.Width != def.Width || cfg.ZoomIn != def.ZoomIn || cfg.MinExtent != def.MinExtent {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestDecodeConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "colour = \"red\"\n"},
		{"invalid value", "zoom_in = 1.5\n"},
		{"unknown family", "family = \"burning-ship\"\n"},
		{"syntax", "width = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeConfig(strings.NewReader(tt.doc)); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("DecodeConfig() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestEncodeDecodeConfig(t *testing.T) {
	want := NewConfig(WithFamily(FamilyJulia), WithJuliaConstant(0.285, 0.01), WithIterations(1200))

	var buf bytes.Buffer
	if err := EncodeConfig(&buf, want); err != nil {
		t.Fatalf("EncodeConfig() error = %v", err)
	}
	if !strings.Contains(buf.String(), `family = 'julia'`) && !strings.Contains(buf.String(), `family = "julia"`) {
		t.Errorf("family not encoded as text:\n%s", buf.String())
	}
	got, err := DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fractal.toml")
	if err := os.WriteFile(path, []byte("width = 1024\nheight = 768\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Width != 1024 || cfg.Height != 768 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestPresets(t *testing.T) {
	names := PresetNames()
	if len(names) == 0 {
		t.Fatal("no presets")
	}
	for i, n := range names {
		if i > 0 && names[i-1] >= n {
			t.Errorf("PresetNames not sorted: %v", names)
		}
		r, ok := Preset(n)
		if !ok {
			t.Fatalf("Preset(%q) not found", n)
		}
		e := r.Extent()
		if e.X <= 0 || e.Y <= 0 {
			t.Errorf("Preset(%q) extent = %v", n, e)
		}
	}
	full, _ := Preset("full")
	if full.Center() != Pt(-0.75, 0) || full.Extent() != Pt(3.5, 2) {
		t.Errorf("full = %v %v", full.Center(), full.Extent())
	}
}
