package fractal

import (
	"errors"
	"testing"
)

func TestIterationBudgetAtInitialExtent(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.IterationBudget(cfg.Extent.X); got != cfg.Iterations {
		t.Errorf("IterationBudget(initial) = %d, want %d", got, cfg.Iterations)
	}
}

func TestIterationBudgetMonotonic(t *testing.T) {
	cfg := DefaultConfig()
	prev := int32(0)
	for extent := 1000.0; extent > 1e-12; extent *= 0.7 {
		got := cfg.IterationBudget(extent)
		if got < prev {
			t.Fatalf("IterationBudget(%g) = %d, lower than %d at a wider extent", extent, got, prev)
		}
		if got < cfg.MinIterations || got > cfg.MaxIterations {
			t.Fatalf("IterationBudget(%g) = %d outside [%d, %d]", extent, got, cfg.MinIterations, cfg.MaxIterations)
		}
		prev = got
	}
}

func TestIterationBudgetClamp(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		extent float64
		want   int32
	}{
		{1000, cfg.MinIterations},
		{1e-12, cfg.MaxIterations},
		{0, cfg.MaxIterations},
		{-1, cfg.MaxIterations},
		{1.75, 615},
	}
	for _, tt := range tests {
		if got := cfg.IterationBudget(tt.extent); got != tt.want {
			t.Errorf("IterationBudget(%g) = %d, want %d", tt.extent, got, tt.want)
		}
	}
}

func TestConfigZoom(t *testing.T) {
	cfg := DefaultConfig()
	v := ViewState{Center: cfg.Center, Extent: cfg.Extent, Iterations: cfg.Iterations}

	next, err := cfg.Zoom(v, Pt(0, 0), cfg.ZoomIn)
	if err != nil {
		t.Fatalf("Zoom() error = %v", err)
	}
	if next.Extent != Pt(1.75, 1.0) || next.Center != cfg.Center {
		t.Errorf("Zoom() = %v", next)
	}
	if next.Iterations != cfg.IterationBudget(1.75) {
		t.Errorf("Iterations = %d, want %d", next.Iterations, cfg.IterationBudget(1.75))
	}

	tiny := ViewState{Center: cfg.Center, Extent: Pt(cfg.MinExtent, cfg.MinExtent), Iterations: 4000}
	got, err := cfg.Zoom(tiny, Pt(0.2, 0.2), cfg.ZoomIn)
	if !errors.Is(err, ErrPrecisionLimitReached) {
		t.Fatalf("Zoom() at floor error = %v", err)
	}
	if got != tiny {
		t.Errorf("rejected Zoom() changed view to %v", got)
	}
}
