package fractal

import (
	"sort"
	"strings"
)

// Region is an axis-aligned rectangle of the complex plane.
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// Center returns the midpoint of the region.
func (r Region) Center() Point {
	return Point{X: (r.Xmin + r.Xmax) / 2, Y: (r.Ymin + r.Ymax) / 2}
}

// Extent returns the width and height of the region.
func (r Region) Extent() Point {
	return Point{X: r.Xmax - r.Xmin, Y: r.Ymax - r.Ymin}
}

// Landmark regions of the Mandelbrot set.
var presets = map[string]Region{
	"full":            {Xmin: -2.5, Xmax: 1.0, Ymin: -1.0, Ymax: 1.0},
	"seahorse-valley": {Xmin: -0.8, Xmax: -0.7, Ymin: 0.05, Ymax: 0.15},
	"elephant-valley": {Xmin: -1.85, Xmax: -1.75, Ymin: -0.10, Ymax: -0.02},
	"spiral-minibrot": {Xmin: -0.7435, Xmax: -0.7420, Ymin: 0.1310, Ymax: 0.1325},
	"triple-spiral":   {Xmin: -0.7480, Xmax: -0.7450, Ymin: 0.0950, Ymax: 0.0980},
	"dragon-valley":   {Xmin: -0.7400, Xmax: -0.7350, Ymin: 0.1800, Ymax: 0.1850},
}

// Preset returns the named landmark region. Names are case-insensitive.
func Preset(name string) (Region, bool) {
	r, ok := presets[strings.ToLower(name)]
	return r, ok
}

// PresetNames returns the known preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
