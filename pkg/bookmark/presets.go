package bookmark

import (
	"strings"
	"time"
)

// region is a rectangle of the plane, [xmin, xmax] × [ymin, ymax].
type region struct {
	name                   string
	xmin, xmax, ymin, ymax float64
	iterations             int
}

// Classic landmarks of the Mandelbrot set.
var landmarks = []region{
	{"Whole set", -2.5, 1.5, -2, 2, 32},
	// Dense filaments and repeating seahorse curls.
	{"Seahorse Valley", -0.8, -0.7, 0.05, 0.15, 256},
	// Large bulbs with trunk-like tendrils.
	{"Elephant Valley", 0.25, 0.35, -0.05, 0.05, 256},
	{"Spiral Minibrot", -0.7435, -0.7420, 0.1310, 0.1325, 512},
	{"Triple Spiral", -0.7480, -0.7450, 0.0950, 0.0980, 512},
	{"Valley of the Dragon", -0.7400, -0.7350, 0.1800, 0.1850, 512},
	{"Minibrot in a Mini-Spiral", -1.7390, -1.7375, -0.0235, -0.0220, 1024},
}

// presetEpoch gives presets a stable creation time.
var presetEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Presets returns the built-in landmarks as bookmarks. Each call returns
// fresh values.
func Presets() []*Bookmark {
	out := make([]*Bookmark, len(landmarks))
	for i, r := range landmarks {
		out[i] = r.bookmark()
	}
	return out
}

// Preset looks up a landmark by id or case-insensitive name.
func Preset(ref string) (*Bookmark, bool) {
	for _, r := range landmarks {
		if strings.EqualFold(r.name, ref) || presetID(r.name) == ref {
			return r.bookmark(), true
		}
	}
	return nil, false
}

func (r region) bookmark() *Bookmark {
	return &Bookmark{
		ID:            presetID(r.name),
		Name:          r.name,
		CenterRe:      (r.xmin + r.xmax) / 2,
		CenterIm:      (r.ymin + r.ymax) / 2,
		Width:         r.xmax - r.xmin,
		MaxIterations: r.iterations,
		Smooth:        true,
		CreatedAt:     presetEpoch,
	}
}

// presetID turns "Seahorse Valley" into "preset:seahorse-valley".
func presetID(name string) string {
	return "preset:" + strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
