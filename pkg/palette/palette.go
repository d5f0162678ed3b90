// Package palette maps stability values onto colours.
//
// A [Palette] is a non-empty, immutable list of RGBA colours. Stability 0
// selects the first entry and stability 1 the last one; values in between are
// spread linearly over the list. Built-in palettes are generated from
// gradient stops (see [Builtin]) and custom ones can be loaded from JSON or
// TOML files (see [Load]).
package palette

import (
	"image/color"
	"math"

	"github.com/matzehuels/mandelview/pkg/errors"
)

// Palette is an immutable, non-empty list of colours.
type Palette struct {
	name   string
	colors []color.RGBA
}

// New copies colors into a Palette. An empty list is rejected.
func New(name string, colors []color.RGBA) (Palette, error) {
	if len(colors) == 0 {
		return Palette{}, errors.New(errors.ErrCodeInvalidPalette, "palette %q has no colors", name)
	}
	c := make([]color.RGBA, len(colors))
	copy(c, colors)
	return Palette{name: name, colors: c}, nil
}

// Name returns the palette name.
func (p Palette) Name() string { return p.name }

// Len returns the number of colours.
func (p Palette) Len() int { return len(p.colors) }

// Colors returns a copy of the colour list.
func (p Palette) Colors() []color.RGBA {
	c := make([]color.RGBA, len(p.colors))
	copy(c, p.colors)
	return c
}

// Index returns floor(min(stability*N, N-1)). NaN and negative inputs map
// to 0.
func (p Palette) Index(stability float64) int {
	n := len(p.colors)
	if math.IsNaN(stability) || stability <= 0 {
		return 0
	}
	return int(math.Min(stability*float64(n), float64(n-1)))
}

// Color returns the colour for a stability value.
func (p Palette) Color(stability float64) color.RGBA {
	return p.colors[p.Index(stability)%len(p.colors)]
}

// At returns the i-th colour, wrapping around the palette.
func (p Palette) At(i int) color.RGBA {
	n := len(p.colors)
	return p.colors[((i%n)+n)%n]
}

// Denormalize converts [0, 1] channel triples to 8-bit colours. Channels are
// truncated, not rounded.
func Denormalize(rgb [][3]float64) []color.RGBA {
	out := make([]color.RGBA, len(rgb))
	for i, c := range rgb {
		out[i] = color.RGBA{
			R: uint8(int(clampUnit(c[0]) * 255)),
			G: uint8(int(clampUnit(c[1]) * 255)),
			B: uint8(int(clampUnit(c[2]) * 255)),
			A: 255,
		}
	}
	return out
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(0, min(v, 1))
}
