package palette

import (
	"image/color"
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/mandelview/pkg/errors"
)

// DefaultName is the palette used when none is configured.
const DefaultName = "twilight"

// DefaultSize is the number of entries generated for a built-in palette.
const DefaultSize = 256

// Gradient stops for the built-in colormaps, as hex colours.
var stops = map[string][]string{
	"twilight": {
		"#e2d9e2", "#a1bbc8", "#6a8cc2", "#5e5bb4", "#4b2a83", "#2f1436",
		"#6d2455", "#a9475a", "#c98a7a", "#d5c3b9", "#e2d9e2",
	},
	"viridis":   {"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"},
	"inferno":   {"#000004", "#420a68", "#932667", "#dd513a", "#fca50a", "#fcffa4"},
	"grayscale": {"#000000", "#ffffff"},
	"classic":   {"#000764", "#206bcb", "#edffff", "#ffaa00", "#000200"},
}

// Names returns the built-in palette names, sorted.
func Names() []string {
	names := make([]string, 0, len(stops))
	for name := range stops {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Builtin generates a named palette with size entries. A size <= 0 uses
// DefaultSize.
func Builtin(name string, size int) (Palette, error) {
	hexes, ok := stops[name]
	if !ok {
		return Palette{}, errors.New(errors.ErrCodeInvalidPalette, "unknown palette %q (available: %v)", name, Names())
	}
	if size <= 0 {
		size = DefaultSize
	}

	points := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return Palette{}, errors.Wrap(errors.ErrCodeInternal, err, "parse stop %q of palette %q", h, name)
		}
		points[i] = c
	}
	return New(name, Gradient(points, size))
}

// Gradient blends n colours across the stops in CIE-L*u*v* space.
// A single stop yields n copies of it.
func Gradient(points []colorful.Color, n int) []color.RGBA {
	out := make([]color.RGBA, n)
	if len(points) == 0 || n == 0 {
		return out
	}
	if len(points) == 1 || n == 1 {
		for i := range out {
			out[i] = toRGBA(points[0])
		}
		return out
	}

	segments := float64(len(points) - 1)
	for i := range out {
		t := float64(i) / float64(n-1) * segments
		seg := min(int(t), len(points)-2)
		out[i] = toRGBA(points[seg].BlendLuv(points[seg+1], t-float64(seg)))
	}
	return out
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
