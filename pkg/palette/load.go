package palette

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/mandelview/pkg/errors"
)

// File is the on-disk palette format shared by JSON and TOML files.
//
// Colors holds RGB triples. If every channel is within [0, 1] the triples are
// treated as normalised floats, otherwise as 0-255 values. Hex entries are
// appended after Colors.
//
//	name = "fire"
//	colors = [[0, 0, 0], [255, 64, 0], [255, 255, 200]]
//	hex = ["#ffffff"]
type File struct {
	Name   string       `json:"name" toml:"name"`
	Colors [][3]float64 `json:"colors" toml:"colors"`
	Hex    []string     `json:"hex,omitempty" toml:"hex,omitempty"`
}

// Load reads a palette file. The format is chosen by extension: ".toml" for
// TOML and anything else for JSON.
func Load(path string) (Palette, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Palette{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "palette file %s", path)
	}
	if err != nil {
		return Palette{}, err
	}
	defer f.Close()

	format := "json"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}
	p, err := Read(f, format)
	if err != nil {
		return Palette{}, err
	}
	if p.name == "" {
		p.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// Read decodes a palette in the given format ("json" or "toml").
func Read(r io.Reader, format string) (Palette, error) {
	var pf File
	switch format {
	case "json":
		if err := json.NewDecoder(r).Decode(&pf); err != nil {
			return Palette{}, errors.Wrap(errors.ErrCodeInvalidPalette, err, "decode json palette")
		}
	case "toml":
		if _, err := toml.NewDecoder(r).Decode(&pf); err != nil {
			return Palette{}, errors.Wrap(errors.ErrCodeInvalidPalette, err, "decode toml palette")
		}
	default:
		return Palette{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported palette format %q", format)
	}
	return pf.Palette()
}

// Palette converts the file contents into a validated Palette.
func (pf File) Palette() (Palette, error) {
	colors := make([]color.RGBA, 0, len(pf.Colors)+len(pf.Hex))

	if normalized(pf.Colors) {
		colors = append(colors, Denormalize(pf.Colors)...)
	} else {
		for i, c := range pf.Colors {
			rgba, err := bytesColor(c)
			if err != nil {
				return Palette{}, errors.Wrap(errors.ErrCodeInvalidPalette, err, "color %d", i)
			}
			colors = append(colors, rgba)
		}
	}

	for _, h := range pf.Hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return Palette{}, errors.Wrap(errors.ErrCodeInvalidPalette, err, "hex color %q", h)
		}
		colors = append(colors, toRGBA(c))
	}

	return New(pf.Name, colors)
}

// Encode writes p as a JSON palette file with 0-255 channels.
func Encode(w io.Writer, p Palette) error {
	pf := File{Name: p.Name(), Colors: make([][3]float64, p.Len())}
	for i, c := range p.colors {
		pf.Colors[i] = [3]float64{float64(c.R), float64(c.G), float64(c.B)}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(pf)
}

func normalized(rgb [][3]float64) bool {
	if len(rgb) == 0 {
		return false
	}
	for _, c := range rgb {
		for _, ch := range c {
			if ch > 1 {
				return false
			}
		}
	}
	return true
}

func bytesColor(c [3]float64) (color.RGBA, error) {
	var out [3]uint8
	for i, ch := range c {
		if ch < 0 || ch > 255 {
			return color.RGBA{}, fmt.Errorf("channel %v out of range [0, 255]", ch)
		}
		out[i] = uint8(ch)
	}
	return color.RGBA{R: out[0], G: out[1], B: out[2], A: 255}, nil
}
