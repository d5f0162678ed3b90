package palette

import (
	"bytes"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/mandelview/pkg/errors"
)

func fivePalette(t *testing.T) Palette {
	t.Helper()
	p, err := New("five", []color.RGBA{
		{R: 0, A: 255},
		{R: 1, A: 255},
		{R: 2, A: 255},
		{R: 3, A: 255},
		{R: 4, A: 255},
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNewRejectsEmpty(t *testing.T) {
	_, err := New("empty", nil)
	if !errors.Is(err, errors.ErrCodeInvalidPalette) {
		t.Errorf("New(nil) error = %v, want %v", err, errors.ErrCodeInvalidPalette)
	}
}

func TestNewCopiesInput(t *testing.T) {
	in := []color.RGBA{{R: 10, A: 255}}
	p, _ := New("copy", in)
	in[0].R = 99
	if p.Color(0).R != 10 {
		t.Error("New should copy its input")
	}
	out := p.Colors()
	out[0].R = 77
	if p.Color(0).R != 10 {
		t.Error("Colors should return a copy")
	}
}

func TestIndex(t *testing.T) {
	p := fivePalette(t)

	tests := []struct {
		stability float64
		want      int
	}{
		{0, 0},
		{0.19, 0},
		{0.2, 1},
		{0.5, 2},
		{0.79, 3},
		{0.8, 4},
		{0.99, 4},
		{1, 4},
		{1.5, 4},
		{-0.1, 0},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		if got := p.Index(tt.stability); got != tt.want {
			t.Errorf("Index(%v) = %d, want %d", tt.stability, got, tt.want)
		}
		if got := p.Color(tt.stability).R; int(got) != tt.want {
			t.Errorf("Color(%v).R = %d, want %d", tt.stability, got, tt.want)
		}
	}
}

func TestIndexWithinBounds(t *testing.T) {
	p := fivePalette(t)
	for s := 0.0; s <= 1.0; s += 0.001 {
		if i := p.Index(s); i < 0 || i > 4 {
			t.Fatalf("Index(%v) = %d, outside [0, 4]", s, i)
		}
	}
}

func TestAtWraps(t *testing.T) {
	p := fivePalette(t)
	if p.At(7).R != 2 || p.At(-1).R != 4 {
		t.Errorf("At() does not wrap: At(7)=%v At(-1)=%v", p.At(7), p.At(-1))
	}
}

func TestDenormalize(t *testing.T) {
	got := Denormalize([][3]float64{{0, 0.5, 1}, {0.999, 2, -1}})
	want := []color.RGBA{
		{R: 0, G: 127, B: 255, A: 255},
		{R: 254, G: 255, B: 0, A: 255},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Denormalize()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBuiltin(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			p, err := Builtin(name, 0)
			if err != nil {
				t.Fatalf("Builtin(%q) error: %v", name, err)
			}
			if p.Len() != DefaultSize {
				t.Errorf("Len() = %d, want %d", p.Len(), DefaultSize)
			}
			if p.Name() != name {
				t.Errorf("Name() = %q, want %q", p.Name(), name)
			}
		})
	}

	if _, err := Builtin("nope", 16); !errors.Is(err, errors.ErrCodeInvalidPalette) {
		t.Errorf("Builtin(nope) error = %v, want %v", err, errors.ErrCodeInvalidPalette)
	}
}

func TestBuiltinEndpoints(t *testing.T) {
	p, err := Builtin("grayscale", 16)
	if err != nil {
		t.Fatal(err)
	}
	if c := p.Color(0); c != (color.RGBA{A: 255}) {
		t.Errorf("grayscale first = %v, want black", c)
	}
	if c := p.Color(1); c != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("grayscale last = %v, want white", c)
	}
}

func TestGradient(t *testing.T) {
	red, _ := colorful.Hex("#ff0000")
	blue, _ := colorful.Hex("#0000ff")

	if got := Gradient(nil, 4); len(got) != 4 {
		t.Errorf("Gradient(nil, 4) len = %d, want 4", len(got))
	}

	single := Gradient([]colorful.Color{red}, 3)
	for _, c := range single {
		if c != (color.RGBA{R: 255, A: 255}) {
			t.Errorf("single stop gradient = %v, want red", c)
		}
	}

	g := Gradient([]colorful.Color{red, blue}, 10)
	if g[0] != (color.RGBA{R: 255, A: 255}) || g[9] != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("gradient endpoints = %v, %v", g[0], g[9])
	}
}

func TestReadJSON(t *testing.T) {
	doc := `{"name": "fire", "colors": [[0, 0, 0], [255, 64, 0]], "hex": ["#ffffff"]}`
	p, err := Read(strings.NewReader(doc), "json")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	want := []color.RGBA{
		{A: 255},
		{R: 255, G: 64, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
	}
	got := p.Colors()
	if len(got) != len(want) {
		t.Fatalf("Read() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Read()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if p.Name() != "fire" {
		t.Errorf("Name() = %q, want fire", p.Name())
	}
}

func TestReadTOMLNormalized(t *testing.T) {
	doc := "name = \"soft\"\ncolors = [[0.0, 0.5, 1.0], [1.0, 1.0, 1.0]]\n"
	p, err := Read(strings.NewReader(doc), "toml")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if got := p.Color(0); got != (color.RGBA{G: 127, B: 255, A: 255}) {
		t.Errorf("first color = %v", got)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		format string
		code   errors.Code
	}{
		{"bad json", "{", "json", errors.ErrCodeInvalidPalette},
		{"empty", `{"colors": []}`, "json", errors.ErrCodeInvalidPalette},
		{"channel range", `{"colors": [[300, 0, 0]]}`, "json", errors.ErrCodeInvalidPalette},
		{"bad hex", `{"hex": ["#zz"]}`, "json", errors.ErrCodeInvalidPalette},
		{"bad format", `{}`, "yaml", errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.doc), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("Read() error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestLoadAndEncode(t *testing.T) {
	src, err := Builtin("viridis", 8)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, src); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "mine.json")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Len() != src.Len() {
		t.Fatalf("Load() len = %d, want %d", got.Len(), src.Len())
	}
	for i := 0; i < src.Len(); i++ {
		if got.At(i) != src.At(i) {
			t.Errorf("Load()[%d] = %v, want %v", i, got.At(i), src.At(i))
		}
	}
}

func TestLoadNameFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ember.toml")
	if err := os.WriteFile(path, []byte("colors = [[10, 20, 30]]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "ember" {
		t.Errorf("Name() = %q, want ember", p.Name())
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want %v", err, errors.ErrCodeFileNotFound)
	}
}
