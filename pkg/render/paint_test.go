package render

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"github.com/matzehuels/mandelview/pkg/errors"
	"github.com/matzehuels/mandelview/pkg/fractal"
	"github.com/matzehuels/mandelview/pkg/palette"
	"github.com/matzehuels/mandelview/pkg/viewport"
)

func testPass(t *testing.T, w, h int) Pass {
	t.Helper()
	vp, err := viewport.New(complex(-0.7435, 0), 3.5, w, h)
	if err != nil {
		t.Fatal(err)
	}
	pal, err := palette.Builtin("twilight", 0)
	if err != nil {
		t.Fatal(err)
	}
	return Pass{
		Viewport: vp,
		Params:   fractal.Params{MaxIterations: 20, EscapeRadius: 1000},
		Palette:  pal,
		Smooth:   true,
	}
}

func TestPaintMatchesPerPixelEvaluation(t *testing.T) {
	pass := testPass(t, 40, 30)
	img, err := Paint(context.Background(), pass, WithWorkers(1))
	if err != nil {
		t.Fatalf("Paint() error: %v", err)
	}

	m, _ := fractal.New(pass.Params)
	for p := range pass.Viewport.Pixels() {
		want := pass.Palette.Color(m.Stability(pass.Viewport.PixelToComplex(p.X, p.Y), true))
		if got := img.RGBAAt(p.X, p.Y); got != want {
			t.Fatalf("pixel %v = %v, want %v", p, got, want)
		}
	}
}

func TestPaintDeterministic(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full-size render in short mode")
	}
	pass := testPass(t, 512, 512)
	ctx := context.Background()

	seq, err := Paint(ctx, pass, WithWorkers(1))
	if err != nil {
		t.Fatalf("sequential Paint() error: %v", err)
	}
	again, err := Paint(ctx, pass, WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	par, err := Paint(ctx, pass, WithWorkers(8))
	if err != nil {
		t.Fatalf("parallel Paint() error: %v", err)
	}

	if !bytes.Equal(seq.Pix, again.Pix) {
		t.Error("two sequential passes differ")
	}
	if !bytes.Equal(seq.Pix, par.Pix) {
		t.Error("parallel pass differs from sequential pass")
	}
	if seq.Bounds() != image.Rect(0, 0, 512, 512) {
		t.Errorf("Bounds() = %v", seq.Bounds())
	}

	m, _ := fractal.New(pass.Params)
	want := pass.Palette.Color(m.Stability(complex(-0.7435, 0), true))
	if got := seq.RGBAAt(256, 256); got != want {
		t.Errorf("center pixel = %v, want %v", got, want)
	}
}

func TestPaintValidation(t *testing.T) {
	base := testPass(t, 4, 4)

	tests := []struct {
		name   string
		mutate func(*Pass)
		code   errors.Code
	}{
		{"zero iterations", func(p *Pass) { p.Params.MaxIterations = 0 }, errors.ErrCodeInvalidConfig},
		{"small radius", func(p *Pass) { p.Params.EscapeRadius = 1 }, errors.ErrCodeInvalidConfig},
		{"empty palette", func(p *Pass) { p.Palette = palette.Palette{} }, errors.ErrCodeInvalidPalette},
		{"bad viewport", func(p *Pass) { p.Viewport.Width = 0 }, errors.ErrCodeInvalidConfig},
		{"too many samples", func(p *Pass) { p.Samples = MaxSamples + 1 }, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pass := base
			tt.mutate(&pass)
			img, err := Paint(context.Background(), pass)
			if img != nil {
				t.Error("Paint() returned an image for an invalid pass")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Paint() error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestPaintProgressSequential(t *testing.T) {
	pass := testPass(t, 8, 6)

	var rows []int
	var dones []int
	_, err := Paint(context.Background(), pass,
		WithWorkers(1),
		WithRowSink(func(y int, row []color.RGBA) {
			if len(row) != 8 {
				t.Errorf("row %d has %d pixels, want 8", y, len(row))
			}
			rows = append(rows, y)
		}),
		WithProgress(func(done, total int) {
			if total != 6 {
				t.Errorf("total = %d, want 6", total)
			}
			dones = append(dones, done)
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	for i := range 6 {
		if rows[i] != i {
			t.Errorf("row order = %v, want row-major", rows)
			break
		}
		if dones[i] != i+1 {
			t.Errorf("progress = %v, want 1..6", dones)
			break
		}
	}
}

func TestPaintProgressParallel(t *testing.T) {
	pass := testPass(t, 16, 32)

	var mu sync.Mutex
	seen := make(map[int]bool)
	last := 0
	_, err := Paint(context.Background(), pass,
		WithWorkers(4),
		WithRowSink(func(y int, row []color.RGBA) {
			mu.Lock()
			seen[y] = true
			mu.Unlock()
		}),
		WithProgress(func(done, total int) {
			if done != last+1 {
				t.Errorf("progress jumped from %d to %d", last, done)
			}
			last = done
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 32 || last != 32 {
		t.Errorf("saw %d rows and final progress %d, want 32", len(seen), last)
	}
}

func TestPaintCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		img, err := Paint(ctx, testPass(t, 10, 10), WithWorkers(workers))
		if img != nil {
			t.Errorf("workers=%d: cancelled Paint() returned an image", workers)
		}
		if !stderrors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: error = %v, want context.Canceled", workers, err)
		}
	}
}

func TestPaintCancelledMidPass(t *testing.T) {
	for _, workers := range []int{1, 3} {
		ctx, cancel := context.WithCancel(context.Background())
		img, err := Paint(ctx, testPass(t, 10, 40),
			WithWorkers(workers),
			WithProgress(func(done, total int) {
				if done == 3 {
					cancel()
				}
			}),
		)
		cancel()
		if img != nil {
			t.Errorf("workers=%d: torn frame returned", workers)
		}
		if !stderrors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: error = %v, want context.Canceled", workers, err)
		}
	}
}

func TestSuperSampling(t *testing.T) {
	// A tiny window inside the main cardioid: every sample is in the set.
	vp, _ := viewport.New(complex(-0.1, 0.05), 0.01, 6, 6)
	pal, _ := palette.Builtin("inferno", 32)
	pass := Pass{Viewport: vp, Params: fractal.DefaultParams(), Palette: pal, Samples: 3}

	img, err := Paint(context.Background(), pass)
	if err != nil {
		t.Fatal(err)
	}
	want := pal.Color(1)
	for p := range vp.Pixels() {
		if got := img.RGBAAt(p.X, p.Y); got != want {
			t.Fatalf("pixel %v = %v, want %v", p, got, want)
		}
	}
}

func TestSampleOffsets(t *testing.T) {
	tests := []struct {
		n    int
		want []float64
	}{
		{0, []float64{0}},
		{1, []float64{0}},
		{2, []float64{-0.25, 0.25}},
		{4, []float64{-0.375, -0.125, 0.125, 0.375}},
	}
	for _, tt := range tests {
		got := SampleOffsets(tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("SampleOffsets(%d) = %v, want %v", tt.n, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SampleOffsets(%d) = %v, want %v", tt.n, got, tt.want)
				break
			}
		}
	}
}

func TestEncode(t *testing.T) {
	img, err := Paint(context.Background(), testPass(t, 12, 9))
	if err != nil {
		t.Fatal(err)
	}

	for _, format := range []string{"png", "PNG", "jpeg", "jpg", ""} {
		data, err := EncodeBytes(img, format)
		if err != nil {
			t.Fatalf("EncodeBytes(%q) error: %v", format, err)
		}
		f, _ := NormalizeFormat(format)
		var decoded image.Image
		if f == FormatJPEG {
			decoded, err = jpeg.Decode(bytes.NewReader(data))
		} else {
			decoded, err = png.Decode(bytes.NewReader(data))
		}
		if err != nil {
			t.Fatalf("decode %q: %v", format, err)
		}
		if decoded.Bounds() != img.Bounds() {
			t.Errorf("%q bounds = %v, want %v", format, decoded.Bounds(), img.Bounds())
		}
	}

	if _, err := EncodeBytes(img, "gif"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("EncodeBytes(gif) error = %v, want %v", err, errors.ErrCodeInvalidFormat)
	}
}

func TestContentType(t *testing.T) {
	if ContentType(FormatPNG) != "image/png" || ContentType(FormatJPEG) != "image/jpeg" {
		t.Error("unexpected content types")
	}
}
