// Package render runs paint passes: it evaluates every pixel of a viewport
// and writes the resulting colours into a fresh image.
//
// A [Pass] is an immutable snapshot of everything a paint needs. Callers
// build a new Pass for every redraw, so a pass in flight is never affected by
// later input. Paint either returns a complete frame or an error; a cancelled
// pass never hands out a partially painted buffer.
//
// # Usage
//
//	pass := render.Pass{
//	    Viewport: vp,
//	    Params:   fractal.DefaultParams(),
//	    Palette:  pal,
//	    Smooth:   true,
//	}
//	img, err := render.Paint(ctx, pass, render.WithWorkers(8))
package render

import (
	"context"
	"image"
	"image/color"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mandelview/pkg/errors"
	"github.com/matzehuels/mandelview/pkg/fractal"
	"github.com/matzehuels/mandelview/pkg/palette"
	"github.com/matzehuels/mandelview/pkg/viewport"
)

// MaxSamples bounds the super-sampling grid per axis.
const MaxSamples = 8

// Pass is the immutable input of one paint.
type Pass struct {
	Viewport viewport.Viewport
	Params   fractal.Params
	Palette  palette.Palette
	Smooth   bool

	// Samples is the super-sampling grid size per axis. 0 and 1 both mean
	// one sample at the pixel corner.
	Samples int
}

// Validate checks every part of the snapshot.
func (p Pass) Validate() error {
	if err := p.Viewport.Validate(); err != nil {
		return err
	}
	if err := p.Params.Validate(); err != nil {
		return err
	}
	if p.Palette.Len() == 0 {
		return errors.New(errors.ErrCodeInvalidPalette, "palette is empty")
	}
	if p.Samples < 0 || p.Samples > MaxSamples {
		return errors.New(errors.ErrCodeInvalidConfig, "samples must be in [0, %d], got %d", MaxSamples, p.Samples)
	}
	return nil
}

// ProgressFunc receives the number of completed rows and the row total.
type ProgressFunc func(done, total int)

// RowFunc receives each completed row. The slice must not be retained.
type RowFunc func(y int, row []color.RGBA)

type paintConfig struct {
	workers  int
	progress ProgressFunc
	rows     RowFunc
}

// Option configures Paint.
type Option func(*paintConfig)

// WithWorkers sets the number of rows painted concurrently. n <= 0 uses
// runtime.NumCPU(); n == 1 paints sequentially in row-major order.
func WithWorkers(n int) Option {
	return func(c *paintConfig) { c.workers = n }
}

// WithProgress registers a callback invoked after every completed row.
// Calls are serialised and done increases by one each time.
func WithProgress(fn ProgressFunc) Option {
	return func(c *paintConfig) { c.progress = fn }
}

// WithRowSink registers a callback that receives each completed row.
// Calls are serialised with the progress callback.
func WithRowSink(fn RowFunc) Option {
	return func(c *paintConfig) { c.rows = fn }
}

// Paint evaluates every pixel of pass into a new image.
//
// If ctx is cancelled before the last row completes, Paint returns
// (nil, ctx.Err()) and the partial buffer is dropped.
func Paint(ctx context.Context, pass Pass, opts ...Option) (*image.RGBA, error) {
	if err := pass.Validate(); err != nil {
		return nil, err
	}
	m, err := fractal.New(pass.Params)
	if err != nil {
		return nil, err
	}

	cfg := paintConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers <= 0 {
		cfg.workers = runtime.NumCPU()
	}

	vp := pass.Viewport
	img := image.NewRGBA(image.Rect(0, 0, vp.PixelWidth, vp.PixelHeight))
	s := newSampler(m, pass)
	r := &reporter{cfg: cfg, total: vp.PixelHeight}

	if cfg.workers == 1 {
		err = paintSequential(ctx, vp, s, img, r)
	} else {
		err = paintParallel(ctx, vp, s, img, r, cfg.workers)
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

// paintSequential walks the viewport's pixel sequence in row-major order.
func paintSequential(ctx context.Context, vp viewport.Viewport, s *sampler, img *image.RGBA, r *reporter) error {
	row := make([]color.RGBA, vp.PixelWidth)
	for px := range vp.Pixels() {
		if px.X == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		c := s.color(vp, px.X, px.Y)
		row[px.X] = c
		img.SetRGBA(px.X, px.Y, c)
		if px.X == vp.PixelWidth-1 {
			r.rowDone(px.Y, row)
		}
	}
	return ctx.Err()
}

// paintParallel fans rows out over a bounded errgroup.
func paintParallel(ctx context.Context, vp viewport.Viewport, s *sampler, img *image.RGBA, r *reporter, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for y := 0; y < vp.PixelHeight; y++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := make([]color.RGBA, vp.PixelWidth)
			for x := range row {
				row[x] = s.color(vp, x, y)
				img.SetRGBA(x, y, row[x])
			}
			r.rowDone(y, row)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// reporter serialises progress and row callbacks.
type reporter struct {
	mu    sync.Mutex
	cfg   paintConfig
	done  int
	total int
}

func (r *reporter) rowDone(y int, row []color.RGBA) {
	if r.cfg.progress == nil && r.cfg.rows == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
	if r.cfg.rows != nil {
		r.cfg.rows(y, row)
	}
	if r.cfg.progress != nil {
		r.cfg.progress(r.done, r.total)
	}
}

// =============================================================================
// Sampling
// =============================================================================

type sampler struct {
	m       *fractal.Mandelbrot
	pal     palette.Palette
	smooth  bool
	offsets []float64
}

func newSampler(m *fractal.Mandelbrot, pass Pass) *sampler {
	return &sampler{
		m:       m,
		pal:     pass.Palette,
		smooth:  pass.Smooth,
		offsets: SampleOffsets(pass.Samples),
	}
}

// color evaluates pixel (x, y). With a single sample this is exactly
// palette(stability(PixelToComplex(x, y))).
func (s *sampler) color(vp viewport.Viewport, x, y int) color.RGBA {
	if len(s.offsets) == 1 {
		return s.pal.Color(s.m.Stability(vp.PixelToComplex(x, y), s.smooth))
	}

	var r, g, b, n int
	for _, sx := range s.offsets {
		for _, sy := range s.offsets {
			c := vp.PointAt(float64(x)+sx, float64(y)+sy)
			col := s.pal.Color(s.m.Stability(c, s.smooth))
			r += int(col.R)
			g += int(col.G)
			b += int(col.B)
			n++
		}
	}
	return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: 255}
}

// SampleOffsets returns the sub-pixel grid offsets for n samples per axis:
// ((0.5 + i) / n) - 0.5. For n <= 1 it returns a single zero offset.
func SampleOffsets(n int) []float64 {
	if n <= 1 {
		return []float64{0}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = ((0.5 + float64(i)) / float64(n)) - 0.5
	}
	return out
}
