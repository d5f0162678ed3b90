package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mandelview/pkg/cache"
	"github.com/matzehuels/mandelview/pkg/observability"
	"github.com/matzehuels/mandelview/pkg/render"
)

// cacheKeyType labels frame entries in cache hooks.
const cacheKeyType = "frame"

// Runner executes the pipeline with caching.
//
// The Runner holds no per-frame state, so several goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides cache.TTLFrame when positive.
	TTL time.Duration
}

// NewRunner creates a runner. A nil keyer uses DefaultKeyer, a nil cache
// disables caching and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Render returns the encoded frame for opts, from the cache when possible.
func (r *Runner) Render(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	key := r.Keyer.FrameKey(opts.FrameKeyOpts())
	result := &Result{Format: opts.Format, Key: key}
	result.Stats.Pixels = opts.PixelWidth * opts.PixelHeight

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, cacheKeyType)
			r.Logger.Debug("frame cache hit", "key", key, "bytes", len(data))
			result.Data = data
			result.CacheHit = true
			result.Stats.Bytes = len(data)
			return result, nil
		} else if err != nil {
			r.Logger.Warn("frame cache lookup failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	}

	img, paintTime, err := r.paint(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.PaintTime = paintTime

	encodeStart := time.Now()
	data, err := render.EncodeBytes(img, opts.Format)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	result.Data = data
	result.Stats.Bytes = len(data)
	result.Stats.EncodeTime = time.Since(encodeStart)

	if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
		r.Logger.Warn("frame cache store failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
	}

	r.Logger.Info("rendered frame",
		"size", fmt.Sprintf("%dx%d", opts.PixelWidth, opts.PixelHeight),
		"iterations", opts.MaxIterations,
		"format", opts.Format,
		"bytes", len(data),
		"duration", paintTime)

	return result, nil
}

// Paint runs the paint pass for opts without touching the cache. Progress
// and row callbacks on opts are honoured.
func (r *Runner) Paint(ctx context.Context, opts Options) (*image.RGBA, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	img, _, err := r.paint(ctx, opts)
	return img, err
}

func (r *Runner) paint(ctx context.Context, opts Options) (*image.RGBA, time.Duration, error) {
	pass, err := opts.Pass()
	if err != nil {
		return nil, 0, err
	}

	renderOpts := []render.Option{render.WithWorkers(opts.Workers)}
	if opts.Progress != nil {
		renderOpts = append(renderOpts, render.WithProgress(opts.Progress))
	}
	if opts.Rows != nil {
		renderOpts = append(renderOpts, render.WithRowSink(opts.Rows))
	}

	observability.Render().OnPaintStart(ctx, opts.PixelWidth, opts.PixelHeight, opts.MaxIterations)
	start := time.Now()
	img, err := render.Paint(ctx, pass, renderOpts...)
	elapsed := time.Since(start)
	observability.Render().OnPaintComplete(ctx, opts.PixelWidth*opts.PixelHeight, elapsed, err)
	if err != nil {
		return nil, elapsed, fmt.Errorf("paint: %w", err)
	}

	opts.Logger.Debug("painted frame",
		"center", pass.Viewport.Center,
		"width", pass.Viewport.Width,
		"duration", elapsed)
	return img, elapsed, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLFrame
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
