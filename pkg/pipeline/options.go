// Package pipeline runs the paint → encode → cache pipeline shared by the
// CLI render command and the HTTP server.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Render(ctx, pipeline.Options{
//	    CenterRe: -0.7435,
//	    CenterIm: 0.1314,
//	    Width:    0.01,
//	    Smooth:   true,
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("frame.png", result.Data, 0644)
//
// Frames are cached under a key derived from every option that changes
// their bytes. Set Refresh to bypass the cache lookup.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mandelview/pkg/cache"
	"github.com/matzehuels/mandelview/pkg/errors"
	"github.com/matzehuels/mandelview/pkg/fractal"
	"github.com/matzehuels/mandelview/pkg/palette"
	"github.com/matzehuels/mandelview/pkg/render"
	"github.com/matzehuels/mandelview/pkg/viewport"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultPixelWidth is the default frame width in pixels.
	DefaultPixelWidth = 700

	// DefaultPixelHeight is the default frame height in pixels.
	DefaultPixelHeight = 700

	// DefaultPlaneWidth shows the whole set.
	DefaultPlaneWidth = 4.0

	// MaxPixels caps a single frame so a request cannot exhaust memory.
	MaxPixels = 16 << 20
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options describes one frame. It supports JSON serialisation for API
// requests; zero values are replaced by defaults.
type Options struct {
	// View
	CenterRe    float64 `json:"center_re"`
	CenterIm    float64 `json:"center_im"`
	Width       float64 `json:"width,omitempty"`
	PixelWidth  int     `json:"pixel_width,omitempty"`
	PixelHeight int     `json:"pixel_height,omitempty"`

	// Fractal
	MaxIterations int     `json:"max_iterations,omitempty"`
	EscapeRadius  float64 `json:"escape_radius,omitempty"`
	Smooth        bool    `json:"smooth"`

	// Output
	Palette     string `json:"palette,omitempty"`
	PaletteSize int    `json:"palette_size,omitempty"`
	Samples     int    `json:"samples,omitempty"`
	Format      string `json:"format,omitempty"`
	Refresh     bool   `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Workers  int                 `json:"-"`
	Colors   palette.Palette     `json:"-"` // overrides Palette when non-empty
	Progress render.ProgressFunc `json:"-"`
	Rows     render.RowFunc      `json:"-"`
	Logger   *log.Logger         `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result is the output of a pipeline run.
type Result struct {
	// Data is the encoded frame.
	Data []byte

	// Format is the normalised output format ("png" or "jpeg").
	Format string

	// Key is the cache key of the frame.
	Key string

	// CacheHit reports whether Data came from the cache.
	CacheHit bool

	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Pixels     int
	Bytes      int
	PaintTime  time.Duration
	EncodeTime time.Duration
}

// ValidateAndSetDefaults fills in defaults, resolves the palette and checks
// every value. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()

	format, err := render.NormalizeFormat(o.Format)
	if err != nil {
		return err
	}
	o.Format = format

	if o.Colors.Len() == 0 {
		p, err := palette.Builtin(o.Palette, o.PaletteSize)
		if err != nil {
			return err
		}
		o.Colors = p
	}
	o.Palette = o.Colors.Name()

	if err := checkFrameSize(o.PixelWidth, o.PixelHeight); err != nil {
		return err
	}
	if _, err := o.Pass(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// checkFrameSize rejects non-positive grids and grids above MaxPixels. The
// sides are compared before multiplying so huge values cannot wrap.
func checkFrameSize(w, h int) error {
	if err := errors.ValidateDimensions(w, h); err != nil {
		return err
	}
	if w > MaxPixels || h > MaxPixels || w > MaxPixels/h {
		return errors.New(errors.ErrCodeInvalidConfig, "frame of %dx%d exceeds %d pixels", w, h, MaxPixels)
	}
	return nil
}

// Revalidate re-runs ValidateAndSetDefaults after fields were changed on a
// copy of already validated options.
func (o *Options) Revalidate() error {
	o.validated = false
	return o.ValidateAndSetDefaults()
}

// SetDefaults replaces zero values with defaults.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultPlaneWidth
	}
	if o.PixelWidth == 0 {
		o.PixelWidth = DefaultPixelWidth
	}
	if o.PixelHeight == 0 {
		o.PixelHeight = DefaultPixelHeight
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = fractal.DefaultMaxIterations
	}
	if o.EscapeRadius == 0 {
		o.EscapeRadius = fractal.DefaultEscapeRadius
	}
	if o.Palette == "" {
		o.Palette = palette.DefaultName
	}
	if o.PaletteSize == 0 {
		o.PaletteSize = palette.DefaultSize
	}
	if o.Samples == 0 {
		o.Samples = 1
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Center returns the view center as a plane point.
func (o *Options) Center() complex128 {
	return complex(o.CenterRe, o.CenterIm)
}

// Pass builds the immutable render snapshot for these options.
func (o *Options) Pass() (render.Pass, error) {
	vp, err := viewport.New(o.Center(), o.Width, o.PixelWidth, o.PixelHeight)
	if err != nil {
		return render.Pass{}, err
	}
	pass := render.Pass{
		Viewport: vp,
		Params:   fractal.Params{MaxIterations: o.MaxIterations, EscapeRadius: o.EscapeRadius},
		Palette:  o.Colors,
		Smooth:   o.Smooth,
		Samples:  o.Samples,
	}
	if err := pass.Validate(); err != nil {
		return render.Pass{}, err
	}
	return pass, nil
}

// FrameKeyOpts returns the cache key inputs for these options.
func (o *Options) FrameKeyOpts() cache.FrameKeyOpts {
	return cache.FrameKeyOpts{
		CenterRe:      o.CenterRe,
		CenterIm:      o.CenterIm,
		Width:         o.Width,
		PixelWidth:    o.PixelWidth,
		PixelHeight:   o.PixelHeight,
		MaxIterations: o.MaxIterations,
		EscapeRadius:  o.EscapeRadius,
		Smooth:        o.Smooth,
		Samples:       o.Samples,
		Palette:       cache.HashColors(o.Colors.Colors()),
		Format:        o.Format,
	}
}
