// Package config loads and validates the mandelview configuration file.
//
// The file is TOML and every key is optional: missing keys keep the values
// from [Default]. A missing file is not an error.
//
//	[view]
//	center_re = -0.5
//	width = 3.0
//
//	[fractal]
//	max_iterations = 64
//
//	[palette]
//	name = "inferno"
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mandelview/pkg/errors"
	"github.com/matzehuels/mandelview/pkg/fractal"
	"github.com/matzehuels/mandelview/pkg/palette"
	"github.com/matzehuels/mandelview/pkg/render"
	"github.com/matzehuels/mandelview/pkg/viewport"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultPixelWidth and DefaultPixelHeight size a rendered frame.
	DefaultPixelWidth  = 700
	DefaultPixelHeight = 700

	// DefaultPlaneWidth shows the whole set.
	DefaultPlaneWidth = 4.0

	// DefaultCacheTTL is how long rendered frames are kept.
	DefaultCacheTTL = 24 * time.Hour
)

// Cache and bookmark backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
	BackendMongo = "mongo"
)

// =============================================================================
// Config
// =============================================================================

// Config is the full configuration file.
type Config struct {
	View      View      `toml:"view"`
	Fractal   Fractal   `toml:"fractal"`
	Render    Render    `toml:"render"`
	Palette   Palette   `toml:"palette"`
	Cache     Cache     `toml:"cache"`
	Bookmarks Bookmarks `toml:"bookmarks"`
}

// View is the initial viewport.
type View struct {
	CenterRe float64 `toml:"center_re"`
	CenterIm float64 `toml:"center_im"`
	Width    float64 `toml:"width"`
}

// Fractal holds the evaluator parameters.
type Fractal struct {
	MaxIterations int     `toml:"max_iterations"`
	EscapeRadius  float64 `toml:"escape_radius"`
	Smooth        bool    `toml:"smooth"`
}

// Render configures frame output.
type Render struct {
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	Workers int    `toml:"workers"`
	Samples int    `toml:"samples"`
	Format  string `toml:"format"`
}

// Palette selects a built-in palette or a palette file.
type Palette struct {
	Name string `toml:"name"`
	File string `toml:"file"`
	Size int    `toml:"size"`
}

// Cache selects the frame cache backend.
type Cache struct {
	Backend  string   `toml:"backend"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// Bookmarks selects the bookmark store backend.
type Bookmarks struct {
	Backend  string `toml:"backend"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Duration is a time.Duration written as a string ("24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		View: View{Width: DefaultPlaneWidth},
		Fractal: Fractal{
			MaxIterations: fractal.DefaultMaxIterations,
			EscapeRadius:  fractal.DefaultEscapeRadius,
			Smooth:        true,
		},
		Render: Render{
			Width:   DefaultPixelWidth,
			Height:  DefaultPixelHeight,
			Samples: 1,
			Format:  render.DefaultFormat,
		},
		Palette: Palette{
			Name: palette.DefaultName,
			Size: palette.DefaultSize,
		},
		Cache: Cache{
			Backend:  BackendFile,
			RedisURL: "redis://localhost:6379/0",
			TTL:      Duration{DefaultCacheTTL},
		},
		Bookmarks: Bookmarks{
			Backend:  BackendFile,
			MongoURI: "mongodb://localhost:27017",
			Database: "mandelview",
		},
	}
}

// Load reads path on top of the defaults. A missing file yields the
// defaults unchanged; an invalid one is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg as TOML, creating parent directories.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := c.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Encode returns cfg as a TOML document.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks every section. Values are never clamped.
func (c Config) Validate() error {
	if _, err := c.Viewport(); err != nil {
		return err
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.Render.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.workers must be >= 0, got %d", c.Render.Workers)
	}
	if c.Render.Samples < 1 || c.Render.Samples > render.MaxSamples {
		return errors.New(errors.ErrCodeInvalidConfig, "render.samples must be in [1, %d], got %d", render.MaxSamples, c.Render.Samples)
	}
	if _, err := render.NormalizeFormat(c.Render.Format); err != nil {
		return err
	}
	if c.Palette.Size <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "palette.size must be > 0, got %d", c.Palette.Size)
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	switch c.Bookmarks.Backend {
	case BackendFile, BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "bookmarks.backend must be file or mongo, got %q", c.Bookmarks.Backend)
	}
	return nil
}

// Center returns the configured center as a plane point.
func (c Config) Center() complex128 {
	return complex(c.View.CenterRe, c.View.CenterIm)
}

// Viewport builds the initial viewport at the configured frame size.
func (c Config) Viewport() (viewport.Viewport, error) {
	return viewport.New(c.Center(), c.View.Width, c.Render.Width, c.Render.Height)
}

// Params returns the evaluator parameters.
func (c Config) Params() fractal.Params {
	return fractal.Params{
		MaxIterations: c.Fractal.MaxIterations,
		EscapeRadius:  c.Fractal.EscapeRadius,
	}
}

// LoadPalette resolves the configured palette. A palette file takes
// precedence over the name.
func (c Config) LoadPalette() (palette.Palette, error) {
	if c.Palette.File != "" {
		return palette.Load(c.Palette.File)
	}
	return palette.Builtin(c.Palette.Name, c.Palette.Size)
}
