// Package cache stores encoded frames keyed by everything that affects
// their pixels.
//
// Rendering a deep view at a high iteration budget is expensive, while the
// result is a pure function of the viewport, the fractal parameters, the
// palette and the output format. The pipeline hashes those inputs into a key
// (see [Keyer]) and stores the encoded image under it.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing, for --no-cache
package cache

import (
	"context"
	"time"
)

// TTLFrame is how long an encoded frame stays cached by default.
const TTLFrame = 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (hit == false) and not an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// =============================================================================
// Keys
// =============================================================================

// FrameKeyOpts lists every input that changes a frame's bytes.
type FrameKeyOpts struct {
	CenterRe      float64 `json:"cr"`
	CenterIm      float64 `json:"ci"`
	Width         float64 `json:"w"`
	PixelWidth    int     `json:"pw"`
	PixelHeight   int     `json:"ph"`
	MaxIterations int     `json:"n"`
	EscapeRadius  float64 `json:"r"`
	Smooth        bool    `json:"s"`
	Samples       int     `json:"ss"`
	Palette       string  `json:"p"` // hash of the palette colours
	Format        string  `json:"f"`
}

// Keyer derives cache keys.
type Keyer interface {
	// FrameKey returns the key for an encoded frame.
	FrameKey(opts FrameKeyOpts) string
}

// DefaultKeyer produces keys of the form "frame:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FrameKey hashes opts into a frame key.
func (DefaultKeyer) FrameKey(opts FrameKeyOpts) string {
	return hashKey("frame", opts)
}

var _ Keyer = DefaultKeyer{}
