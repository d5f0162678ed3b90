// Package fractal evaluates the Mandelbrot escape-time iteration.
//
// For a plane point c the sequence z(0) = 0, z(n+1) = z(n)² + c either
// stays bounded, in which case c belongs to the Mandelbrot set, or
// eventually leaves the disc of radius EscapeRadius. [Mandelbrot.EscapeCount]
// reports when that happens and [Mandelbrot.Stability] turns the count into a
// value in [0, 1] suitable for palette lookup.
//
// Membership is only approximated: a point that has not escaped after
// MaxIterations steps is treated as a member even though it might escape
// later.
package fractal

import (
	"math"
	"math/cmplx"

	"github.com/matzehuels/mandelview/pkg/errors"
)

// =============================================================================
// Parameters
// =============================================================================

const (
	// DefaultMaxIterations matches the starting depth of the explorer (2^5).
	DefaultMaxIterations = 32

	// DefaultEscapeRadius is large so the smoothing correction is accurate.
	DefaultEscapeRadius = 1000.0

	// DeepenLimit is the iteration budget at which Deepen stops doubling.
	DeepenLimit = 1 << 30
)

// Params configures the escape-time iteration.
type Params struct {
	MaxIterations int     `json:"max_iterations" toml:"max_iterations"`
	EscapeRadius  float64 `json:"escape_radius" toml:"escape_radius"`
}

// DefaultParams returns the parameters the explorer starts with.
func DefaultParams() Params {
	return Params{MaxIterations: DefaultMaxIterations, EscapeRadius: DefaultEscapeRadius}
}

// Validate checks MaxIterations > 0 and EscapeRadius > 1.
func (p Params) Validate() error {
	if err := errors.ValidateMaxIterations(p.MaxIterations); err != nil {
		return err
	}
	return errors.ValidateEscapeRadius(p.EscapeRadius)
}

// Deepen returns a copy of p with twice the iteration budget, saturating
// at DeepenLimit. A budget already above the limit is left alone.
func (p Params) Deepen() Params {
	if p.MaxIterations > DeepenLimit/2 {
		p.MaxIterations = max(p.MaxIterations, DeepenLimit)
		return p
	}
	p.MaxIterations *= 2
	return p
}

// =============================================================================
// Evaluator
// =============================================================================

// Mandelbrot is an immutable escape-time evaluator. It is safe for
// concurrent use.
type Mandelbrot struct {
	params Params
}

// New validates params and returns an evaluator.
func New(params Params) (*Mandelbrot, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Mandelbrot{params: params}, nil
}

// Params returns the parameters the evaluator was built with.
func (m *Mandelbrot) Params() Params {
	return m.params
}

// EscapeCount iterates z ← z² + c starting from zero.
//
// If |z| exceeds the escape radius after iteration i (0-based), it returns
// (i, |z|, true). If the budget runs out first it returns
// (MaxIterations, 0, false).
func (m *Mandelbrot) EscapeCount(c complex128) (count int, magnitude float64, escaped bool) {
	var z complex128
	for i := 0; i < m.params.MaxIterations; i++ {
		z = z*z + c
		if mag := cmplx.Abs(z); mag > m.params.EscapeRadius {
			return i, mag, true
		}
	}
	return m.params.MaxIterations, 0, false
}

// StabilityUnclamped is Stability without the clamp to [0, 1]. The smooth
// correction can push escaping points slightly outside the range; this is
// useful for diagnostics.
func (m *Mandelbrot) StabilityUnclamped(c complex128, smooth bool) float64 {
	return m.raw(c, smooth) / float64(m.params.MaxIterations)
}

// Stability returns the normalised escape count in [0, 1]. Points that never
// escape score exactly 1.
//
// With smooth set, the integer count is replaced by the continuous value
// count + 1 - log2(ln|z|), which removes banding between iteration levels.
func (m *Mandelbrot) Stability(c complex128, smooth bool) float64 {
	return clamp(m.StabilityUnclamped(c, smooth))
}

// Contains reports whether c survived MaxIterations steps. It is an
// approximation of set membership that improves as the budget grows.
func (m *Mandelbrot) Contains(c complex128) bool {
	return m.Stability(c, false) == 1
}

func (m *Mandelbrot) raw(c complex128, smooth bool) float64 {
	count, mag, escaped := m.EscapeCount(c)
	if !escaped {
		return float64(m.params.MaxIterations)
	}
	if !smooth {
		return float64(count)
	}
	return float64(count) + 1 - math.Log(math.Log(mag))/math.Ln2
}

func clamp(v float64) float64 {
	return max(0, min(v, 1))
}
