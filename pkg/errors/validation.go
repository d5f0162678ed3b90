package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateEscapeRadius checks the escape radius used by the escape-time loop.
//
// The radius must be finite and strictly greater than 1: the smoothing
// correction takes log(log(|z|)), which is only defined when every escaping
// magnitude is above 1.
func ValidateEscapeRadius(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return New(ErrCodeInvalidConfig, "escape radius must be finite, got %g", r)
	}
	if r <= 1 {
		return New(ErrCodeInvalidConfig, "escape radius must be > 1, got %g", r)
	}
	return nil
}

// ValidateMaxIterations checks the iteration budget.
func ValidateMaxIterations(n int) error {
	if n <= 0 {
		return New(ErrCodeInvalidConfig, "max iterations must be > 0, got %d", n)
	}
	return nil
}

// ValidatePlaneWidth checks a viewport's width in plane units.
func ValidatePlaneWidth(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return New(ErrCodeInvalidConfig, "plane width must be finite, got %g", w)
	}
	if w <= 0 {
		return New(ErrCodeInvalidConfig, "plane width must be > 0, got %g", w)
	}
	return nil
}

// ValidatePoint checks that a plane coordinate is finite.
func ValidatePoint(c complex128) error {
	re, im := real(c), imag(c)
	if math.IsNaN(re) || math.IsInf(re, 0) || math.IsNaN(im) || math.IsInf(im, 0) {
		return New(ErrCodeInvalidConfig, "center must be finite, got %v", c)
	}
	return nil
}

// ValidateDimensions checks a pixel grid size.
func ValidateDimensions(w, h int) error {
	if w <= 0 || h <= 0 {
		return New(ErrCodeInvalidConfig, "pixel dimensions must be positive, got %dx%d", w, h)
	}
	return nil
}

// ValidateBookmarkName validates a user supplied bookmark name.
//
// Names are shown in the terminal and used as lookup keys, so they must be
// non-empty, at most 64 characters and free of control characters.
func ValidateBookmarkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "bookmark name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "bookmark name too long (max 64 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "bookmark name contains invalid control characters")
		}
	}
	return nil
}
