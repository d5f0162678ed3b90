package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateEscapeRadius(t *testing.T) {
	tests := []struct {
		r       float64
		wantErr bool
	}{
		{2, false},
		{1000, false},
		{1.0000001, false},
		{1, true},
		{0.5, true},
		{0, true},
		{-3, true},
		{math.NaN(), true},
		{math.Inf(1), true},
	}

	for _, tt := range tests {
		err := ValidateEscapeRadius(tt.r)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEscapeRadius(%g) error = %v, wantErr %v", tt.r, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidConfig) {
			t.Errorf("ValidateEscapeRadius(%g) code = %v, want %v", tt.r, GetCode(err), ErrCodeInvalidConfig)
		}
	}
}

func TestValidateMaxIterations(t *testing.T) {
	tests := []struct {
		n       int
		wantErr bool
	}{
		{1, false},
		{32, false},
		{0, true},
		{-1, true},
	}

	for _, tt := range tests {
		err := ValidateMaxIterations(tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateMaxIterations(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
	}
}

func TestValidatePlaneWidth(t *testing.T) {
	tests := []struct {
		w       float64
		wantErr bool
	}{
		{4, false},
		{1e-12, false},
		{0, true},
		{-1, true},
		{math.NaN(), true},
		{math.Inf(1), true},
	}

	for _, tt := range tests {
		err := ValidatePlaneWidth(tt.w)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePlaneWidth(%g) error = %v, wantErr %v", tt.w, err, tt.wantErr)
		}
	}
}

func TestValidatePoint(t *testing.T) {
	if err := ValidatePoint(complex(-0.7435, 0.1)); err != nil {
		t.Errorf("ValidatePoint() unexpected error: %v", err)
	}
	if err := ValidatePoint(complex(math.NaN(), 0)); err == nil {
		t.Error("ValidatePoint(NaN) should fail")
	}
	if err := ValidatePoint(complex(0, math.Inf(-1))); err == nil {
		t.Error("ValidatePoint(-Inf) should fail")
	}
}

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		w, h    int
		wantErr bool
	}{
		{100, 100, false},
		{1, 1, false},
		{0, 100, true},
		{100, 0, true},
		{-1, -1, true},
	}

	for _, tt := range tests {
		err := ValidateDimensions(tt.w, tt.h)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDimensions(%d, %d) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
		}
	}
}

func TestValidateBookmarkName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"seahorse", false},
		{"Seahorse Valley (deep)", false},
		{"", true},
		{"   ", true},
		{"bad\x00name", true},
		{"tab\tname", true},
		{strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		err := ValidateBookmarkName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateBookmarkName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
