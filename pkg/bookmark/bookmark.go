// Package bookmark stores named views of the Mandelbrot set.
//
// A bookmark captures everything needed to return to a view: center, width,
// iteration budget, smoothing and palette. Bookmarks are kept in a [Store];
// the CLI uses [FileStore] (one JSON file per bookmark) and a shared server
// can use [MongoStore].
//
// # Usage
//
//	b, err := bookmark.New("seahorse", complex(-0.75, 0.1), 0.1, 256)
//	if err != nil {
//	    return err
//	}
//	if err := store.Save(ctx, b); err != nil {
//	    return err
//	}
//
//	all, err := store.List(ctx) // newest first
package bookmark

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/mandelview/pkg/errors"
	"github.com/matzehuels/mandelview/pkg/fractal"
	"github.com/matzehuels/mandelview/pkg/palette"
	"github.com/matzehuels/mandelview/pkg/viewport"
)

// Bookmark is a saved view.
type Bookmark struct {
	ID            string    `json:"id" bson:"_id"`
	Name          string    `json:"name" bson:"name"`
	CenterRe      float64   `json:"center_re" bson:"center_re"`
	CenterIm      float64   `json:"center_im" bson:"center_im"`
	Width         float64   `json:"width" bson:"width"`
	MaxIterations int       `json:"max_iterations" bson:"max_iterations"`
	Smooth        bool      `json:"smooth" bson:"smooth"`
	Palette       string    `json:"palette,omitempty" bson:"palette,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// New creates a validated bookmark with a fresh id. Smoothing is on and
// the palette is the default one; callers adjust the fields as needed.
func New(name string, center complex128, width float64, maxIterations int) (*Bookmark, error) {
	b := &Bookmark{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(name),
		CenterRe:      real(center),
		CenterIm:      imag(center),
		Width:         width,
		MaxIterations: maxIterations,
		Smooth:        true,
		Palette:       palette.DefaultName,
		CreatedAt:     time.Now().UTC(),
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks the name and the view parameters.
func (b *Bookmark) Validate() error {
	if err := errors.ValidateBookmarkName(b.Name); err != nil {
		return err
	}
	if err := errors.ValidatePoint(b.Center()); err != nil {
		return err
	}
	if err := errors.ValidatePlaneWidth(b.Width); err != nil {
		return err
	}
	return errors.ValidateMaxIterations(b.MaxIterations)
}

// Center returns the view center as a plane point.
func (b *Bookmark) Center() complex128 {
	return complex(b.CenterRe, b.CenterIm)
}

// Viewport returns the bookmarked view on a pixel grid.
func (b *Bookmark) Viewport(pixelWidth, pixelHeight int) (viewport.Viewport, error) {
	return viewport.New(b.Center(), b.Width, pixelWidth, pixelHeight)
}

// Params returns the evaluator parameters with the given escape radius.
func (b *Bookmark) Params(escapeRadius float64) fractal.Params {
	return fractal.Params{MaxIterations: b.MaxIterations, EscapeRadius: escapeRadius}
}

// Store persists bookmarks.
type Store interface {
	// Save inserts or replaces a bookmark by ID.
	Save(ctx context.Context, b *Bookmark) error

	// Get returns the bookmark with id, or an ErrCodeBookmarkNotFound error.
	Get(ctx context.Context, id string) (*Bookmark, error)

	// List returns all bookmarks, newest first.
	List(ctx context.Context) ([]*Bookmark, error)

	// Delete removes a bookmark, or returns an ErrCodeBookmarkNotFound error.
	Delete(ctx context.Context, id string) error

	// Close releases the store.
	Close() error
}

// Resolve finds a bookmark by id, falling back to a case-insensitive name
// match over the store and then the built-in presets.
func Resolve(ctx context.Context, s Store, ref string) (*Bookmark, error) {
	if b, err := s.Get(ctx, ref); err == nil {
		return b, nil
	} else if !errors.Is(err, errors.ErrCodeBookmarkNotFound) {
		return nil, err
	}

	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range all {
		if strings.EqualFold(b.Name, ref) {
			return b, nil
		}
	}
	if b, ok := Preset(ref); ok {
		return b, nil
	}
	return nil, notFound(ref)
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeBookmarkNotFound, "bookmark %q not found", id)
}
