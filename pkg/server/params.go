package server

import (
	"net/url"
	"strconv"

	"github.com/matzehuels/mandelview/pkg/errors"
	"github.com/matzehuels/mandelview/pkg/palette"
	"github.com/matzehuels/mandelview/pkg/pipeline"
)

// frameOptions overlays query values on base.
func frameOptions(q url.Values, base pipeline.Options) (pipeline.Options, error) {
	opts := base
	var err error

	floats := []struct {
		key string
		dst *float64
	}{
		{"cx", &opts.CenterRe},
		{"cy", &opts.CenterIm},
		{"width", &opts.Width},
		{"radius", &opts.EscapeRadius},
	}
	for _, f := range floats {
		if err = parseFloat(q, f.key, f.dst); err != nil {
			return opts, err
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"w", &opts.PixelWidth},
		{"h", &opts.PixelHeight},
		{"iter", &opts.MaxIterations},
		{"samples", &opts.Samples},
	}
	for _, f := range ints {
		if err = parseInt(q, f.key, f.dst); err != nil {
			return opts, err
		}
	}

	if v := q.Get("smooth"); v != "" {
		if opts.Smooth, err = strconv.ParseBool(v); err != nil {
			return opts, invalidParam("smooth", v)
		}
	}
	if v := q.Get("palette"); v != "" {
		// A named palette replaces any palette file the server was started with.
		opts.Palette = v
		opts.Colors = palette.Palette{}
	}
	if v := q.Get("format"); v != "" {
		opts.Format = v
	}

	if err := opts.Revalidate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func parseFloat(q url.Values, key string, dst *float64) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return invalidParam(key, v)
	}
	*dst = f
	return nil
}

func parseInt(q url.Values, key string, dst *int) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return invalidParam(key, v)
	}
	*dst = n
	return nil
}

func invalidParam(key, value string) error {
	return errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", key, value)
}
