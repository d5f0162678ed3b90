// Package pkg provides the libraries behind mandelview, an escape-time
// renderer for the Mandelbrot set.
//
// # Overview
//
// The pkg directory is organized into three areas:
//
//  1. Core - [viewport], [fractal], [palette] and [render] turn a region of
//     the complex plane into an image.
//  2. Infrastructure - [cache], [bookmark], [config], [errors] and
//     [observability].
//  3. Surfaces - [pipeline] ties the core together with caching; [server]
//     and [explorer] expose it over HTTP and in the terminal.
//
// # Architecture
//
// The data flow for one frame:
//
//	Viewport (center, width, pixel grid)
//	         ↓
//	    [fractal] stability value per sample point
//	         ↓
//	    [palette] colour per pixel
//	         ↓
//	    [render] image, then PNG or JPEG
//	         ↓
//	    [cache] keyed by every input that affects the bytes
//
// # Quick Start
//
//	vp, _ := viewport.New(complex(-0.5, 0), 3, 800, 600)
//	pal, _ := palette.Builtin("twilight", 256)
//	img, err := render.Paint(ctx, render.Pass{
//	    Viewport: vp,
//	    Params:   fractal.DefaultParams(),
//	    Palette:  pal,
//	    Smooth:   true,
//	})
//
// [viewport]: github.com/matzehuels/mandelview/pkg/viewport
// [fractal]: github.com/matzehuels/mandelview/pkg/fractal
// [palette]: github.com/matzehuels/mandelview/pkg/palette
// [render]: github.com/matzehuels/mandelview/pkg/render
// [cache]: github.com/matzehuels/mandelview/pkg/cache
// [bookmark]: github.com/matzehuels/mandelview/pkg/bookmark
// [config]: github.com/matzehuels/mandelview/pkg/config
// [errors]: github.com/matzehuels/mandelview/pkg/errors
// [observability]: github.com/matzehuels/mandelview/pkg/observability
// [pipeline]: github.com/matzehuels/mandelview/pkg/pipeline
// [server]: github.com/matzehuels/mandelview/pkg/server
// [explorer]: github.com/matzehuels/mandelview/pkg/explorer
package pkg
