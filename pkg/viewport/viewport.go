// Package viewport maps a rectangular pixel grid onto a region of the
// complex plane.
//
// A Viewport is an immutable value: its center, its width in plane units and
// the pixel grid size. Scale, height and the top-left offset are derived on
// demand so they can never drift out of sync with the fields they come from.
// Every mutator returns a new Viewport, which lets a paint pass hold a
// snapshot while the interactive shell keeps panning and zooming.
//
// Pixel (0, 0) is the top-left corner. X grows to the right and Y grows
// downwards, while the imaginary axis grows upwards, hence the negated Y in
// [Viewport.PixelToComplex].
package viewport

import (
	"iter"

	"github.com/matzehuels/mandelview/pkg/errors"
)

// Pixel is a position on the pixel grid.
type Pixel struct {
	X, Y int
}

// Viewport describes which part of the complex plane a pixel grid shows.
type Viewport struct {
	Center      complex128 // Plane point at the middle of the grid
	Width       float64    // Horizontal extent in plane units
	PixelWidth  int        // Grid columns
	PixelHeight int        // Grid rows
}

// New validates the parameters and returns a Viewport.
func New(center complex128, width float64, pixelWidth, pixelHeight int) (Viewport, error) {
	v := Viewport{
		Center:      center,
		Width:       width,
		PixelWidth:  pixelWidth,
		PixelHeight: pixelHeight,
	}
	if err := v.Validate(); err != nil {
		return Viewport{}, err
	}
	return v, nil
}

// Validate checks the viewport invariants.
func (v Viewport) Validate() error {
	if err := errors.ValidatePoint(v.Center); err != nil {
		return err
	}
	if err := errors.ValidatePlaneWidth(v.Width); err != nil {
		return err
	}
	return errors.ValidateDimensions(v.PixelWidth, v.PixelHeight)
}

// Scale is the plane distance covered by one pixel.
func (v Viewport) Scale() float64 {
	return v.Width / float64(v.PixelWidth)
}

// Height is the vertical extent in plane units. Pixels are square.
func (v Viewport) Height() float64 {
	return v.Scale() * float64(v.PixelHeight)
}

// Offset is the plane point at the top-left corner of pixel (0, 0).
func (v Viewport) Offset() complex128 {
	return v.Center + complex(-v.Width/2, v.Height()/2)
}

// PixelToComplex returns the plane point for pixel (x, y).
// Coordinates outside the grid are extrapolated, not rejected.
func (v Viewport) PixelToComplex(x, y int) complex128 {
	return complex(float64(x), -float64(y))*complex(v.Scale(), 0) + v.Offset()
}

// PointAt is PixelToComplex for fractional pixel positions.
func (v Viewport) PointAt(x, y float64) complex128 {
	return complex(x, -y)*complex(v.Scale(), 0) + v.Offset()
}

// ComplexToPixel is the inverse of PointAt.
func (v Viewport) ComplexToPixel(c complex128) (x, y float64) {
	d := (c - v.Offset()) / complex(v.Scale(), 0)
	return real(d), -imag(d)
}

// Pixels yields every pixel of the grid in row-major order, top row first.
// Each call to the returned sequence starts over from (0, 0).
func (v Viewport) Pixels() iter.Seq[Pixel] {
	return func(yield func(Pixel) bool) {
		for y := 0; y < v.PixelHeight; y++ {
			for x := 0; x < v.PixelWidth; x++ {
				if !yield(Pixel{X: x, Y: y}) {
					return
				}
			}
		}
	}
}

// Len is the number of pixels in the grid.
func (v Viewport) Len() int {
	return v.PixelWidth * v.PixelHeight
}

// WithCenter returns a copy of v centred on c.
func (v Viewport) WithCenter(c complex128) (Viewport, error) {
	return New(c, v.Width, v.PixelWidth, v.PixelHeight)
}

// WithWidth returns a copy of v spanning w plane units.
func (v Viewport) WithWidth(w float64) (Viewport, error) {
	return New(v.Center, w, v.PixelWidth, v.PixelHeight)
}

// Resize returns a copy of v with a new grid size. Center and width are kept,
// so the scale changes with the column count.
func (v Viewport) Resize(pixelWidth, pixelHeight int) (Viewport, error) {
	return New(v.Center, v.Width, pixelWidth, pixelHeight)
}

// Pan shifts the view by dx columns and dy rows. Positive dy moves the view
// down the screen, towards smaller imaginary parts.
func (v Viewport) Pan(dx, dy int) Viewport {
	v.Center += complex(float64(dx), -float64(dy)) * complex(v.Scale(), 0)
	return v
}

// ZoomAt multiplies the width by factor while keeping the plane point under
// pixel (x, y) at the same pixel. A factor below 1 zooms in.
func (v Viewport) ZoomAt(x, y float64, factor float64) (Viewport, error) {
	return v.ZoomTo(x, y, v.Width*factor)
}

// ZoomTo sets the width to w while keeping the plane point under pixel
// (x, y) fixed.
func (v Viewport) ZoomTo(x, y float64, w float64) (Viewport, error) {
	anchor := v.PointAt(x, y)
	zoomed, err := v.WithWidth(w)
	if err != nil {
		return Viewport{}, err
	}
	offset := anchor - complex(x, -y)*complex(zoomed.Scale(), 0)
	zoomed.Center = offset - complex(-zoomed.Width/2, zoomed.Height()/2)
	return zoomed, nil
}
