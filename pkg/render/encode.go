package render

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/matzehuels/mandelview/pkg/errors"
)

// Output formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// DefaultFormat is used when no format is given.
const DefaultFormat = FormatPNG

// JPEGQuality is the encoder quality for JPEG output.
const JPEGQuality = 90

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatJPEG: true,
}

// NormalizeFormat lowercases format, maps "jpg" to "jpeg" and fills in the
// default for an empty string.
func NormalizeFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	switch f {
	case "":
		return DefaultFormat, nil
	case "jpg":
		return FormatJPEG, nil
	}
	if !ValidFormats[f] {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (use png or jpeg)", format)
	}
	return f, nil
}

// ContentType returns the MIME type for a normalised format.
func ContentType(format string) string {
	if format == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	f, err := NormalizeFormat(format)
	if err != nil {
		return err
	}
	if f == FormatJPEG {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	}
	return png.Encode(w, img)
}

// EncodeBytes is Encode into a new byte slice.
func EncodeBytes(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
