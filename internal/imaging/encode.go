package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-edit-mcp/internal/apperrors"
)

var imagingFormats = map[string]imaging.Format{
	"PNG":  imaging.PNG,
	"JPEG": imaging.JPEG,
	"GIF":  imaging.GIF,
	"TIFF": imaging.TIFF,
	"BMP":  imaging.BMP,
}

// Encode serializes img in format ("PNG", "JPEG", "WEBP", "BMP", "TIFF" or
// "GIF"). quality applies to JPEG and WEBP only.
//
// JPEG and BMP carry no alpha channel, so transparent pixels are flattened
// onto white first.
func Encode(img image.Image, format string, quality int) ([]byte, error) {
	format = strings.ToUpper(format)
	if quality < 1 || quality > 100 {
		quality = 95
	}

	var buf bytes.Buffer
	switch format {
	case "WEBP":
		if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
			return nil, fmt.Errorf("failed to encode webp: %w", err)
		}
	case "JPEG", "BMP":
		if err := imaging.Encode(&buf, Flatten(img, color.White), imagingFormats[format], imaging.JPEGQuality(quality)); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", strings.ToLower(format), err)
		}
	default:
		f, ok := imagingFormats[format]
		if !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, format)
		}
		if err := imaging.Encode(&buf, img, f); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", strings.ToLower(format), err)
		}
	}
	return buf.Bytes(), nil
}

// Flatten composites img over an opaque background. Opaque images are
// returned unchanged.
func Flatten(img image.Image, bg color.Color) image.Image {
	if !HasAlpha(img) {
		return img
	}
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), bg)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

// MIMEType returns the media type of format, e.g. "image/png".
func MIMEType(format string) string {
	return "image/" + strings.ToLower(format)
}

// Extension returns the file extension of format without the dot.
func Extension(format string) string {
	switch f := strings.ToLower(format); f {
	case "jpeg":
		return "jpg"
	case "tiff":
		return "tif"
	default:
		return f
	}
}
