package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// ResampleFilter maps a resample method name to its filter. Unknown names
// fall back to Lanczos.
func ResampleFilter(name string) imaging.ResampleFilter {
	switch name {
	case "NEAREST":
		return imaging.NearestNeighbor
	case "BILINEAR":
		return imaging.Linear
	case "BICUBIC":
		return imaging.CatmullRom
	default:
		return imaging.Lanczos
	}
}

// Resize scales img to width x height. With keepAspect the image is scaled
// to fit inside the box and keeps its proportions, so one side may come out
// smaller than requested.
func Resize(img image.Image, width, height int, keepAspect bool, filter imaging.ResampleFilter) *image.NRGBA {
	if keepAspect {
		w, h := FitSize(img.Bounds().Dx(), img.Bounds().Dy(), width, height)
		return imaging.Resize(img, w, h, filter)
	}
	return imaging.Resize(img, width, height, filter)
}

// FitSize returns the largest size with the proportions of w x h that fits
// inside maxW x maxH. Both sides are at least one pixel.
func FitSize(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

// Rotate turns img counter-clockwise by angle degrees. With expand the
// canvas grows to hold the whole rotated image; otherwise the result keeps
// the original size and the corners are clipped. Uncovered area is filled
// with fill.
func Rotate(img image.Image, angle float64, expand bool, fill color.Color) *image.NRGBA {
	rotated := imaging.Rotate(img, angle, fill)
	if expand {
		return rotated
	}
	b := img.Bounds()
	return imaging.PasteCenter(imaging.New(b.Dx(), b.Dy(), fill), rotated)
}

// Flip mirrors img. Direction is "horizontal" (left-right) or "vertical"
// (top-bottom).
func Flip(img image.Image, direction string) *image.NRGBA {
	if direction == "vertical" {
		return imaging.FlipV(img)
	}
	return imaging.FlipH(img)
}
