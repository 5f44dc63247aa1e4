package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// The factor adjustments interpolate between a degenerate version of the
// image (factor 0) and the image itself (factor 1). Factors above 1
// extrapolate away from the degenerate image. Alpha is preserved.

// Brightness scales every color channel by factor. 0 gives black.
func Brightness(img image.Image, factor float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.R = clamp8(float64(c.R) * factor)
		c.G = clamp8(float64(c.G) * factor)
		c.B = clamp8(float64(c.B) * factor)
		return c
	})
}

// Contrast moves every pixel towards or away from the mean luminance. 0
// gives a flat gray image.
func Contrast(img image.Image, factor float64) *image.NRGBA {
	src := imaging.Clone(img)
	mean := meanLuminance(src)
	b := src.Bounds()
	gray := imaging.New(b.Dx(), b.Dy(), color.NRGBA{R: mean, G: mean, B: mean, A: 255})
	return enhance(src, gray, factor)
}

// Saturation moves every pixel towards or away from its gray value. 0
// gives grayscale.
func Saturation(img image.Image, factor float64) *image.NRGBA {
	src := imaging.Clone(img)
	return enhance(src, imaging.Grayscale(src), factor)
}

// Sharpness moves every pixel towards a smoothed copy (factor < 1) or
// away from it (factor > 1).
func Sharpness(img image.Image, factor float64) *image.NRGBA {
	src := imaging.Clone(img)
	smoothed := imaging.Convolve3x3(src, smoothKernel, &imaging.ConvolveOptions{Normalize: true})
	return enhance(src, smoothed, factor)
}

// Gamma applies out = in^(1/gamma) per channel, so gamma above 1
// brightens.
func Gamma(img image.Image, gamma float64) *image.NRGBA {
	return imaging.AdjustGamma(img, gamma)
}

// Opacity multiplies the alpha channel by opacity.
func Opacity(img image.Image, opacity float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.A = clamp8(float64(c.A) * opacity)
		return c
	})
}

// Grayscale converts img to a single luminance channel. Images with
// transparency keep their alpha and stay four-channel.
func Grayscale(img image.Image) image.Image {
	if HasAlpha(img) {
		return imaging.Grayscale(img)
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// enhance returns degenerate + factor*(src - degenerate) per color
// channel. Both images must share the same zero-origin bounds.
func enhance(src, degenerate *image.NRGBA, factor float64) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	for i := 0; i+3 < len(src.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			d := float64(degenerate.Pix[i+c])
			dst.Pix[i+c] = clamp8(d + factor*(float64(src.Pix[i+c])-d))
		}
		dst.Pix[i+3] = src.Pix[i+3]
	}
	return dst
}

func meanLuminance(img *image.NRGBA) uint8 {
	n := len(img.Pix) / 4
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i+3 < len(img.Pix); i += 4 {
		sum += 0.299*float64(img.Pix[i]) + 0.587*float64(img.Pix[i+1]) + 0.114*float64(img.Pix[i+2])
	}
	return clamp8(sum / float64(n))
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
