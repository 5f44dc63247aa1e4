package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// 3x3 kernels, row-major.
var (
	edgeEnhanceKernel = [9]float64{-1, -1, -1, -1, 10, -1, -1, -1, -1}
	smoothKernel      = [9]float64{1, 1, 1, 1, 5, 1, 1, 1, 1}
	contourKernel     = [9]float64{1, 1, 1, 1, -8, 1, 1, 1, 1}
)

// BoxBlur averages each pixel with its neighbours within radius.
func BoxBlur(img image.Image, radius float64) image.Image {
	return blur.Box(img, radius)
}

// GaussianBlur blurs with a gaussian of standard deviation radius.
func GaussianBlur(img image.Image, radius float64) image.Image {
	return imaging.Blur(img, radius)
}

// Sharpen applies a fixed 3x3 sharpening kernel.
func Sharpen(img image.Image) image.Image {
	return effect.Sharpen(img)
}

// EdgeEnhance boosts edges while keeping the overall image.
func EdgeEnhance(img image.Image) image.Image {
	return imaging.Convolve3x3(img, edgeEnhanceKernel, &imaging.ConvolveOptions{Normalize: true})
}

// Emboss gives the image a raised relief look.
func Emboss(img image.Image) image.Image {
	return effect.Emboss(img)
}

// FindEdges keeps only the edges, on black.
func FindEdges(img image.Image) image.Image {
	return effect.EdgeDetection(img, 1.0)
}

// Smooth applies a light smoothing kernel.
func Smooth(img image.Image) image.Image {
	return imaging.Convolve3x3(img, smoothKernel, &imaging.ConvolveOptions{Normalize: true})
}

// Contour draws edges as dark lines on white.
func Contour(img image.Image) image.Image {
	return imaging.Convolve3x3(img, contourKernel, &imaging.ConvolveOptions{Bias: 255})
}

// Sepia applies a sepia tone.
func Sepia(img image.Image) image.Image {
	return effect.Sepia(img)
}

// Invert negates the color channels and keeps alpha.
func Invert(img image.Image) image.Image {
	return imaging.Invert(img)
}
