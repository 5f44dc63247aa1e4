package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// watermarkMargin is the distance in pixels between a corner watermark and
// the image edge.
const watermarkMargin = 10

var transparent = color.NRGBA{}

// Border surrounds img with a frame of width pixels.
//
// Styles:
//   - "solid": a plain frame of c
//   - "rounded": as solid, with the outer corners cut to radius
//   - "shadow": a soft, half transparent c drop shadow offset by 10 pixels
func Border(img image.Image, width int, c color.NRGBA, style string, radius int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx()+2*width, b.Dy()+2*width
	origin := image.Pt(width, width)

	switch style {
	case "rounded":
		canvas := imaging.New(w, h, c)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if !insideRoundedRect(x, y, w, h, radius) {
					canvas.SetNRGBA(x, y, transparent)
				}
			}
		}
		return imaging.Overlay(canvas, img, origin, 1.0)
	case "shadow":
		const offset = 10
		canvas := imaging.New(w+offset, h+offset, transparent)
		shade := c
		shade.A = 0x80
		shadow := blur.Gaussian(imaging.New(w, h, shade), 5)
		canvas = imaging.Overlay(canvas, shadow, image.Pt(offset, offset), 1.0)
		return imaging.Overlay(canvas, img, origin, 1.0)
	default:
		return imaging.Overlay(imaging.New(w, h, c), img, origin, 1.0)
	}
}

// insideRoundedRect reports whether pixel (x, y) lies inside a w x h
// rectangle whose corners are rounded with radius r.
func insideRoundedRect(x, y, w, h, r int) bool {
	if r <= 0 {
		return true
	}
	if r*2 > w {
		r = w / 2
	}
	if r*2 > h {
		r = h / 2
	}
	cx, cy := -1, -1
	switch {
	case x < r:
		cx = r
	case x >= w-r:
		cx = w - r - 1
	}
	switch {
	case y < r:
		cy = r
	case y >= h-r:
		cy = h - r - 1
	}
	if cx < 0 || cy < 0 {
		return true
	}
	dx, dy := float64(x-cx), float64(y-cy)
	return dx*dx+dy*dy <= float64(r*r)
}

// Silhouette paints every pixel whose alpha is above threshold with c and
// clears the rest. A nil background leaves the cleared pixels transparent;
// otherwise the silhouette is placed on an opaque background.
func Silhouette(img image.Image, c color.NRGBA, background *color.NRGBA, threshold int) *image.NRGBA {
	src := imaging.Clone(img)
	out := image.NewNRGBA(src.Bounds())
	fill := color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
	empty := transparent
	if background != nil {
		empty = color.NRGBA{R: background.R, G: background.G, B: background.B, A: 255}
	}

	for i := 0; i+3 < len(src.Pix); i += 4 {
		px := empty
		if int(src.Pix[i+3]) > threshold {
			px = fill
		}
		out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = px.R, px.G, px.B, px.A
	}
	return out
}

// DropShadow places a blurred copy of the image's shape behind it. The
// canvas grows by blur plus the largest offset on every side.
func DropShadow(img image.Image, c color.NRGBA, offsetX, offsetY, blurRadius int, opacity float64) *image.NRGBA {
	src := imaging.Clone(img)
	b := src.Bounds()
	margin := blurRadius + max(abs(offsetX), abs(offsetY))
	canvas := imaging.New(b.Dx()+2*margin, b.Dy()+2*margin, transparent)

	maxAlpha := clamp8(255 * opacity)
	layer := image.NewNRGBA(b)
	for i := 0; i+3 < len(src.Pix); i += 4 {
		// Transparent pixels keep the shadow color so blurring does not
		// darken the edge.
		layer.Pix[i], layer.Pix[i+1], layer.Pix[i+2] = c.R, c.G, c.B
		if a := src.Pix[i+3]; a > 0 {
			layer.Pix[i+3] = min(a, maxAlpha)
		}
	}

	var shadow image.Image = layer
	if blurRadius > 0 {
		// Blur on a padded layer so the shadow can spread past the image.
		padded := imaging.Paste(imaging.New(b.Dx()+2*blurRadius, b.Dy()+2*blurRadius, color.NRGBA{R: c.R, G: c.G, B: c.B}), layer, image.Pt(blurRadius, blurRadius))
		shadow = blur.Gaussian(padded, float64(blurRadius))
		canvas = imaging.Overlay(canvas, shadow, image.Pt(margin+offsetX-blurRadius, margin+offsetY-blurRadius), 1.0)
	} else {
		canvas = imaging.Overlay(canvas, shadow, image.Pt(margin+offsetX, margin+offsetY), 1.0)
	}
	return imaging.Overlay(canvas, src, image.Pt(margin, margin), 1.0)
}

// TextWatermark draws white text over img. The text height is scale tenths
// of the shorter image side, never smaller than the 13 pixel base font.
func TextWatermark(img image.Image, text, position string, opacity, scale float64) *image.NRGBA {
	b := img.Bounds()
	layer := Label(text, color.White)
	th := layer.Bounds().Dy()

	target := float64(min(b.Dx(), b.Dy())) * scale * 0.1
	var mark image.Image = layer
	if target > float64(th) {
		mark = imaging.Resize(layer, 0, int(target), imaging.Linear)
	}

	mb := mark.Bounds()
	pos := placement(position, b.Dx(), b.Dy(), mb.Dx(), mb.Dy())
	return imaging.Overlay(img, mark, pos, opacity)
}

// ImageWatermark draws mark over img, resized to scale times the width of
// img with its aspect ratio kept.
func ImageWatermark(img, mark image.Image, position string, opacity, scale float64) *image.NRGBA {
	b := img.Bounds()
	mw := max(int(float64(b.Dx())*scale), 1)
	resized := imaging.Resize(mark, mw, 0, imaging.Lanczos)
	rb := resized.Bounds()
	pos := placement(position, b.Dx(), b.Dy(), rb.Dx(), rb.Dy())
	return imaging.Overlay(img, resized, pos, opacity)
}

// placement returns the top-left corner for a w x h mark on a W x H image.
func placement(position string, W, H, w, h int) image.Point {
	switch position {
	case "top-left":
		return image.Pt(watermarkMargin, watermarkMargin)
	case "top-right":
		return image.Pt(W-w-watermarkMargin, watermarkMargin)
	case "bottom-left":
		return image.Pt(watermarkMargin, H-h-watermarkMargin)
	case "center":
		return image.Pt((W-w)/2, (H-h)/2)
	default:
		return image.Pt(W-w-watermarkMargin, H-h-watermarkMargin)
	}
}

// Vignette darkens the image towards its edges with c. Inside radius
// (a fraction of half the shorter side) the image is untouched; beyond it
// the tint ramps up to intensity at the edge.
func Vignette(img image.Image, intensity, radius float64, c color.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cx, cy := float64(w/2), float64(h/2)
	maxRadius := float64(min(w, h)) / 2
	inner := maxRadius * radius

	layer := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dist := math.Hypot(float64(x)-cx, float64(y)-cy)
			var ratio float64
			if dist > inner {
				ratio = 1
				if span := maxRadius - inner; span > 0 {
					ratio = math.Min((dist-inner)/span, 1)
				}
			}
			layer.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: clamp8(255 * intensity * ratio)})
		}
	}
	if sigma := maxRadius * 0.1; sigma > 0 {
		layer = imaging.Blur(layer, sigma)
	}
	return imaging.Overlay(img, layer, image.Pt(0, 0), 1.0)
}

// Polaroid frames img like an instant photo: border pixels on three sides
// and a deeper bottom strip, optionally rotated and given a soft shadow.
func Polaroid(img image.Image, border, bottom int, c color.NRGBA, rotation float64, shadow bool) *image.NRGBA {
	b := img.Bounds()
	frame := imaging.New(b.Dx()+2*border, b.Dy()+border+bottom, c)
	frame = imaging.Overlay(frame, img, image.Pt(border, border), 1.0)

	if rotation != 0 {
		frame = imaging.Rotate(frame, rotation, transparent)
	}
	if !shadow {
		return frame
	}

	const offset = 5
	fb := frame.Bounds()
	canvas := imaging.New(fb.Dx()+2*offset, fb.Dy()+2*offset, transparent)
	shape := Silhouette(frame, color.NRGBA{R: 128, G: 128, B: 128}, nil, 0)
	shape = Opacity(shape, 100.0/255.0)
	canvas = imaging.Overlay(canvas, blur.Gaussian(shape, 3), image.Pt(offset, offset), 1.0)
	return imaging.Overlay(canvas, frame, image.Pt(0, 0), 1.0)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
