package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"math"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
)

// placeholderColor fills thumbnail tiles whose source could not be loaded.
var placeholderColor = color.NRGBA{R: 255, G: 0, B: 0, A: 255}

// Collage arranges images on a background of color bg.
//
// Layouts:
//   - "horizontal": one row, vertically centered, scaled down to maxW
//   - "vertical": one column, horizontally centered, scaled down to maxH
//   - "grid": ceil(sqrt(n)) columns of equal cells filling maxW x maxH
func Collage(images []image.Image, layout string, spacing int, bg color.NRGBA, maxW, maxH int) *image.NRGBA {
	switch layout {
	case "horizontal":
		return collageLine(images, spacing, bg, maxW, true)
	case "vertical":
		return collageLine(images, spacing, bg, maxH, false)
	default:
		return collageGrid(images, spacing, bg, maxW, maxH)
	}
}

func collageLine(images []image.Image, spacing int, bg color.NRGBA, limit int, horizontal bool) *image.NRGBA {
	// along is the axis images are laid out on, across the other one.
	along := func(img image.Image) int {
		if horizontal {
			return img.Bounds().Dx()
		}
		return img.Bounds().Dy()
	}

	total := spacing * (len(images) - 1)
	for _, img := range images {
		total += along(img)
	}

	scaled := images
	if total > limit {
		factor := float64(limit-spacing*(len(images)-1)) / float64(total-spacing*(len(images)-1))
		scaled = make([]image.Image, len(images))
		total = spacing * (len(images) - 1)
		for i, img := range images {
			b := img.Bounds()
			w := max(int(float64(b.Dx())*factor), 1)
			h := max(int(float64(b.Dy())*factor), 1)
			scaled[i] = imaging.Resize(img, w, h, imaging.Lanczos)
			total += along(scaled[i])
		}
	}

	across := 0
	for _, img := range scaled {
		if horizontal {
			across = max(across, img.Bounds().Dy())
		} else {
			across = max(across, img.Bounds().Dx())
		}
	}

	var canvas *image.NRGBA
	if horizontal {
		canvas = imaging.New(total, across, bg)
	} else {
		canvas = imaging.New(across, total, bg)
	}

	offset := 0
	for _, img := range scaled {
		b := img.Bounds()
		var pt image.Point
		if horizontal {
			pt = image.Pt(offset, (across-b.Dy())/2)
		} else {
			pt = image.Pt((across-b.Dx())/2, offset)
		}
		canvas = imaging.Overlay(canvas, img, pt, 1.0)
		offset += along(img) + spacing
	}
	return canvas
}

func collageGrid(images []image.Image, spacing int, bg color.NRGBA, maxW, maxH int) *image.NRGBA {
	cols, rows := gridShape(len(images))
	cellW := max((maxW-spacing*(cols-1))/cols, 1)
	cellH := max((maxH-spacing*(rows-1))/rows, 1)

	canvas := imaging.New(cols*cellW+spacing*(cols-1), rows*cellH+spacing*(rows-1), bg)
	for i, img := range images {
		thumb := imaging.Fit(img, cellW, cellH, imaging.Lanczos)
		tb := thumb.Bounds()
		x := (i%cols)*(cellW+spacing) + (cellW-tb.Dx())/2
		y := (i/cols)*(cellH+spacing) + (cellH-tb.Dy())/2
		canvas = imaging.Overlay(canvas, thumb, image.Pt(x, y), 1.0)
	}
	return canvas
}

// gridShape returns the column and row count of the most square grid that
// holds n cells.
func gridShape(n int) (cols, rows int) {
	if n <= 0 {
		return 1, 1
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = (n + cols - 1) / cols
	return cols, rows
}

// ThumbnailGrid lays images out as size x size tiles, columns per row.
// Every image is fitted inside its tile and framed by borderWidth pixels of
// borderColor. A nil entry becomes a red placeholder tile.
func ThumbnailGrid(images []image.Image, size, columns, spacing int, bg color.NRGBA, borderWidth int, borderColor color.NRGBA) *image.NRGBA {
	cols := min(columns, len(images))
	rows := (len(images) + columns - 1) / columns
	w := cols*size + spacing*(cols-1)
	h := rows*size + spacing*(rows-1)
	canvas := imaging.New(w, h, bg)

	for i, img := range images {
		tile := thumbnailTile(img, size, bg, borderWidth, borderColor)
		pt := image.Pt((i%columns)*(size+spacing), (i/columns)*(size+spacing))
		canvas = imaging.Overlay(canvas, tile, pt, 1.0)
	}
	return canvas
}

func thumbnailTile(img image.Image, size int, bg color.NRGBA, borderWidth int, borderColor color.NRGBA) *image.NRGBA {
	if img == nil {
		return placeholderTile(size)
	}
	inner := max(size-2*borderWidth, 1)
	tile := imaging.New(size, size, borderColor)
	tile = imaging.Paste(tile, imaging.New(inner, inner, bg), image.Pt(borderWidth, borderWidth))
	thumb := imaging.Fit(img, inner, inner, imaging.Lanczos)
	tb := thumb.Bounds()
	return imaging.Overlay(tile, thumb, image.Pt((size-tb.Dx())/2, (size-tb.Dy())/2), 1.0)
}

func placeholderTile(size int) *image.NRGBA {
	tile := imaging.New(size, size, placeholderColor)
	drawLabel(tile, "ERROR", color.White)
	return tile
}

// BlendSize returns the common canvas size for two images of sizes a and b.
//
// Modes:
//   - "fit_first": the size of a
//   - "fit_second": the size of b
//   - "fit_largest": the size of the image with the larger area
//   - "fit_smallest": the size of the image with the smaller area
func BlendSize(a, b image.Point, mode string) image.Point {
	switch mode {
	case "fit_second":
		return b
	case "fit_largest":
		if a.X*a.Y > b.X*b.Y {
			return a
		}
		return b
	case "fit_smallest":
		if a.X*a.Y < b.X*b.Y {
			return a
		}
		return b
	default:
		return a
	}
}

// Blend composites second over first with the named blend mode. Both images
// are resized to the BlendSize of resizeMode and second's alpha is scaled by
// opacity.
func Blend(first, second image.Image, mode string, opacity float64, resizeMode string) (*image.NRGBA, error) {
	size := BlendSize(first.Bounds().Size(), second.Bounds().Size(), resizeMode)
	bg := fitExact(first, size)
	fg := Opacity(fitExact(second, size), opacity)

	var out *image.RGBA
	switch mode {
	case "normal":
		out = blend.Normal(bg, fg)
	case "multiply":
		out = blend.Multiply(bg, fg)
	case "screen":
		out = blend.Screen(bg, fg)
	case "overlay":
		out = blend.Overlay(bg, fg)
	case "darken":
		out = blend.Darken(bg, fg)
	case "lighten":
		out = blend.Lighten(bg, fg)
	case "soft_light":
		out = blend.SoftLight(bg, fg)
	default:
		return nil, fmt.Errorf("unknown blend mode %q", mode)
	}
	return imaging.Clone(out), nil
}

func fitExact(img image.Image, size image.Point) *image.NRGBA {
	if img.Bounds().Size() == size {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, size.X, size.Y, imaging.Lanczos)
}

// GIF encodes frames as an animated GIF. Frames are flattened onto white
// and resized to width x height, or to the first frame's size when width is
// zero. delayMS is the per-frame delay; loop follows gif.GIF.LoopCount.
func GIF(frames []image.Image, width, height, delayMS, loop int) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames")
	}
	if width <= 0 || height <= 0 {
		b := frames[0].Bounds()
		width, height = b.Dx(), b.Dy()
	}

	anim := &gif.GIF{LoopCount: loop}
	for _, frame := range frames {
		flat := Flatten(fitExact(frame, image.Pt(width, height)), color.White)
		pal := image.NewPaletted(flat.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(pal, pal.Bounds(), flat, flat.Bounds().Min)
		anim.Image = append(anim.Image, pal)
		anim.Delay = append(anim.Delay, delayMS/10)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("encode gif: %w", err)
	}
	return buf.Bytes(), nil
}
