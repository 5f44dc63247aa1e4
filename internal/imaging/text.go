package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// labelFace is the built-in bitmap face used for every label.
var labelFace = basicfont.Face7x13

// Label renders text in fg on a tight transparent canvas.
func Label(text string, fg color.Color) *image.NRGBA {
	d := &font.Drawer{Face: labelFace, Src: image.NewUniform(fg)}
	w := max(d.MeasureString(text).Ceil(), 1)
	h := labelFace.Metrics().Height.Ceil()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	d.Dst = img
	d.Dot = fixed.Point26_6{Y: labelFace.Metrics().Ascent}
	d.DrawString(text)
	return img
}

// drawLabel draws text centered on dst. Pixels outside dst are clipped.
func drawLabel(dst draw.Image, text string, fg color.Color) {
	label := Label(text, fg)
	b, lb := dst.Bounds(), label.Bounds()
	pt := image.Pt(b.Min.X+(b.Dx()-lb.Dx())/2, b.Min.Y+(b.Dy()-lb.Dy())/2)
	draw.Draw(dst, lb.Add(pt), label, image.Point{}, draw.Over)
}
