package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// ParseHexColor parses "#RGB", "#RRGGBB" or "#RRGGBBAA" into a
// non-premultiplied color. Colors without an alpha component are opaque.
func ParseHexColor(s string) (color.NRGBA, error) {
	alpha := uint8(255)
	rgb := s
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in color %q: %w", s, err)
		}
		alpha = uint8(a)
		rgb = s[:7]
	}
	if len(rgb) != 4 && len(rgb) != 7 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}

	c, err := colorful.Hex(strings.ToLower(rgb))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// MustParseHexColor is ParseHexColor for colors that were already validated.
// An unparsable color yields opaque black.
func MustParseHexColor(s string) color.NRGBA {
	c, err := ParseHexColor(s)
	if err != nil {
		return color.NRGBA{A: 255}
	}
	return c
}

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSLColor represents a color in HSL color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorFrequency represents a color and its share of the image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // "#rrggbb"
	RGB        RGBColor `json:"rgb"`        // mean of the pixels in the bucket
	HSL        HSLColor `json:"hsl"`        // HSL of RGB
	Percentage float64  `json:"percentage"` // share of opaque pixels, 0-100
}

// ExtractColors returns up to count dominant colors of img, most common
// first.
//
// # Color Quantization
//
// Pixels are grouped into buckets by dropping the low four bits of each
// component, so colors within 16 units of each other (per component) share
// a bucket. Each reported color is the mean of its bucket, not the bucket
// corner, so a flat image reports its exact color. Fully transparent pixels
// are ignored. Ties are broken by bucket key so the result is stable.
func ExtractColors(img image.Image, count int) []ColorFrequency {
	type bucket struct {
		key        uint32
		n          int
		sr, sg, sb int
	}

	bounds := img.Bounds()
	buckets := make(map[uint32]*bucket)
	total := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			key := uint32(c.R>>4)<<8 | uint32(c.G>>4)<<4 | uint32(c.B>>4)
			bk, ok := buckets[key]
			if !ok {
				bk = &bucket{key: key}
				buckets[key] = bk
			}
			bk.n++
			bk.sr += int(c.R)
			bk.sg += int(c.G)
			bk.sb += int(c.B)
			total++
		}
	}

	list := make([]*bucket, 0, len(buckets))
	for _, bk := range buckets {
		list = append(list, bk)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].n != list[j].n {
			return list[i].n > list[j].n
		}
		return list[i].key < list[j].key
	})
	if len(list) > count {
		list = list[:count]
	}

	colors := make([]ColorFrequency, 0, len(list))
	for _, bk := range list {
		rgb := RGBColor{
			R: uint8(bk.sr / bk.n),
			G: uint8(bk.sg / bk.n),
			B: uint8(bk.sb / bk.n),
		}
		c, _ := colorful.MakeColor(color.NRGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255})
		colors = append(colors, ColorFrequency{
			Hex:        c.Hex(),
			RGB:        rgb,
			HSL:        toHSL(c),
			Percentage: float64(bk.n) / float64(total) * 100,
		})
	}
	return colors
}

func toHSL(c colorful.Color) HSLColor {
	h, s, l := c.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return HSLColor{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}

// Palette renders colors as equal-width vertical stripes. The last stripe
// absorbs the rounding remainder.
func Palette(colors []ColorFrequency, width, height int) *image.NRGBA {
	canvas := imaging.New(width, height, color.White)
	if len(colors) == 0 {
		return canvas
	}
	stripe := width / len(colors)
	for i, c := range colors {
		x1 := i * stripe
		x2 := x1 + stripe
		if i == len(colors)-1 {
			x2 = width
		}
		fill := color.NRGBA{R: c.RGB.R, G: c.RGB.G, B: c.RGB.B, A: 255}
		for y := 0; y < height; y++ {
			for x := x1; x < x2; x++ {
				canvas.SetNRGBA(x, y, fill)
			}
		}
	}
	return canvas
}
