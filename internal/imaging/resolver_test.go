package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-edit-mcp/internal/apperrors"
)

var testLimits = Limits{MaxDimension: 4096, MaxBytes: 10 * 1024 * 1024}

func writeImage(t *testing.T, img image.Image, format string) string {
	t.Helper()
	data, err := Encode(img, format, 90)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "img."+Extension(format))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestResolve_File(t *testing.T) {
	path := writeImage(t, createPatternImage(20, 10), "PNG")

	h, err := Resolve(path, testLimits)
	require.NoError(t, err)

	assert.Equal(t, 20, h.Width)
	assert.Equal(t, 10, h.Height)
	assert.Equal(t, "PNG", h.Format)
	assert.Equal(t, "RGB", h.Mode)
	assert.Positive(t, h.SizeBytes)
}

func TestResolve_TransparentPNG(t *testing.T) {
	img := createPatternImage(10, 10)
	img.Set(0, 0, color.NRGBA{})
	path := writeImage(t, img, "PNG")

	h, err := Resolve(path, testLimits)
	require.NoError(t, err)
	assert.Equal(t, "RGBA", h.Mode)
	assert.True(t, Describe(h).HasAlpha)
}

func TestResolve_DataURI(t *testing.T) {
	data, err := Encode(createPatternImage(8, 4), "JPEG", 90)
	require.NoError(t, err)
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)

	h, err := Resolve(uri, testLimits)
	require.NoError(t, err)
	assert.Equal(t, "JPEG", h.Format)
	assert.Equal(t, 8, h.Width)
	assert.Equal(t, "YCbCr", h.Mode)
}

func TestResolve_Errors(t *testing.T) {
	png := writeImage(t, createPatternImage(20, 20), "PNG")
	garbage := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))

	tests := []struct {
		name   string
		source string
		limits Limits
		want   error
	}{
		{"missing file", filepath.Join(t.TempDir(), "missing.png"), testLimits, apperrors.ErrSourceNotFound},
		{"not an image", garbage, testLimits, apperrors.ErrDecode},
		{"bad data uri", "data:image/png;base64,@@@", testLimits, apperrors.ErrDecode},
		{"dimensions too large", png, Limits{MaxDimension: 10}, apperrors.ErrSizeExceeded},
		{"payload too large", png, Limits{MaxDimension: 100, MaxBytes: 10}, apperrors.ErrSizeExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.source, tt.limits)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDescribe(t *testing.T) {
	h := NewHandle(createPatternImage(20, 10), "PNG", 123)
	info := Describe(h)

	assert.Equal(t, 20, info.Width)
	assert.Equal(t, 10, info.Height)
	assert.Equal(t, "8-bit", info.ColorDepth)
	assert.False(t, info.HasAlpha)
	assert.Equal(t, int64(123), info.SizeBytes)
	assert.InDelta(t, 2.0, info.AspectRatio, 1e-9)

	deep := NewHandle(image.NewRGBA64(image.Rect(0, 0, 2, 2)), "PNG", 1)
	assert.Equal(t, "16-bit", Describe(deep).ColorDepth)
}

func TestMode(t *testing.T) {
	tests := []struct {
		img  image.Image
		want string
	}{
		{image.NewGray(image.Rect(0, 0, 1, 1)), "L"},
		{image.NewGray16(image.Rect(0, 0, 1, 1)), "I;16"},
		{image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.Black}), "P"},
		{image.NewCMYK(image.Rect(0, 0, 1, 1)), "CMYK"},
		{createInMemoryImage(1, 1, color.NRGBA{1, 2, 3, 255}), "RGB"},
		{createInMemoryImage(1, 1, color.NRGBA{1, 2, 3, 10}), "RGBA"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Mode(tt.img), "%T", tt.img)
	}
}

func TestEncode_Formats(t *testing.T) {
	img := createPatternImage(16, 16)

	for _, format := range []string{"PNG", "JPEG", "WEBP", "BMP", "TIFF", "GIF", "png"} {
		t.Run(format, func(t *testing.T) {
			data, err := Encode(img, format, 80)
			require.NoError(t, err)

			cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, MIMEType(format), "image/"+name)
			assert.Equal(t, 16, cfg.Width)
		})
	}
}

func TestEncode_JPEGFlattensOntoWhite(t *testing.T) {
	img := createInMemoryImage(8, 8, color.NRGBA{})

	data, err := Encode(img, "JPEG", 100)
	require.NoError(t, err)
	decoded, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	c := nrgbaAt(decoded, 4, 4)
	assert.Greater(t, c.R, uint8(250))
	assert.Greater(t, c.B, uint8(250))
}

// modeImages returns a 12x8 image for each channel layout that survives a
// PNG write.
func modeImages() map[string]image.Image {
	r := image.Rect(0, 0, 12, 8)
	gray := image.NewGray(r)
	gray16 := image.NewGray16(r)
	paletted := image.NewPaletted(r, color.Palette{color.Black, color.White, color.NRGBA{255, 0, 0, 255}})
	for y := 0; y < 8; y++ {
		for x := 0; x < 12; x++ {
			gray.SetGray(x, y, color.Gray{Y: uint8(x * 20)})
			gray16.SetGray16(x, y, color.Gray16{Y: uint16(x*5000 + y)})
			paletted.SetColorIndex(x, y, uint8((x+y)%3))
		}
	}
	rgba := createPatternImage(12, 8)
	rgba.Set(0, 0, color.NRGBA{R: 10, A: 100})

	return map[string]image.Image{
		"L":    gray,
		"I;16": gray16,
		"P":    paletted,
		"RGB":  createPatternImage(12, 8),
		"RGBA": rgba,
	}
}

func TestEncode_RoundTripKeepsMode(t *testing.T) {
	tests := []struct {
		mode     string
		format   string
		wantMode string
	}{
		{"L", "PNG", "L"},
		{"I;16", "PNG", "I;16"},
		{"P", "PNG", "P"},
		{"RGB", "PNG", "RGB"},
		{"RGBA", "PNG", "RGBA"},
		{"L", "TIFF", "L"},
		{"I;16", "TIFF", "I;16"},
		{"P", "TIFF", "P"},
		{"RGB", "TIFF", "RGB"},
		{"RGBA", "TIFF", "RGBA"},
		{"P", "BMP", "P"},
		{"RGB", "BMP", "RGB"},
		// BMP stores gray as an 8 bit palette, has no 16 bit gray and
		// no alpha channel.
		{"L", "BMP", "P"},
		{"I;16", "BMP", "RGB"},
		{"RGBA", "BMP", "RGB"},
	}

	images := modeImages()
	for _, tt := range tests {
		t.Run(tt.mode+" as "+tt.format, func(t *testing.T) {
			src, err := Resolve(writeImage(t, images[tt.mode], "PNG"), testLimits)
			require.NoError(t, err)
			require.Equal(t, tt.mode, src.Mode)

			data, err := Encode(src.Image, tt.format, 90)
			require.NoError(t, err)
			path := filepath.Join(t.TempDir(), "out."+Extension(tt.format))
			require.NoError(t, os.WriteFile(path, data, 0o644))

			out, err := Resolve(path, testLimits)
			require.NoError(t, err)
			assert.Equal(t, tt.format, out.Format)
			assert.Equal(t, src.Width, out.Width)
			assert.Equal(t, src.Height, out.Height)
			assert.Equal(t, tt.wantMode, out.Mode)
		})
	}
}

func TestEncode_Unsupported(t *testing.T) {
	_, err := Encode(createPatternImage(4, 4), "XCF", 90)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)
}

func TestFlatten(t *testing.T) {
	opaque := createPatternImage(4, 4)
	assert.Same(t, opaque, Flatten(opaque, color.White))

	blank := createInMemoryImage(4, 4, color.NRGBA{})
	flat := Flatten(blank, color.White)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, nrgbaAt(flat, 1, 1))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "jpg", Extension("JPEG"))
	assert.Equal(t, "tif", Extension("TIFF"))
	assert.Equal(t, "png", Extension("PNG"))
	assert.Equal(t, "webp", Extension("WEBP"))
}
