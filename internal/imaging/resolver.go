package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WEBP format decoder

	"github.com/ironsheep/image-edit-mcp/internal/apperrors"
	"github.com/ironsheep/image-edit-mcp/internal/params"
)

// Limits bounds what Resolve is willing to decode.
type Limits struct {
	// MaxDimension is the largest accepted width or height in pixels.
	MaxDimension int

	// MaxBytes is the largest accepted encoded payload in bytes. Zero means
	// no limit.
	MaxBytes int64
}

// Handle is a decoded image owned by a single operation invocation.
//
// A Handle is never shared between concurrent invocations; every Resolve
// call decodes into a fresh buffer.
type Handle struct {
	// Image is the decoded raster.
	Image image.Image

	// Width and Height are the pixel dimensions.
	Width  int
	Height int

	// Mode names the channel layout: "RGB", "RGBA", "L", "LA", "P", "CMYK",
	// "YCbCr" or "I;16".
	Mode string

	// Format is the decoder that recognised the data, upper case
	// ("PNG", "JPEG", ...).
	Format string

	// SizeBytes is the encoded size of the source.
	SizeBytes int64
}

// Resolve decodes an image from a filesystem path or a
// data:image/<fmt>;base64, URI.
//
// # Errors
//
//   - apperrors.ErrSourceNotFound if a path does not exist
//   - apperrors.ErrDecode if the payload is not a decodable image
//   - apperrors.ErrSizeExceeded if the encoded payload or the decoded
//     dimensions are above limits
//
// Dimensions are read from the image header before the pixel data is
// decoded, so an oversized image is rejected without allocating its
// raster.
func Resolve(source string, limits Limits) (*Handle, error) {
	data, err := readSource(source, limits)
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDecode, err)
	}
	if limits.MaxDimension > 0 && (cfg.Width > limits.MaxDimension || cfg.Height > limits.MaxDimension) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %dx%d",
			apperrors.ErrSizeExceeded, cfg.Width, cfg.Height, limits.MaxDimension, limits.MaxDimension)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDecode, err)
	}

	return NewHandle(img, strings.ToUpper(format), int64(len(data))), nil
}

// NewHandle wraps an already decoded image.
func NewHandle(img image.Image, format string, size int64) *Handle {
	b := img.Bounds()
	return &Handle{
		Image:     img,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Mode:      Mode(img),
		Format:    format,
		SizeBytes: size,
	}
}

func readSource(source string, limits Limits) ([]byte, error) {
	if strings.HasPrefix(source, "data:") {
		_, data, err := params.SplitDataURI(source)
		if err != nil {
			return nil, err
		}
		if limits.MaxBytes > 0 && int64(len(data)) > limits.MaxBytes {
			return nil, fmt.Errorf("%w: payload is %d bytes, limit %d",
				apperrors.ErrSizeExceeded, len(data), limits.MaxBytes)
		}
		return data, nil
	}

	f, err := os.Open(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrSourceNotFound, source)
		}
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if limits.MaxBytes > 0 && stat.Size() > limits.MaxBytes {
		return nil, fmt.Errorf("%w: file is %d bytes, limit %d",
			apperrors.ErrSizeExceeded, stat.Size(), limits.MaxBytes)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

// Mode returns the channel layout name of img.
//
// The 8 and 16 bit RGBA families report "RGB" when every pixel is opaque
// and "RGBA" otherwise, so that an opaque image keeps its mode across an
// encode and decode round trip through a format that always decodes with
// an alpha channel.
func Mode(img image.Image) string {
	switch m := img.(type) {
	case *image.Gray:
		return "L"
	case *image.Gray16:
		return "I;16"
	case *image.Paletted:
		return "P"
	case *image.CMYK:
		return "CMYK"
	case *image.YCbCr:
		return "YCbCr"
	case *image.NYCbCrA:
		return "YCbCrA"
	case *image.Alpha, *image.Alpha16:
		return "A"
	case interface{ Opaque() bool }:
		if m.Opaque() {
			return "RGB"
		}
		return "RGBA"
	default:
		return "RGBA"
	}
}

// HasAlpha reports whether the image carries any non-opaque pixel.
func HasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}

// Info contains metadata about a decoded image.
type Info struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Mode is the channel layout, see Mode.
	Mode string `json:"mode"`

	// Format is the detected format, upper case.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether any pixel is not fully opaque.
	HasAlpha bool `json:"has_transparency"`

	// SizeBytes is the encoded size of the source.
	SizeBytes int64 `json:"size_bytes"`

	// AspectRatio is width divided by height.
	AspectRatio float64 `json:"aspect_ratio"`
}

// Describe returns the metadata of a handle.
//
// # Color Depth Detection
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func Describe(h *Handle) Info {
	colorDepth := "8-bit"
	switch h.Image.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		colorDepth = "16-bit"
	}

	var ratio float64
	if h.Height > 0 {
		ratio = float64(h.Width) / float64(h.Height)
	}

	return Info{
		Width:       h.Width,
		Height:      h.Height,
		Mode:        h.Mode,
		Format:      h.Format,
		ColorDepth:  colorDepth,
		HasAlpha:    HasAlpha(h.Image),
		SizeBytes:   h.SizeBytes,
		AspectRatio: ratio,
	}
}
