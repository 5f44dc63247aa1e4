// Package params turns the loosely-typed argument map of a tool call into
// one typed, range-checked struct per operation.
//
// Validate is pure apart from stat calls used to confirm that file sources
// exist. Every failure is an *apperrors.Error of kind validation naming the
// offending field.
package params

import (
	"fmt"
	"sort"

	"github.com/ironsheep/image-edit-mcp/internal/apperrors"
)

// Operation names.
const (
	OpLoadImage     = "load_image"
	OpSaveImage     = "save_image"
	OpGetImageInfo  = "get_image_info"
	OpConvertFormat = "convert_format"

	OpResizeImage = "resize_image"
	OpCropImage   = "crop_image"
	OpRotateImage = "rotate_image"
	OpFlipImage   = "flip_image"

	OpApplyBlur         = "apply_blur"
	OpApplyGaussianBlur = "apply_gaussian_blur"
	OpApplySharpen      = "apply_sharpen"
	OpApplyEdgeEnhance  = "apply_edge_enhance"
	OpApplyEmboss       = "apply_emboss"
	OpApplyFindEdges    = "apply_find_edges"
	OpApplySmooth       = "apply_smooth"
	OpApplyContour      = "apply_contour"
	OpApplySepia        = "apply_sepia"
	OpApplyInvert       = "apply_invert"

	OpAdjustBrightness   = "adjust_brightness"
	OpAdjustContrast     = "adjust_contrast"
	OpAdjustSaturation   = "adjust_saturation"
	OpAdjustSharpness    = "adjust_sharpness"
	OpConvertToGrayscale = "convert_to_grayscale"
	OpAdjustGamma        = "adjust_gamma"
	OpAdjustOpacity      = "adjust_opacity"

	OpAddBorder        = "add_border"
	OpCreateSilhouette = "create_silhouette"
	OpAddShadow        = "add_shadow"
	OpAddWatermark     = "add_watermark"
	OpApplyVignette    = "apply_vignette"
	OpCreatePolaroid   = "create_polaroid"

	OpBatchResize         = "batch_resize"
	OpCreateCollage       = "create_collage"
	OpCreateThumbnailGrid = "create_thumbnail_grid"
	OpBlendImages         = "blend_images"
	OpExtractColors       = "extract_colors"
	OpCreateGIF           = "create_gif"

	OpGetPerformanceStats   = "get_performance_stats"
	OpResetPerformanceStats = "reset_performance_stats"
)

// Output formats accepted by output_format and friends.
var Formats = []string{"PNG", "JPEG", "WEBP", "BMP", "TIFF", "GIF"}

// Output modes.
const (
	ModeInline  = "inline"
	ModeFileRef = "file_ref"
)

// OutputModes lists the accepted output_mode values.
var OutputModes = []string{ModeInline, ModeFileRef}

// Resample filters.
var ResampleMethods = []string{"NEAREST", "BILINEAR", "BICUBIC", "LANCZOS"}

// Limits carries the configured ceilings and defaults used while validating.
type Limits struct {
	MaxDimension   int
	MaxBatchSize   int
	DefaultFormat  string
	DefaultQuality int
	DefaultMode    string
}

// Encoding describes how a result image is returned.
type Encoding struct {
	Format  string `json:"format"`
	Quality int    `json:"quality"`
	Mode    string `json:"mode"`
}

// Params is a validated operation request.
type Params interface {
	// Operation returns the operation name.
	Operation() string
	// Sources returns every image source the request reads, in order.
	Sources() []string
	// Output returns the requested result encoding.
	Output() Encoding
}

// Base carries the fields shared by every request.
type Base struct {
	Op  string   `json:"-"`
	Enc Encoding `json:"output"`
}

func (b Base) Operation() string { return b.Op }
func (b Base) Output() Encoding  { return b.Enc }
func (b Base) Sources() []string { return nil }

// Image is a request that reads one image.
type Image struct {
	Base
	Source string `json:"image_source"`
}

func (p Image) Sources() []string { return []string{p.Source} }

type builder func(op string, r *reader) Params

var builders = map[string]builder{}

func register(b builder, ops ...string) {
	for _, op := range ops {
		builders[op] = b
	}
}

// Validate checks raw against the schema of op and returns the typed
// request.
func Validate(op string, raw map[string]any, limits Limits) (Params, error) {
	build, ok := builders[op]
	if !ok {
		return nil, apperrors.ValidationWrap("operation", fmt.Errorf("%w %q", apperrors.ErrUnknownOperation, op))
	}
	r := newReader(raw, limits)
	p := build(op, r)
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

// Known reports whether op is a recognised operation name.
func Known(op string) bool {
	_, ok := builders[op]
	return ok
}

// Operations returns every recognised operation name, sorted.
func Operations() []string {
	out := make([]string, 0, len(builders))
	for op := range builders {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}

func single(op string, r *reader) Image {
	src := r.source("image_source")
	return Image{
		Base:   Base{Op: op, Enc: r.encoding("output_format")},
		Source: src,
	}
}
