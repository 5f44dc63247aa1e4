package params

// Blend modes.
var BlendModes = []string{"normal", "multiply", "screen", "overlay", "darken", "lighten", "soft_light"}

// Blend resize modes decide the common canvas size of the two inputs.
var BlendResizeModes = []string{"fit_first", "fit_second", "fit_largest", "fit_smallest"}

// Collage layouts.
var Layouts = []string{"grid", "horizontal", "vertical"}

const (
	maxCollageImages = 25
	maxGIFFrames     = 50
)

// BatchResize is batch_resize. Each source is resized independently and
// reported at its own index.
type BatchResize struct {
	Base
	Images              []string `json:"image_sources"`
	Width               int      `json:"width"`
	Height              int      `json:"height"`
	MaintainAspectRatio bool     `json:"maintain_aspect_ratio"`
	Resample            string   `json:"resample_method"`
}

func (p BatchResize) Sources() []string { return p.Images }

// Item returns the per-element resize request for source i.
func (p BatchResize) Item(i int) Resize {
	return Resize{
		Image:           Image{Base: Base{Op: OpResizeImage, Enc: p.Enc}, Source: p.Images[i]},
		Width:           p.Width,
		Height:          p.Height,
		KeepAspectRatio: p.MaintainAspectRatio,
		Resample:        p.Resample,
	}
}

// Collage is create_collage.
type Collage struct {
	Base
	Images     []string `json:"image_sources"`
	Layout     string   `json:"layout"`
	Spacing    int      `json:"spacing"`
	Background string   `json:"background_color"`
	MaxWidth   int      `json:"max_width"`
	MaxHeight  int      `json:"max_height"`
}

func (p Collage) Sources() []string { return p.Images }

// ThumbnailGrid is create_thumbnail_grid.
type ThumbnailGrid struct {
	Base
	Images        []string `json:"image_sources"`
	ThumbnailSize int      `json:"thumbnail_size"`
	Columns       int      `json:"columns"`
	Spacing       int      `json:"spacing"`
	Background    string   `json:"background_color"`
	BorderWidth   int      `json:"border_width"`
	BorderColor   string   `json:"border_color"`
}

func (p ThumbnailGrid) Sources() []string { return p.Images }

// Blend is blend_images. The second image is composited over the first.
type Blend struct {
	Base
	First      string  `json:"image1_source"`
	Second     string  `json:"image2_source"`
	Mode       string  `json:"blend_mode"`
	Opacity    float64 `json:"opacity"`
	ResizeMode string  `json:"resize_mode"`
}

func (p Blend) Sources() []string { return []string{p.First, p.Second} }

// ExtractColors is extract_colors.
type ExtractColors struct {
	Image
	ColorCount    int  `json:"color_count"`
	CreatePalette bool `json:"create_palette"`
	PaletteWidth  int  `json:"palette_width"`
	PaletteHeight int  `json:"palette_height"`
}

// GIF is create_gif. LoopCount follows image/gif: 0 loops forever, -1
// plays once, n > 0 repeats n times.
type GIF struct {
	Base
	Images       []string `json:"image_sources"`
	DurationMS   int      `json:"duration"`
	LoopCount    int      `json:"loop"`
	ResizeWidth  int      `json:"resize_width,omitempty"`
	ResizeHeight int      `json:"resize_height,omitempty"`
}

func (p GIF) Sources() []string { return p.Images }

// Stats is get_performance_stats and reset_performance_stats.
type Stats struct {
	Base
}

func init() {
	register(buildBatchResize, OpBatchResize)
	register(buildCollage, OpCreateCollage)
	register(buildThumbnailGrid, OpCreateThumbnailGrid)
	register(buildBlend, OpBlendImages)
	register(buildExtractColors, OpExtractColors)
	register(buildGIF, OpCreateGIF)
	register(buildStats, OpGetPerformanceStats, OpResetPerformanceStats)
}

func buildBatchResize(op string, r *reader) Params {
	images := r.sources("image_sources", 1, r.limits.MaxBatchSize)
	maxDim := r.limits.MaxDimension
	return BatchResize{
		Base:                Base{Op: op, Enc: r.encoding("output_format")},
		Images:              images,
		Width:               r.requiredInt(r.alias("width", "target_width"), 1, maxDim),
		Height:              r.requiredInt(r.alias("height", "target_height"), 1, maxDim),
		MaintainAspectRatio: r.boolean(r.alias("maintain_aspect_ratio", "keep_aspect_ratio"), true),
		Resample:            r.enum("resample_method", "LANCZOS", ResampleMethods...),
	}
}

func buildCollage(op string, r *reader) Params {
	images := r.sources("image_sources", 2, maxCollageImages)
	maxDim := r.limits.MaxDimension
	return Collage{
		Base:       Base{Op: op, Enc: r.encoding("output_format")},
		Images:     images,
		Layout:     r.enum("layout", "grid", Layouts...),
		Spacing:    r.integer("spacing", 10, 0, 50),
		Background: r.color("background_color", "#FFFFFF"),
		MaxWidth:   r.integer("max_width", 1200, 200, maxDim),
		MaxHeight:  r.integer("max_height", 1200, 200, maxDim),
	}
}

func buildThumbnailGrid(op string, r *reader) Params {
	images := r.sources("image_sources", 1, r.limits.MaxBatchSize)
	return ThumbnailGrid{
		Base:          Base{Op: op, Enc: r.encoding("output_format")},
		Images:        images,
		ThumbnailSize: r.integer("thumbnail_size", 150, 50, 300),
		Columns:       r.integer(r.alias("columns", "grid_columns"), 4, 1, 10),
		Spacing:       r.integer("spacing", 10, 0, 50),
		Background:    r.color("background_color", "#FFFFFF"),
		BorderWidth:   r.integer("border_width", 2, 0, 10),
		BorderColor:   r.color("border_color", "#CCCCCC"),
	}
}

func buildBlend(op string, r *reader) Params {
	first := r.source("image1_source")
	second := r.source("image2_source")
	return Blend{
		Base:       Base{Op: op, Enc: r.encoding("output_format")},
		First:      first,
		Second:     second,
		Mode:       r.enum("blend_mode", "normal", BlendModes...),
		Opacity:    r.float("opacity", 0.5, 0, 1),
		ResizeMode: r.enum("resize_mode", "fit_first", BlendResizeModes...),
	}
}

func buildExtractColors(op string, r *reader) Params {
	img := single(op, r)
	key := r.alias("color_count", "num_colors")
	return ExtractColors{
		Image:         img,
		ColorCount:    r.integer(key, 5, 1, 20),
		CreatePalette: r.boolean("create_palette", true),
		PaletteWidth:  r.integer("palette_width", 400, 100, 800),
		PaletteHeight: r.integer("palette_height", 100, 50, 200),
	}
}

func buildGIF(op string, r *reader) Params {
	images := r.sources("image_sources", 2, maxGIFFrames)
	p := GIF{
		Base:       Base{Op: op, Enc: Encoding{Format: "GIF", Quality: r.limits.DefaultQuality, Mode: r.enum("output_mode", r.limits.DefaultMode, OutputModes...)}},
		Images:     images,
		DurationMS: r.integer("duration", 500, 100, 5000),
	}

	// loop may be a boolean (loop forever or play once) or a repeat count.
	if v, ok := r.lookup("loop"); ok && r.err == nil {
		if b, isBool := v.(bool); isBool {
			if !b {
				p.LoopCount = -1
			}
		} else {
			p.LoopCount = r.integer("loop", 0, 0, 65535)
		}
	}

	if v, ok := r.lookup("resize_to"); ok && r.err == nil {
		size, isMap := v.(map[string]any)
		if !isMap {
			r.fail("resize_to", "must be an object with width and height")
			return p
		}
		sub := newReader(size, r.limits)
		p.ResizeWidth = sub.requiredInt("width", 50, 800)
		p.ResizeHeight = sub.requiredInt("height", 50, 800)
		if sub.err != nil && r.err == nil {
			r.fail("resize_to", "%v", sub.err)
		}
	}
	return p
}

func buildStats(op string, r *reader) Params {
	return Stats{Base{Op: op}}
}
