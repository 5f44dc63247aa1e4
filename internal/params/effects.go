package params

// Border styles.
const (
	BorderSolid   = "solid"
	BorderRounded = "rounded"
	BorderShadow  = "shadow"
)

// Watermark positions.
var Positions = []string{"top-left", "top-right", "bottom-left", "bottom-right", "center"}

// Transparent is the background keyword accepted by create_silhouette.
const Transparent = "transparent"

// Border is add_border.
type Border struct {
	Image
	Width        int    `json:"border_width"`
	Color        string `json:"border_color"`
	Style        string `json:"border_style"`
	CornerRadius int    `json:"corner_radius"`
}

// Silhouette is create_silhouette. Pixels whose alpha is above Threshold
// become Color; the rest become Background.
type Silhouette struct {
	Image
	Color      string `json:"silhouette_color"`
	Background string `json:"background_color"`
	Threshold  int    `json:"threshold"`
}

// Shadow is add_shadow.
type Shadow struct {
	Image
	Color   string  `json:"shadow_color"`
	OffsetX int     `json:"shadow_offset_x"`
	OffsetY int     `json:"shadow_offset_y"`
	Blur    int     `json:"shadow_blur"`
	Opacity float64 `json:"shadow_opacity"`
}

// Watermark is add_watermark. Exactly one of Text or Mark is used; Text
// wins when both are given.
type Watermark struct {
	Image
	Text     string  `json:"watermark_text,omitempty"`
	Mark     string  `json:"watermark_image,omitempty"`
	Position string  `json:"position"`
	Opacity  float64 `json:"opacity"`
	Scale    float64 `json:"scale"`
}

func (p Watermark) Sources() []string {
	if p.Text == "" && p.Mark != "" {
		return []string{p.Source, p.Mark}
	}
	return []string{p.Source}
}

// Vignette is apply_vignette.
type Vignette struct {
	Image
	Intensity float64 `json:"intensity"`
	Radius    float64 `json:"radius"`
	Color     string  `json:"color"`
}

// Polaroid is create_polaroid.
type Polaroid struct {
	Image
	BorderWidth  int     `json:"border_width"`
	BottomBorder int     `json:"bottom_border"`
	Color        string  `json:"border_color"`
	Rotation     float64 `json:"rotation"`
	Shadow       bool    `json:"shadow"`
}

func init() {
	register(buildBorder, OpAddBorder)
	register(buildSilhouette, OpCreateSilhouette)
	register(buildShadow, OpAddShadow)
	register(buildWatermark, OpAddWatermark)
	register(buildVignette, OpApplyVignette)
	register(buildPolaroid, OpCreatePolaroid)
}

func buildBorder(op string, r *reader) Params {
	img := single(op, r)
	return Border{
		Image:        img,
		Width:        r.integer("border_width", 10, 1, 100),
		Color:        r.color("border_color", "#000000"),
		Style:        r.enum("border_style", BorderSolid, BorderSolid, BorderRounded, BorderShadow),
		CornerRadius: r.integer("corner_radius", 10, 0, 50),
	}
}

func buildSilhouette(op string, r *reader) Params {
	img := single(op, r)
	return Silhouette{
		Image:      img,
		Color:      r.color("silhouette_color", "#000000"),
		Background: r.colorOrKeyword("background_color", Transparent, Transparent),
		Threshold:  r.integer("threshold", 128, 0, 255),
	}
}

func buildShadow(op string, r *reader) Params {
	img := single(op, r)
	return Shadow{
		Image:   img,
		Color:   r.color("shadow_color", "#808080"),
		OffsetX: r.integer("shadow_offset_x", 5, -50, 50),
		OffsetY: r.integer("shadow_offset_y", 5, -50, 50),
		Blur:    r.integer("shadow_blur", 5, 0, 20),
		Opacity: r.float("shadow_opacity", 0.5, 0, 1),
	}
}

func buildWatermark(op string, r *reader) Params {
	img := single(op, r)
	p := Watermark{
		Image:    img,
		Text:     r.str("watermark_text", ""),
		Position: r.enum("position", "bottom-right", Positions...),
		Opacity:  r.float("opacity", 0.5, 0, 1),
		Scale:    r.float("scale", 0.2, 0.1, 2),
	}
	if p.Text == "" {
		p.Mark = r.optionalSource("watermark_image")
		if r.err == nil && p.Mark == "" {
			r.fail("watermark_text", "either watermark_text or watermark_image is required")
		}
	}
	return p
}

func buildVignette(op string, r *reader) Params {
	img := single(op, r)
	key := r.alias("intensity", "strength")
	return Vignette{
		Image:     img,
		Intensity: r.float(key, 0.5, 0, 1),
		Radius:    r.float("radius", 0.7, 0, 1),
		Color:     r.color("color", "#000000"),
	}
}

func buildPolaroid(op string, r *reader) Params {
	img := single(op, r)
	return Polaroid{
		Image:        img,
		BorderWidth:  r.integer("border_width", 40, 10, 100),
		BottomBorder: r.integer("bottom_border", 80, 20, 200),
		Color:        r.color("border_color", "#FFFFFF"),
		Rotation:     r.float("rotation", 0, -15, 15),
		Shadow:       r.boolean("shadow", true),
	}
}
