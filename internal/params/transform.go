package params

// Resize is resize_image.
type Resize struct {
	Image
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	KeepAspectRatio bool   `json:"keep_aspect_ratio"`
	Resample        string `json:"resample"`
}

// Crop is crop_image. Right and Bottom are exclusive. Whether the box fits
// inside the image is only known after decoding.
type Crop struct {
	Image
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Rotate is rotate_image. Angle is in degrees counter-clockwise and is not
// range limited.
type Rotate struct {
	Image
	Angle     float64 `json:"angle"`
	Expand    bool    `json:"expand"`
	FillColor string  `json:"fill_color"`
}

// Flip is flip_image.
type Flip struct {
	Image
	Direction string `json:"direction"`
}

// Flip directions.
const (
	FlipHorizontal = "horizontal"
	FlipVertical   = "vertical"
)

func init() {
	register(buildResize, OpResizeImage)
	register(buildCrop, OpCropImage)
	register(buildRotate, OpRotateImage)
	register(buildFlip, OpFlipImage)
}

func buildResize(op string, r *reader) Params {
	img := single(op, r)
	maxDim := r.limits.MaxDimension
	return Resize{
		Image:           img,
		Width:           r.requiredInt("width", 1, maxDim),
		Height:          r.requiredInt("height", 1, maxDim),
		KeepAspectRatio: r.boolean("keep_aspect_ratio", true),
		Resample:        r.enum("resample", "LANCZOS", ResampleMethods...),
	}
}

func buildCrop(op string, r *reader) Params {
	img := single(op, r)
	maxDim := r.limits.MaxDimension
	p := Crop{
		Image:  img,
		Left:   r.requiredInt("left", 0, maxDim),
		Top:    r.requiredInt("top", 0, maxDim),
		Right:  r.requiredInt("right", 0, maxDim),
		Bottom: r.requiredInt("bottom", 0, maxDim),
	}
	switch {
	case r.err != nil:
	case p.Right <= p.Left:
		r.fail("right", "must be greater than left (%d), got %d", p.Left, p.Right)
	case p.Bottom <= p.Top:
		r.fail("bottom", "must be greater than top (%d), got %d", p.Top, p.Bottom)
	}
	return p
}

func buildRotate(op string, r *reader) Params {
	img := single(op, r)
	if r.err == nil && !r.has("angle") {
		r.fail("angle", "is required")
	}
	return Rotate{
		Image:     img,
		Angle:     r.unboundedFloat("angle", 0),
		Expand:    r.boolean("expand", true),
		FillColor: r.color("fill_color", "#FFFFFF"),
	}
}

func buildFlip(op string, r *reader) Params {
	img := single(op, r)
	return Flip{
		Image:     img,
		Direction: r.requiredEnum("direction", FlipHorizontal, FlipVertical),
	}
}
