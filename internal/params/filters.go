package params

// Filter is any single-image operation without parameters of its own:
// the fixed-kernel filters, sepia, invert and grayscale.
type Filter struct {
	Image
}

// Blur is apply_blur and apply_gaussian_blur.
type Blur struct {
	Image
	Radius float64 `json:"radius"`
}

// Factor is adjust_brightness, adjust_contrast, adjust_saturation and
// adjust_sharpness. 1.0 leaves the image unchanged.
type Factor struct {
	Image
	Factor float64 `json:"factor"`
}

// Gamma is adjust_gamma.
type Gamma struct {
	Image
	Gamma float64 `json:"gamma"`
}

// Opacity is adjust_opacity.
type Opacity struct {
	Image
	Opacity float64 `json:"opacity"`
}

func init() {
	register(buildFilter,
		OpApplySharpen, OpApplyEdgeEnhance, OpApplyEmboss, OpApplyFindEdges,
		OpApplySmooth, OpApplyContour, OpApplySepia, OpApplyInvert,
		OpConvertToGrayscale)
	register(buildBlur, OpApplyBlur, OpApplyGaussianBlur)
	register(buildFactor, OpAdjustBrightness, OpAdjustContrast, OpAdjustSaturation, OpAdjustSharpness)
	register(buildGamma, OpAdjustGamma)
	register(buildOpacity, OpAdjustOpacity)
}

func buildFilter(op string, r *reader) Params {
	return Filter{single(op, r)}
}

func buildBlur(op string, r *reader) Params {
	img := single(op, r)
	return Blur{Image: img, Radius: r.requiredFloat("radius", 0.1, 10)}
}

func buildFactor(op string, r *reader) Params {
	img := single(op, r)
	return Factor{Image: img, Factor: r.requiredFloat("factor", 0, 2)}
}

func buildGamma(op string, r *reader) Params {
	img := single(op, r)
	return Gamma{Image: img, Gamma: r.requiredFloat("gamma", 0.1, 3)}
}

func buildOpacity(op string, r *reader) Params {
	img := single(op, r)
	return Opacity{Image: img, Opacity: r.requiredFloat("opacity", 0, 1)}
}
