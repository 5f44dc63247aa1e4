package params

// Load is load_image. The source key is "source" rather than
// "image_source".
type Load struct {
	Image
}

// Save is save_image: the image is written to OutputPath.
type Save struct {
	Image
	OutputPath string `json:"output_path"`
}

// Convert is convert_format.
type Convert struct {
	Image
}

// Info is get_image_info.
type Info struct {
	Image
}

func init() {
	register(buildLoad, OpLoadImage)
	register(buildSave, OpSaveImage)
	register(buildInfo, OpGetImageInfo)
	register(buildConvert, OpConvertFormat)
}

func buildLoad(op string, r *reader) Params {
	src := r.source(r.alias("source", "image_source"))
	return Load{Image{Base: Base{Op: op, Enc: r.encoding("output_format")}, Source: src}}
}

func buildSave(op string, r *reader) Params {
	src := r.source("image_source")
	path := r.requiredStr("output_path")
	return Save{
		Image:      Image{Base: Base{Op: op, Enc: r.encoding("format")}, Source: src},
		OutputPath: path,
	}
}

func buildInfo(op string, r *reader) Params {
	return Info{single(op, r)}
}

func buildConvert(op string, r *reader) Params {
	src := r.source("image_source")
	if r.err == nil && !r.has("target_format") {
		r.fail("target_format", "is required")
	}
	return Convert{Image{Base: Base{Op: op, Enc: r.encoding("target_format")}, Source: src}}
}
