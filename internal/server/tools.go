package server

import (
	"github.com/ironsheep/image-edit-mcp/internal/params"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

type props map[string]interface{}

func object(properties props, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}(properties),
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func str(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func number(description string, lo, hi, def float64) map[string]interface{} {
	return map[string]interface{}{
		"type": "number", "description": description,
		"minimum": lo, "maximum": hi, "default": def,
	}
}

func integer(description string, lo, hi, def int) map[string]interface{} {
	return map[string]interface{}{
		"type": "integer", "description": description,
		"minimum": lo, "maximum": hi, "default": def,
	}
}

func boolean(description string, def bool) map[string]interface{} {
	return map[string]interface{}{"type": "boolean", "description": description, "default": def}
}

func enum(description string, values []string, def string) map[string]interface{} {
	schema := map[string]interface{}{"type": "string", "description": description, "enum": values}
	if def != "" {
		schema["default"] = def
	}
	return schema
}

func colorProp(description, def string) map[string]interface{} {
	return map[string]interface{}{
		"type": "string", "description": description + " (#RGB, #RRGGBB or #RRGGBBAA)",
		"pattern": "^#([A-Fa-f0-9]{3}|[A-Fa-f0-9]{6}|[A-Fa-f0-9]{8})$", "default": def,
	}
}

func sources(description string, lo, hi int) map[string]interface{} {
	return map[string]interface{}{
		"type": "array", "description": description,
		"items":    map[string]interface{}{"type": "string"},
		"minItems": lo, "maxItems": hi,
	}
}

const sourceHelp = "Image file path or data:image/<format>;base64,<payload> URI"

// withOutput adds the shared output_format, quality and output_mode
// properties under formatKey.
func withOutput(p props, formatKey string) props {
	p[formatKey] = enum("Output image format", params.Formats, "PNG")
	p["quality"] = integer("Quality for lossy formats", 1, 100, 95)
	p["output_mode"] = enum("Return the image inline or as a temp file reference", params.OutputModes, params.ModeInline)
	return p
}

// single builds the schema of an operation on one image_source.
func single(extra props, required ...string) map[string]interface{} {
	p := props{"image_source": str(sourceHelp)}
	for k, v := range extra {
		p[k] = v
	}
	return object(withOutput(p, "output_format"), append([]string{"image_source"}, required...)...)
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	factor := func(what string) map[string]interface{} {
		return single(props{"factor": number(what+" factor; 1.0 leaves the image unchanged", 0, 2, 1)}, "factor")
	}
	blur := single(props{"radius": number("Blur radius in pixels", 0.1, 10, 2)}, "radius")

	return []Tool{
		// Basic
		{
			Name:        params.OpLoadImage,
			Description: "Load an image from a file path or data URI and return it with its metadata.",
			InputSchema: object(withOutput(props{"source": str(sourceHelp)}, "output_format"), "source"),
		},
		{
			Name:        params.OpSaveImage,
			Description: "Save an image to output_path in the given format.",
			InputSchema: object(withOutput(props{
				"image_source": str(sourceHelp),
				"output_path":  str("Destination file path"),
			}, "format"), "image_source", "output_path"),
		},
		{
			Name:        params.OpGetImageInfo,
			Description: "Report the dimensions, mode, format and transparency of an image.",
			InputSchema: object(props{"image_source": str(sourceHelp)}, "image_source"),
		},
		{
			Name:        params.OpConvertFormat,
			Description: "Convert an image to another format.",
			InputSchema: object(withOutput(props{"image_source": str(sourceHelp)}, "target_format"), "image_source", "target_format"),
		},

		// Transform
		{
			Name:        params.OpResizeImage,
			Description: "Resize an image, optionally keeping its aspect ratio.",
			InputSchema: single(props{
				"width":             integer("Target width in pixels", 1, 4096, 0),
				"height":            integer("Target height in pixels", 1, 4096, 0),
				"keep_aspect_ratio": boolean("Fit inside width x height keeping proportions", true),
				"resample":          enum("Resampling filter", params.ResampleMethods, "LANCZOS"),
			}, "width", "height"),
		},
		{
			Name:        params.OpCropImage,
			Description: "Crop the box [left,right) x [top,bottom) from an image.",
			InputSchema: single(props{
				"left":   integer("Left edge (inclusive)", 0, 4096, 0),
				"top":    integer("Top edge (inclusive)", 0, 4096, 0),
				"right":  integer("Right edge (exclusive)", 0, 4096, 0),
				"bottom": integer("Bottom edge (exclusive)", 0, 4096, 0),
			}, "left", "top", "right", "bottom"),
		},
		{
			Name:        params.OpRotateImage,
			Description: "Rotate an image counter-clockwise by angle degrees.",
			InputSchema: single(props{
				"angle":      map[string]interface{}{"type": "number", "description": "Rotation angle in degrees"},
				"expand":     boolean("Grow the canvas to hold the whole rotated image", true),
				"fill_color": colorProp("Color of uncovered areas", "#FFFFFF"),
			}, "angle"),
		},
		{
			Name:        params.OpFlipImage,
			Description: "Mirror an image horizontally or vertically.",
			InputSchema: single(props{
				"direction": enum("Flip direction", []string{params.FlipHorizontal, params.FlipVertical}, ""),
			}, "direction"),
		},

		// Filters
		{Name: params.OpApplyBlur, Description: "Apply a box blur.", InputSchema: blur},
		{Name: params.OpApplyGaussianBlur, Description: "Apply a gaussian blur.", InputSchema: blur},
		{Name: params.OpApplySharpen, Description: "Sharpen an image.", InputSchema: single(nil)},
		{Name: params.OpApplyEdgeEnhance, Description: "Enhance edges.", InputSchema: single(nil)},
		{Name: params.OpApplyEmboss, Description: "Apply an emboss effect.", InputSchema: single(nil)},
		{Name: params.OpApplyFindEdges, Description: "Keep only the edges of an image.", InputSchema: single(nil)},
		{Name: params.OpApplySmooth, Description: "Smooth an image.", InputSchema: single(nil)},
		{Name: params.OpApplyContour, Description: "Draw the contours of an image.", InputSchema: single(nil)},
		{Name: params.OpApplySepia, Description: "Apply a sepia tone.", InputSchema: single(nil)},
		{Name: params.OpApplyInvert, Description: "Invert the colors of an image.", InputSchema: single(nil)},

		// Color
		{Name: params.OpAdjustBrightness, Description: "Adjust brightness.", InputSchema: factor("Brightness")},
		{Name: params.OpAdjustContrast, Description: "Adjust contrast.", InputSchema: factor("Contrast")},
		{Name: params.OpAdjustSaturation, Description: "Adjust color saturation.", InputSchema: factor("Saturation")},
		{Name: params.OpAdjustSharpness, Description: "Adjust sharpness.", InputSchema: factor("Sharpness")},
		{Name: params.OpConvertToGrayscale, Description: "Convert an image to grayscale.", InputSchema: single(nil)},
		{
			Name:        params.OpAdjustGamma,
			Description: "Apply gamma correction; values above 1 brighten.",
			InputSchema: single(props{"gamma": number("Gamma", 0.1, 3, 1)}, "gamma"),
		},
		{
			Name:        params.OpAdjustOpacity,
			Description: "Scale the alpha channel of an image.",
			InputSchema: single(props{"opacity": number("Opacity", 0, 1, 1)}, "opacity"),
		},

		// Effects
		{
			Name:        params.OpAddBorder,
			Description: "Add a solid, rounded or shadowed border.",
			InputSchema: single(props{
				"border_width":  integer("Border width in pixels", 1, 100, 10),
				"border_color":  colorProp("Border color", "#000000"),
				"border_style":  enum("Border style", []string{params.BorderSolid, params.BorderRounded, params.BorderShadow}, params.BorderSolid),
				"corner_radius": integer("Corner radius for rounded borders", 0, 50, 10),
			}),
		},
		{
			Name:        params.OpCreateSilhouette,
			Description: "Paint every sufficiently opaque pixel in one color.",
			InputSchema: single(props{
				"silhouette_color": colorProp("Silhouette color", "#000000"),
				"background_color": str("Background color, or \"transparent\""),
				"threshold":        integer("Alpha above which a pixel is part of the silhouette", 0, 255, 128),
			}),
		},
		{
			Name:        params.OpAddShadow,
			Description: "Add a drop shadow behind an image.",
			InputSchema: single(props{
				"shadow_color":    colorProp("Shadow color", "#808080"),
				"shadow_offset_x": integer("Horizontal offset", -50, 50, 5),
				"shadow_offset_y": integer("Vertical offset", -50, 50, 5),
				"shadow_blur":     integer("Blur radius", 0, 20, 5),
				"shadow_opacity":  number("Shadow opacity", 0, 1, 0.5),
			}),
		},
		{
			Name:        params.OpAddWatermark,
			Description: "Add a text or image watermark.",
			InputSchema: single(props{
				"watermark_text":  str("Watermark text"),
				"watermark_image": str("Watermark image; used when no text is given. " + sourceHelp),
				"position":        enum("Watermark position", params.Positions, "bottom-right"),
				"opacity":         number("Watermark opacity", 0, 1, 0.5),
				"scale":           number("Watermark size relative to the image", 0.1, 2, 0.2),
			}),
		},
		{
			Name:        params.OpApplyVignette,
			Description: "Darken the edges of an image.",
			InputSchema: single(props{
				"intensity": number("Vignette strength", 0, 1, 0.5),
				"radius":    number("Untouched center radius as a fraction of half the shorter side", 0, 1, 0.7),
				"color":     colorProp("Vignette color", "#000000"),
			}),
		},
		{
			Name:        params.OpCreatePolaroid,
			Description: "Frame an image like an instant photo.",
			InputSchema: single(props{
				"border_width":  integer("Side and top border", 10, 100, 40),
				"bottom_border": integer("Bottom border", 20, 200, 80),
				"border_color":  colorProp("Frame color", "#FFFFFF"),
				"rotation":      number("Tilt in degrees", -15, 15, 0),
				"shadow":        boolean("Add a soft shadow", true),
			}),
		},

		// Advanced
		{
			Name:        params.OpBatchResize,
			Description: "Resize several images; each result is reported at its input index.",
			InputSchema: object(withOutput(props{
				"image_sources":         sources("Images to resize", 1, 20),
				"width":                 integer("Target width", 1, 4096, 0),
				"height":                integer("Target height", 1, 4096, 0),
				"maintain_aspect_ratio": boolean("Fit inside width x height keeping proportions", true),
				"resample_method":       enum("Resampling filter", params.ResampleMethods, "LANCZOS"),
			}, "output_format"), "image_sources", "width", "height"),
		},
		{
			Name:        params.OpCreateCollage,
			Description: "Arrange images in a grid, row or column.",
			InputSchema: object(withOutput(props{
				"image_sources":    sources("Images to arrange", 2, 25),
				"layout":           enum("Collage layout", params.Layouts, "grid"),
				"spacing":          integer("Gap between images", 0, 50, 10),
				"background_color": colorProp("Background color", "#FFFFFF"),
				"max_width":        integer("Maximum collage width", 200, 4096, 1200),
				"max_height":       integer("Maximum collage height", 200, 4096, 1200),
			}, "output_format"), "image_sources"),
		},
		{
			Name:        params.OpCreateThumbnailGrid,
			Description: "Lay images out as a grid of framed thumbnails.",
			InputSchema: object(withOutput(props{
				"image_sources":    sources("Images to include", 1, 20),
				"thumbnail_size":   integer("Tile size in pixels", 50, 300, 150),
				"columns":          integer("Tiles per row", 1, 10, 4),
				"spacing":          integer("Gap between tiles", 0, 50, 10),
				"background_color": colorProp("Background color", "#FFFFFF"),
				"border_width":     integer("Tile frame width", 0, 10, 2),
				"border_color":     colorProp("Tile frame color", "#CCCCCC"),
			}, "output_format"), "image_sources"),
		},
		{
			Name:        params.OpBlendImages,
			Description: "Blend a second image over a first one.",
			InputSchema: object(withOutput(props{
				"image1_source": str("Bottom image. " + sourceHelp),
				"image2_source": str("Top image. " + sourceHelp),
				"blend_mode":    enum("Blend mode", params.BlendModes, "normal"),
				"opacity":       number("Opacity of the top image", 0, 1, 0.5),
				"resize_mode":   enum("How the common size is chosen", params.BlendResizeModes, "fit_first"),
			}, "output_format"), "image1_source", "image2_source"),
		},
		{
			Name:        params.OpExtractColors,
			Description: "Find the dominant colors of an image, optionally rendering a palette.",
			InputSchema: single(props{
				"color_count":    integer("Number of colors", 1, 20, 5),
				"create_palette": boolean("Render a palette image", true),
				"palette_width":  integer("Palette width", 100, 800, 400),
				"palette_height": integer("Palette height", 50, 200, 100),
			}),
		},
		{
			Name:        params.OpCreateGIF,
			Description: "Combine images into an animated GIF.",
			InputSchema: object(props{
				"image_sources": sources("Frames in order", 2, 50),
				"duration":      integer("Frame duration in milliseconds", 100, 5000, 500),
				"loop": map[string]interface{}{
					"description": "true loops forever, false plays once, a number repeats that many times",
					"default":     true,
				},
				"resize_to": object(props{
					"width":  integer("Frame width", 50, 800, 0),
					"height": integer("Frame height", 50, 800, 0),
				}, "width", "height"),
				"output_mode": enum("Return the image inline or as a temp file reference", params.OutputModes, params.ModeInline),
			}, "image_sources"),
		},

		// Stats
		{
			Name:        params.OpGetPerformanceStats,
			Description: "Report operation, cache and concurrency statistics.",
			InputSchema: object(props{}),
		},
		{
			Name:        params.OpResetPerformanceStats,
			Description: "Reset operation statistics and clear the result cache.",
			InputSchema: object(props{}),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
