package pipeline

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ironsheep/image-edit-mcp/internal/imaging"
	"github.com/ironsheep/image-edit-mcp/internal/params"
)

// result is what an executor hands back to the pipeline: either an image
// to encode in the requested format, bytes that are already encoded, or
// neither for operations that only report data.
type result struct {
	img     image.Image
	encoded []byte
	format  string
	size    image.Point
	data    map[string]any
	meta    map[string]any
	message string
}

// executor runs one validated request against its resolved sources. A nil
// handle marks a source that failed to resolve; only operations that
// tolerate missing sources ever see one.
type executor func(req params.Params, hs []*imaging.Handle) (*result, error)

func size(img image.Image) []int {
	b := img.Bounds()
	return []int{b.Dx(), b.Dy()}
}

func images(hs []*imaging.Handle) []image.Image {
	out := make([]image.Image, len(hs))
	for i, h := range hs {
		if h != nil {
			out[i] = h.Image
		}
	}
	return out
}

// execute dispatches req to its transform.
func execute(req params.Params, hs []*imaging.Handle) (*result, error) {
	switch p := req.(type) {
	case params.Load:
		h := hs[0]
		return &result{
			img:     h.Image,
			meta:    map[string]any{"source": imaging.Describe(h)},
			message: fmt.Sprintf("Image loaded: %dx%d %s", h.Width, h.Height, h.Format),
		}, nil

	case params.Save:
		return &result{img: hs[0].Image, message: "Image saved to " + p.OutputPath}, nil

	case params.Info:
		info := imaging.Describe(hs[0])
		return &result{
			data:    map[string]any{"info": info},
			meta:    map[string]any{"width": info.Width, "height": info.Height, "format": info.Format, "mode": info.Mode},
			message: "Image information retrieved",
		}, nil

	case params.Convert:
		return &result{
			img:     hs[0].Image,
			meta:    map[string]any{"original_format": hs[0].Format},
			message: fmt.Sprintf("Image converted from %s to %s", hs[0].Format, p.Enc.Format),
		}, nil

	case params.Resize:
		src := hs[0].Image
		out := imaging.Resize(src, p.Width, p.Height, p.KeepAspectRatio, imaging.ResampleFilter(p.Resample))
		return &result{
			img: out,
			meta: map[string]any{
				"original_size":     size(src),
				"new_size":          size(out),
				"keep_aspect_ratio": p.KeepAspectRatio,
				"resample":          p.Resample,
			},
			message: fmt.Sprintf("Image resized to %dx%d", out.Bounds().Dx(), out.Bounds().Dy()),
		}, nil

	case params.Crop:
		out, err := imaging.Crop(hs[0].Image, p.Left, p.Top, p.Right, p.Bottom)
		if err != nil {
			return nil, err
		}
		return &result{
			img:     out,
			meta:    map[string]any{"original_size": size(hs[0].Image), "crop_box": []int{p.Left, p.Top, p.Right, p.Bottom}},
			message: fmt.Sprintf("Image cropped to %dx%d", out.Bounds().Dx(), out.Bounds().Dy()),
		}, nil

	case params.Rotate:
		out := imaging.Rotate(hs[0].Image, p.Angle, p.Expand, imaging.MustParseHexColor(p.FillColor))
		return &result{
			img:     out,
			meta:    map[string]any{"angle": p.Angle, "expand": p.Expand, "original_size": size(hs[0].Image)},
			message: fmt.Sprintf("Image rotated by %g degrees", p.Angle),
		}, nil

	case params.Flip:
		return &result{
			img:     imaging.Flip(hs[0].Image, p.Direction),
			meta:    map[string]any{"direction": p.Direction},
			message: "Image flipped " + p.Direction,
		}, nil

	case params.Filter:
		return filter(p.Op, hs[0].Image)

	case params.Blur:
		var out image.Image
		if p.Op == params.OpApplyGaussianBlur {
			out = imaging.GaussianBlur(hs[0].Image, p.Radius)
		} else {
			out = imaging.BoxBlur(hs[0].Image, p.Radius)
		}
		return &result{img: out, meta: map[string]any{"radius": p.Radius}, message: fmt.Sprintf("Blur applied with radius %g", p.Radius)}, nil

	case params.Factor:
		return adjust(p.Op, hs[0].Image, p.Factor)

	case params.Gamma:
		return &result{
			img:     imaging.Gamma(hs[0].Image, p.Gamma),
			meta:    map[string]any{"gamma": p.Gamma},
			message: fmt.Sprintf("Gamma adjusted to %g", p.Gamma),
		}, nil

	case params.Opacity:
		return &result{
			img:     imaging.Opacity(hs[0].Image, p.Opacity),
			meta:    map[string]any{"opacity": p.Opacity},
			message: fmt.Sprintf("Opacity set to %g", p.Opacity),
		}, nil

	case params.Border, params.Silhouette, params.Shadow, params.Watermark, params.Vignette, params.Polaroid:
		return effects(req, hs)

	case params.Collage, params.ThumbnailGrid, params.Blend, params.ExtractColors, params.GIF:
		return composite(req, hs)
	}
	return nil, fmt.Errorf("no executor for %s", req.Operation())
}

var filterNames = map[string]string{
	params.OpApplySharpen:       "sharpen",
	params.OpApplyEdgeEnhance:   "edge enhance",
	params.OpApplyEmboss:        "emboss",
	params.OpApplyFindEdges:     "find edges",
	params.OpApplySmooth:        "smooth",
	params.OpApplyContour:       "contour",
	params.OpApplySepia:         "sepia",
	params.OpApplyInvert:        "invert",
	params.OpConvertToGrayscale: "grayscale",
}

func filter(op string, src image.Image) (*result, error) {
	var out image.Image
	switch op {
	case params.OpApplySharpen:
		out = imaging.Sharpen(src)
	case params.OpApplyEdgeEnhance:
		out = imaging.EdgeEnhance(src)
	case params.OpApplyEmboss:
		out = imaging.Emboss(src)
	case params.OpApplyFindEdges:
		out = imaging.FindEdges(src)
	case params.OpApplySmooth:
		out = imaging.Smooth(src)
	case params.OpApplyContour:
		out = imaging.Contour(src)
	case params.OpApplySepia:
		out = imaging.Sepia(src)
	case params.OpApplyInvert:
		out = imaging.Invert(src)
	case params.OpConvertToGrayscale:
		out = imaging.Grayscale(src)
	default:
		return nil, fmt.Errorf("unknown filter %s", op)
	}
	name := filterNames[op]
	return &result{img: out, meta: map[string]any{"filter": name}, message: fmt.Sprintf("Applied %s filter", name)}, nil
}

func adjust(op string, src image.Image, factor float64) (*result, error) {
	var (
		out  image.Image
		name string
	)
	switch op {
	case params.OpAdjustBrightness:
		out, name = imaging.Brightness(src, factor), "brightness"
	case params.OpAdjustContrast:
		out, name = imaging.Contrast(src, factor), "contrast"
	case params.OpAdjustSaturation:
		out, name = imaging.Saturation(src, factor), "saturation"
	case params.OpAdjustSharpness:
		out, name = imaging.Sharpness(src, factor), "sharpness"
	default:
		return nil, fmt.Errorf("unknown adjustment %s", op)
	}
	return &result{
		img:     out,
		meta:    map[string]any{"adjustment": name, "factor": factor},
		message: fmt.Sprintf("Adjusted %s by factor %g", name, factor),
	}, nil
}

func effects(req params.Params, hs []*imaging.Handle) (*result, error) {
	src := hs[0].Image
	switch p := req.(type) {
	case params.Border:
		out := imaging.Border(src, p.Width, imaging.MustParseHexColor(p.Color), p.Style, p.CornerRadius)
		return &result{
			img:     out,
			meta:    map[string]any{"border_width": p.Width, "border_color": p.Color, "border_style": p.Style},
			message: fmt.Sprintf("Added %s border of %dpx", p.Style, p.Width),
		}, nil

	case params.Silhouette:
		var bg *color.NRGBA
		if p.Background != params.Transparent {
			c := imaging.MustParseHexColor(p.Background)
			bg = &c
		}
		out := imaging.Silhouette(src, imaging.MustParseHexColor(p.Color), bg, p.Threshold)
		return &result{
			img:     out,
			meta:    map[string]any{"silhouette_color": p.Color, "background_color": p.Background, "threshold": p.Threshold},
			message: "Silhouette created",
		}, nil

	case params.Shadow:
		out := imaging.DropShadow(src, imaging.MustParseHexColor(p.Color), p.OffsetX, p.OffsetY, p.Blur, p.Opacity)
		return &result{
			img: out,
			meta: map[string]any{
				"shadow_color":  p.Color,
				"shadow_offset": []int{p.OffsetX, p.OffsetY},
				"shadow_blur":   p.Blur,
				"original_size": size(src),
			},
			message: "Drop shadow added",
		}, nil

	case params.Watermark:
		meta := map[string]any{"position": p.Position, "opacity": p.Opacity, "scale": p.Scale}
		if p.Text != "" {
			meta["watermark_type"] = "text"
			return &result{
				img:     imaging.TextWatermark(src, p.Text, p.Position, p.Opacity, p.Scale),
				meta:    meta,
				message: "Text watermark added",
			}, nil
		}
		meta["watermark_type"] = "image"
		return &result{
			img:     imaging.ImageWatermark(src, hs[1].Image, p.Position, p.Opacity, p.Scale),
			meta:    meta,
			message: "Image watermark added",
		}, nil

	case params.Vignette:
		return &result{
			img:     imaging.Vignette(src, p.Intensity, p.Radius, imaging.MustParseHexColor(p.Color)),
			meta:    map[string]any{"intensity": p.Intensity, "radius": p.Radius, "color": p.Color},
			message: "Vignette applied",
		}, nil

	case params.Polaroid:
		out := imaging.Polaroid(src, p.BorderWidth, p.BottomBorder, imaging.MustParseHexColor(p.Color), p.Rotation, p.Shadow)
		return &result{
			img: out,
			meta: map[string]any{
				"border_width":  p.BorderWidth,
				"bottom_border": p.BottomBorder,
				"rotation":      p.Rotation,
				"shadow":        p.Shadow,
				"original_size": size(src),
			},
			message: "Polaroid effect created",
		}, nil
	}
	return nil, fmt.Errorf("no executor for %s", req.Operation())
}

func composite(req params.Params, hs []*imaging.Handle) (*result, error) {
	switch p := req.(type) {
	case params.Collage:
		out := imaging.Collage(images(hs), p.Layout, p.Spacing, imaging.MustParseHexColor(p.Background), p.MaxWidth, p.MaxHeight)
		return &result{
			img:     out,
			meta:    map[string]any{"image_count": len(hs), "layout": p.Layout, "spacing": p.Spacing},
			message: fmt.Sprintf("Collage created from %d images", len(hs)),
		}, nil

	case params.ThumbnailGrid:
		var failed []int
		for i, h := range hs {
			if h == nil {
				failed = append(failed, i)
			}
		}
		out := imaging.ThumbnailGrid(images(hs), p.ThumbnailSize, p.Columns, p.Spacing,
			imaging.MustParseHexColor(p.Background), p.BorderWidth, imaging.MustParseHexColor(p.BorderColor))
		columns := min(p.Columns, len(hs))
		return &result{
			img: out,
			meta: map[string]any{
				"thumbnail_count": len(hs),
				"thumbnail_size":  p.ThumbnailSize,
				"columns":         columns,
				"rows":            (len(hs) + p.Columns - 1) / p.Columns,
				"grid_size":       size(out),
				"failed_indices":  failed,
			},
			message: fmt.Sprintf("Thumbnail grid created with %d images", len(hs)),
		}, nil

	case params.Blend:
		out, err := imaging.Blend(hs[0].Image, hs[1].Image, p.Mode, p.Opacity, p.ResizeMode)
		if err != nil {
			return nil, err
		}
		return &result{
			img:     out,
			meta:    map[string]any{"blend_mode": p.Mode, "opacity": p.Opacity, "resize_mode": p.ResizeMode},
			message: fmt.Sprintf("Images blended using %s mode", p.Mode),
		}, nil

	case params.ExtractColors:
		src := hs[0].Image
		colors := imaging.ExtractColors(src, p.ColorCount)
		res := &result{
			data:    map[string]any{"colors": colors},
			meta:    map[string]any{"image_size": size(src), "color_count": len(colors)},
			message: fmt.Sprintf("Extracted %d dominant colors", len(colors)),
		}
		if p.CreatePalette && len(colors) > 0 {
			res.img = imaging.Palette(colors, p.PaletteWidth, p.PaletteHeight)
			res.meta["palette_size"] = []int{p.PaletteWidth, p.PaletteHeight}
		}
		return res, nil

	case params.GIF:
		encoded, err := imaging.GIF(images(hs), p.ResizeWidth, p.ResizeHeight, p.DurationMS, p.LoopCount)
		if err != nil {
			return nil, err
		}
		w, h := p.ResizeWidth, p.ResizeHeight
		if w == 0 || h == 0 {
			w, h = hs[0].Width, hs[0].Height
		}
		return &result{
			encoded: encoded,
			format:  "GIF",
			size:    image.Pt(w, h),
			meta: map[string]any{
				"frame_count": len(hs),
				"duration":    p.DurationMS,
				"loop":        p.LoopCount,
				"file_size":   len(encoded),
			},
			message: fmt.Sprintf("Animated GIF created with %d frames", len(hs)),
		}, nil
	}
	return nil, fmt.Errorf("no executor for %s", req.Operation())
}
