package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-edit-mcp/internal/apperrors"
	"github.com/ironsheep/image-edit-mcp/internal/config"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
	"github.com/ironsheep/image-edit-mcp/internal/metrics"
	"github.com/ironsheep/image-edit-mcp/internal/params"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Output.TempDir = t.TempDir()
	return cfg
}

// writePNG writes a w x h gradient with a transparent top-left corner.
func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	img.SetNRGBA(0, 0, color.NRGBA{})

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func decodeInline(t *testing.T, data map[string]any) image.Image {
	t.Helper()
	uri, ok := data["image_data"].(string)
	require.True(t, ok, "image_data missing from %v", data)
	_, raw, err := params.SplitDataURI(uri)
	require.NoError(t, err)
	img, _, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestExecute_UnknownOperation(t *testing.T) {
	p := New(testConfig(t))

	env := p.Execute(context.Background(), "make_coffee", map[string]any{})
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "unknown operation")
	assert.Nil(t, env.Data)
}

func TestRun_ValidationFailure(t *testing.T) {
	p := New(testConfig(t))
	path := writePNG(t, t.TempDir(), "a.png", 8, 8)

	out := p.Run(context.Background(), params.OpApplyBlur, map[string]any{"image_source": path, "radius": 50})
	assert.Equal(t, ValidationFailure, out.Kind)
	assert.True(t, apperrors.IsValidation(out.Err))
	assert.Contains(t, out.Err.Error(), "radius")
	assert.Equal(t, int64(1), p.Monitor().Stats().TotalOperations)
}

func TestRun_MissingSource(t *testing.T) {
	p := New(testConfig(t))

	out := p.Run(context.Background(), params.OpApplySepia, map[string]any{"image_source": filepath.Join(t.TempDir(), "gone.png")})
	assert.Equal(t, ValidationFailure, out.Kind)
}

func TestExecute_ResizeInline(t *testing.T) {
	p := New(testConfig(t))
	path := writePNG(t, t.TempDir(), "a.png", 40, 20)

	env := p.Execute(context.Background(), params.OpResizeImage, map[string]any{
		"image_source": path,
		"width":        20,
		"height":       20,
	})
	require.True(t, env.Success, env.Error)
	assert.Equal(t, "Image resized to 20x10", env.Message)

	img := decodeInline(t, env.Data)
	assert.Equal(t, image.Pt(20, 10), img.Bounds().Size())

	meta := env.Data["metadata"].(map[string]any)
	assert.Equal(t, params.OpResizeImage, meta["operation"])
	assert.Equal(t, 20, meta["width"])
	assert.Equal(t, 10, meta["height"])
	assert.Equal(t, "PNG", meta["format"])
	assert.Equal(t, "RGBA", meta["mode"])
	assert.Equal(t, []int{40, 20}, meta["original_size"])
}

func TestRun_CacheHit(t *testing.T) {
	p := New(testConfig(t))
	path := writePNG(t, t.TempDir(), "a.png", 16, 16)
	args := map[string]any{"image_source": path, "factor": 1.5}

	first := p.Run(context.Background(), params.OpAdjustBrightness, args)
	require.Equal(t, Success, first.Kind, "%v", first.Err)
	assert.False(t, first.CacheHit)

	second := p.Run(context.Background(), params.OpAdjustBrightness, map[string]any{"factor": 1.5, "image_source": path})
	require.Equal(t, Success, second.Kind)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Data["image_data"], second.Data["image_data"])
	assert.Equal(t, first.Message, second.Message)

	assert.Equal(t, 1, p.Cache().Stats().ItemCount)
	s := p.Monitor().Stats()
	assert.Equal(t, int64(2), s.TotalOperations)
	assert.InDelta(t, 0.5, s.CacheHitRate, 1e-9)
}

func TestRun_CacheDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Enabled = false
	p := New(cfg)
	path := writePNG(t, t.TempDir(), "a.png", 8, 8)

	for i := 0; i < 2; i++ {
		out := p.Run(context.Background(), params.OpApplyInvert, map[string]any{"image_source": path})
		require.Equal(t, Success, out.Kind)
		assert.False(t, out.CacheHit)
	}
	assert.Zero(t, p.Cache().Stats().ItemCount)
}

func TestRun_FileRef(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg)
	path := writePNG(t, t.TempDir(), "a.png", 8, 8)

	out := p.Run(context.Background(), params.OpFlipImage, map[string]any{
		"image_source":  path,
		"direction":     "vertical",
		"output_mode":   "file_ref",
		"output_format": "jpeg",
	})
	require.Equal(t, Success, out.Kind, "%v", out.Err)

	file := out.Data["file_path"].(string)
	assert.Equal(t, cfg.Output.TempDir, filepath.Dir(file))
	assert.Equal(t, ".jpg", filepath.Ext(file))
	assert.NotContains(t, out.Data, "image_data")

	h, err := imaging.Resolve(file, imaging.Limits{MaxDimension: 4096})
	require.NoError(t, err)
	assert.Equal(t, "JPEG", h.Format)
	assert.Equal(t, 8, h.Width)
}

func TestRun_SaveImage(t *testing.T) {
	p := New(testConfig(t))
	dir := t.TempDir()
	path := writePNG(t, dir, "a.png", 12, 6)
	target := filepath.Join(dir, "out", "saved.tiff")

	out := p.Run(context.Background(), params.OpSaveImage, map[string]any{
		"image_source": path,
		"output_path":  target,
		"format":       "TIFF",
	})
	require.Equal(t, Success, out.Kind, "%v", out.Err)
	assert.Equal(t, target, out.Data["file_path"])

	h, err := imaging.Resolve(target, imaging.Limits{MaxDimension: 4096})
	require.NoError(t, err)
	assert.Equal(t, "TIFF", h.Format)
	assert.Equal(t, 12, h.Width)
	assert.Equal(t, 6, h.Height)
}

func TestRun_ResetIdempotent(t *testing.T) {
	p := New(testConfig(t))
	path := writePNG(t, t.TempDir(), "a.png", 8, 8)
	require.Equal(t, Success, p.Run(context.Background(), params.OpApplySepia, map[string]any{"image_source": path}).Kind)
	require.Equal(t, 1, p.Cache().Stats().ItemCount)

	cleared := []int{1, 0}
	for _, want := range cleared {
		out := p.Run(context.Background(), params.OpResetPerformanceStats, nil)
		require.Equal(t, Success, out.Kind)
		assert.Equal(t, want, out.Data["cache_entries_cleared"])
	}

	out := p.Run(context.Background(), params.OpGetPerformanceStats, nil)
	require.Equal(t, Success, out.Kind)
	monitor := out.Data["monitor"].(metrics.Stats)
	assert.Zero(t, monitor.TotalOperations)
	assert.Zero(t, p.Cache().Stats().ItemCount)
	assert.Contains(t, out.Data, "resources")
	assert.Contains(t, out.Data, "timestamp")
}

func TestRun_BatchResize(t *testing.T) {
	p := New(testConfig(t))
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 30, 30)
	b := writePNG(t, dir, "b.png", 60, 30)
	missing := filepath.Join(dir, "missing.png")
	require.NoError(t, os.WriteFile(missing, []byte("not an image"), 0o644))

	out := p.Run(context.Background(), params.OpBatchResize, map[string]any{
		"image_sources": []any{a, missing, b},
		"width":         10,
		"height":        10,
	})
	require.Equal(t, Success, out.Kind, "%v", out.Err)
	require.Len(t, out.Results, 3)

	for i, r := range out.Results {
		assert.Equal(t, i, r.Index)
	}
	assert.True(t, out.Results[0].Success)
	assert.False(t, out.Results[1].Success)
	assert.Contains(t, out.Results[1].Error, "invalid image data")
	assert.True(t, out.Results[2].Success)

	img := decodeInline(t, out.Results[2].Result.(map[string]any))
	assert.Equal(t, image.Pt(10, 5), img.Bounds().Size())

	assert.Equal(t, 2, out.Metadata["successful"])
	assert.Equal(t, 1, out.Metadata["failed"])
	assert.Equal(t, "10x10", out.Metadata["target_size"])
	assert.Equal(t, "Batch resize completed: 2 successful, 1 failed", out.Message)

	env := out.Envelope()
	assert.True(t, env.Success)
	assert.Len(t, env.Results, 3)
}

func TestRun_EmptyBatchRejected(t *testing.T) {
	p := New(testConfig(t))
	var calls atomic.Int64
	p.execute = func(req params.Params, hs []*imaging.Handle) (*result, error) {
		calls.Add(1)
		return execute(req, hs)
	}

	env := p.Execute(context.Background(), params.OpBatchResize, map[string]any{
		"image_sources": []any{},
		"width":         10,
		"height":        10,
	})
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "must supply at least one item")
	assert.Zero(t, calls.Load())
}

func TestRun_Timeout(t *testing.T) {
	cfg := testConfig(t)
	cfg.ProcessingTimeout = 20 * time.Millisecond
	p := New(cfg)
	release := make(chan struct{})
	defer close(release)
	p.execute = func(req params.Params, hs []*imaging.Handle) (*result, error) {
		<-release
		return execute(req, hs)
	}
	path := writePNG(t, t.TempDir(), "a.png", 8, 8)

	out := p.Run(context.Background(), params.OpApplyInvert, map[string]any{"image_source": path})
	assert.Equal(t, ExecutionFailure, out.Kind)
	assert.ErrorIs(t, out.Err, apperrors.ErrTimeout)
	assert.Zero(t, p.Cache().Stats().ItemCount)
}

func TestRun_WaitsForFreeSlot(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxConcurrentTasks = 1
	p := New(cfg)
	path := writePNG(t, t.TempDir(), "a.png", 8, 8)

	require.NoError(t, p.Admission().Acquire(context.Background()))

	done := make(chan Outcome, 1)
	go func() {
		done <- p.Run(context.Background(), params.OpApplySepia, map[string]any{"image_source": path})
	}()

	select {
	case <-done:
		t.Fatal("operation ran while every slot was taken")
	case <-time.After(50 * time.Millisecond):
	}

	p.Admission().Release()
	select {
	case out := <-done:
		assert.Equal(t, Success, out.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("operation was not admitted after the slot was released")
	}
}

func TestRun_PanicRecovered(t *testing.T) {
	p := New(testConfig(t))
	p.execute = func(req params.Params, hs []*imaging.Handle) (*result, error) {
		panic("executor exploded")
	}
	path := writePNG(t, t.TempDir(), "a.png", 8, 8)

	out := p.Run(context.Background(), params.OpApplyInvert, map[string]any{"image_source": path})
	assert.Equal(t, ExecutionFailure, out.Kind)
	assert.Contains(t, out.Err.Error(), "executor exploded")

	require.Eventually(t, func() bool {
		return p.Admission().Stats().ActiveCount == 0
	}, time.Second, 5*time.Millisecond)
	assert.InDelta(t, 1.0, p.Monitor().Stats().ErrorRate, 1e-9)
}

func TestRun_ThumbnailGridToleratesBadSource(t *testing.T) {
	p := New(testConfig(t))
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 20, 10)
	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o644))

	out := p.Run(context.Background(), params.OpCreateThumbnailGrid, map[string]any{
		"image_sources":  []any{a, bad},
		"thumbnail_size": 50,
		"columns":        2,
		"spacing":        0,
	})
	require.Equal(t, Success, out.Kind, "%v", out.Err)

	img := decodeInline(t, out.Data)
	assert.Equal(t, image.Pt(100, 50), img.Bounds().Size())
	meta := out.Data["metadata"].(map[string]any)
	assert.Equal(t, []int{1}, meta["failed_indices"])
}

func TestRun_ExtractColors(t *testing.T) {
	p := New(testConfig(t))
	path := writePNG(t, t.TempDir(), "a.png", 16, 16)

	out := p.Run(context.Background(), params.OpExtractColors, map[string]any{"image_source": path, "color_count": 3})
	require.Equal(t, Success, out.Kind, "%v", out.Err)

	colors := out.Data["colors"].([]imaging.ColorFrequency)
	assert.Len(t, colors, 3)
	img := decodeInline(t, out.Data)
	assert.Equal(t, image.Pt(400, 100), img.Bounds().Size())

	out = p.Run(context.Background(), params.OpExtractColors, map[string]any{"image_source": path, "create_palette": false})
	require.Equal(t, Success, out.Kind)
	assert.NotContains(t, out.Data, "image_data")
	assert.Contains(t, out.Data, "colors")
}

func TestRun_CreateGIF(t *testing.T) {
	p := New(testConfig(t))
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 20, 20)
	b := writePNG(t, dir, "b.png", 30, 10)

	out := p.Run(context.Background(), params.OpCreateGIF, map[string]any{
		"image_sources": []any{a, b},
		"duration":      200,
		"loop":          false,
	})
	require.Equal(t, Success, out.Kind, "%v", out.Err)

	uri := out.Data["image_data"].(string)
	assert.Contains(t, uri, "data:image/gif;base64,")
	meta := out.Data["metadata"].(map[string]any)
	assert.Equal(t, 2, meta["frame_count"])
	assert.Equal(t, -1, meta["loop"])
	assert.Equal(t, 20, meta["width"])
	assert.Equal(t, "P", meta["mode"])
}

// TestRun_EveryOperation smoke-tests each image operation with minimal
// arguments.
func TestRun_EveryOperation(t *testing.T) {
	p := New(testConfig(t))
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 24, 16)
	b := writePNG(t, dir, "b.png", 16, 24)

	tests := []struct {
		op   string
		args map[string]any
	}{
		{params.OpLoadImage, map[string]any{"source": a}},
		{params.OpGetImageInfo, map[string]any{"image_source": a}},
		{params.OpConvertFormat, map[string]any{"image_source": a, "target_format": "WEBP"}},
		{params.OpResizeImage, map[string]any{"image_source": a, "width": 10, "height": 10, "keep_aspect_ratio": false}},
		{params.OpCropImage, map[string]any{"image_source": a, "left": 2, "top": 2, "right": 12, "bottom": 10}},
		{params.OpRotateImage, map[string]any{"image_source": a, "angle": 45}},
		{params.OpFlipImage, map[string]any{"image_source": a, "direction": "horizontal"}},
		{params.OpApplyBlur, map[string]any{"image_source": a, "radius": 2}},
		{params.OpApplyGaussianBlur, map[string]any{"image_source": a, "radius": 2}},
		{params.OpApplySharpen, map[string]any{"image_source": a}},
		{params.OpApplyEdgeEnhance, map[string]any{"image_source": a}},
		{params.OpApplyEmboss, map[string]any{"image_source": a}},
		{params.OpApplyFindEdges, map[string]any{"image_source": a}},
		{params.OpApplySmooth, map[string]any{"image_source": a}},
		{params.OpApplyContour, map[string]any{"image_source": a}},
		{params.OpApplySepia, map[string]any{"image_source": a}},
		{params.OpApplyInvert, map[string]any{"image_source": a}},
		{params.OpAdjustBrightness, map[string]any{"image_source": a, "factor": 1.2}},
		{params.OpAdjustContrast, map[string]any{"image_source": a, "factor": 0.8}},
		{params.OpAdjustSaturation, map[string]any{"image_source": a, "factor": 0}},
		{params.OpAdjustSharpness, map[string]any{"image_source": a, "factor": 2}},
		{params.OpConvertToGrayscale, map[string]any{"image_source": a}},
		{params.OpAdjustGamma, map[string]any{"image_source": a, "gamma": 2.2}},
		{params.OpAdjustOpacity, map[string]any{"image_source": a, "opacity": 0.5}},
		{params.OpAddBorder, map[string]any{"image_source": a, "border_style": "rounded"}},
		{params.OpCreateSilhouette, map[string]any{"image_source": a, "background_color": "#FFFFFF"}},
		{params.OpAddShadow, map[string]any{"image_source": a}},
		{params.OpAddWatermark, map[string]any{"image_source": a, "watermark_text": "hi"}},
		{params.OpAddWatermark, map[string]any{"image_source": a, "watermark_image": b, "position": "center"}},
		{params.OpApplyVignette, map[string]any{"image_source": a}},
		{params.OpCreatePolaroid, map[string]any{"image_source": a, "rotation": 5}},
		{params.OpCreateCollage, map[string]any{"image_sources": []any{a, b}, "layout": "horizontal"}},
		{params.OpCreateCollage, map[string]any{"image_sources": []any{a, b, a}, "layout": "grid", "max_width": 300, "max_height": 300}},
		{params.OpBlendImages, map[string]any{"image1_source": a, "image2_source": b, "blend_mode": "multiply"}},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			out := p.Run(context.Background(), tt.op, tt.args)
			require.Equal(t, Success, out.Kind, "%v", out.Err)
			assert.NotEmpty(t, out.Message)
			meta, ok := out.Data["metadata"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.op, meta["operation"])
		})
	}
}
