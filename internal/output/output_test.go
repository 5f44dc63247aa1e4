package output

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-edit-mcp/internal/config"
)

func TestWrite_Inline(t *testing.T) {
	w := New(config.OutputConfig{TempDir: t.TempDir(), OperationPrefix: true})
	data := []byte("not really a png")

	p, err := w.Write(data, "inline", "png", Metadata{Operation: "apply_blur", Width: 4, Height: 3, Mode: "RGBA"})
	require.NoError(t, err)

	uri, ok := p["image_data"].(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
	assert.NotContains(t, p, "file_path")

	meta := p["metadata"].(map[string]any)
	assert.Equal(t, "apply_blur", meta["operation"])
	assert.Equal(t, 4, meta["width"])
	assert.Equal(t, 3, meta["height"])
	assert.Equal(t, "RGBA", meta["mode"])
	assert.Equal(t, "PNG", meta["format"])
	assert.Equal(t, len(data), meta["size_bytes"])
}

func TestWrite_FileRef(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := New(config.OutputConfig{TempDir: dir, OperationPrefix: true})
	data := []byte{1, 2, 3, 4, 5}

	p, err := w.Write(data, "file_ref", "JPEG", Metadata{Operation: "resize_image", Width: 2, Height: 2, Mode: "RGB"})
	require.NoError(t, err)

	path, ok := p["file_path"].(string)
	require.True(t, ok)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "resize_image_"))
	assert.Equal(t, ".jpg", filepath.Ext(path))
	assert.Equal(t, 5, p["file_size"])
	assert.NotContains(t, p, "image_data")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name     string
		prefix   bool
		op       string
		format   string
		wantHead string
		wantExt  string
	}{
		{"prefixed", true, "apply_sepia", "PNG", "apply_sepia_", ".png"},
		{"no prefix", false, "apply_sepia", "TIFF", "", ".tif"},
		{"webp", true, "convert_format", "WEBP", "convert_format_", ".webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(config.OutputConfig{TempDir: t.TempDir(), OperationPrefix: tt.prefix})
			a, err := w.FileName(tt.op, tt.format)
			require.NoError(t, err)
			b, err := w.FileName(tt.op, tt.format)
			require.NoError(t, err)

			assert.NotEqual(t, a, b)
			assert.True(t, strings.HasPrefix(a, tt.wantHead))
			assert.Equal(t, tt.wantExt, filepath.Ext(a))
			if !tt.prefix {
				assert.False(t, strings.HasPrefix(a, tt.op))
			}
		})
	}
}

func TestWriteFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "result.png")
	require.NoError(t, WriteFile(path, []byte("x")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}
