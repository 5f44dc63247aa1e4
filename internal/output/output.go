// Package output turns encoded result images into response payloads,
// either inline as a data URI or as a file in the temp directory.
package output

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"

	"github.com/ironsheep/image-edit-mcp/internal/config"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
	"github.com/ironsheep/image-edit-mcp/internal/params"
)

// Payload is the "data" object of a success envelope.
type Payload map[string]any

// Metadata describes a result image.
type Metadata struct {
	Operation string
	Width     int
	Height    int
	Mode      string
	Format    string
	SizeBytes int
}

// Map returns the metadata as a payload object. Callers may add
// operation specific keys to it.
func (m Metadata) Map() map[string]any {
	return map[string]any{
		"operation":  m.Operation,
		"width":      m.Width,
		"height":     m.Height,
		"size":       []int{m.Width, m.Height},
		"mode":       m.Mode,
		"format":     m.Format,
		"size_bytes": m.SizeBytes,
	}
}

// Writer delivers encoded images.
type Writer struct {
	tempDir  string
	opPrefix bool
}

// New creates a writer for cfg.
func New(cfg config.OutputConfig) *Writer {
	return &Writer{tempDir: cfg.TempDir, opPrefix: cfg.OperationPrefix}
}

// Write returns the payload for data, an image encoded as format. In
// inline mode the bytes are embedded as a data URI; in file_ref mode they
// are written to a new file and only the path and size are returned.
func (w *Writer) Write(data []byte, mode, format string, meta Metadata) (Payload, error) {
	meta.SizeBytes = len(data)
	meta.Format = strings.ToUpper(format)

	p := Payload{"metadata": meta.Map()}
	if mode == params.ModeFileRef {
		path, err := w.saveTemp(data, meta.Operation, format)
		if err != nil {
			return nil, err
		}
		p["file_path"] = path
		p["file_size"] = len(data)
		return p, nil
	}
	p["image_data"] = DataURI(data, format)
	return p, nil
}

// DataURI embeds data as a base64 data URI of format.
func DataURI(data []byte, format string) string {
	return fmt.Sprintf("data:%s;base64,%s", imaging.MIMEType(format), base64.StdEncoding.EncodeToString(data))
}

// FileName returns the temp file name for a result of op.
func (w *Writer) FileName(op, format string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	name := id.String()
	if w.opPrefix && op != "" {
		name = op + "_" + name
	}
	return name + "." + imaging.Extension(format), nil
}

func (w *Writer) saveTemp(data []byte, op, format string) (string, error) {
	name, err := w.FileName(op, format)
	if err != nil {
		return "", fmt.Errorf("error creating file name: %w", err)
	}
	if err := os.MkdirAll(w.tempDir, 0o755); err != nil {
		err = fmt.Errorf("error creating temp dir: %w", err)
		log.Error().Err(err).Str("dir", w.tempDir).Send()
		return "", err
	}
	path := filepath.Join(w.tempDir, name)
	if err := WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFile stores data at path, creating missing parent directories.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			err = fmt.Errorf("error creating directory: %w", err)
			log.Error().Err(err).Str("dir", dir).Send()
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		err = fmt.Errorf("error writing file: %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return err
	}
	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("wrote result file")
	return nil
}
