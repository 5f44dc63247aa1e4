package params

import (
	"encoding/base64"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cast"

	"github.com/ironsheep/image-edit-mcp/internal/apperrors"
)

var hexColorRe = regexp.MustCompile(`^#([A-Fa-f0-9]{3}|[A-Fa-f0-9]{6}|[A-Fa-f0-9]{8})$`)

// reader pulls typed values out of a loosely-typed argument map. The first
// failure is kept and every later call becomes a no-op returning the
// default, so an operation builder can read all of its fields and check
// err once at the end.
type reader struct {
	raw    map[string]any
	limits Limits
	err    error
}

func newReader(raw map[string]any, limits Limits) *reader {
	if raw == nil {
		raw = map[string]any{}
	}
	return &reader{raw: raw, limits: limits}
}

func (r *reader) fail(field, format string, args ...any) {
	if r.err == nil {
		r.err = apperrors.Validation(field, format, args...)
	}
}

// lookup returns the value for key, treating JSON null as absent.
func (r *reader) lookup(key string) (any, bool) {
	v, ok := r.raw[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r *reader) has(key string) bool {
	_, ok := r.lookup(key)
	return ok
}

func (r *reader) str(key, def string) string {
	if r.err != nil {
		return def
	}
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	s, isStr := v.(string)
	if !isStr {
		r.fail(key, "must be a string, got %T", v)
		return def
	}
	return s
}

func (r *reader) requiredStr(key string) string {
	if r.err != nil {
		return ""
	}
	if !r.has(key) {
		r.fail(key, "is required")
		return ""
	}
	s := r.str(key, "")
	if r.err == nil && strings.TrimSpace(s) == "" {
		r.fail(key, "must not be empty")
	}
	return s
}

// number reads key as a finite number. NaN compares false against any
// bound, so range checks alone would let it through.
func (r *reader) number(key string) (float64, bool) {
	v, _ := r.lookup(key)
	f, err := cast.ToFloat64E(v)
	if err != nil {
		r.fail(key, "must be a number")
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		r.fail(key, "must be a finite number, got %v", v)
		return 0, false
	}
	return f, true
}

func (r *reader) float(key string, def, lo, hi float64) float64 {
	if r.err != nil || !r.has(key) {
		return def
	}
	f, ok := r.number(key)
	if !ok {
		return def
	}
	if f < lo || f > hi {
		r.fail(key, "must be between %g and %g, got %g", lo, hi, f)
		return def
	}
	return f
}

func (r *reader) requiredFloat(key string, lo, hi float64) float64 {
	if r.err == nil && !r.has(key) {
		r.fail(key, "is required")
	}
	return r.float(key, 0, lo, hi)
}

// unboundedFloat reads a finite number with no range check.
func (r *reader) unboundedFloat(key string, def float64) float64 {
	if r.err != nil || !r.has(key) {
		return def
	}
	f, ok := r.number(key)
	if !ok {
		return def
	}
	return f
}

// integer reads a whole number. 100.0 is accepted, 100.7 is not.
func (r *reader) integer(key string, def, lo, hi int) int {
	if r.err != nil || !r.has(key) {
		return def
	}
	f, ok := r.number(key)
	if !ok {
		return def
	}
	if f != math.Trunc(f) {
		r.fail(key, "must be an integer, got %g", f)
		return def
	}
	if f < float64(lo) || f > float64(hi) {
		r.fail(key, "must be between %d and %d, got %g", lo, hi, f)
		return def
	}
	return int(f)
}

func (r *reader) requiredInt(key string, lo, hi int) int {
	if r.err == nil && !r.has(key) {
		r.fail(key, "is required")
	}
	return r.integer(key, 0, lo, hi)
}

// alias returns alt when key is absent and alt is present, so older
// argument names keep working.
func (r *reader) alias(key, alt string) string {
	if !r.has(key) && r.has(alt) {
		return alt
	}
	return key
}

func (r *reader) boolean(key string, def bool) bool {
	if r.err != nil {
		return def
	}
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		r.fail(key, "must be a boolean")
		return def
	}
	return b
}

// enum matches case-insensitively and returns the canonical spelling from
// allowed.
func (r *reader) enum(key, def string, allowed ...string) string {
	s := r.str(key, def)
	if r.err != nil {
		return def
	}
	for _, a := range allowed {
		if strings.EqualFold(s, a) {
			return a
		}
	}
	r.fail(key, "must be one of %s, got %q", strings.Join(allowed, ", "), s)
	return def
}

func (r *reader) requiredEnum(key string, allowed ...string) string {
	if r.err == nil && !r.has(key) {
		r.fail(key, "is required")
	}
	return r.enum(key, "", allowed...)
}

// color reads a #RGB, #RRGGBB or #RRGGBBAA hex color.
func (r *reader) color(key, def string) string {
	s := r.str(key, def)
	if r.err != nil {
		return def
	}
	if err := checkColor(s); err != nil {
		r.fail(key, "%v", err)
		return def
	}
	return s
}

// colorOrKeyword accepts a hex color or the literal keyword.
func (r *reader) colorOrKeyword(key, def, keyword string) string {
	s := r.str(key, def)
	if r.err != nil {
		return def
	}
	if strings.EqualFold(s, keyword) {
		return keyword
	}
	if err := checkColor(s); err != nil {
		r.fail(key, "must be %q or a hex color: %v", keyword, err)
		return def
	}
	return s
}

func checkColor(s string) error {
	if !hexColorRe.MatchString(s) {
		return fmt.Errorf("%q is not a hex color (#RGB, #RRGGBB or #RRGGBBAA)", s)
	}
	rgb := s
	if len(s) == 9 {
		rgb = s[:7]
	}
	if _, err := colorful.Hex(rgb); err != nil {
		return fmt.Errorf("%q is not a hex color: %w", s, err)
	}
	return nil
}

// source reads a required image source.
func (r *reader) source(key string) string {
	s := r.requiredStr(key)
	if r.err != nil {
		return ""
	}
	if err := CheckSource(s); err != nil {
		r.err = apperrors.ValidationWrap(key, err)
		return ""
	}
	return s
}

// optionalSource reads an image source that may be absent.
func (r *reader) optionalSource(key string) string {
	if r.err != nil || !r.has(key) {
		return ""
	}
	return r.source(key)
}

// sources reads a list of image sources with min..max elements. Every
// element is checked; the field name of a bad element carries its index.
func (r *reader) sources(key string, min, max int) []string {
	if r.err != nil {
		return nil
	}
	v, ok := r.lookup(key)
	if !ok {
		if min > 0 {
			r.err = apperrors.ValidationWrap(key, apperrors.ErrEmptyBatch)
		}
		return nil
	}
	list, isList := v.([]any)
	if !isList {
		if typed, isStrings := v.([]string); isStrings {
			list = make([]any, len(typed))
			for i, s := range typed {
				list[i] = s
			}
		} else {
			r.fail(key, "must be an array of image sources")
			return nil
		}
	}
	if len(list) == 0 {
		r.err = apperrors.ValidationWrap(key, apperrors.ErrEmptyBatch)
		return nil
	}
	if len(list) < min {
		r.fail(key, "requires at least %d images, got %d", min, len(list))
		return nil
	}
	if len(list) > max {
		r.fail(key, "accepts at most %d images, got %d", max, len(list))
		return nil
	}

	out, err := cast.ToStringSliceE(list)
	if err != nil {
		r.fail(key, "must be an array of strings")
		return nil
	}
	for i, s := range out {
		field := fmt.Sprintf("%s[%d]", key, i)
		if strings.TrimSpace(s) == "" {
			r.fail(field, "must not be empty")
			return nil
		}
		if err := CheckSource(s); err != nil {
			r.err = apperrors.ValidationWrap(field, err)
			return nil
		}
	}
	return out
}

// encoding reads the output format, quality and mode shared by every
// operation that produces an image.
func (r *reader) encoding(formatKey string) Encoding {
	return Encoding{
		Format:  r.enum(formatKey, r.limits.DefaultFormat, Formats...),
		Quality: r.integer("quality", r.limits.DefaultQuality, 1, 100),
		Mode:    r.enum("output_mode", r.limits.DefaultMode, OutputModes...),
	}
}

// DataURIPrefix is the leading marker of an embedded image source.
const DataURIPrefix = "data:image/"

// CheckSource reports whether s names an existing regular file or carries
// a well-formed data:image/<fmt>;base64, payload.
func CheckSource(s string) error {
	if strings.HasPrefix(s, "data:") {
		_, _, err := SplitDataURI(s)
		return err
	}
	fi, err := os.Stat(s)
	if err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrSourceNotFound, s)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", apperrors.ErrSourceNotFound, s)
	}
	return nil
}

// SplitDataURI returns the declared format and decoded bytes of a
// data:image/<fmt>;base64,<payload> string.
func SplitDataURI(s string) (string, []byte, error) {
	header, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(header, DataURIPrefix) || !strings.HasSuffix(header, ";base64") {
		return "", nil, fmt.Errorf("%w: expected data:image/<format>;base64,<payload>", apperrors.ErrDecode)
	}
	format := strings.TrimSuffix(strings.TrimPrefix(header, DataURIPrefix), ";base64")
	if format == "" {
		return "", nil, fmt.Errorf("%w: missing image format in data URI", apperrors.ErrDecode)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", apperrors.ErrDecode, err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("%w: empty payload", apperrors.ErrDecode)
	}
	return strings.ToLower(format), data, nil
}
