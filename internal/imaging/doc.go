// Package imaging implements the raster operations behind the MCP tools:
// source resolution, encoding, geometric transforms, filters, color
// adjustments, effects and multi-image composites.
//
// Functions take image.Image and return new images; inputs are never
// modified, so every function is safe to call concurrently on shared
// inputs.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (left,top) is inclusive and (right,bottom) is exclusive
//
// # Sources
//
// Resolve accepts a filesystem path or a data:image/<fmt>;base64, URI and
// decodes PNG, JPEG, GIF, BMP, TIFF and WEBP. Encode writes PNG, JPEG,
// WEBP, BMP, TIFF and GIF.
//
// # Colors
//
// Colors are parsed from "#RGB", "#RRGGBB" or "#RRGGBBAA" and handled as
// non-premultiplied color.NRGBA. Extracted colors are reported as hex, RGB
// (0-255) and HSL (hue 0-360, saturation and lightness 0-100).
//
// # Errors
//
// Resolve and Encode wrap the apperrors sentinels (ErrSourceNotFound,
// ErrDecode, ErrSizeExceeded, ErrUnsupportedFormat). Crop reports an
// out-of-bounds region as a validation error naming the offending edge.
package imaging
