// Package server implements the MCP (Model Context Protocol) server for the
// image editing tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// The catalog mirrors params.Operations:
//
// Basic: load_image, save_image, convert_format, get_image_info.
//
// Transform: resize_image, crop_image, rotate_image, flip_image.
//
// Filters: apply_blur, apply_gaussian_blur, apply_sharpen, apply_edge_enhance,
// apply_emboss, apply_find_edges, apply_smooth, apply_contour, apply_sepia,
// apply_invert.
//
// Color: adjust_brightness, adjust_contrast, adjust_saturation,
// adjust_sharpness, convert_to_grayscale, adjust_gamma, adjust_opacity.
//
// Effects: add_border, create_silhouette, add_shadow, add_watermark,
// apply_vignette, create_polaroid.
//
// Advanced: batch_resize, create_collage, create_thumbnail_grid,
// blend_images, extract_colors, create_gif.
//
// Monitoring: get_performance_stats, reset_performance_stats.
//
// # Error Handling
//
// Every tools/call for a known tool returns the pipeline envelope as text
// content, with isError set when the envelope reports a failure. JSON-RPC
// errors are reserved for protocol problems:
//   - -32700: unparseable request line
//   - -32601: unknown method
//   - -32602: tools/call params that are not an object
//   - -32000: unknown tool name
//
// # Usage
//
//	srv := server.New(pipeline.New(cfg))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal().Err(err).Msg("server stopped")
//	}
package server
