// Package server implements the MCP (Model Context Protocol) server for
// annotation overlay rendering.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line:
//   - Input: JSON-RPC requests on stdin
//   - Output: JSON-RPC responses on stdout
//   - Logs: stderr only, so the protocol stream stays clean
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Source images:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get natural width and height
//
// Overlay rendering:
//   - overlay_render: Draw an annotation document over an image
//
// Colors:
//   - overlay_label_color: Deterministic color for a label
//   - overlay_colormap: Generate a named colormap
//   - overlay_colormaps: List colormap names
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC error responses:
//   - code: -32602 for invalid arguments, -32000 for any other failure
//   - message: Human-readable error description
//   - data: The Go error string
//
// A render that skips malformed annotations is not a failure; the skipped
// annotation ids are part of the overlay_render result.
//
// # Usage
//
//	srv := server.New(server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
