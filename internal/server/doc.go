// Package server implements the MCP (Model Context Protocol) server that
// exposes notehead detection as tools.
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
//   - page_load: decode a rendered page and report its size and format
//   - staff_detect: staves, spacing and systems of a page
//   - notes_detect: noteheads with pitch letters and colors, plus barlines
//   - notes_detect_pages: notes_detect over several pages in parallel
//   - notes_overlay: the page with colored, labeled noteheads as a PNG
//   - system_crop: one system of the page as a PNG
//
// # Page Caching
//
// Decoded pages are cached by path, up to pages.cache_size entries, so the
// usual sequence of staff_detect, notes_detect and notes_overlay on one page
// decodes it once.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses:
//   - -32602 for missing or malformed arguments and unknown tools
//   - -32000 for any other tool failure (unreadable page, cancelled request)
//   - -32601 for unknown methods, -32700 for lines that are not JSON
//
// Logs go to stderr through zap; stdout carries only protocol messages.
package server
