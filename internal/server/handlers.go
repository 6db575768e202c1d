package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/ironsheep/notecolor-mcp/internal/detection"
	"github.com/ironsheep/notecolor-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "page_load", "notes_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// paramsError marks a tool failure caused by the caller's arguments.
type paramsError struct{ err error }

func (e *paramsError) Error() string { return e.err.Error() }
func (e *paramsError) Unwrap() error { return e.err }

func badParams(format string, args ...interface{}) error {
	return &paramsError{err: fmt.Errorf(format, args...)}
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments return -32602; any other tool failure returns -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", zap.String("tool", params.Name), zap.Error(err))
		var pe *paramsError
		if errors.As(err, &pe) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "page_load":
		return s.handlePageLoad(args)
	case "staff_detect":
		return s.handleStaffDetect(ctx, args)
	case "notes_detect":
		return s.handleNotesDetect(ctx, args)
	case "notes_detect_pages":
		return s.handleNotesDetectPages(ctx, args)
	case "notes_overlay":
		return s.handleNotesOverlay(ctx, args)
	case "system_crop":
		return s.handleSystemCrop(ctx, args)
	default:
		return nil, badParams("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type pathArgs struct {
	Path string `json:"path"`
}

// decodeArgs unmarshals tool arguments and checks that a path was given.
func decodeArgs(args json.RawMessage, v interface{ path() string }) error {
	if len(args) == 0 {
		return badParams("missing arguments")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &paramsError{err: fmt.Errorf("invalid arguments: %w", err)}
	}
	if v.path() == "" {
		return badParams("path is required")
	}
	return nil
}

func (a *pathArgs) path() string { return a.Path }

// detect loads a page through the cache and runs the detector on it.
func (s *Server) detect(ctx context.Context, path string) (*detection.Result, *imaging.Raster, error) {
	page, err := s.cache.Load(path)
	if err != nil {
		return nil, nil, err
	}
	res, err := s.detector.Detect(ctx, page)
	if err != nil {
		return nil, nil, fmt.Errorf("detect %s: %w", path, err)
	}
	return res, page, nil
}

// === Page ===

func (s *Server) handlePageLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadPageInfo(s.cache, a.Path)
}

// === Staff ===

type systemInfo struct {
	Index      int              `json:"index"`
	Bounds     detection.Bounds `json:"bounds"`
	Treble     []float64        `json:"treble,omitempty"`
	Bass       []float64        `json:"bass,omitempty"`
	Spacing    float64          `json:"spacing"`
	Grand      bool             `json:"grand"`
	IsFallback bool             `json:"is_fallback"`
}

type staffResult struct {
	Width   int          `json:"width"`
	Height  int          `json:"height"`
	Spacing float64      `json:"spacing"`
	Staves  [][5]float64 `json:"staves"`
	Systems []systemInfo `json:"systems"`
}

func describeSystems(systems []detection.System) []systemInfo {
	out := make([]systemInfo, len(systems))
	for i, sys := range systems {
		out[i] = systemInfo{
			Index:      i,
			Bounds:     sys.Bounds,
			Treble:     sys.Treble,
			Bass:       sys.Bass,
			Spacing:    sys.Spacing,
			Grand:      sys.IsGrand(),
			IsFallback: sys.IsFallback,
		}
	}
	return out
}

func (s *Server) handleStaffDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	page, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := s.detector.Params()
	model := detection.DetectStaves(page, p)
	systems := detection.BuildSystems(model, page.Width, page.Height, p)
	out := &staffResult{
		Width:   page.Width,
		Height:  page.Height,
		Spacing: systems[0].Spacing,
		Staves:  [][5]float64{},
		Systems: describeSystems(systems),
	}
	if model != nil {
		out.Spacing = model.Spacing
		for _, st := range model.Staves {
			out.Staves = append(out.Staves, st.Lines)
		}
	}
	return out, nil
}

// === Notes ===

type notesDetectArgs struct {
	Path            string `json:"path"`
	IncludeRejected bool   `json:"include_rejected"`
}

func (a *notesDetectArgs) path() string { return a.Path }

type noteInfo struct {
	detection.Notehead
	Color string `json:"color"`
}

type notesResult struct {
	Path        string                `json:"path,omitempty"`
	Width       int                   `json:"width"`
	Height      int                   `json:"height"`
	Noteheads   []noteInfo            `json:"noteheads"`
	Barlines    []detection.Barline   `json:"barlines"`
	Systems     []systemInfo          `json:"systems"`
	PitchCounts map[string]int        `json:"pitch_counts"`
	Rejected    []detection.Rejection `json:"rejected,omitempty"`
}

func summarize(res *detection.Result, includeRejected bool) *notesResult {
	out := &notesResult{
		Width:       res.Width,
		Height:      res.Height,
		Noteheads:   make([]noteInfo, 0, len(res.Noteheads)),
		Barlines:    res.Barlines,
		Systems:     describeSystems(res.Systems),
		PitchCounts: map[string]int{},
	}
	if out.Barlines == nil {
		out.Barlines = []detection.Barline{}
	}
	for _, n := range res.Noteheads {
		out.Noteheads = append(out.Noteheads, noteInfo{Notehead: n, Color: n.Pitch.Hex()})
		out.PitchCounts[n.Pitch.String()]++
	}
	if includeRejected {
		out.Rejected = res.Rejected
	}
	return out
}

func (s *Server) handleNotesDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a notesDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	res, _, err := s.detect(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	return summarize(res, a.IncludeRejected), nil
}

type pagesArgs struct {
	Paths []string `json:"paths"`
}

func (s *Server) handleNotesDetectPages(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pagesArgs
	if len(args) == 0 {
		return nil, badParams("missing arguments")
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, &paramsError{err: fmt.Errorf("invalid arguments: %w", err)}
	}
	if len(a.Paths) == 0 {
		return nil, badParams("paths must name at least one page")
	}

	pages := make([]*imaging.Raster, len(a.Paths))
	for i, path := range a.Paths {
		page, err := s.cache.Load(path)
		if err != nil {
			return nil, fmt.Errorf("page %d (%s): %w", i, path, err)
		}
		pages[i] = page
	}
	results, err := s.detector.DetectPages(ctx, pages)
	if err != nil {
		return nil, err
	}

	out := make([]*notesResult, len(results))
	for i, res := range results {
		out[i] = summarize(res, false)
		out[i].Path = a.Paths[i]
	}
	return map[string]interface{}{"pages": out}, nil
}

func (s *Server) handleNotesOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	res, page, err := s.detect(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	boxes := make([]imaging.OverlayBox, len(res.Noteheads))
	for i, n := range res.Noteheads {
		boxes[i] = imaging.OverlayBox{
			Rect:  n.Bounds.Rectangle(),
			Color: n.Pitch.Hex(),
			Label: n.Pitch.String(),
		}
	}
	bars := make([]image.Rectangle, len(res.Barlines))
	for i, b := range res.Barlines {
		bars[i] = b.Bounds.Rectangle()
	}
	return imaging.RenderOverlay(page, boxes, bars)
}

// === Systems ===

type systemCropArgs struct {
	Path   string  `json:"path"`
	System *int    `json:"system"`
	Scale  float64 `json:"scale"`
}

func (a *systemCropArgs) path() string { return a.Path }

type systemCropResult struct {
	*imaging.PNGResult
	System systemInfo `json:"system"`
}

func (s *Server) handleSystemCrop(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a systemCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.System == nil {
		return nil, badParams("system is required")
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if a.Scale < 0 {
		return nil, badParams("scale must be positive, got %v", a.Scale)
	}

	page, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := s.detector.Params()
	systems := detection.BuildSystems(detection.DetectStaves(page, p), page.Width, page.Height, p)
	if *a.System < 0 || *a.System >= len(systems) {
		return nil, badParams("system %d out of range: page has %d", *a.System, len(systems))
	}

	info := describeSystems(systems)[*a.System]
	png, err := imaging.CropRegion(page, info.Bounds.Rectangle(), a.Scale)
	if err != nil {
		return nil, err
	}
	return &systemCropResult{PNGResult: png, System: info}, nil
}
