package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ironsheep/image-overlay-mcp/internal/annotation"
	"github.com/ironsheep/image-overlay-mcp/internal/colormap"
	"github.com/ironsheep/image-overlay-mcp/internal/imaging"
	"github.com/ironsheep/image-overlay-mcp/internal/overlay"
	"github.com/ironsheep/image-overlay-mcp/internal/palette"
	"github.com/ironsheep/image-overlay-mcp/internal/render"
	"github.com/ironsheep/image-overlay-mcp/internal/tags"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "overlay_render").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments return code -32602; any other tool failure returns -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "err", err)
		if overlay.IsInvalidArgument(err) {
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
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch name {
	// Source images
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Overlay rendering
	case "overlay_render":
		return s.handleOverlayRender(ctx, args)

	// Colors
	case "overlay_label_color":
		return s.handleLabelColor(args)
	case "overlay_colormap":
		return s.handleColormap(args)
	case "overlay_colormaps":
		return colormapsResult{Names: colormap.Names()}, nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Source Image Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (a imageLoadArgs) validate() error {
	if a.Path == "" {
		return fmt.Errorf("%w: path is required", overlay.ErrInvalidArgument)
	}
	return nil
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.renderer.Images(), a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.renderer.Images(), a.Path)
}

// === Overlay Render Handler ===

type overlayRenderArgs struct {
	Path           string          `json:"path"`
	Annotations    json.RawMessage `json:"annotations"`
	Width          int             `json:"width"`
	Height         int             `json:"height"`
	HiddenTags     []string        `json:"hidden_tags"`
	ScoreThreshold float64         `json:"score_threshold"`
	Dim            float64         `json:"dim"`
	Grayscale      bool            `json:"grayscale"`
	OutputPath     string          `json:"output_path"`
}

type renderIssue struct {
	ID    string `json:"id"`
	Layer string `json:"layer"`
	Error string `json:"error"`
}

type drawnCounts struct {
	Masks   int `json:"masks"`
	Regions int `json:"regions"`
	Boxes   int `json:"boxes"`
	Lines   int `json:"lines"`
	Markers int `json:"markers"`
	Hidden  int `json:"hidden"`
}

// OverlayRenderResult is the overlay_render tool result.
type OverlayRenderResult struct {
	RenderID  string        `json:"render_id"`
	State     string        `json:"state"`
	Scale     float64       `json:"scale"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	Skipped   []string      `json:"skipped"`
	Issues    []renderIssue `json:"issues,omitempty"`
	Drawn     drawnCounts   `json:"drawn"`
	ElapsedMS int64         `json:"elapsed_ms"`

	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
	OutputPath  string `json:"output_path,omitempty"`
}

func (s *Server) handleOverlayRender(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a overlayRenderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", overlay.ErrInvalidArgument)
	}
	if len(a.Annotations) == 0 {
		return nil, fmt.Errorf("%w: annotations is required", overlay.ErrInvalidArgument)
	}
	doc, err := annotation.Parse(a.Annotations)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", overlay.ErrInvalidArgument, err)
	}

	res, err := s.renderer.Render(ctx, render.Request{
		ImagePath: a.Path,
		Document:  doc,
		Width:     a.Width,
		Height:    a.Height,
		Visibility: tags.Visibility{
			Hidden:         tags.NewHiddenSet(a.HiddenTags...),
			ScoreThreshold: a.ScoreThreshold,
		},
		Background: imaging.BackgroundOptions{Dim: a.Dim, Grayscale: a.Grayscale},
	})
	if err != nil {
		return nil, err
	}

	out := &OverlayRenderResult{
		RenderID:  res.RenderID,
		State:     res.State.String(),
		Scale:     res.Scale,
		Width:     res.Width,
		Height:    res.Height,
		Skipped:   make([]string, 0, len(res.Skipped)),
		ElapsedMS: res.Elapsed.Milliseconds(),
		Drawn: drawnCounts{
			Masks:   res.Drawn.Masks,
			Regions: res.Drawn.Regions,
			Boxes:   res.Drawn.Boxes,
			Lines:   res.Drawn.Lines,
			Markers: res.Drawn.Markers,
			Hidden:  res.Drawn.Hidden,
		},
	}
	for _, id := range res.Skipped {
		out.Skipped = append(out.Skipped, string(id))
	}
	for _, is := range res.Issues {
		out.Issues = append(out.Issues, renderIssue{ID: string(is.ID), Layer: is.Layer, Error: is.Err.Error()})
	}

	if a.OutputPath != "" {
		data, err := imaging.EncodePNG(res.Image())
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(a.OutputPath, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
		out.OutputPath = a.OutputPath
		return out, nil
	}

	enc, err := imaging.EncodePNGBase64(res.Image())
	if err != nil {
		return nil, err
	}
	out.ImageBase64 = enc.ImageBase64
	out.MimeType = enc.MimeType
	return out, nil
}

// === Color Handlers ===

type labelColorArgs struct {
	Label string `json:"label"`
	Layer string `json:"layer"`
}

// LabelColorResult is the overlay_label_color tool result.
type LabelColorResult struct {
	*palette.LabelColor
	Tag string `json:"tag,omitempty"`
}

func (s *Server) handleLabelColor(args json.RawMessage) (interface{}, error) {
	var a labelColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Label == "" {
		return nil, fmt.Errorf("%w: label is required", overlay.ErrInvalidArgument)
	}
	res := &LabelColorResult{LabelColor: palette.Describe(a.Label)}
	if a.Layer != "" {
		res.Tag = tags.Make(a.Layer, a.Label)
	}
	return res, nil
}

type colormapArgs struct {
	Name   string   `json:"name"`
	Shades int      `json:"shades"`
	Alpha  *float64 `json:"alpha"`
}

// ColormapResult is the overlay_colormap tool result.
type ColormapResult struct {
	Name   string   `json:"name"`
	Alpha  float64  `json:"alpha"`
	Colors []string `json:"colors"`
}

type colormapsResult struct {
	Names []string `json:"names"`
}

func (s *Server) handleColormap(args json.RawMessage) (interface{}, error) {
	var a colormapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Shades == 0 {
		a.Shades = s.levels
	}
	m, err := s.colormaps.Generate(a.Name, a.Shades, a.Alpha)
	if err != nil {
		var unknown *colormap.UnknownColormapError
		if errors.As(err, &unknown) || errors.Is(err, colormap.ErrInvalidShades) {
			return nil, fmt.Errorf("%w: %v", overlay.ErrInvalidArgument, err)
		}
		return nil, err
	}

	res := &ColormapResult{Name: m.Name, Alpha: m.Alpha, Colors: make([]string, len(m.Colors))}
	for i, c := range m.Colors {
		res.Colors[i] = palette.Hex(c)
	}
	return res, nil
}
