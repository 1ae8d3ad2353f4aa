package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func newTestServer() *Server {
	return New(WithLogger(log.New(io.Discard)))
}

// createTestImageFile writes a solid PNG into a temp dir and returns its path.
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "source.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool runs a tools/call request and decodes the text content into out.
func callTool(t *testing.T, s *Server, name string, args interface{}, out interface{}) *MCPError {
	t.Helper()

	params, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	if err != nil {
		t.Fatal(err)
	}
	resp := s.handleToolsCall(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
	if resp == nil {
		t.Fatal("handleToolsCall returned nil")
	}
	if resp.Error != nil {
		return resp.Error
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", content)
	}
	if out != nil {
		if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
			t.Fatalf("failed to decode result: %v", err)
		}
	}
	return nil
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := newTestServer()
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	var info struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}
	if e := callTool(t, s, "image_load", map[string]interface{}{"path": imgPath}, &info); e != nil {
		t.Fatalf("Unexpected error: %+v", e)
	}
	if info.Width != 100 || info.Height != 80 || info.Format != "png" {
		t.Errorf("got %+v", info)
	}
	if s.renderer.Images().Len() != 1 {
		t.Errorf("image cache: got %d entries, want 1", s.renderer.Images().Len())
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := newTestServer()
	imgPath := createTestImageFile(t, 200, 150, color.RGBA{0, 255, 0, 255})

	var dims struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if e := callTool(t, s, "image_dimensions", map[string]interface{}{"path": imgPath}, &dims); e != nil {
		t.Fatalf("Unexpected error: %+v", e)
	}
	if dims.Width != 200 || dims.Height != 150 {
		t.Errorf("got %+v", dims)
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		args     interface{}
		wantCode int
	}{
		{"non-existent file", "image_load", map[string]interface{}{"path": "/nonexistent/image.png"}, -32000},
		{"missing path", "image_dimensions", map[string]interface{}{}, -32602},
		{"unknown tool", "nonexistent_tool", map[string]interface{}{}, -32000},
		{"missing annotations", "overlay_render", map[string]interface{}{"path": "/x.png"}, -32602},
		{"dim out of range", "overlay_render", map[string]interface{}{"path": "/x.png", "annotations": json.RawMessage(`{"layers": []}`), "dim": 2}, -32602},
		{"unknown colormap", "overlay_colormap", map[string]interface{}{"name": "sunset"}, -32602},
		{"too few shades", "overlay_colormap", map[string]interface{}{"name": "jet", "shades": 1}, -32602},
		{"missing label", "overlay_label_color", map[string]interface{}{}, -32602},
	}

	s := newTestServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := callTool(t, s, tt.tool, tt.args, nil)
			if e == nil {
				t.Fatal("expected an error")
			}
			if e.Code != tt.wantCode {
				t.Errorf("code: got %d, want %d (%s: %v)", e.Code, tt.wantCode, e.Message, e.Data)
			}
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer()
	resp := s.handleToolsCall(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 7, Params: json.RawMessage(`[1,2]`)})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("got %+v, want -32602", resp.Error)
	}
	if resp.ID != 7 {
		t.Errorf("ID: got %v", resp.ID)
	}
}

const renderDocument = `{
  "layers": [{
    "name": "detector",
    "annotations": [
      {"type": "boxes", "label": "car", "score": 0.9, "boxes": [[4, 4, 20, 16]]},
      {"type": "boxes", "label": "tree", "score": 0.2, "boxes": [[10, 10, 30, 20]]},
      {"type": "boxes", "label": "sign", "boxes": [[1, 2]]}
    ]
  }]
}`

func TestHandleToolsCall_OverlayRender(t *testing.T) {
	s := newTestServer()
	imgPath := createTestImageFile(t, 80, 40, color.RGBA{255, 255, 255, 255})

	var res OverlayRenderResult
	args := map[string]interface{}{
		"path":            imgPath,
		"annotations":     json.RawMessage(renderDocument),
		"width":           40,
		"score_threshold": 0.5,
	}
	if e := callTool(t, s, "overlay_render", args, &res); e != nil {
		t.Fatalf("Unexpected error: %+v", e)
	}

	if res.Width != 40 || res.Height != 20 || res.Scale != 0.5 {
		t.Errorf("size: got %dx%d scale %v, want 40x20 scale 0.5", res.Width, res.Height, res.Scale)
	}
	if res.Drawn.Boxes != 1 || res.Drawn.Hidden != 1 {
		t.Errorf("drawn: got %+v, want 1 box and 1 hidden", res.Drawn)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "0/2" {
		t.Errorf("skipped: got %v, want [0/2]", res.Skipped)
	}
	if res.State != "partial" {
		t.Errorf("state: got %q, want partial", res.State)
	}
	if res.RenderID == "" {
		t.Error("render id is empty")
	}
	if res.MimeType != "image/png" {
		t.Errorf("mime type: got %q", res.MimeType)
	}

	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("bad base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("bad png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Errorf("png size: got %v", b)
	}
}

func TestHandleToolsCall_OverlayRenderToFile(t *testing.T) {
	s := newTestServer()
	imgPath := createTestImageFile(t, 30, 30, color.RGBA{0, 0, 0, 255})
	outPath := filepath.Join(t.TempDir(), "out.png")

	var res OverlayRenderResult
	args := map[string]interface{}{
		"path":        imgPath,
		"annotations": json.RawMessage(`{"layers": []}`),
		"output_path": outPath,
		"dim":         0.5,
		"grayscale":   true,
	}
	if e := callTool(t, s, "overlay_render", args, &res); e != nil {
		t.Fatalf("Unexpected error: %+v", e)
	}
	if res.OutputPath != outPath || res.ImageBase64 != "" {
		t.Errorf("got output_path %q and %d bytes inline", res.OutputPath, len(res.ImageBase64))
	}
	if res.State != "done" {
		t.Errorf("state: got %q, want done", res.State)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestHandleToolsCall_LabelColor(t *testing.T) {
	s := newTestServer()

	var a, b LabelColorResult
	if e := callTool(t, s, "overlay_label_color", map[string]interface{}{"label": "car", "layer": "detector"}, &a); e != nil {
		t.Fatalf("Unexpected error: %+v", e)
	}
	if e := callTool(t, s, "overlay_label_color", map[string]interface{}{"label": "car"}, &b); e != nil {
		t.Fatalf("Unexpected error: %+v", e)
	}
	if a.Hex == "" || a.Hex != b.Hex {
		t.Errorf("colors differ for the same label: %q vs %q", a.Hex, b.Hex)
	}
	if a.Tag != "detector: car" {
		t.Errorf("tag: got %q", a.Tag)
	}
	if b.Tag != "" {
		t.Errorf("tag without layer: got %q", b.Tag)
	}
}

func TestHandleToolsCall_Colormap(t *testing.T) {
	s := newTestServer()

	var m ColormapResult
	if e := callTool(t, s, "overlay_colormap", map[string]interface{}{"name": "viridis", "shades": 8}, &m); e != nil {
		t.Fatalf("Unexpected error: %+v", e)
	}
	if m.Name != "viridis" || len(m.Colors) != 8 || m.Alpha != 1 {
		t.Errorf("got %+v", m)
	}

	var def ColormapResult
	if e := callTool(t, s, "overlay_colormap", map[string]interface{}{"name": "jet", "alpha": 0.5}, &def); e != nil {
		t.Fatalf("Unexpected error: %+v", e)
	}
	if len(def.Colors) != s.levels || def.Alpha != 0.5 {
		t.Errorf("default shades: got %d colors alpha %v, want %d", len(def.Colors), def.Alpha, s.levels)
	}

	var names struct {
		Names []string `json:"names"`
	}
	if e := callTool(t, s, "overlay_colormaps", nil, &names); e != nil {
		t.Fatalf("Unexpected error: %+v", e)
	}
	found := false
	for _, n := range names.Names {
		if n == "viridis" {
			found = true
		}
	}
	if !found {
		t.Errorf("names %v missing viridis", names.Names)
	}
}
