package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Source images
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image stays cached for later renders.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the natural width and height of an image file. Annotation coordinates are in this pixel space.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Overlay rendering
		{
			Name: "overlay_render",
			Description: "Render an annotation document (polygons, boxes, lines, markers, segmentation and metric masks) over an image and return it as base64-encoded PNG. " +
				"Masks are always drawn beneath vector shapes. Annotations whose \"layer: label\" tag is hidden, or whose score is not above the threshold, are left out. " +
				"Malformed annotations are skipped and listed rather than failing the render.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"annotations": map[string]interface{}{
						"type":        "object",
						"description": "Annotation document: {\"layers\": [{\"name\": ..., \"annotations\": [{\"type\": \"boxes\"|\"regions\"|\"lines\"|\"markers\"|\"mask\", ...}]}]}",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum output width in pixels. Aspect ratio is preserved. Default: natural width",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum output height in pixels. Aspect ratio is preserved. Default: natural height",
					},
					"hidden_tags": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Tags to hide, each formatted \"layer: label\"",
					},
					"score_threshold": map[string]interface{}{
						"type":        "number",
						"description": "Only annotations with no score or a score above this value are drawn (0-1). Default: 0",
						"default":     0.0,
					},
					"dim": map[string]interface{}{
						"type":        "number",
						"description": "Darken the background by this fraction (0-1) so overlays stand out. Default: 0",
						"default":     0.0,
					},
					"grayscale": map[string]interface{}{
						"type":        "boolean",
						"description": "Desaturate the background. Default: false",
						"default":     false,
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to write the PNG to instead of returning it inline",
					},
				},
				"required": []string{"path", "annotations"},
			},
		},

		// Colors
		{
			Name:        "overlay_label_color",
			Description: "Get the color assigned to a label and the readable text color on top of it. Colors are deterministic per label.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"label": map[string]interface{}{
						"type":        "string",
						"description": "Annotation label",
					},
					"layer": map[string]interface{}{
						"type":        "string",
						"description": "Optional layer name, used to report the label's visibility tag",
					},
				},
				"required": []string{"label"},
			},
		},
		{
			Name:        "overlay_colormap",
			Description: "Generate a colormap as a list of hex colors, as used for metric masks.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Colormap name (see overlay_colormaps)",
					},
					"shades": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors, at least 2. Default: 255",
					},
					"alpha": map[string]interface{}{
						"type":        "number",
						"description": "Opacity 0-1 applied to every color. Default: 1",
					},
				},
				"required": []string{"name"},
			},
		},
		{
			Name:        "overlay_colormaps",
			Description: "List the available colormap names.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
