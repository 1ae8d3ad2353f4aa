package server

import (
	"slices"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"image_load",
		"image_dimensions",
		"overlay_render",
		"overlay_label_color",
		"overlay_colormap",
		"overlay_colormaps",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("tool count: got %d, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties missing")
			}

			// Every required field must be a declared property.
			required, _ := tool.InputSchema["required"].([]string)
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required field %q is not a property", r)
				}
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	tests := []struct {
		tool string
		want []string
	}{
		{"image_load", []string{"path"}},
		{"image_dimensions", []string{"path"}},
		{"overlay_render", []string{"path", "annotations"}},
		{"overlay_label_color", []string{"label"}},
		{"overlay_colormap", []string{"name"}},
		{"overlay_colormaps", nil},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			tool, ok := toolMap[tt.tool]
			if !ok {
				t.Fatalf("tool %s not found", tt.tool)
			}
			got, _ := tool.InputSchema["required"].([]string)
			if !slices.Equal(got, tt.want) {
				t.Errorf("required: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToolDefinitions_RenderOptions(t *testing.T) {
	var render Tool
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "overlay_render" {
			render = tool
		}
	}
	props := render.InputSchema["properties"].(map[string]interface{})
	for _, name := range []string{"width", "height", "hidden_tags", "score_threshold", "dim", "grayscale", "output_path"} {
		if _, ok := props[name]; !ok {
			t.Errorf("overlay_render missing property %q", name)
		}
	}
}
