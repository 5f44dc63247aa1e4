package server

import (
	"testing"

	"github.com/ironsheep/image-edit-mcp/internal/params"
)

func TestGetToolDefinitions_MatchesOperations(t *testing.T) {
	tools := GetToolDefinitions()

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("tool %s defined twice", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, op := range params.Operations() {
		if _, ok := toolMap[op]; !ok {
			t.Errorf("operation %s has no tool definition", op)
		}
	}
	for name := range toolMap {
		if !params.Known(name) {
			t.Errorf("tool %s is not a known operation", name)
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

			properties, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}

			// Every required field must be described
			required, _ := tool.InputSchema["required"].([]string)
			for _, field := range required {
				if _, ok := properties[field]; !ok {
					t.Errorf("required field %s missing from properties", field)
				}
			}
		})
	}
}

func TestToolDefinitions_SingleImageTools(t *testing.T) {
	tools := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		tools[tool.Name] = tool
	}

	for _, name := range []string{params.OpApplySepia, params.OpResizeImage, params.OpAddBorder, params.OpExtractColors} {
		properties := tools[name].InputSchema["properties"].(map[string]interface{})
		for _, field := range []string{"image_source", "output_format", "quality", "output_mode"} {
			if _, ok := properties[field]; !ok {
				t.Errorf("%s: missing %s", name, field)
			}
		}
	}
}
