package server

import "testing"

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()
	want := []string{"page_load", "staff_detect", "notes_detect", "notes_detect_pages", "notes_overlay", "system_crop"}
	if len(tools) != len(want) {
		t.Fatalf("got %d tools, want %d", len(tools), len(want))
	}
	for i, name := range want {
		if tools[i].Name != name {
			t.Errorf("tool %d: got %s, want %s", i, tools[i].Name, name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("empty description")
			}
			schema := tool.InputSchema
			if schema["type"] != "object" {
				t.Errorf("schema type = %v", schema["type"])
			}
			props, ok := schema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("properties missing")
			}
			required, ok := schema["required"].([]string)
			if !ok || len(required) == 0 {
				t.Fatal("required missing")
			}
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required %q has no property", r)
				}
			}
		})
	}
}

func TestToolDefinitions_OptionalDefaults(t *testing.T) {
	defaults := map[string]map[string]interface{}{
		"notes_detect": {"include_rejected": false},
		"system_crop":  {"scale": 1.0},
	}
	for _, tool := range GetToolDefinitions() {
		want, ok := defaults[tool.Name]
		if !ok {
			continue
		}
		props := tool.InputSchema["properties"].(map[string]interface{})
		for name, def := range want {
			prop, ok := props[name].(map[string]interface{})
			if !ok {
				t.Errorf("%s: no property %s", tool.Name, name)
				continue
			}
			if prop["default"] != def {
				t.Errorf("%s.%s default = %v, want %v", tool.Name, name, prop["default"], def)
			}
		}
	}
}
