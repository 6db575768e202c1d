package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the rendered page image (PNG, JPEG, GIF or PBM/PGM/PPM/PAM)",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "page_load",
			Description: "Load a rendered score page and return its dimensions, format and file size. The decoded page is cached for the other tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "staff_detect",
			Description: "Find the five-line staves of a page, the staff spacing, and how staves pair into single or grand-staff systems.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "notes_detect",
			Description: "Detect filled noteheads and barlines. Each notehead comes with its bounding box, clef, staff step, pitch letter (C-B) and display color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"include_rejected": map[string]interface{}{
						"type":        "boolean",
						"description": "Also list dropped candidates with the reason each was rejected. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "notes_detect_pages",
			Description: "Run notehead detection on several pages in parallel. Results come back in the order the paths were given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths of the pages, in reading order",
					},
				},
				"required": []string{"paths"},
			},
		},
		{
			Name:        "notes_overlay",
			Description: "Render the page with every detected notehead outlined in its pitch color and labeled with its letter, and barlines shaded. Returns a base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "system_crop",
			Description: "Crop one system (a staff or grand staff with its padding) from the page as a base64-encoded PNG, to inspect it more closely.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"system": map[string]interface{}{
						"type":        "integer",
						"description": "System index, 0 = top of the page",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "system"},
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
