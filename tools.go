package codexsdk

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Schema is a JSON Schema object for tool input validation.
type Schema = jsonschema.Schema

// ToolSpec declares a tool the agent may call during a thread. Specs are
// passed to the server in ThreadStartParams.Tools; the server routes the
// agent's calls back as MCP tool call items.
type ToolSpec struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// ToolSpecs marshals tool declarations into the wire form used by
// ThreadStartParams.Tools.
//
// Example usage:
//
//	tools, err := codexsdk.ToolSpecs(
//	    &codexsdk.ToolSpec{
//	        Name:        "get_weather",
//	        Description: "Look up the current weather for a city",
//	        InputSchema: codexsdk.SimpleSchema(map[string]string{"city": "string"}),
//	    },
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	thread, err := client.ThreadStart(ctx, &codexsdk.ThreadStartParams{Tools: tools})
func ToolSpecs(specs ...*ToolSpec) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(specs))

	for _, spec := range specs {
		data, err := json.Marshal(spec)
		if err != nil {
			return nil, fmt.Errorf("marshal tool spec %q: %w", spec.Name, err)
		}

		out = append(out, data)
	}

	return out, nil
}

// SimpleSchema creates a jsonschema.Schema from a simple type map.
// Every listed property is required.
//
// Input format: {"a": "float64", "b": "string"}
//
// Type mappings:
//   - "string"           → {"type": "string"}
//   - "int", "int64"     → {"type": "integer"}
//   - "float64", "float" → {"type": "number"}
//   - "bool"             → {"type": "boolean"}
//   - "[]string"         → {"type": "array", "items": {"type": "string"}}
//   - "any", "object"    → {"type": "object"}
func SimpleSchema(props map[string]string) *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(props))
	required := make([]string, 0, len(props))

	for name, goType := range props {
		properties[name] = goTypeToJSONSchema(goType)
		required = append(required, name)
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// goTypeToJSONSchema converts a Go type string to a JSON Schema type.
func goTypeToJSONSchema(goType string) *jsonschema.Schema {
	switch goType {
	case "string":
		return &jsonschema.Schema{Type: "string"}
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		return &jsonschema.Schema{Type: "integer"}
	case "float32", "float64", "float", "number":
		return &jsonschema.Schema{Type: "number"}
	case "bool", "boolean":
		return &jsonschema.Schema{Type: "boolean"}
	case "any", "object", "map[string]any":
		return &jsonschema.Schema{Type: "object"}
	default:
		// Check for array types
		if len(goType) > 2 && goType[:2] == "[]" {
			itemType := goType[2:]

			return &jsonschema.Schema{
				Type:  "array",
				Items: goTypeToJSONSchema(itemType),
			}
		}

		// Default to string
		return &jsonschema.Schema{Type: "string"}
	}
}
