package codexsdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleSchema(t *testing.T) {
	schema := SimpleSchema(map[string]string{
		"query":     "string",
		"limit":     "int",
		"threshold": "float64",
		"verbose":   "bool",
		"tags":      "[]string",
		"payload":   "map[string]any",
	})

	require.NotNil(t, schema)
	assert.Equal(t, "object", schema.Type)

	assert.Equal(t, "string", schema.Properties["query"].Type)
	assert.Equal(t, "integer", schema.Properties["limit"].Type)
	assert.Equal(t, "number", schema.Properties["threshold"].Type)
	assert.Equal(t, "boolean", schema.Properties["verbose"].Type)
	assert.Equal(t, "object", schema.Properties["payload"].Type)

	tags := schema.Properties["tags"]
	assert.Equal(t, "array", tags.Type)
	require.NotNil(t, tags.Items)
	assert.Equal(t, "string", tags.Items.Type)

	assert.ElementsMatch(t,
		[]string{"query", "limit", "threshold", "verbose", "tags", "payload"},
		schema.Required)
}

func TestSimpleSchema_UnknownTypeDefaultsToString(t *testing.T) {
	schema := SimpleSchema(map[string]string{"blob": "chan int"})

	assert.Equal(t, "string", schema.Properties["blob"].Type)
}

func TestSimpleSchema_NestedArray(t *testing.T) {
	schema := SimpleSchema(map[string]string{"matrix": "[][]int"})

	matrix := schema.Properties["matrix"]
	assert.Equal(t, "array", matrix.Type)
	require.NotNil(t, matrix.Items)
	assert.Equal(t, "array", matrix.Items.Type)
	require.NotNil(t, matrix.Items.Items)
	assert.Equal(t, "integer", matrix.Items.Items.Type)
}

func TestToolSpecs(t *testing.T) {
	specs, err := ToolSpecs(
		&ToolSpec{
			Name:        "read_file",
			Description: "Read a file from the workspace",
			InputSchema: SimpleSchema(map[string]string{"path": "string"}),
		},
		&ToolSpec{
			Name:        "list_files",
			InputSchema: SimpleSchema(map[string]string{"glob": "string"}),
		},
	)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.JSONEq(t, `{
		"name": "read_file",
		"description": "Read a file from the workspace",
		"inputSchema": {
			"type": "object",
			"properties": {"path": {"type": "string"}},
			"required": ["path"]
		}
	}`, string(specs[0]))

	assert.JSONEq(t, `{
		"name": "list_files",
		"inputSchema": {
			"type": "object",
			"properties": {"glob": {"type": "string"}},
			"required": ["glob"]
		}
	}`, string(specs[1]))
}
