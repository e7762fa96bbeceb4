package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"betterauth-mcp/pkg/tools"
)

func TestSchemaFromJSON(t *testing.T) {
	jsonSchema := map[string]any{
		"type":        "object",
		"description": "tool input",
		"properties": map[string]any{
			"page_route": map[string]any{
				"type":        "string",
				"description": "Route of the page to read",
			},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"page_route"},
	}

	schema := SchemaFromJSON(jsonSchema)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, "tool input", schema.Description)
	assert.Equal(t, []string{"page_route"}, schema.Required)

	require.Contains(t, schema.Properties, "page_route")
	assert.Equal(t, genai.TypeString, schema.Properties["page_route"].Type)
	assert.Equal(t, "Route of the page to read", schema.Properties["page_route"].Description)

	require.Contains(t, schema.Properties, "tags")
	assert.Equal(t, genai.TypeArray, schema.Properties["tags"].Type)
	require.NotNil(t, schema.Properties["tags"].Items)
	assert.Equal(t, genai.TypeString, schema.Properties["tags"].Items.Type)
}

func TestSchemaFromJSONDropsUnsupportedKeywords(t *testing.T) {
	schema := SchemaFromJSON(map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"default":              "x",
		"minLength":            3,
		"properties": map[string]any{
			"n": map[string]any{"type": "number", "minimum": 0.0},
		},
	})

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Empty(t, schema.Description)
	assert.Nil(t, schema.Required)
	require.Contains(t, schema.Properties, "n")
	assert.Equal(t, genai.TypeNumber, schema.Properties["n"].Type)
}

func TestSchemaFromJSONRequiredAsStringSlice(t *testing.T) {
	// Definitions built in Go carry []string rather than []any.
	schema := SchemaFromJSON(map[string]any{
		"type":     "object",
		"required": []string{"a", "b"},
	})
	assert.Equal(t, []string{"a", "b"}, schema.Required)
}

func TestDeclarationsFromDefinitions(t *testing.T) {
	defs := []tools.Definition{
		{
			Name:        "read_page",
			Description: "Read a page.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"page_route": map[string]any{"type": "string"},
				},
				"required": []string{"page_route"},
			},
		},
	}

	decls := DeclarationsFromDefinitions(defs)
	require.Len(t, decls, 1)
	assert.Equal(t, "read_page", decls[0].Name)
	assert.Equal(t, "Read a page.", decls[0].Description)
	require.NotNil(t, decls[0].Parameters)
	assert.Equal(t, genai.TypeObject, decls[0].Parameters.Type)
	assert.Equal(t, []string{"page_route"}, decls[0].Parameters.Required)
}
