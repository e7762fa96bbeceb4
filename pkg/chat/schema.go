package chat

import (
	"strings"

	"google.golang.org/genai"

	"betterauth-mcp/pkg/tools"
)

// SchemaFromJSON converts a JSON-Schema-like map into the Gemini schema
// type. Only the fields the model supports are carried over — type,
// description, properties, required, items — recursing into properties
// and items; every other JSON-Schema keyword is dropped. Type names are
// uppercased to match the Gemini type enum.
func SchemaFromJSON(jsonSchema map[string]any) *genai.Schema {
	schema := &genai.Schema{}

	if t, ok := jsonSchema["type"].(string); ok {
		schema.Type = genai.Type(strings.ToUpper(t))
	}

	if desc, ok := jsonSchema["description"].(string); ok {
		schema.Description = desc
	}

	if props, ok := jsonSchema["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if propSchema, ok := prop.(map[string]any); ok {
				schema.Properties[name] = SchemaFromJSON(propSchema)
			}
		}
	}

	schema.Required = stringSlice(jsonSchema["required"])

	if items, ok := jsonSchema["items"].(map[string]any); ok {
		schema.Items = SchemaFromJSON(items)
	}

	return schema
}

// stringSlice accepts both []string (schemas built in Go) and []any
// (schemas decoded from JSON).
func stringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// DeclarationsFromDefinitions translates tool definitions into the
// model's native function-calling declarations.
func DeclarationsFromDefinitions(defs []tools.Definition) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  SchemaFromJSON(def.InputSchema),
		})
	}
	return decls
}
