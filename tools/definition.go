package tools

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/invopop/jsonschema"
)

// HandlerFunc executes a tool with the raw JSON arguments the model supplied.
type HandlerFunc func(ctx context.Context, input json.RawMessage) (string, error)

// ToolDefinition is an immutable tool declaration plus its handler.
type ToolDefinition struct {
	Name        string                         `json:"name"`
	Description string                         `json:"description"`
	InputSchema anthropic.ToolInputSchemaParam `json:"input_schema"`
	Function    HandlerFunc                    `json:"-"`

	// Mutates marks tools with side effects. They are never retried and never run
	// concurrently with other invocations.
	Mutates bool `json:"-"`
}

// GenerateSchema derives the tool input schema from the JSON tags of T.
// Fields without omitempty are required; jsonschema tags carry enums, ranges and formats.
func GenerateSchema[T any]() anthropic.ToolInputSchemaParam {
	return inputSchema(reflectSchema[T]())
}

func reflectSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func inputSchema(s *jsonschema.Schema) anthropic.ToolInputSchemaParam {
	return anthropic.ToolInputSchemaParam{
		Properties: s.Properties,
		Required:   s.Required,
	}
}

// SchemaMap returns the definition's input schema as a plain JSON object, for providers
// that take untyped function parameters.
func (d ToolDefinition) SchemaMap() (map[string]any, error) {
	b, err := json.Marshal(d.InputSchema)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
