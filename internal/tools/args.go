package tools

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// DecodeArgs converts the untyped argument bag into the tool's typed
// argument struct. The model produces JSON, so a marshal round trip is
// the honest way to apply the struct's json tags and type checks; a
// mismatch is a validation error, never a silent cast.
func DecodeArgs[T any](args map[string]any) (T, error) {
	var out T

	raw, err := json.Marshal(args)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return out, nil
}

// ReflectSchema derives a tool's parameter contract from its typed
// argument struct. Required fields are those without omitempty;
// descriptions and enums come from jsonschema struct tags.
func ReflectSchema[T any]() Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var v T
	reflected := reflector.Reflect(v)

	schema := Schema{
		Required:   reflected.Required,
		Properties: make(map[string]Property),
	}
	if schema.Required == nil {
		schema.Required = []string{}
	}

	for pair := reflected.Properties.Oldest(); pair != nil; pair = pair.Next() {
		schema.Properties[pair.Key] = Property{
			Type:        pair.Value.Type,
			Description: pair.Value.Description,
			Enum:        pair.Value.Enum,
			Default:     pair.Value.Default,
		}
	}

	return schema
}
