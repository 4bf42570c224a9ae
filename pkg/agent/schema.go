package agent

import (
	"github.com/invopop/jsonschema"
)

// GenerateSchema reflects a closed JSON schema for T: unrecognized fields
// are forbidden on every object and all definitions are inlined, so the
// backend is constrained to the exact result shape without any post-hoc
// schema rewriting.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T

	return reflector.Reflect(v)
}
