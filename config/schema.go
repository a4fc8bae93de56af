package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for the graft.yaml metadata
// file. The output is embedded by the schema package and kept current
// by go generate.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Reject unknown top-level keys so corrupted metadata is caught early.
		AllowAdditionalProperties: false,
		// Expand struct references instead of using $ref for a cleaner schema.
		ExpandedStruct: true,
		// Use YAML field names for property names
		FieldNameTag: "yaml",
	}

	// A mirror of Metadata for reflection. Parameters maps to a
	// free-form object here: parameter names and types belong to each
	// template, not to graft.
	type projectMetadata struct {
		Template   string                 `yaml:"template" jsonschema:"required,description=SSH locator of the template repository"`
		Version    string                 `yaml:"version" jsonschema:"required,description=Template revision the project is currently on"`
		Parameters map[string]interface{} `yaml:"parameters,omitempty" jsonschema:"description=Parameter values supplied when the project was rendered"`
	}

	schema := r.Reflect(&projectMetadata{})
	schema.Title = "Graft Project Metadata"
	schema.Description = "Schema for the graft.yaml metadata file written into generated projects."
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return json.MarshalIndent(schema, "", "  ")
}
