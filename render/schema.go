package render

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/graft/config"
	"github.com/grovetools/graft/errors"
)

// SchemaFileName is the parameter schema file cookiecutter-compatible
// templates carry at their root.
const SchemaFileName = "cookiecutter.json"

// Schema is a template's parameter schema: an ordered set of parameter
// names with their default values. A default may be a string (rendered
// against earlier answers), a list of choices (first entry wins), or a
// plain scalar.
type Schema struct {
	fields *config.Parameters
}

// ParseSchema parses raw cookiecutter.json contents, preserving the
// declaration order of the parameters.
func ParseSchema(data []byte) (*Schema, error) {
	fields := config.NewParameters()
	if err := fields.UnmarshalJSON(data); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRenderFailed, "invalid parameter schema").
			WithDetail("file", SchemaFileName)
	}
	return &Schema{fields: fields}, nil
}

// ReadSchema loads the parameter schema from a template checkout.
func ReadSchema(templateDir string) (*Schema, error) {
	path := filepath.Join(templateDir, SchemaFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRenderFailed,
			"the template has no "+SchemaFileName+"; it is not a cookiecutter-compatible template").
			WithDetail("path", path)
	}
	return ParseSchema(data)
}

// Names returns the parameter names in declaration order.
func (s *Schema) Names() []string {
	return s.fields.Keys()
}

// Default returns the declared default value of a parameter.
func (s *Schema) Default(name string) interface{} {
	value, _ := s.fields.Get(name)
	return value
}

// IsPrivate reports whether a parameter is private. Private parameters
// (names starting with an underscore) are carried into the rendering
// context but never prompted for.
func IsPrivate(name string) bool {
	return strings.HasPrefix(name, "_")
}
