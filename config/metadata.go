package config

import (
	"os"
	"path/filepath"

	"github.com/grovetools/graft/errors"
	"github.com/grovetools/graft/schema"
	"gopkg.in/yaml.v3"
)

//go:generate sh -c "cd .. && go run ./tools/schema-generator/"

// MetadataFileName is the metadata file graft writes into every
// project it generates and reads back on update.
const MetadataFileName = "graft.yaml"

// Metadata records which template a project was generated from, the
// template revision it is currently on, and the parameter values the
// render used. It lives at the project root as graft.yaml.
type Metadata struct {
	Template   string      `yaml:"template" json:"template"`
	Version    string      `yaml:"version" json:"version"`
	Parameters *Parameters `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// MetadataPath returns the metadata file path for a project directory.
func MetadataPath(dir string) string {
	return filepath.Join(dir, MetadataFileName)
}

// HasMetadata reports whether dir contains a metadata file.
func HasMetadata(dir string) bool {
	info, err := os.Stat(MetadataPath(dir))
	return err == nil && !info.IsDir()
}

// ReadMetadata loads and validates the metadata file from a project
// directory.
func ReadMetadata(dir string) (*Metadata, error) {
	path := MetadataPath(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotAProject(dir)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read project metadata").
			WithDetail("path", path)
	}

	meta, err := ParseMetadata(data)
	if err != nil {
		if graftErr, ok := err.(*errors.GraftError); ok {
			return nil, graftErr.WithDetail("path", path)
		}
		return nil, err
	}
	return meta, nil
}

// ParseMetadata parses and validates raw metadata contents.
//
// Validation runs against the raw document rather than the decoded
// struct so that unknown keys and mistyped values are caught before
// they are silently dropped by the struct decode.
func ParseMetadata(data []byte) (*Metadata, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse project metadata")
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create metadata validator")
	}
	if err := validator.Validate(raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid project metadata")
	}

	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse project metadata")
	}
	return &meta, nil
}

// WriteMetadata writes the metadata file for a project directory. The
// contents are staged in a temporary file beside the final location
// and renamed into place, so readers never observe a partial file.
func WriteMetadata(dir string, meta *Metadata) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to serialize project metadata")
	}

	tmp, err := os.CreateTemp(dir, ".graft-*.yaml")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to stage project metadata").
			WithDetail("dir", dir)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to write project metadata").
			WithDetail("path", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to write project metadata").
			WithDetail("path", tmpPath)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to write project metadata").
			WithDetail("path", tmpPath)
	}
	if err := os.Rename(tmpPath, MetadataPath(dir)); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to replace project metadata").
			WithDetail("path", MetadataPath(dir))
	}
	return nil
}
