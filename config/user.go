package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/graft/errors"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// UserConfig is the optional user-level configuration loaded from
// ~/.config/graft/graft.yml. It supplies prompt defaults and template
// locator abbreviations, and carries free-form sections for tooling
// built on top of graft.
type UserConfig struct {
	// DefaultContext provides fallback values for template parameters.
	// A value here overrides a template's own default but never a
	// value already recorded in a project's metadata.
	DefaultContext map[string]interface{} `yaml:"default_context,omitempty"`

	// Abbreviations maps locator prefixes to expansion patterns, e.g.
	// "corp": "git@github.com:corporation/%s.git". Entries here
	// override the built-in gh: and gl: abbreviations.
	Abbreviations map[string]string `yaml:"abbreviations,omitempty"`

	// Extensions captures all other top-level keys for extensibility.
	Extensions map[string]interface{} `yaml:",inline"`
}

// UserConfigPath returns the user configuration file path, honoring
// XDG_CONFIG_HOME.
func UserConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "graft", "graft.yml")
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "graft", "graft.yml")
	}
	return ""
}

// LoadUserConfig reads the user configuration file. A missing file is
// not an error; the zero config is returned so callers can treat the
// file as optional.
func LoadUserConfig() (*UserConfig, error) {
	path := UserConfigPath()
	if path == "" {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &UserConfig{}, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read user config").
			WithDetail("path", path)
	}

	expanded := expandEnvVars(string(data))
	var cfg UserConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse user config").
			WithDetail("path", path)
	}
	return &cfg, nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
// ${VAR:-default} falls back to default when VAR is unset or empty.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// UnmarshalExtension decodes a specific extension's configuration from
// the loaded graft.yml into the provided target struct. The target
// must be a pointer. This gives tools a type-safe way to read their
// custom configuration sections.
//
// Example:
//
//	var logCfg logging.Config
//	err := userCfg.UnmarshalExtension("logging", &logCfg)
func (c *UserConfig) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		// The target struct will simply remain zero-valued.
		return nil
	}

	// Use mapstructure to decode the generic map[string]interface{}
	// into the strongly-typed target struct. We configure it to use
	// `yaml` tags for consistency.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
