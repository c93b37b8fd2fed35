// Package config loads, defaults and validates the dobbytest configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rdkcentral/dobbytest/internal/schema"
)

// Source describes where a configuration came from.
type Source struct {
	Path     string // File path, empty when only defaults apply
	Explicit bool   // Requested by --config or DOBBYTEST_CONFIG
}

// Locate resolves the configuration file path. The precedence is the
// --config flag, then DOBBYTEST_CONFIG, then dobbytest.yaml in the working
// directory.
func Locate(flagPath string) Source {
	if flagPath != "" {
		return Source{Path: flagPath, Explicit: true}
	}
	if env := os.Getenv(ConfigEnvVar); env != "" {
		return Source{Path: env, Explicit: true}
	}
	return Source{Path: DefaultConfigFile}
}

// LoadSource loads the configuration described by src. A missing default
// file yields the built-in defaults; a missing explicit file is an error.
func LoadSource(src Source) (*Config, []string, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !src.Explicit {
			cfg := Default()
			if _, err := Validate(cfg); err != nil {
				return nil, nil, err
			}
			return cfg, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return parse(data, filepath.Dir(src.Path))
}

func parse(data []byte, baseDir string) (*Config, []string, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// An empty file decodes to nil and means "all defaults".
	if raw != nil {
		if err := schema.ValidateDocument(raw); err != nil {
			return nil, nil, err
		}
	}

	cfg, unknownWarnings, err := LoadWithWarnings(data)
	if err != nil {
		return nil, nil, err
	}

	applyDefaults(cfg, baseDir)

	validationWarnings, err := Validate(cfg)

	allWarnings := make([]string, 0, len(unknownWarnings)+len(validationWarnings))
	allWarnings = append(allWarnings, unknownWarnings...)
	allWarnings = append(allWarnings, validationWarnings...)

	if err != nil {
		return nil, allWarnings, err
	}

	return cfg, allWarnings, nil
}

// Marshal renders the effective configuration as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
