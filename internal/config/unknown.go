package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadWithWarnings parses YAML config data and returns any unknown field
// warnings. Defaults are not applied.
func LoadWithWarnings(data []byte) (*Config, []string, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, detectUnknownFields(data), nil
}

// detectUnknownFields compares the raw document with the known struct fields.
func detectUnknownFields(data []byte) []string {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		// The data already decoded into Config, so this is an internal
		// inconsistency. Surface it rather than ignore it.
		return []string{"internal: failed to re-parse config for unknown field detection"}
	}
	return checkUnknownFields("", raw, reflect.TypeOf(Config{}))
}

func checkUnknownFields(prefix string, raw map[string]interface{}, t reflect.Type) []string {
	var warnings []string
	known := getYAMLFields(t)

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		field, ok := known[key]
		if !ok {
			if prefix == "" {
				warnings = append(warnings, fmt.Sprintf("unknown field %q at root level (ignored)", key))
			} else {
				warnings = append(warnings, fmt.Sprintf("unknown field %q in %q (ignored)", key, prefix))
			}
			continue
		}
		if field.Type.Kind() != reflect.Struct {
			continue
		}
		nested, ok := raw[key].(map[string]interface{})
		if !ok {
			continue
		}
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		warnings = append(warnings, checkUnknownFields(path, nested, field.Type)...)
	}
	return warnings
}

// getYAMLFields returns the struct fields of t keyed by their YAML name.
func getYAMLFields(t reflect.Type) map[string]reflect.StructField {
	fields := make(map[string]reflect.StructField)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		if name := strings.Split(tag, ",")[0]; name != "" {
			fields[name] = field
		}
	}
	return fields
}
