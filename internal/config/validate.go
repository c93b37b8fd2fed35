package config

import (
	"fmt"
	"net/url"
	"time"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a defaulted configuration for errors and returns warnings
// for non-fatal issues.
func Validate(cfg *Config) (warnings []string, err error) {
	if cfg.AssetsDir == "" {
		return nil, &ValidationError{Field: "assets_dir", Message: "is required"}
	}

	durations := []struct {
		field string
		value time.Duration
	}{
		{"settle_delay", cfg.SettleDelay},
		{"command_timeout", cfg.CommandTimeout},
		{"daemon.startup_timeout", cfg.Daemon.StartupTimeout},
		{"thunder.timeout", cfg.Thunder.Timeout},
	}
	for _, d := range durations {
		if err := validatePositive(d.field, d.value); err != nil {
			return nil, err
		}
	}

	binaries := []struct {
		field string
		value string
	}{
		{"daemon.binary", cfg.Daemon.Binary},
		{"tool.binary", cfg.Tool.Binary},
		{"bundle_generator.binary", cfg.BundleGen.Binary},
		{"plugin_launcher.binary", cfg.PluginLauncher.Binary},
	}
	for _, b := range binaries {
		if b.value == "" {
			return nil, &ValidationError{Field: b.field, Message: "is required"}
		}
	}

	if err := validateThunderURL(cfg.Thunder.URL); err != nil {
		return nil, err
	}

	if cfg.Network.Port < 1 || cfg.Network.Port > 65535 {
		return nil, &ValidationError{
			Field:   "network.port",
			Message: fmt.Sprintf("must be between 1 and 65535, got %d", cfg.Network.Port),
		}
	}

	if cfg.SettleDelay > time.Minute {
		warnings = append(warnings, fmt.Sprintf("settle_delay %s is unusually long", cfg.SettleDelay))
	}

	return warnings, nil
}

func validatePositive(field string, d time.Duration) error {
	if d <= 0 {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be positive, got %s", d)}
	}
	return nil
}

func validateThunderURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Field: "thunder.url", Message: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "thunder.url", Message: `scheme must be "http" or "https"`}
	}
	if u.Host == "" {
		return &ValidationError{Field: "thunder.url", Message: "host is required"}
	}
	return nil
}
