package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"empty assets dir", func(c *Config) { c.AssetsDir = "" }, "assets_dir"},
		{"zero settle delay", func(c *Config) { c.SettleDelay = 0 }, "settle_delay"},
		{"negative command timeout", func(c *Config) { c.CommandTimeout = -time.Second }, "command_timeout"},
		{"zero startup timeout", func(c *Config) { c.Daemon.StartupTimeout = 0 }, "daemon.startup_timeout"},
		{"zero thunder timeout", func(c *Config) { c.Thunder.Timeout = 0 }, "thunder.timeout"},
		{"empty daemon binary", func(c *Config) { c.Daemon.Binary = "" }, "daemon.binary"},
		{"empty tool binary", func(c *Config) { c.Tool.Binary = "" }, "tool.binary"},
		{"empty generator binary", func(c *Config) { c.BundleGen.Binary = "" }, "bundle_generator.binary"},
		{"empty launcher binary", func(c *Config) { c.PluginLauncher.Binary = "" }, "plugin_launcher.binary"},
		{"bad url scheme", func(c *Config) { c.Thunder.URL = "ws://127.0.0.1:9998" }, "thunder.url"},
		{"url without host", func(c *Config) { c.Thunder.URL = "http:///jsonrpc" }, "thunder.url"},
		{"port zero", func(c *Config) { c.Network.Port = 0 }, "network.port"},
		{"port too large", func(c *Config) { c.Network.Port = 65536 }, "network.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			_, err := Validate(cfg)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestValidate_LongSettleDelayWarns(t *testing.T) {
	cfg := Default()
	cfg.SettleDelay = 2 * time.Minute

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "settle_delay")
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "network.port", Message: "out of range"}
	assert.Equal(t, "network.port: out of range", err.Error())
}
