package config

import (
	"os"
	"path/filepath"

	"github.com/mcuadros/go-defaults"
)

// Default configuration values that cannot be expressed as struct tags.
const (
	DefaultConfigFile = "dobbytest.yaml"
	ConfigEnvVar      = "DOBBYTEST_CONFIG"
	AssetsEnvVar      = "DOBBYTEST_ASSETS"
)

// DefaultDaemonArgs keeps DobbyDaemon in the foreground so it can be
// supervised and stopped by the groups.
var DefaultDaemonArgs = []string{"--nofork", "--noconsole"}

// Default returns a configuration with every default applied, as used when
// no configuration file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg, "")
	return cfg
}

// applyDefaults fills in default values for unset configuration fields and
// resolves relative paths against baseDir.
func applyDefaults(cfg *Config, baseDir string) {
	defaults.SetDefaults(cfg)
	if len(cfg.Daemon.Args) == 0 {
		cfg.Daemon.Args = append([]string(nil), DefaultDaemonArgs...)
	}
	if cfg.GUI.WaylandDisplay == "" {
		cfg.GUI.WaylandDisplay = os.Getenv("WAYLAND_DISPLAY")
	}
	applyEnvOverrides(cfg)
	resolvePaths(cfg, baseDir)
}

func applyEnvOverrides(cfg *Config) {
	if dir := os.Getenv(AssetsEnvVar); dir != "" {
		cfg.AssetsDir = dir
	}
}

func resolvePaths(cfg *Config, baseDir string) {
	if baseDir == "" {
		return
	}
	if !filepath.IsAbs(cfg.AssetsDir) {
		cfg.AssetsDir = filepath.Join(baseDir, cfg.AssetsDir)
	}
	if cfg.WorkDir != "" && !filepath.IsAbs(cfg.WorkDir) {
		cfg.WorkDir = filepath.Join(baseDir, cfg.WorkDir)
	}
}
