package config

import "time"

// Config is the dobbytest configuration, normally read from dobbytest.yaml.
//
// Default values live in the `default` struct tags and are applied with
// go-defaults; see applyDefaults.
type Config struct {
	AssetsDir      string               `yaml:"assets_dir" default:"./assets"`
	WorkDir        string               `yaml:"work_dir,omitempty"`
	SettleDelay    time.Duration        `yaml:"settle_delay" default:"1s"`
	CommandTimeout time.Duration        `yaml:"command_timeout" default:"30s"`
	Daemon         DaemonConfig         `yaml:"daemon"`
	Tool           ToolConfig           `yaml:"tool"`
	BundleGen      BundleGenConfig      `yaml:"bundle_generator"`
	PluginLauncher PluginLauncherConfig `yaml:"plugin_launcher"`
	Thunder        ThunderConfig        `yaml:"thunder"`
	Network        NetworkConfig        `yaml:"network"`
	GUI            GUIConfig            `yaml:"gui"`
}

// DaemonConfig describes how DobbyDaemon is launched for each group.
type DaemonConfig struct {
	Binary         string        `yaml:"binary" default:"DobbyDaemon"`
	Args           []string      `yaml:"args"`
	StartupTimeout time.Duration `yaml:"startup_timeout" default:"10s"`
	UseSudo        bool          `yaml:"use_sudo"`
}

// ToolConfig locates the DobbyTool control binary.
type ToolConfig struct {
	Binary string `yaml:"binary" default:"DobbyTool"`
}

// BundleGenConfig locates the bundle generator binary.
type BundleGenConfig struct {
	Binary string `yaml:"binary" default:"DobbyBundleGenerator"`
}

// PluginLauncherConfig locates the OCI hook plugin launcher binary.
type PluginLauncherConfig struct {
	Binary string `yaml:"binary" default:"DobbyPluginLauncher"`
}

// ThunderConfig points at the Thunder JSON-RPC endpoint hosting the
// OCIContainer plugin.
type ThunderConfig struct {
	URL      string        `yaml:"url" default:"http://127.0.0.1:9998/jsonrpc"`
	Callsign string        `yaml:"callsign" default:"org.rdk.OCIContainer"`
	Timeout  time.Duration `yaml:"timeout" default:"5s"`
}

// NetworkConfig holds the host side of the container networking tests.
type NetworkConfig struct {
	HostAddress string `yaml:"host_address" default:"100.64.11.1"`
	Port        int    `yaml:"port" default:"7357"`
}

// GUIConfig holds the display used by the GUI container tests.
type GUIConfig struct {
	WaylandDisplay string `yaml:"wayland_display,omitempty"`
}

// Asset subdirectories below AssetsDir.
const (
	BundlesDir       = "bundles"
	SpecsDir         = "specs"
	ExpectedDir      = "expected"
	PluginConfigsDir = "plugin_configs"
)
