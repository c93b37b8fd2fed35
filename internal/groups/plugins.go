package groups

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rdkcentral/dobbytest/internal/config"
)

// ociHooks are the hook points DobbyPluginLauncher accepts.
var ociHooks = map[string]bool{
	"createRuntime":   true,
	"createContainer": true,
	"startContainer":  true,
	"poststart":       true,
	"poststop":        true,
}

// pluginConfig is one plugin_configs entry. Files are named
// "<name>.<hook>.json"; an optional "<name>.<hook>.txt" in the expected
// directory holds text the launcher must print.
type pluginConfig struct {
	name     string
	hook     string
	path     string
	expected string
}

func runPluginLauncher(ctx context.Context, env *Env, s *suite) error {
	if err := env.requireBinaries(PluginLauncher, env.Config.PluginLauncher.Binary); err != nil {
		return err
	}
	dir, err := env.asset(PluginLauncher, config.PluginConfigsDir)
	if err != nil {
		return err
	}
	configs, err := loadPluginConfigs(dir, filepath.Join(env.Config.AssetsDir, config.ExpectedDir))
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		return &SkipError{Group: PluginLauncher, Reason: SkipReasonAssetNotFound, Detail: filepath.Join(dir, "*.json")}
	}

	s.plan(len(configs))
	for _, pc := range configs {
		tc := testCase{
			Name:        pc.name + "." + pc.hook,
			Expected:    pc.expected,
			Description: fmt.Sprintf("Run %s hook for %s", pc.hook, pc.name),
		}
		s.check(ctx, tc, func(ctx context.Context) (string, error) {
			out, err := env.Launcher.Run(ctx, pc.hook, pc.path)
			return out.Combined(), err
		})
	}
	return nil
}

func loadPluginConfigs(dir, expectedDir string) ([]pluginConfig, error) {
	files, err := jsonFiles(dir)
	if err != nil {
		return nil, err
	}
	var configs []pluginConfig
	for _, f := range files {
		stem := strings.TrimSuffix(filepath.Base(f), ".json")
		dot := strings.LastIndex(stem, ".")
		if dot <= 0 || !ociHooks[stem[dot+1:]] {
			return nil, fmt.Errorf("plugin config %s: name must be <name>.<hook>.json with a known OCI hook", f)
		}
		pc := pluginConfig{name: stem[:dot], hook: stem[dot+1:], path: f}
		if data, err := os.ReadFile(filepath.Join(expectedDir, stem+".txt")); err == nil {
			pc.expected = strings.TrimSpace(string(data))
		}
		configs = append(configs, pc)
	}
	return configs, nil
}
