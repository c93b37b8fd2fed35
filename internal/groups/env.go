package groups

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/rdkcentral/dobbytest/internal/config"
	"github.com/rdkcentral/dobbytest/internal/dobby"
	"github.com/rdkcentral/dobbytest/internal/output"
	"github.com/rdkcentral/dobbytest/internal/thunder"
)

// Env holds everything the groups need to talk to Dobby.
type Env struct {
	Config    *config.Config
	Out       *output.Writer
	Tool      *dobby.Tool
	Daemon    *dobby.Daemon
	BundleGen *dobby.BundleGenerator
	Launcher  *dobby.PluginLauncher
	Thunder   *thunder.Client

	// Available reports whether a binary can be executed.
	Available func(binary string) bool

	// pollInterval is the first delay when waiting for a container state.
	pollInterval time.Duration
}

// NewEnv wires the Dobby wrappers for cfg on top of cmd.
func NewEnv(cfg *config.Config, w *output.Writer, cmd dobby.Commander) *Env {
	tool := dobby.NewTool(cmd, cfg.Tool.Binary)
	return &Env{
		Config: cfg,
		Out:    w,
		Tool:   tool,
		Daemon: dobby.NewDaemon(cmd, tool, dobby.DaemonOptions{
			Binary:         cfg.Daemon.Binary,
			Args:           cfg.Daemon.Args,
			StartupTimeout: cfg.Daemon.StartupTimeout,
		}),
		BundleGen:    dobby.NewBundleGenerator(cmd, cfg.BundleGen.Binary),
		Launcher:     dobby.NewPluginLauncher(cmd, cfg.PluginLauncher.Binary),
		Thunder:      thunder.New(cfg.Thunder.URL, cfg.Thunder.Callsign, cfg.Thunder.Timeout),
		Available:    dobby.Available,
		pollInterval: 100 * time.Millisecond,
	}
}

// requireBinaries fails with a SkipError naming the first missing binary.
func (e *Env) requireBinaries(group string, binaries ...string) error {
	for _, b := range binaries {
		if !e.Available(b) {
			return &SkipError{Group: group, Reason: SkipReasonBinaryNotFound, Detail: b}
		}
	}
	return nil
}

// requireDaemon checks the binaries needed to start and drive DobbyDaemon.
func (e *Env) requireDaemon(group string) error {
	return e.requireBinaries(group, e.Config.Daemon.Binary, e.Config.Tool.Binary)
}

// asset returns the path of an asset below the assets directory, or a
// SkipError when it does not exist.
func (e *Env) asset(group string, elem ...string) (string, error) {
	path := filepath.Join(append([]string{e.Config.AssetsDir}, elem...)...)
	if _, err := os.Stat(path); err != nil {
		return "", &SkipError{Group: group, Reason: SkipReasonAssetNotFound, Detail: path}
	}
	return path, nil
}

// scratch creates a working directory for one group. The returned function
// removes it.
func (e *Env) scratch(group string) (string, func(), error) {
	base := e.Config.WorkDir
	if base != "" {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return "", nil, err
		}
	}
	dir, err := os.MkdirTemp(base, "dobbytest-"+group+"-")
	if err != nil {
		return "", nil, fmt.Errorf("create scratch directory: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// waitState polls DobbyTool until container id reports state or the
// command timeout elapses. StateUnknown waits for the container to vanish.
func (e *Env) waitState(ctx context.Context, id, state string) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.pollInterval
	b.MaxInterval = time.Second
	b.MaxElapsedTime = e.Config.CommandTimeout

	var last string
	op := func() error {
		s, err := e.Tool.State(ctx, id)
		if err != nil {
			return err
		}
		last = s
		if s != state {
			return fmt.Errorf("container %s is %s, want %s", id, s, state)
		}
		return nil
	}
	err := backoff.Retry(op, backoff.WithContext(b, ctx))
	return last, err
}
