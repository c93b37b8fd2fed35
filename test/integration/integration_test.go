// Package integration runs the whole driver against fake Dobby binaries.
package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdkcentral/dobbytest/internal/cli"
	"github.com/rdkcentral/dobbytest/internal/config"
	"github.com/rdkcentral/dobbytest/internal/dobby"
	"github.com/rdkcentral/dobbytest/internal/groups"
	"github.com/rdkcentral/dobbytest/internal/output"
	"github.com/rdkcentral/dobbytest/internal/runner"
)

const stateEnvVar = "FAKE_DOBBY_STATE"

// fakeDaemon marks itself up until it receives SIGTERM.
const fakeDaemon = `#!/bin/sh
trap 'rm -f "$FAKE_DOBBY_STATE/up"; exit 0' TERM INT
touch "$FAKE_DOBBY_STATE/up"
while :; do sleep 0.1; done
`

// fakeTool answers list and set-log-level while the fake daemon is up.
const fakeTool = `#!/bin/sh
if [ ! -f "$FAKE_DOBBY_STATE/up" ]; then
	echo "failed to connect to daemon"
	exit 1
fi
case "$1" in
list)
	echo " descriptor | id | state"
	echo "------------|----|------"
	;;
set-log-level)
	echo "$2" > "$FAKE_DOBBY_STATE/log-level"
	;;
*)
	echo "error: unsupported command $1"
	;;
esac
`

type fixture struct {
	dir    string
	state  string
	config string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake Dobby binaries are shell scripts")
	}

	dir := t.TempDir()
	f := &fixture{dir: dir, state: filepath.Join(dir, "state")}
	require.NoError(t, os.MkdirAll(f.state, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	t.Setenv(stateEnvVar, f.state)
	t.Setenv(config.ConfigEnvVar, "")
	t.Setenv(config.AssetsEnvVar, "")
	t.Setenv("WAYLAND_DISPLAY", "")

	daemon := writeScript(t, dir, "DobbyDaemon", fakeDaemon)
	tool := writeScript(t, dir, "DobbyTool", fakeTool)

	content := "assets_dir: assets\n" +
		"settle_delay: 1ms\n" +
		"command_timeout: 5s\n" +
		"daemon:\n  binary: " + daemon + "\n  startup_timeout: 5s\n" +
		"tool:\n  binary: " + tool + "\n" +
		"bundle_generator:\n  binary: " + filepath.Join(dir, "missing-bundlegen") + "\n" +
		"plugin_launcher:\n  binary: " + filepath.Join(dir, "missing-launcher") + "\n" +
		"thunder:\n  url: http://127.0.0.1:1/jsonrpc\n  timeout: 200ms\n"
	f.config = filepath.Join(dir, config.DefaultConfigFile)
	require.NoError(t, os.WriteFile(f.config, []byte(content), 0o644))
	return f
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func TestBasicSanityAgainstFakeDobby(t *testing.T) {
	f := newFixture(t)

	cfg, warnings, err := config.LoadSource(config.Source{Path: f.config, Explicit: true})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	stdout := &bytes.Buffer{}
	w := output.NewWithWriters(stdout, &bytes.Buffer{}, false)
	env := groups.NewEnv(cfg, w, &dobby.ExecCommander{Timeout: cfg.CommandTimeout})

	summary, err := runner.New(w, runner.Options{SettleDelay: cfg.SettleDelay}).
		RunAll(context.Background(), groups.Default(env))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Tested, stdout.String())
	assert.Equal(t, 8, summary.Skipped)
	assert.Equal(t, 4, summary.Success)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, groups.BasicSanityTests, summary.Groups[0].Name)
	assert.Contains(t, stdout.String(), "Successful tests: 4/4")

	level, err := os.ReadFile(filepath.Join(f.state, "log-level"))
	require.NoError(t, err)
	assert.Equal(t, "5\n", string(level))

	_, err = os.Stat(filepath.Join(f.state, "up"))
	assert.True(t, os.IsNotExist(err), "daemon left running")
}

func TestCLIRunAgainstFakeDobby(t *testing.T) {
	f := newFixture(t)

	code := cli.Run([]string{"--quiet", "--config", f.config, "--delay", "1ms"})

	assert.Equal(t, 0, code)
	_, err := os.Stat(filepath.Join(f.state, "log-level"))
	assert.NoError(t, err)
}
