package groups

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rdkcentral/dobbytest/internal/config"
	"github.com/rdkcentral/dobbytest/internal/dobby"
	"github.com/rdkcentral/dobbytest/internal/output"
	"github.com/rdkcentral/dobbytest/internal/testing/mocks"
)

// fakeDobby scripts DobbyTool on a mocks.Commander, tracking container
// states the way the daemon would.
type fakeDobby struct {
	mu         sync.Mutex
	containers map[string]string
	nextDesc   int
	cmd        *mocks.Commander

	// onStart runs for every started container with its command override.
	onStart func(id string, command []string)
}

func newFakeDobby(cmd *mocks.Commander) *fakeDobby {
	f := &fakeDobby{containers: make(map[string]string), nextDesc: 90, cmd: cmd}
	cmd.OnFunc("DobbyTool start", f.start)
	cmd.OnFunc("DobbyTool stop", f.transition(""))
	cmd.OnFunc("DobbyTool pause", f.transition(dobby.StatePaused))
	cmd.OnFunc("DobbyTool resume", f.transition(dobby.StateRunning))
	cmd.OnFunc("DobbyTool list", f.list)
	cmd.OnFunc("DobbyTool info", f.info)
	return f
}

// args: DobbyTool start <id> <bundle> [command...]
func (f *fakeDobby) start(args []string) (dobby.Output, error) {
	f.mu.Lock()
	id := args[2]
	f.nextDesc++
	desc := f.nextDesc
	f.containers[id] = dobby.StateRunning
	onStart := f.onStart
	f.mu.Unlock()

	if onStart != nil {
		onStart(id, args[4:])
	}
	return dobby.Output{Stdout: fmt.Sprintf("started '%s' container, descriptor is %d\n", id, desc)}, nil
}

// exit removes a container as if its process finished.
func (f *fakeDobby) exit(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.containers, id)
}

func (f *fakeDobby) transition(state string) func(args []string) (dobby.Output, error) {
	return func(args []string) (dobby.Output, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := args[2]
		if _, ok := f.containers[id]; !ok {
			return dobby.Output{Stdout: "failed to find container '" + id + "'\n"}, nil
		}
		if state == "" {
			delete(f.containers, id)
		} else {
			f.containers[id] = state
		}
		return dobby.Output{}, nil
	}
}

func (f *fakeDobby) list([]string) (dobby.Output, error) {
	if !f.daemonUp() {
		return dobby.Output{}, errors.New("failed to connect to DobbyDaemon")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.containers))
	for id := range f.containers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString(" descriptor | id | state\n------------|----|------\n")
	for i, id := range ids {
		fmt.Fprintf(&b, " %d | %s | %s\n", 100+i, id, f.containers[id])
	}
	return dobby.Output{Stdout: b.String()}, nil
}

func (f *fakeDobby) info(args []string) (dobby.Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.containers[args[2]]
	if !ok {
		return dobby.Output{Stdout: "failed to find container\n"}, nil
	}
	return dobby.Output{Stdout: fmt.Sprintf(`{"id":%q,"state":%q}`+"\n", args[2], state)}, nil
}

// daemonUp reports whether the most recently started daemon is alive.
func (f *fakeDobby) daemonUp() bool {
	started := f.cmd.Started()
	return len(started) > 0 && !started[len(started)-1].Exited()
}

// newTestEnv builds an Env on a scripted commander with every binary
// available and an empty assets directory.
func newTestEnv(t *testing.T) (*Env, *mocks.Commander, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.AssetsDir = t.TempDir()
	cfg.WorkDir = t.TempDir()
	cfg.CommandTimeout = 2 * time.Second
	cfg.Daemon.StartupTimeout = 2 * time.Second
	cfg.GUI.WaylandDisplay = ""

	stdout := &bytes.Buffer{}
	w := output.NewWithWriters(stdout, &bytes.Buffer{}, false)
	w.SetVerbose(true)

	cmd := mocks.NewCommander()
	env := NewEnv(cfg, w, cmd)
	env.Available = func(string) bool { return true }
	env.pollInterval = time.Millisecond
	return env, cmd, stdout
}

func writeAsset(t *testing.T, env *Env, content string, elem ...string) string {
	t.Helper()
	path := filepath.Join(append([]string{env.Config.AssetsDir}, elem...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeBundle creates bundles/<archive> containing <dir>/config.json.
func writeBundle(t *testing.T, env *Env, archive string) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	dir := bundleDirName(archive)
	body := `{"ociVersion":"1.0.2"}`
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: dir + "/", Typeflag: tar.TypeDir, Mode: 0o755}))
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: dir + "/config.json", Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(body))}))
	_, err := tw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	writeAsset(t, env, buf.String(), config.BundlesDir, archive)
}
