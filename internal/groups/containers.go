package groups

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rdkcentral/dobbytest/internal/config"
	"github.com/rdkcentral/dobbytest/internal/dobby"
)

const (
	sleepySpec   = "sleepy.json"
	sleepyBundle = "sleepy_bundle.tar.gz"
)

// consoleLogPath is where the sleepy spec sends the container console.
var consoleLogPath = "/tmp/container.log"

func runContainerManipulations(ctx context.Context, env *Env, s *suite) error {
	if err := env.requireDaemon(ContainerManipulations); err != nil {
		return err
	}
	spec, err := env.asset(ContainerManipulations, config.SpecsDir, sleepySpec)
	if err != nil {
		return err
	}

	const id = "sleepy"
	tests := []testCase{
		{Name: "start", ContainerID: id, Description: "Start the sleepy container"},
		{Name: "running", ContainerID: id, Expected: dobby.StateRunning, Description: "Container is listed as running"},
		{Name: "pause", ContainerID: id, Expected: dobby.StatePaused, Description: "Pause the container"},
		{Name: "resume", ContainerID: id, Expected: dobby.StateRunning, Description: "Resume the container"},
		{Name: "exec", ContainerID: id, Description: "Run a command inside the container"},
		{Name: "info", ContainerID: id, Expected: "{", Description: "DobbyTool info returns JSON"},
		{Name: "stop", ContainerID: id, Expected: "stopped", Description: "Stop the container"},
	}
	s.plan(len(tests))

	return env.Daemon.WithDaemon(ctx, func(ctx context.Context) error {
		s.check(ctx, tests[0], startStep(env, id, spec))
		s.check(ctx, tests[1], stateStep(env, id, dobby.StateRunning))
		s.check(ctx, tests[2], func(ctx context.Context) (string, error) {
			if err := env.Tool.Pause(ctx, id); err != nil {
				return "", err
			}
			return env.waitState(ctx, id, dobby.StatePaused)
		})
		s.check(ctx, tests[3], func(ctx context.Context) (string, error) {
			if err := env.Tool.Resume(ctx, id); err != nil {
				return "", err
			}
			return env.waitState(ctx, id, dobby.StateRunning)
		})
		s.check(ctx, tests[4], func(ctx context.Context) (string, error) {
			out, err := env.Tool.Exec(ctx, id, "echo", "exec ok")
			return strings.TrimSpace(out.Combined()), err
		})
		s.check(ctx, tests[5], func(ctx context.Context) (string, error) {
			raw, err := env.Tool.Info(ctx, id)
			return string(raw), err
		})
		s.check(ctx, tests[6], stopStep(env, id))
		return nil
	})
}

func runCommandLineContainers(ctx context.Context, env *Env, s *suite) error {
	if err := env.requireDaemon(CommandLineContainers); err != nil {
		return err
	}
	spec, err := env.asset(CommandLineContainers, config.SpecsDir, sleepySpec)
	if err != nil {
		return err
	}

	const id = "echo"
	tests := []testCase{
		{Name: "start_with_command", ContainerID: id, Description: "Start a container running \"echo Hello World\""},
		{Name: "exits", ContainerID: id, Expected: dobby.StateUnknown, Description: "Container exits once the command finishes"},
		{Name: "output", ContainerID: id, Expected: "Hello World", Description: "Container console shows the command output"},
	}
	s.plan(len(tests))

	_ = os.Remove(consoleLogPath)
	return env.Daemon.WithDaemon(ctx, func(ctx context.Context) error {
		s.check(ctx, tests[0], startStep(env, id, spec, "echo", "Hello", "World"))
		s.check(ctx, tests[1], stateStep(env, id, dobby.StateUnknown))
		s.check(ctx, tests[2], func(context.Context) (string, error) {
			data, err := os.ReadFile(consoleLogPath)
			return string(data), err
		})
		return nil
	})
}

func runStartFromBundle(ctx context.Context, env *Env, s *suite) error {
	return runBundleContainer(ctx, env, s, StartFromBundle, sleepyBundle, "sleepy")
}

// runBundleContainer extracts archive from the bundles directory and runs
// container id from it: extract, start, check it runs, stop.
func runBundleContainer(ctx context.Context, env *Env, s *suite, name, archive, id string) error {
	if err := env.requireDaemon(name); err != nil {
		return err
	}
	tarball, err := env.asset(name, config.BundlesDir, archive)
	if err != nil {
		return err
	}
	dir, cleanup, err := env.scratch(name)
	if err != nil {
		return err
	}
	defer cleanup()

	bundle := filepath.Join(dir, bundleDirName(archive))
	tests := []testCase{
		{Name: "extract", Description: "Extract " + archive},
		{Name: "start", ContainerID: id, Description: "Start the container from the extracted bundle"},
		{Name: "running", ContainerID: id, Expected: dobby.StateRunning, Description: "Container is listed as running"},
		{Name: "stop", ContainerID: id, Expected: "stopped", Description: "Stop the container"},
	}
	s.plan(len(tests))

	if !s.check(ctx, tests[0], func(context.Context) (string, error) {
		return "", dobby.Untar(tarball, dir)
	}) {
		return nil
	}
	s.debugf("bundle extracted to %s", bundle)

	return env.Daemon.WithDaemon(ctx, func(ctx context.Context) error {
		s.check(ctx, tests[1], startStep(env, id, bundle))
		s.check(ctx, tests[2], stateStep(env, id, dobby.StateRunning))
		s.check(ctx, tests[3], stopStep(env, id))
		return nil
	})
}

// bundleDirName maps "sleepy_bundle.tar.gz" to "sleepy_bundle", the
// top-level directory inside the archive.
func bundleDirName(archive string) string {
	for _, ext := range []string{".tar.gz", ".tgz", ".tar"} {
		if strings.HasSuffix(archive, ext) {
			return strings.TrimSuffix(archive, ext)
		}
	}
	return archive
}
