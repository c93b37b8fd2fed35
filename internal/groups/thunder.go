package groups

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rdkcentral/dobbytest/internal/config"
	"github.com/rdkcentral/dobbytest/internal/dobby"
)

func runThunderPlugin(ctx context.Context, env *Env, s *suite) error {
	if !env.Thunder.Reachable(ctx) {
		return &SkipError{Group: ThunderPlugin, Reason: SkipReasonThunderUnreachable, Detail: env.Thunder.URL}
	}
	tarball, err := env.asset(ThunderPlugin, config.BundlesDir, sleepyBundle)
	if err != nil {
		return err
	}
	dir, cleanup, err := env.scratch(ThunderPlugin)
	if err != nil {
		return err
	}
	defer cleanup()

	const id = "thunder-sleepy"
	bundle := filepath.Join(dir, bundleDirName(sleepyBundle))
	tc := env.Thunder
	tests := []testCase{
		{Name: "activate", Description: "Activate the OCIContainer plugin"},
		{Name: "start", ContainerID: id, Description: "Start a container through Thunder"},
		{Name: "list", ContainerID: id, Expected: id, Description: "Container appears in listContainers"},
		{Name: "state", ContainerID: id, Expected: "Running", Description: "getContainerState reports Running"},
		{Name: "pause", ContainerID: id, Expected: "Paused", Description: "Pause the container through Thunder"},
		{Name: "resume", ContainerID: id, Expected: "Running", Description: "Resume the container through Thunder"},
		{Name: "stop", ContainerID: id, Description: "Stop the container through Thunder"},
	}
	s.plan(len(tests))

	s.check(ctx, tests[0], func(ctx context.Context) (string, error) {
		return "", tc.Activate(ctx)
	})
	s.check(ctx, tests[1], func(ctx context.Context) (string, error) {
		if err := dobby.Untar(tarball, dir); err != nil {
			return "", err
		}
		d, err := tc.StartContainer(ctx, id, bundle, "")
		return fmt.Sprintf("descriptor %d", d), err
	})
	s.check(ctx, tests[2], func(ctx context.Context) (string, error) {
		containers, err := tc.ListContainers(ctx)
		if err != nil {
			return "", err
		}
		ids := make([]string, 0, len(containers))
		for _, c := range containers {
			ids = append(ids, c.ID)
		}
		return strings.Join(ids, " "), nil
	})
	s.check(ctx, tests[3], func(ctx context.Context) (string, error) {
		return tc.GetContainerState(ctx, id)
	})
	s.check(ctx, tests[4], func(ctx context.Context) (string, error) {
		if err := tc.PauseContainer(ctx, id); err != nil {
			return "", err
		}
		return tc.GetContainerState(ctx, id)
	})
	s.check(ctx, tests[5], func(ctx context.Context) (string, error) {
		if err := tc.ResumeContainer(ctx, id); err != nil {
			return "", err
		}
		return tc.GetContainerState(ctx, id)
	})
	s.check(ctx, tests[6], func(ctx context.Context) (string, error) {
		return "", tc.StopContainer(ctx, id, false)
	})
	return nil
}
