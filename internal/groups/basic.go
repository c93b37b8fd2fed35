package groups

import (
	"context"
	"errors"
	"fmt"

	"github.com/rdkcentral/dobbytest/internal/dobby"
)

// debugLogLevel is the most verbose DobbyDaemon log level.
const debugLogLevel = 5

func runBasicSanity(ctx context.Context, env *Env, s *suite) error {
	if err := env.requireDaemon(BasicSanityTests); err != nil {
		return err
	}
	defer env.Daemon.Stop()

	tests := []testCase{
		{Name: "daemon_start", Description: "Start DobbyDaemon"},
		{Name: "tool_list", Description: "DobbyTool lists containers"},
		{Name: "set_log_level", Description: "DobbyTool changes the daemon log level"},
		{Name: "daemon_stop", Description: "Stop DobbyDaemon"},
	}
	s.plan(len(tests))

	s.check(ctx, tests[0], func(ctx context.Context) (string, error) {
		return "", env.Daemon.Start(ctx)
	})
	s.check(ctx, tests[1], func(ctx context.Context) (string, error) {
		containers, err := env.Tool.List(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d containers", len(containers)), nil
	})
	s.check(ctx, tests[2], func(ctx context.Context) (string, error) {
		return "", env.Tool.SetLogLevel(ctx, debugLogLevel)
	})
	s.check(ctx, tests[3], func(ctx context.Context) (string, error) {
		if err := env.Daemon.Stop(); err != nil {
			return "", err
		}
		if env.Daemon.Running() {
			return "", errors.New("daemon still running after stop")
		}
		if err := env.Tool.Ping(ctx); err == nil {
			return "", errors.New("DobbyTool still reaches a daemon")
		}
		return "", nil
	})
	return nil
}

// startStep starts container id from bundleOrSpec with an optional command.
func startStep(env *Env, id, bundleOrSpec string, command ...string) step {
	return func(ctx context.Context) (string, error) {
		d, err := env.Tool.Start(ctx, id, bundleOrSpec, command...)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("started %s, descriptor %d", id, d), nil
	}
}

// stateStep waits for container id to reach state and returns the last state
// seen.
func stateStep(env *Env, id, state string) step {
	return func(ctx context.Context) (string, error) {
		return env.waitState(ctx, id, state)
	}
}

// stopStep stops container id and waits until the daemon no longer lists it.
func stopStep(env *Env, id string) step {
	return func(ctx context.Context) (string, error) {
		if err := env.Tool.Stop(ctx, id, false); err != nil {
			return "", err
		}
		if _, err := env.waitState(ctx, id, dobby.StateUnknown); err != nil {
			return "", err
		}
		return "stopped", nil
	}
}
