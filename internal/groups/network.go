package groups

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rdkcentral/dobbytest/internal/config"
	"github.com/rdkcentral/dobbytest/internal/dobby"
)

const (
	networkSpec    = "network1.json"
	networkMessage = "Hello from dobbytest"
)

func runNetworkTests(ctx context.Context, env *Env, s *suite) error {
	if err := env.requireDaemon(NetworkTests); err != nil {
		return err
	}
	spec, err := env.asset(NetworkTests, config.SpecsDir, networkSpec)
	if err != nil {
		return err
	}

	const id = "network1"
	netCfg := env.Config.Network
	tests := []testCase{
		{Name: "listen", Description: fmt.Sprintf("Listen on port %d on the host", netCfg.Port)},
		{Name: "start", ContainerID: id, Description: "Start a container that sends a message to the host"},
		{Name: "receive", ContainerID: id, Expected: networkMessage, Description: "Host receives the message from the container"},
		{Name: "stop", ContainerID: id, Description: "Stop the network container"},
	}
	s.plan(len(tests))

	var ln *listener
	if !s.check(ctx, tests[0], func(context.Context) (string, error) {
		var err error
		ln, err = listen(netCfg.Port)
		return "", err
	}) {
		return nil
	}
	defer ln.Close()

	target := netAddr(netCfg.HostAddress, netCfg.Port)
	command := []string{"sh", "-c", fmt.Sprintf("echo %s | nc %s %d", networkMessage, netCfg.HostAddress, netCfg.Port)}
	s.debugf("container sends to %s", target)

	return env.Daemon.WithDaemon(ctx, func(ctx context.Context) error {
		s.check(ctx, tests[1], startStep(env, id, spec, command...))
		s.check(ctx, tests[2], func(ctx context.Context) (string, error) {
			return ln.receive(ctx, env.Config.CommandTimeout)
		})
		s.check(ctx, tests[3], func(ctx context.Context) (string, error) {
			err := env.Tool.Stop(ctx, id, true)
			if err == nil {
				return "stopped", nil
			}
			// The container may already have exited after sending.
			if state, stateErr := env.Tool.State(ctx, id); stateErr == nil && state == dobby.StateUnknown {
				return "already exited", nil
			}
			return "", err
		})
		return nil
	})
}

// listener accepts a single connection and reads what it sends.
type listener struct {
	ln net.Listener
}

func listen(port int) (*listener, error) {
	ln, err := net.Listen("tcp", netAddr("", port))
	if err != nil {
		return nil, err
	}
	return &listener{ln: ln}, nil
}

func (l *listener) Close() error {
	return l.ln.Close()
}

// receive waits up to timeout for one connection and returns its data.
func (l *listener) receive(ctx context.Context, timeout time.Duration) (string, error) {
	type result struct {
		data string
		err  error
	}
	ch := make(chan result, 1)
	deadline := time.Now().Add(timeout)

	go func() {
		if tl, ok := l.ln.(*net.TCPListener); ok {
			_ = tl.SetDeadline(deadline)
		}
		conn, err := l.ln.Accept()
		if err != nil {
			ch <- result{err: err}
			return
		}
		defer conn.Close()
		_ = conn.SetReadDeadline(deadline)
		data, err := io.ReadAll(io.LimitReader(conn, 64<<10))
		ch <- result{data: strings.TrimSpace(string(data)), err: err}
	}()

	select {
	case <-ctx.Done():
		_ = l.ln.Close()
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return r.data, fmt.Errorf("no message received: %w", r.err)
		}
		return r.data, nil
	}
}

func netAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
