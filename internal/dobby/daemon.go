package dobby

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultStopGrace is how long Stop waits after SIGTERM before killing the
// daemon.
const DefaultStopGrace = 5 * time.Second

// ErrDaemonExited is returned when the daemon process exits while it is
// being waited on.
var ErrDaemonExited = errors.New("DobbyDaemon exited during startup")

// DaemonOptions configures a Daemon.
type DaemonOptions struct {
	Binary         string
	Args           []string
	StartupTimeout time.Duration
	StopGrace      time.Duration
}

// Daemon supervises one DobbyDaemon process.
type Daemon struct {
	cmd  Commander
	tool *Tool
	opts DaemonOptions
	proc Process

	// pollInterval is the first readiness poll delay.
	pollInterval time.Duration
}

// NewDaemon returns a Daemon started through cmd. tool is used to check
// readiness.
func NewDaemon(cmd Commander, tool *Tool, opts DaemonOptions) *Daemon {
	if opts.StopGrace <= 0 {
		opts.StopGrace = DefaultStopGrace
	}
	return &Daemon{cmd: cmd, tool: tool, opts: opts, pollInterval: 100 * time.Millisecond}
}

// Start launches the daemon and waits until DobbyTool can reach it.
func (d *Daemon) Start(ctx context.Context) error {
	if d.Running() {
		return fmt.Errorf("%s already running (pid %d)", d.opts.Binary, d.proc.Pid())
	}

	proc, err := d.cmd.Start(ctx, d.opts.Binary, d.opts.Args...)
	if err != nil {
		return err
	}
	d.proc = proc

	if err := d.waitReady(ctx); err != nil {
		_ = d.Stop()
		return fmt.Errorf("%s not ready: %w", d.opts.Binary, err)
	}
	return nil
}

func (d *Daemon) waitReady(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.pollInterval
	b.MaxInterval = time.Second
	b.MaxElapsedTime = d.opts.StartupTimeout

	op := func() error {
		if d.proc.Exited() {
			return backoff.Permanent(ErrDaemonExited)
		}
		return d.tool.Ping(ctx)
	}
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}

// Stop terminates the daemon with SIGTERM and kills it if it has not exited
// within the grace period. Stopping a daemon that is not running is a no-op.
func (d *Daemon) Stop() error {
	if d.proc == nil {
		return nil
	}
	proc := d.proc
	d.proc = nil

	if proc.Exited() {
		return nil
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return proc.Kill()
	}

	done := make(chan struct{})
	go func() {
		_ = proc.Wait()
		close(done)
	}()

	timer := time.NewTimer(d.opts.StopGrace)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		if err := proc.Kill(); err != nil {
			return err
		}
		<-done
		return nil
	}
}

// Running reports whether the daemon process is alive.
func (d *Daemon) Running() bool {
	return d.proc != nil && !d.proc.Exited()
}

// WithDaemon starts the daemon, runs fn and stops the daemon again,
// whatever fn returns.
func (d *Daemon) WithDaemon(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := d.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if stopErr := d.Stop(); stopErr != nil && err == nil {
			err = stopErr
		}
	}()
	return fn(ctx)
}
