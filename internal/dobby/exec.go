// Package dobby drives the Dobby container manager binaries: DobbyDaemon,
// DobbyTool, DobbyBundleGenerator and DobbyPluginLauncher.
package dobby

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/acarl005/stripansi"
)

// Output is the captured result of a finished command. ANSI escape
// sequences are stripped from both streams.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined returns stdout followed by stderr.
func (o Output) Combined() string {
	if o.Stderr == "" {
		return o.Stdout
	}
	if o.Stdout == "" {
		return o.Stderr
	}
	return o.Stdout + "\n" + o.Stderr
}

// Process is a command running in the background.
type Process interface {
	Pid() int
	Signal(sig os.Signal) error
	Kill() error
	// Wait blocks until the process exits.
	Wait() error
	// Exited reports whether the process has already exited.
	Exited() bool
}

// Commander runs external commands. The default implementation is
// ExecCommander; tests substitute a scripted fake.
type Commander interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
	Start(ctx context.Context, name string, args ...string) (Process, error)
}

// CommandError reports a command that ran but exited with a non-zero status.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// waitDelay bounds how long Run waits for output pipes after the command
// is killed, since children of a killed shell may keep them open.
const waitDelay = time.Second

// ExecCommander runs commands with os/exec.
type ExecCommander struct {
	// Timeout bounds each Run call. Zero means no limit.
	Timeout time.Duration
	// Sudo prefixes every command with "sudo -n".
	Sudo bool
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
}

func (c *ExecCommander) command(ctx context.Context, name string, args []string) *exec.Cmd {
	if c.Sudo {
		args = append([]string{"-n", name}, args...)
		name = "sudo"
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

// Run executes name with args and waits for it to finish.
func (c *ExecCommander) Run(ctx context.Context, name string, args ...string) (Output, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := c.command(ctx, name, args)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{
		Stdout: stripansi.Strip(stdout.String()),
		Stderr: stripansi.Strip(stderr.String()),
	}
	if err == nil {
		return out, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		out.ExitCode = -1
		return out, fmt.Errorf("%s: %w", commandLine(name, args), ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, &CommandError{Command: commandLine(name, args), ExitCode: out.ExitCode, Stderr: out.Stderr}
	}
	out.ExitCode = -1
	return out, fmt.Errorf("%s: %w", commandLine(name, args), err)
}

// Start launches name with args in the background. Its output is discarded
// unless the command redirects it itself.
func (c *ExecCommander) Start(ctx context.Context, name string, args ...string) (Process, error) {
	cmd := c.command(ctx, name, args)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", commandLine(name, args), err)
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
	once sync.Once
}

func (p *execProcess) Pid() int { return p.cmd.Process.Pid }

func (p *execProcess) Signal(sig os.Signal) error {
	if p.Exited() {
		return nil
	}
	return p.cmd.Process.Signal(sig)
}

func (p *execProcess) Kill() error {
	var err error
	p.once.Do(func() {
		if !p.Exited() {
			err = p.cmd.Process.Kill()
		}
	})
	return err
}

func (p *execProcess) Wait() error {
	<-p.done
	return p.err
}

func (p *execProcess) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Available reports whether binary can be found, either as a path or in
// $PATH.
func Available(binary string) bool {
	if binary == "" {
		return false
	}
	_, err := exec.LookPath(binary)
	return err == nil
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
