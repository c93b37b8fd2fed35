package mocks

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rdkcentral/dobbytest/internal/dobby"
)

// Commander implements dobby.Commander with scripted responses.
//
// Responses are matched against the full command line ("DobbyTool list")
// by prefix; the longest matching prefix wins. Each prefix may carry a queue
// of responses consumed in order, the last one repeating.
type Commander struct {
	mu        sync.Mutex
	responses map[string][]response
	calls     []string
	started   []*Process

	fallback response

	// StartErr is returned by Start when set.
	StartErr error
}

type response struct {
	out dobby.Output
	err error
	fn  func(args []string) (dobby.Output, error)
}

// NewCommander creates a Commander that answers every command with empty
// output and success.
func NewCommander() *Commander {
	return &Commander{responses: make(map[string][]response)}
}

// On scripts the next response for command lines starting with prefix.
func (c *Commander) On(prefix string, out dobby.Output, err error) *Commander {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses[prefix] = append(c.responses[prefix], response{out: out, err: err})
	return c
}

// Otherwise sets the response for command lines with no scripted response.
func (c *Commander) Otherwise(out dobby.Output, err error) *Commander {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fallback = response{out: out, err: err}
	return c
}

// OnStdout is shorthand for a successful response printing stdout.
func (c *Commander) OnStdout(prefix, stdout string) *Commander {
	return c.On(prefix, dobby.Output{Stdout: stdout}, nil)
}

// OnFunc scripts a dynamic response for prefix. fn receives the full
// argument list including the command name.
func (c *Commander) OnFunc(prefix string, fn func(args []string) (dobby.Output, error)) *Commander {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses[prefix] = append(c.responses[prefix], response{fn: fn})
	return c
}

// Run implements dobby.Commander.
func (c *Commander) Run(ctx context.Context, name string, args ...string) (dobby.Output, error) {
	if err := ctx.Err(); err != nil {
		return dobby.Output{ExitCode: -1}, err
	}
	line := strings.Join(append([]string{name}, args...), " ")

	c.mu.Lock()
	c.calls = append(c.calls, line)
	r := c.next(line)
	c.mu.Unlock()

	if r.fn != nil {
		return r.fn(append([]string{name}, args...))
	}
	return r.out, r.err
}

func (c *Commander) next(line string) response {
	best := ""
	found := false
	for prefix := range c.responses {
		if strings.HasPrefix(line, prefix) && (!found || len(prefix) > len(best)) {
			best, found = prefix, true
		}
	}
	if !found {
		return c.fallback
	}
	queue := c.responses[best]
	r := queue[0]
	if len(queue) > 1 {
		c.responses[best] = queue[1:]
	}
	return r
}

// Start implements dobby.Commander. The returned Process runs until it is
// signalled or killed.
func (c *Commander) Start(ctx context.Context, name string, args ...string) (dobby.Process, error) {
	line := strings.Join(append([]string{name}, args...), " ")

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "start: "+line)
	if c.StartErr != nil {
		return nil, c.StartErr
	}
	p := NewProcess(1000 + len(c.started))
	c.started = append(c.started, p)
	return p, nil
}

// Calls returns every recorded command line in call order. Background
// processes are prefixed with "start: ".
func (c *Commander) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]string, len(c.calls))
	copy(result, c.calls)
	return result
}

// Called reports whether a command line starting with prefix was run.
func (c *Commander) Called(prefix string) bool {
	for _, call := range c.Calls() {
		if strings.HasPrefix(call, prefix) {
			return true
		}
	}
	return false
}

// Started returns the processes launched through Start.
func (c *Commander) Started() []*Process {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]*Process, len(c.started))
	copy(result, c.started)
	return result
}

// Process implements dobby.Process without an operating system process.
type Process struct {
	pid int

	mu      sync.Mutex
	done    chan struct{}
	signals []os.Signal
	killed  bool

	// IgnoreSignals keeps the process alive after Signal; only Kill ends it.
	IgnoreSignals bool
}

// NewProcess creates a running fake process.
func NewProcess(pid int) *Process {
	return &Process{pid: pid, done: make(chan struct{})}
}

func (p *Process) Pid() int { return p.pid }

func (p *Process) Signal(sig os.Signal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exitedLocked() {
		return fmt.Errorf("process %d already exited", p.pid)
	}
	p.signals = append(p.signals, sig)
	if !p.IgnoreSignals {
		close(p.done)
	}
	return nil
}

func (p *Process) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.exitedLocked() {
		p.killed = true
		close(p.done)
	}
	return nil
}

// Exit ends the process as if it terminated on its own.
func (p *Process) Exit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.exitedLocked() {
		close(p.done)
	}
}

func (p *Process) Wait() error {
	<-p.done
	return nil
}

func (p *Process) Exited() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitedLocked()
}

func (p *Process) exitedLocked() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Signals returns the signals delivered to the process.
func (p *Process) Signals() []os.Signal {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]os.Signal, len(p.signals))
	copy(result, p.signals)
	return result
}

// Killed reports whether Kill ended the process.
func (p *Process) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

var (
	_ dobby.Commander = (*Commander)(nil)
	_ dobby.Process   = (*Process)(nil)
)
