package dobby

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Container states as printed by DobbyTool.
const (
	StateStarting = "starting"
	StateRunning  = "running"
	StatePaused   = "paused"
	StateStopping = "stopping"
	StateStopped  = "stopped"
	StateUnknown  = "unknown"
)

// Container is one row of "DobbyTool list".
type Container struct {
	Descriptor int
	ID         string
	State      string
}

// Tool wraps the DobbyTool command line client.
type Tool struct {
	cmd    Commander
	binary string
}

// NewTool returns a Tool that runs binary through cmd.
func NewTool(cmd Commander, binary string) *Tool {
	return &Tool{cmd: cmd, binary: binary}
}

func (t *Tool) run(ctx context.Context, args ...string) (Output, error) {
	out, err := t.cmd.Run(ctx, t.binary, args...)
	if err != nil {
		return out, err
	}
	if failed(out) {
		return out, fmt.Errorf("%s %s: %s", t.binary, args[0], strings.TrimSpace(out.Combined()))
	}
	return out, nil
}

var descriptorPattern = regexp.MustCompile(`descriptor is (\d+)`)

// Start starts container id from a bundle directory or a Dobby spec file.
// A non-empty command overrides the bundle's entry point. It returns the
// container descriptor assigned by the daemon.
func (t *Tool) Start(ctx context.Context, id, bundleOrSpec string, command ...string) (int, error) {
	args := append([]string{"start", id, bundleOrSpec}, command...)
	out, err := t.run(ctx, args...)
	if err != nil {
		return 0, err
	}
	m := descriptorPattern.FindStringSubmatch(out.Stdout)
	if m == nil {
		return 0, fmt.Errorf("%s start: no descriptor in output %q", t.binary, strings.TrimSpace(out.Stdout))
	}
	return strconv.Atoi(m[1])
}

// Stop stops container id. Force kills it instead of sending SIGTERM.
func (t *Tool) Stop(ctx context.Context, id string, force bool) error {
	args := []string{"stop", id}
	if force {
		args = append(args, "--force")
	}
	_, err := t.run(ctx, args...)
	return err
}

// Pause freezes every process in container id.
func (t *Tool) Pause(ctx context.Context, id string) error {
	_, err := t.run(ctx, "pause", id)
	return err
}

// Resume thaws a paused container.
func (t *Tool) Resume(ctx context.Context, id string) error {
	_, err := t.run(ctx, "resume", id)
	return err
}

// Exec runs command inside a running container.
func (t *Tool) Exec(ctx context.Context, id string, command ...string) (Output, error) {
	return t.run(ctx, append([]string{"exec", id}, command...)...)
}

// SetLogLevel changes the daemon log level.
func (t *Tool) SetLogLevel(ctx context.Context, level int) error {
	_, err := t.run(ctx, "set-log-level", strconv.Itoa(level))
	return err
}

// Info returns the raw JSON description of container id.
func (t *Tool) Info(ctx context.Context, id string) (json.RawMessage, error) {
	out, err := t.run(ctx, "info", id)
	if err != nil {
		return nil, err
	}
	raw := strings.TrimSpace(out.Stdout)
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("%s info %s: output is not JSON", t.binary, id)
	}
	return json.RawMessage(raw), nil
}

// List returns the containers known to the daemon.
func (t *Tool) List(ctx context.Context) ([]Container, error) {
	out, err := t.run(ctx, "list")
	if err != nil {
		return nil, err
	}
	return ParseList(out.Stdout)
}

// Ping reports nil once the daemon answers a list request.
func (t *Tool) Ping(ctx context.Context) error {
	_, err := t.List(ctx)
	return err
}

// State returns the state of container id, or StateUnknown when the daemon
// does not list it.
func (t *Tool) State(ctx context.Context, id string) (string, error) {
	containers, err := t.List(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range containers {
		if c.ID == id {
			return c.State, nil
		}
	}
	return StateUnknown, nil
}

// ParseList parses the table printed by "DobbyTool list":
//
//	 descriptor | id     | state
//	------------|--------|---------
//	 123        | sleepy | running
func ParseList(s string) ([]Container, error) {
	var containers []Container
	for _, line := range strings.Split(s, "\n") {
		fields := strings.Split(line, "|")
		if len(fields) != 3 {
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if fields[0] == "descriptor" || strings.Trim(fields[0], "-") == "" {
			continue
		}
		d, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("parse container list: bad descriptor %q", fields[0])
		}
		containers = append(containers, Container{Descriptor: d, ID: fields[1], State: fields[2]})
	}
	return containers, nil
}

// failed reports whether DobbyTool printed a failure message. The tool
// exits 0 for most daemon-side errors.
func failed(out Output) bool {
	for _, line := range strings.Split(out.Combined(), "\n") {
		line = strings.ToLower(strings.TrimSpace(line))
		if strings.HasPrefix(line, "failed") || strings.HasPrefix(line, "error") {
			return true
		}
	}
	return false
}
