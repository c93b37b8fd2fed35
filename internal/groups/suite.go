// Package groups implements the Dobby test groups driven by the runner.
package groups

import (
	"context"
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"

	"github.com/rdkcentral/dobbytest/internal/output"
	"github.com/rdkcentral/dobbytest/internal/runner"
)

// testCase describes one check inside a group. The check passes when its
// step succeeds and the step output contains Expected.
type testCase struct {
	Name        string
	ContainerID string
	Expected    string
	Description string
}

// step performs one test and returns the output checked against
// testCase.Expected.
type step func(ctx context.Context) (string, error)

// runFunc is the body of a group.
type runFunc func(ctx context.Context, env *Env, s *suite) error

// group adapts a runFunc to runner.Group.
type group struct {
	name        string
	description string
	env         *Env
	run         runFunc
}

func (g *group) Name() string        { return g.name }
func (g *group) Description() string { return g.description }

// Execute runs the group body. A SkipError raised before any test ran marks
// the group as skipped.
func (g *group) Execute(ctx context.Context) (runner.Result, error) {
	s := &suite{group: g.name, out: g.env.Out}
	err := g.run(ctx, g.env, s)
	if IsSkipError(err) && s.result.Total == 0 {
		g.env.Out.PrintLog(err.Error(), output.SeverityWarning)
		return runner.Result{}, nil
	}
	return s.result, err
}

// suite tracks the results of one group run.
type suite struct {
	group   string
	out     *output.Writer
	planned int
	result  runner.Result
}

// plan announces how many tests the group will run.
func (s *suite) plan(n int) {
	s.planned = n
}

// check runs one test case and records its outcome.
func (s *suite) check(ctx context.Context, tc testCase, fn step) bool {
	s.result.Total++
	n := s.result.Total
	total := max(s.planned, n)

	s.out.Debugf("Test %d/%d: %s", n, total, tc.Description)

	actual, err := fn(ctx)
	if err != nil {
		s.fail(n, total, tc, err.Error())
		return false
	}
	if !strings.Contains(actual, tc.Expected) {
		s.fail(n, total, tc, fmt.Sprintf("expected %q in output", tc.Expected))
		if d := unifiedDiff(tc.Expected, actual); d != "" {
			s.out.PrintLog(d, output.SeverityDebug)
		}
		return false
	}

	s.result.Success++
	s.out.Debugf("Test %d/%d passed", n, total)
	return true
}

func (s *suite) fail(n, total int, tc testCase, reason string) {
	subject := tc.Name
	if tc.ContainerID != "" {
		subject = fmt.Sprintf("%s (container %s)", tc.Name, tc.ContainerID)
	}
	s.out.Errorf("Test %d/%d failed: %s: %s", n, total, subject, reason)
}

// debugf logs a group detail at debug severity.
func (s *suite) debugf(format string, args ...interface{}) {
	s.out.Debugf("[%s] %s", s.group, fmt.Sprintf(format, args...))
}

// unifiedDiff renders expected vs actual as a unified diff, or "" when they
// are equal.
func unifiedDiff(expected, actual string) string {
	expected = ensureNewline(expected)
	actual = ensureNewline(actual)
	if expected == actual {
		return ""
	}
	edits := myers.ComputeEdits("", expected, actual)
	return fmt.Sprint(gotextdiff.ToUnified("expected", "actual", expected, edits))
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
