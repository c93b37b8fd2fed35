// Package runner executes the fixed sequence of Dobby test groups and
// aggregates their pass/fail counts into a run summary.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	dobbyerrors "github.com/rdkcentral/dobbytest/internal/errors"
	"github.com/rdkcentral/dobbytest/internal/output"
)

// DefaultSettleDelay is the pause between two groups. It lets the daemon
// started by the previous group shut down before the next one begins.
const DefaultSettleDelay = time.Second

// Group is a named collection of tests run as one unit.
type Group interface {
	// Name identifies the group in logs and in the results table.
	Name() string
	// Execute runs every test in the group. A zero Total means the group
	// was skipped, for example because a required binary is missing.
	Execute(ctx context.Context) (Result, error)
}

// Result is the outcome reported by one group.
type Result struct {
	Success int
	Total   int
}

// Skipped reports whether the group ran no tests.
func (r Result) Skipped() bool {
	return r.Total == 0
}

// GroupResult records one group's contribution to a run.
type GroupResult struct {
	Name     string
	Result   Result
	Duration time.Duration
	Err      error // Set when the group faulted
}

// Summary aggregates the counters of one RunAll call.
type Summary struct {
	RunID    string
	Success  int
	Total    int
	Tested   int
	Skipped  int
	Groups   []GroupResult
	Duration time.Duration
}

// Options configures a Runner.
type Options struct {
	// SettleDelay is the pause after each group. Zero disables it.
	SettleDelay time.Duration
	// ShowTable renders the per-group results table after the summary.
	ShowTable bool
}

// Runner executes groups one at a time, in the order given.
type Runner struct {
	out  *output.Writer
	opts Options

	// wait blocks for d or until ctx is done. Replaced in tests.
	wait func(ctx context.Context, d time.Duration) error
	now  func() time.Time
}

// New creates a Runner that logs through w.
func New(w *output.Writer, opts Options) *Runner {
	return &Runner{
		out:  w,
		opts: opts,
		wait: sleepContext,
		now:  time.Now,
	}
}

// RunAll executes every group sequentially, then prints the summary.
//
// Group failures never produce an error; they are reflected in the
// Success/Total split. An error is returned only when ctx is canceled, in
// which case no summary is printed.
func (r *Runner) RunAll(ctx context.Context, groups []Group) (*Summary, error) {
	summary := &Summary{
		RunID:  uuid.NewString(),
		Groups: make([]GroupResult, 0, len(groups)),
	}
	start := r.now()
	r.out.DebugFields("starting run", map[string]interface{}{
		"run_id": summary.RunID,
		"groups": len(groups),
	})

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, dobbyerrors.Interrupted(err)
		}

		r.out.Infof("\nExecuting test %q", g.Name())

		gr := r.runGroup(ctx, g)
		if err := ctx.Err(); err != nil {
			return nil, dobbyerrors.Interrupted(err)
		}
		summary.add(gr)

		if r.opts.SettleDelay > 0 {
			if err := r.wait(ctx, r.opts.SettleDelay); err != nil {
				return nil, dobbyerrors.Interrupted(err)
			}
		}
	}

	summary.Skipped = len(groups) - summary.Tested
	summary.Duration = r.now().Sub(start)
	r.printSummary(summary)
	return summary, nil
}

// runGroup executes one group and applies the fault policy: an error or a
// panic counts the group as tested with no successes and at least one test.
func (r *Runner) runGroup(ctx context.Context, g Group) GroupResult {
	start := r.now()
	res, err := safeExecute(ctx, g)
	gr := GroupResult{Name: g.Name(), Result: res, Duration: r.now().Sub(start)}

	if err != nil {
		gr.Err = dobbyerrors.GroupError(g.Name(), err)
		gr.Result = Result{Success: 0, Total: max(res.Total, 1)}
		r.out.PrintLog(gr.Err.Error(), output.SeverityError)
		return gr
	}

	if res.Success < 0 || res.Total < 0 || res.Success > res.Total {
		r.out.Warnf("group %q reported inconsistent result %d/%d", g.Name(), res.Success, res.Total)
		gr.Result.Total = max(res.Total, 0)
		gr.Result.Success = min(max(res.Success, 0), gr.Result.Total)
	}
	return gr
}

func safeExecute(ctx context.Context, g Group) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{}
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return g.Execute(ctx)
}

func (s *Summary) add(gr GroupResult) {
	s.Groups = append(s.Groups, gr)
	s.Success += gr.Result.Success
	s.Total += gr.Result.Total
	if gr.Result.Total > 0 {
		s.Tested++
	}
}

func (r *Runner) printSummary(s *Summary) {
	r.out.PrintLog("\n\nSummary:", output.SeverityInfo)
	if s.Skipped != 0 {
		r.out.Infof("Skipped %d test groups", s.Skipped)
	}
	r.out.Infof("Tested %d test groups", s.Tested)
	r.out.PrintResults(s.Success, s.Total)

	if r.opts.ShowTable && len(s.Groups) > 0 {
		rows := make([]output.GroupRow, 0, len(s.Groups))
		for _, gr := range s.Groups {
			row := output.GroupRow{
				Name:     gr.Name,
				Passed:   gr.Result.Success,
				Total:    gr.Result.Total,
				Duration: gr.Duration,
			}
			if gr.Err != nil {
				row.Error = gr.Err.Error()
			}
			rows = append(rows, row)
		}
		r.out.Println("")
		r.out.ResultsTable("Run "+s.RunID, rows)
	}
}

// sleepContext waits for d, returning early with ctx's error if it is
// canceled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
