package runner

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdkcentral/dobbytest/internal/output"
)

type stubGroup struct {
	name   string
	result Result
}

func (g stubGroup) Name() string                             { return g.name }
func (g stubGroup) Execute(context.Context) (Result, error) { return g.result, nil }

func TestRunAll_SettleDelayAfterEachGroup(t *testing.T) {
	w := output.NewWithWriters(&bytes.Buffer{}, &bytes.Buffer{}, false)
	r := New(w, Options{SettleDelay: DefaultSettleDelay})

	var waits []time.Duration
	r.wait = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	_, err := r.RunAll(context.Background(), []Group{
		stubGroup{name: "a", result: Result{1, 1}},
		stubGroup{name: "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, waits)
}

func TestRunAll_NoDelayWhenZero(t *testing.T) {
	w := output.NewWithWriters(&bytes.Buffer{}, &bytes.Buffer{}, false)
	r := New(w, Options{})
	r.wait = func(context.Context, time.Duration) error {
		t.Fatal("unexpected wait")
		return nil
	}

	_, err := r.RunAll(context.Background(), []Group{stubGroup{name: "a"}})
	require.NoError(t, err)
}

func TestRunAll_CanceledDuringDelay(t *testing.T) {
	out := &bytes.Buffer{}
	w := output.NewWithWriters(out, &bytes.Buffer{}, false)
	r := New(w, Options{SettleDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	r.wait = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepContext(ctx, d)
	}

	_, err := r.RunAll(ctx, []Group{stubGroup{name: "a", result: Result{1, 1}}})
	require.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, out.String(), "Summary:")
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}

func TestSummaryAdd(t *testing.T) {
	var s Summary
	s.add(GroupResult{Name: "a", Result: Result{2, 2}})
	s.add(GroupResult{Name: "b", Result: Result{0, 0}})
	s.add(GroupResult{Name: "c", Result: Result{1, 3}})

	assert.Equal(t, 3, s.Success)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.Tested)
}
