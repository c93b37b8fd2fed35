// Package mocks provides shared test doubles for dobbytest packages.
package mocks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rdkcentral/dobbytest/internal/runner"
)

// Group implements runner.Group for testing.
// Use NewGroup() to create instances with a fluent builder API.
type Group struct {
	name   string
	result runner.Result
	err    error

	// ExecFunc is called by Execute when set, replacing the scripted result.
	ExecFunc func(ctx context.Context) (runner.Result, error)

	execCount int32
	order     *Order
}

// NewGroup creates a mock group that reports (0, 0).
func NewGroup(name string) *Group {
	return &Group{name: name}
}

// WithResult sets the result returned by Execute.
func (m *Group) WithResult(success, total int) *Group {
	m.result = runner.Result{Success: success, Total: total}
	return m
}

// WithError makes Execute return err alongside the scripted result.
func (m *Group) WithError(err error) *Group {
	m.err = err
	return m
}

// WithPanic makes Execute panic with v.
func (m *Group) WithPanic(v interface{}) *Group {
	m.ExecFunc = func(context.Context) (runner.Result, error) {
		panic(v)
	}
	return m
}

// WithExecFunc sets the function called by Execute.
func (m *Group) WithExecFunc(fn func(ctx context.Context) (runner.Result, error)) *Group {
	m.ExecFunc = fn
	return m
}

// WithOrder records each Execute call in o.
func (m *Group) WithOrder(o *Order) *Group {
	m.order = o
	return m
}

func (m *Group) Name() string { return m.name }

func (m *Group) Execute(ctx context.Context) (runner.Result, error) {
	atomic.AddInt32(&m.execCount, 1)
	if m.order != nil {
		m.order.record(m.name)
	}
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx)
	}
	return m.result, m.err
}

// ExecCount returns the number of times Execute was called.
func (m *Group) ExecCount() int32 {
	return atomic.LoadInt32(&m.execCount)
}

// Order collects the names of executed groups across several mocks.
type Order struct {
	mu    sync.Mutex
	names []string
}

func (o *Order) record(name string) {
	o.mu.Lock()
	o.names = append(o.names, name)
	o.mu.Unlock()
}

// Names returns the recorded group names in execution order.
func (o *Order) Names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	result := make([]string, len(o.names))
	copy(result, o.names)
	return result
}

// Groups converts mocks into the runner's group slice.
func Groups(ms ...*Group) []runner.Group {
	groups := make([]runner.Group, len(ms))
	for i, m := range ms {
		groups[i] = m
	}
	return groups
}
