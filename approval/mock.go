package approval

import (
	"context"
	"sync"
	"time"
)

// Mock returns scripted results and records how often each review request
// was checked. It is safe for concurrent use.
type Mock struct {
	mu      sync.Mutex
	results map[string]Result
	delays  map[string]time.Duration
	calls   map[string]int
	order   []string
}

func NewMock() *Mock {
	return &Mock{
		results: make(map[string]Result),
		delays:  make(map[string]time.Duration),
		calls:   make(map[string]int),
	}
}

func (m *Mock) Set(id string, res Result) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[id] = res
	return m
}

// SetDelay makes checks of id take at least d, to shuffle completion order
// under concurrency.
func (m *Mock) SetDelay(id string, d time.Duration) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[id] = d
	return m
}

// CheckApproval returns the result set for id. Unknown ids fail the query
// the way a missing review request would.
func (m *Mock) CheckApproval(ctx context.Context, id string) Result {
	m.mu.Lock()
	m.calls[id]++
	m.order = append(m.order, id)
	res, ok := m.results[id]
	delay := m.delays[id]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return Fail(ctx.Err())
		case <-time.After(delay):
		}
	}
	if !ok {
		return Result{Status: QueryFailed, Reason: "review request " + id + " not found"}
	}
	return res
}

func (m *Mock) Calls(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[id]
}

func (m *Mock) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}
