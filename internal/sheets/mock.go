package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/ledgerflow/internal/report"
)

// MockWriter records dashboard exports for tests.
type MockWriter struct {
	WriteFunc      func(ctx context.Context, d *report.Dashboard) error
	LastDashboard  *report.Dashboard
	WriteCalls     []WriteCall
	WriteCallCount int
	mu             sync.Mutex
}

// WriteCall represents a single call to Write.
type WriteCall struct {
	Error     error
	Dashboard *report.Dashboard
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{WriteCalls: make([]WriteCall, 0)}
}

// Write records the call and delegates to WriteFunc when set.
func (m *MockWriter) Write(ctx context.Context, d *report.Dashboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount++
	m.LastDashboard = d

	var err error
	if m.WriteFunc != nil {
		err = m.WriteFunc(ctx, d)
	}

	m.WriteCalls = append(m.WriteCalls, WriteCall{Dashboard: d, Error: err})
	return err
}

// GetWriteCalls returns a copy of all write calls.
func (m *MockWriter) GetWriteCalls() []WriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]WriteCall, len(m.WriteCalls))
	copy(calls, m.WriteCalls)
	return calls
}
