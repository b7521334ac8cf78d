package mock

import (
	"context"
	"sync"
	"sync/atomic"
)

// MockCompleter is a test double for ai.Completer.
// It is safe for concurrent use, matching the engine's parallel fan-out.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, Complete returns an empty completion.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	callCount atomic.Int64

	mu      sync.Mutex
	prompts []string
}

// NewMockCompleter creates a mock completer with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete records the prompt and delegates to CompleteFunc.
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.callCount.Add(1)

	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "", nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	return int(m.callCount.Load())
}

// Prompts returns a copy of every prompt received, in call order.
func (m *MockCompleter) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Reset clears the call count, recorded prompts, and custom function.
func (m *MockCompleter) Reset() {
	m.callCount.Store(0)
	m.mu.Lock()
	m.prompts = nil
	m.mu.Unlock()
	m.CompleteFunc = nil
}
