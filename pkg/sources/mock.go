package sources

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MockSource implements Source for testing. All fields are configurable and
// it tracks how many times Collect has been called.
type MockSource struct {
	name     string
	interval time.Duration
	fallback string

	mu   sync.RWMutex
	text string
	err  error

	callCount atomic.Int64

	// CollectFunc, if set, overrides the default Collect behavior. This
	// allows tests to inject dynamic behavior (e.g., return different text
	// on each call, or block until a signal).
	CollectFunc func(ctx context.Context) (string, error)
}

// MockSourceOption configures a MockSource.
type MockSourceOption func(*MockSource)

// WithText sets the segment text returned by Collect.
func WithText(text string) MockSourceOption {
	return func(m *MockSource) { m.text = text }
}

// WithError sets the error returned by Collect.
func WithError(err error) MockSourceOption {
	return func(m *MockSource) { m.err = err }
}

// WithFallback sets the Fallback() return value (default "???").
func WithFallback(fallback string) MockSourceOption {
	return func(m *MockSource) { m.fallback = fallback }
}

// WithCollectFunc sets a custom function for Collect.
func WithCollectFunc(fn func(ctx context.Context) (string, error)) MockSourceOption {
	return func(m *MockSource) { m.CollectFunc = fn }
}

// NewMockSource creates a mock source with the given name, interval, and
// options.
func NewMockSource(name string, interval time.Duration, opts ...MockSourceOption) *MockSource {
	m := &MockSource{
		name:     name,
		interval: interval,
		fallback: "???",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the source name.
func (m *MockSource) Name() string { return m.name }

// Interval returns the configured poll interval.
func (m *MockSource) Interval() time.Duration { return m.interval }

// Fallback returns the configured fallback text.
func (m *MockSource) Fallback() string { return m.fallback }

// SetText updates the returned segment text (thread-safe).
func (m *MockSource) SetText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
}

// SetError updates the returned error (thread-safe).
func (m *MockSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Collect performs a mock poll. It increments the call counter and returns
// the configured text and error, or delegates to CollectFunc if set.
func (m *MockSource) Collect(ctx context.Context) (string, error) {
	m.callCount.Add(1)

	if m.CollectFunc != nil {
		return m.CollectFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.text, m.err
}

// CallCount returns how many times Collect has been called.
func (m *MockSource) CallCount() int64 {
	return m.callCount.Load()
}
