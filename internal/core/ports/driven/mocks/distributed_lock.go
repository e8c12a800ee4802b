package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

// Ensure MockLock implements DistributedLock
var _ driven.DistributedLock = (*MockLock)(nil)

// MockLock is an in-memory DistributedLock with expiry.
// Calls are counted so tests can assert acquire/release pairing.
type MockLock struct {
	mu      sync.Mutex
	expires map[string]time.Time

	AcquireErr error

	acquires int
	releases int
	extends  int
}

// NewMockLock creates a new mock lock
func NewMockLock() *MockLock {
	return &MockLock{expires: make(map[string]time.Time)}
}

func (m *MockLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AcquireErr != nil {
		return false, m.AcquireErr
	}
	if exp, held := m.expires[name]; held && time.Now().Before(exp) {
		return false, nil
	}
	m.expires[name] = time.Now().Add(ttl)
	m.acquires++
	return true, nil
}

func (m *MockLock) Release(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.expires, name)
	m.releases++
	return nil
}

func (m *MockLock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, held := m.expires[name]
	if !held || time.Now().After(exp) {
		return fmt.Errorf("lock %s not held", name)
	}
	m.expires[name] = time.Now().Add(ttl)
	m.extends++
	return nil
}

func (m *MockLock) Ping(ctx context.Context) error {
	return nil
}

// Helper methods for testing

// Hold marks name as held by another process
func (m *MockLock) Hold(name string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expires[name] = time.Now().Add(ttl)
}

// IsHeld reports whether name is currently held
func (m *MockLock) IsHeld(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, held := m.expires[name]
	return held && time.Now().Before(exp)
}

// Counts returns the number of successful acquires and the number of releases
func (m *MockLock) Counts() (acquires, releases int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquires, m.releases
}
