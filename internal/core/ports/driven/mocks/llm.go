package mocks

import (
	"context"
	"sync"
)

// MockAnswerGenerator is a mock implementation of AnswerGenerator for testing.
// It records the last prompt it was given.
type MockAnswerGenerator struct {
	mu          sync.Mutex
	answer      string
	err         error
	lastQuery   string
	lastContext string
	calls       int
}

// NewMockAnswerGenerator creates a generator that always returns answer
func NewMockAnswerGenerator(answer string) *MockAnswerGenerator {
	return &MockAnswerGenerator{answer: answer}
}

func (m *MockAnswerGenerator) Generate(ctx context.Context, query, contextText string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastQuery = query
	m.lastContext = contextText
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *MockAnswerGenerator) Model() string {
	return "mock-llm-model"
}

func (m *MockAnswerGenerator) Close() error {
	return nil
}

// Helper methods for testing

func (m *MockAnswerGenerator) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockAnswerGenerator) LastContext() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastContext
}

func (m *MockAnswerGenerator) LastQuery() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastQuery
}

func (m *MockAnswerGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
