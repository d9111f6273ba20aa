package gemini

import (
	"context"
	"sync"
)

// MockClient is a Backend for tests.
type MockClient struct {
	mu sync.Mutex

	Result *Result
	Models []string
	Error  error

	Prompts []string
	Closed  bool
}

func (m *MockClient) FixText(_ context.Context, prompt string) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	if m.Error != nil {
		return nil, m.Error
	}
	return m.Result, nil
}

func (m *MockClient) ListModels(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Error != nil {
		return nil, m.Error
	}
	return m.Models, nil
}

func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// LastPrompt returns the most recent FixText prompt.
func (m *MockClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Prompts) == 0 {
		return ""
	}
	return m.Prompts[len(m.Prompts)-1]
}
