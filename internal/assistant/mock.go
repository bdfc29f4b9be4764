package assistant

import (
	"context"
	"sync"
)

// MockClient is a mock implementation of Client for testing.
// It records all calls and returns configured responses.
type MockClient struct {
	mu sync.Mutex

	// Configured responses
	Answer string
	Err    error

	// Call tracking
	AskCalls []AskCall
}

// AskCall records one Ask invocation.
type AskCall struct {
	Question string
	Context  Context
}

// Ask implements Client.
func (m *MockClient) Ask(_ context.Context, question string, dashCtx Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AskCalls = append(m.AskCalls, AskCall{Question: question, Context: dashCtx})
	if m.Err != nil {
		return "", m.Err
	}
	return m.Answer, nil
}
