// Package testutil provides test doubles for the llm package.
package testutil

import (
	"context"
	"sync"

	"github.com/deckforge/deckforge/llm"
)

// MockCompleter is a thread-safe mock completion client for testing.
// It returns configured responses in sequence and records call counts.
//
// Usage:
//
//	mock := &testutil.MockCompleter{
//	    Responses: []*llm.Response{
//	        {Content: `{"bullets": [...], "key_message": "..."}`, Model: "test-model"},
//	    },
//	}
type MockCompleter struct {
	mu            sync.Mutex
	callCount     int
	responseIndex int

	// Responses are returned in sequence; the last one repeats.
	Responses []*llm.Response

	// Errs are returned in sequence before Responses are consulted; a nil
	// entry means "no error for this call".
	Errs []error

	// Err, when set, is returned on every call (takes precedence).
	Err error

	// PreflightErr is returned by Preflight.
	PreflightErr error
}

// Complete implements llm.Completer.
func (m *MockCompleter) Complete(_ context.Context, _ llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := m.callCount
	m.callCount++

	if m.Err != nil {
		return nil, m.Err
	}
	if call < len(m.Errs) && m.Errs[call] != nil {
		return nil, m.Errs[call]
	}

	if len(m.Responses) == 0 {
		return &llm.Response{Content: "", Model: "test-model"}, nil
	}
	resp := m.Responses[m.responseIndex]
	if m.responseIndex < len(m.Responses)-1 {
		m.responseIndex++
	}
	return resp, nil
}

// Preflight implements llm.Completer.
func (m *MockCompleter) Preflight(_ context.Context) error {
	return m.PreflightErr
}

// CallCount returns the number of Complete invocations.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears call state so the mock can be reused across test cases.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.responseIndex = 0
}
