package llm

import (
	"context"
	"sync"
)

// Call is one recorded GenerateResponse invocation.
type Call struct {
	Prompt        string
	SystemMessage string
	Temperature   float64
}

// StubClient is an LLMClient for tests. It answers every call with Reply and
// Err and records what it was asked. Safe for concurrent use.
type StubClient struct {
	Reply string
	Err   error

	mu    sync.Mutex
	calls []Call
}

// NewStubClient returns a stub that answers with reply.
func NewStubClient(reply string) *StubClient {
	return &StubClient{Reply: reply}
}

// FailingStubClient returns a stub whose every call fails with err.
func FailingStubClient(err error) *StubClient {
	return &StubClient{Err: err}
}

func (s *StubClient) GenerateResponse(_ context.Context, prompt, systemMessage string, temperature float64) (*GenerateResponseResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Prompt: prompt, SystemMessage: systemMessage, Temperature: temperature})
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	return &GenerateResponseResult{Content: s.Reply}, nil
}

func (s *StubClient) GetModel() string    { return "stub-model" }
func (s *StubClient) GetEndpoint() string { return "http://stub.invalid" }

// Calls returns a copy of the recorded calls.
func (s *StubClient) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// LastCall returns the most recent call, or the zero Call.
func (s *StubClient) LastCall() Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return Call{}
	}
	return s.calls[len(s.calls)-1]
}

var _ LLMClient = (*StubClient)(nil)
