package agent

import (
	"context"
	"sync"
)

// Invocation records one call made through a MockBridge.
type Invocation struct {
	Agent  string
	Action string
	Params map[string]interface{}
}

// MockBridge is a deterministic Bridge for tests: programmed responses are
// keyed by "agent.action" and every call is recorded for verification.
// It is safe for concurrent use so parallel-execution tests can assert on
// the full invocation set.
type MockBridge struct {
	mu          sync.Mutex
	responses   map[string]*Response
	errors      map[string]error
	invocations []Invocation
}

// NewMockBridge creates an empty mock bridge. Unprogrammed invocations get
// a default success response echoing agent, action, and params.
func NewMockBridge() *MockBridge {
	return &MockBridge{
		responses: map[string]*Response{},
		errors:    map[string]error{},
	}
}

// Respond programs the response for "agent.action".
func (b *MockBridge) Respond(key string, resp *Response) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[key] = resp
}

// Fail programs a transport-level error for "agent.action".
func (b *MockBridge) Fail(key string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errors[key] = err
}

// Invoke returns the programmed response or the default echo response.
func (b *MockBridge) Invoke(ctx context.Context, agent, action string, params map[string]interface{}) (*Response, error) {
	b.mu.Lock()
	b.invocations = append(b.invocations, Invocation{Agent: agent, Action: action, Params: params})
	resp := b.responses[agent+"."+action]
	err := b.errors[agent+"."+action]
	b.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if resp != nil {
		return resp, nil
	}
	return &Response{
		Status: "success",
		Data: map[string]interface{}{
			"agent":  agent,
			"action": action,
			"params": params,
		},
	}, nil
}

// Invocations returns a copy of the recorded calls in arrival order.
func (b *MockBridge) Invocations() []Invocation {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Invocation, len(b.invocations))
	copy(out, b.invocations)
	return out
}
