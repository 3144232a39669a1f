package runner

import (
	"context"
	"strings"
	"sync"
)

// MockResponse is the canned outcome of a mocked command.
type MockResponse struct {
	Stdout string
	Stderr string
	Err    error

	// Do runs while the command is "executing", before the response is
	// returned. Tests use it to inspect files the command would read.
	Do func(cmd Command)
}

// MockRunner is a Runner that records calls and replays responses.
//
// Lookup order: exact "name arg..." key, then name only, then the wildcard
// set by OnAnyCommand, then DefaultResponse.
type MockRunner struct {
	mu              sync.Mutex
	Responses       map[string]MockResponse
	DefaultResponse MockResponse
	Calls           []Command
}

// NewMockRunner returns an empty MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{Responses: make(map[string]MockResponse)}
}

// MockExpectation binds a response to a command key.
type MockExpectation struct {
	runner *MockRunner
	key    string
}

// OnCommand registers a response for the exact command line.
func (m *MockRunner) OnCommand(name string, args ...string) *MockExpectation {
	return &MockExpectation{runner: m, key: commandKey(name, args)}
}

// OnAnyCommand registers a response for any command without a closer match.
func (m *MockRunner) OnAnyCommand() *MockExpectation {
	return &MockExpectation{runner: m, key: "*"}
}

// Return sets stdout and error for the expectation.
func (e *MockExpectation) Return(stdout string, err error) {
	e.Respond(MockResponse{Stdout: stdout, Err: err})
}

// Respond sets the full response for the expectation.
func (e *MockExpectation) Respond(resp MockResponse) {
	e.runner.mu.Lock()
	defer e.runner.mu.Unlock()
	e.runner.Responses[e.key] = resp
}

// Run records the call and returns the matching response.
func (m *MockRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, cmd)
	resp, ok := m.Responses[commandKey(cmd.Name, cmd.Args)]
	if !ok {
		resp, ok = m.Responses[cmd.Name]
	}
	if !ok {
		resp, ok = m.Responses["*"]
	}
	if !ok {
		resp = m.DefaultResponse
	}
	m.mu.Unlock()

	if resp.Do != nil {
		resp.Do(cmd)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Result{Stdout: resp.Stdout, Stderr: resp.Stderr}, resp.Err
}

// CallCount returns the number of recorded calls.
func (m *MockRunner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func commandKey(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
