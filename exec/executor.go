// Package exec provides an abstraction over command execution for testability.
// Production code runs real processes through RealExecutor; tests inject a
// MockExecutor that returns pre-recorded responses and records every call.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"sync"
)

// CommandExecutor abstracts command execution for testability.
// Every method blocks until the command has exited.
type CommandExecutor interface {
	// Run executes a command and returns stdout, stderr, and any error.
	Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error)

	// Output executes a command and returns stdout. A failure is returned as
	// a *CommandError carrying stderr.
	Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error)

	// CombinedOutput executes a command and returns combined stdout+stderr.
	CombinedOutput(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}

// CommandError describes a command that ran but did not succeed.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int // -1 when the process never produced an exit status
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Name, strings.Join(e.Args, " "), e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// ExitCode extracts the process exit status from err, or -1 if err does not
// carry one.
func ExitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// RealExecutor executes commands using os/exec.
type RealExecutor struct {
	// Env is appended to the inherited environment of every command.
	Env []string
}

// NewRealExecutor returns a new RealExecutor.
func NewRealExecutor() *RealExecutor {
	return &RealExecutor{}
}

func (e *RealExecutor) command(ctx context.Context, dir, name string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	return cmd
}

func wrap(name string, args []string, stderr []byte, err error) error {
	if err == nil {
		return nil
	}
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return &CommandError{Name: name, Args: args, ExitCode: code, Stderr: string(stderr), Err: err}
}

// Run executes a command and returns stdout, stderr, and any error.
func (e *RealExecutor) Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error) {
	cmd := e.command(ctx, dir, name, args)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	return stdoutBuf.Bytes(), stderrBuf.Bytes(), wrap(name, args, stderrBuf.Bytes(), err)
}

// Output executes a command and returns stdout, or error with stderr context.
func (e *RealExecutor) Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	stdout, _, err := e.Run(ctx, dir, name, args...)
	return stdout, err
}

// CombinedOutput executes a command and returns combined stdout+stderr.
func (e *RealExecutor) CombinedOutput(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := e.command(ctx, dir, name, args)
	out, err := cmd.CombinedOutput()
	return out, wrap(name, args, nil, err)
}

// MockResponse is what a mocked command returns.
type MockResponse struct {
	Stdout []byte
	Stderr []byte
	Err    error
}

// CommandMatcher decides whether a rule applies to a command.
type CommandMatcher func(dir, name string, args []string) bool

// mockRule pairs a matcher with its responses. Successive matches walk the
// responses and the last one repeats.
type mockRule struct {
	match     CommandMatcher
	responses []MockResponse
	hits      int
}

func (r *mockRule) next() MockResponse {
	resp := r.responses[min(r.hits, len(r.responses)-1)]
	r.hits++
	return resp
}

// MockCall is one recorded invocation.
type MockCall struct {
	Dir  string
	Name string
	Args []string
}

// String renders the call the way it would be typed in a shell.
func (c MockCall) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

func (c MockCall) hasPrefix(name string, prefix []string) bool {
	return c.Name == name && len(c.Args) >= len(prefix) && slices.Equal(c.Args[:len(prefix)], prefix)
}

// MockExecutor answers commands from registered rules, first match wins, and
// records every call. Unmatched commands go to the fallback when one is set
// and otherwise succeed with no output.
type MockExecutor struct {
	mu       sync.Mutex
	rules    []*mockRule
	calls    []MockCall
	fallback CommandExecutor
}

// NewMockExecutor creates a MockExecutor. fallback may be nil.
func NewMockExecutor(fallback CommandExecutor) *MockExecutor {
	return &MockExecutor{fallback: fallback}
}

// AddRule registers a custom matcher.
func (e *MockExecutor) AddRule(match CommandMatcher, response MockResponse) {
	e.add(match, response)
}

func (e *MockExecutor) add(match CommandMatcher, responses ...MockResponse) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, &mockRule{match: match, responses: responses})
}

// AddExactMatch answers name with exactly args.
func (e *MockExecutor) AddExactMatch(name string, args []string, response MockResponse) {
	e.add(exactly(name, args), response)
}

// AddPrefixMatch answers name with args starting with prefixArgs.
func (e *MockExecutor) AddPrefixMatch(name string, prefixArgs []string, response MockResponse) {
	e.add(func(_, n string, a []string) bool {
		return MockCall{Name: n, Args: a}.hasPrefix(name, prefixArgs)
	}, response)
}

// AddSequence answers name with exactly args using responses in order.
func (e *MockExecutor) AddSequence(name string, args []string, responses ...MockResponse) {
	if len(responses) > 0 {
		e.add(exactly(name, args), responses...)
	}
}

func exactly(name string, args []string) CommandMatcher {
	return func(_, n string, a []string) bool {
		return n == name && slices.Equal(a, args)
	}
}

// GetCalls returns a copy of the recorded calls.
func (e *MockExecutor) GetCalls() []MockCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.calls)
}

// CalledWithPrefix reports whether a recorded call of name began with prefixArgs.
func (e *MockExecutor) CalledWithPrefix(name string, prefixArgs ...string) bool {
	return slices.ContainsFunc(e.GetCalls(), func(c MockCall) bool {
		return c.hasPrefix(name, prefixArgs)
	})
}

// ClearCalls forgets the recorded calls.
func (e *MockExecutor) ClearCalls() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = nil
}

// lookup records the call and returns the matching response, if any.
func (e *MockExecutor) lookup(dir, name string, args []string) (MockResponse, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, MockCall{Dir: dir, Name: name, Args: args})
	for _, r := range e.rules {
		if r.match(dir, name, args) {
			return r.next(), true
		}
	}
	return MockResponse{}, false
}

func (e *MockExecutor) Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error) {
	resp, ok := e.lookup(dir, name, args)
	if !ok && e.fallback != nil {
		return e.fallback.Run(ctx, dir, name, args...)
	}
	return resp.Stdout, resp.Stderr, resp.Err
}

func (e *MockExecutor) Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	resp, ok := e.lookup(dir, name, args)
	if !ok && e.fallback != nil {
		return e.fallback.Output(ctx, dir, name, args...)
	}
	return resp.Stdout, resp.Err
}

// CombinedOutput returns stdout followed by stderr.
func (e *MockExecutor) CombinedOutput(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	resp, ok := e.lookup(dir, name, args)
	if !ok && e.fallback != nil {
		return e.fallback.CombinedOutput(ctx, dir, name, args...)
	}
	if !ok {
		return nil, nil
	}
	return append(append([]byte(nil), resp.Stdout...), resp.Stderr...), resp.Err
}

var (
	_ CommandExecutor = (*RealExecutor)(nil)
	_ CommandExecutor = (*MockExecutor)(nil)
)
