package exec

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRealExecutor_Run(t *testing.T) {
	executor := NewRealExecutor()
	ctx := context.Background()

	stdout, stderr, err := executor.Run(ctx, "", "echo", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(stdout) != "hello\n" {
		t.Errorf("expected 'hello\\n', got %q", string(stdout))
	}
	if len(stderr) != 0 {
		t.Errorf("expected empty stderr, got %q", string(stderr))
	}
}

func TestRealExecutor_Output(t *testing.T) {
	executor := NewRealExecutor()

	output, err := executor.Output(context.Background(), "", "echo", "world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(output) != "world\n" {
		t.Errorf("expected 'world\\n', got %q", string(output))
	}
}

func TestRealExecutor_CombinedOutput(t *testing.T) {
	executor := NewRealExecutor()

	output, err := executor.CombinedOutput(context.Background(), "", "sh", "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(output), "out") || !strings.Contains(string(output), "err") {
		t.Errorf("expected both streams, got %q", string(output))
	}
}

func TestRealExecutor_CommandError(t *testing.T) {
	executor := NewRealExecutor()

	_, err := executor.Output(context.Background(), "", "sh", "-c", "echo boom >&2; exit 3")
	if err == nil {
		t.Fatal("expected error")
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected *CommandError, got %T", err)
	}
	if cmdErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", cmdErr.ExitCode)
	}
	if strings.TrimSpace(cmdErr.Stderr) != "boom" {
		t.Errorf("Stderr = %q, want boom", cmdErr.Stderr)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error text should include stderr, got %q", err.Error())
	}
	if ExitCode(err) != 3 {
		t.Errorf("ExitCode(err) = %d, want 3", ExitCode(err))
	}
}

func TestRealExecutor_Env(t *testing.T) {
	executor := &RealExecutor{Env: []string{"PLURAL_SYNC_TEST=yes"}}

	out, err := executor.Output(context.Background(), "", "sh", "-c", "echo $PLURAL_SYNC_TEST")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(string(out)) != "yes" {
		t.Errorf("expected env var to be passed, got %q", string(out))
	}
}

func TestRealExecutor_MissingBinary(t *testing.T) {
	executor := NewRealExecutor()

	_, _, err := executor.Run(context.Background(), "", "plural-sync-definitely-missing")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if ExitCode(err) != -1 {
		t.Errorf("ExitCode = %d, want -1 for a process that never ran", ExitCode(err))
	}
}

func TestExitCode_PlainError(t *testing.T) {
	if got := ExitCode(errors.New("nope")); got != -1 {
		t.Errorf("ExitCode = %d, want -1", got)
	}
}

func newGitMock() *MockExecutor {
	mock := NewMockExecutor(nil)
	mock.AddExactMatch("git", []string{"fetch", "origin", "main"}, MockResponse{Stdout: []byte("exact")})
	mock.AddPrefixMatch("git", []string{"fetch"}, MockResponse{Stdout: []byte("any fetch")})
	mock.AddPrefixMatch("git", []string{"merge"}, MockResponse{
		Stdout: []byte("CONFLICT (content)\n"),
		Stderr: []byte("Automatic merge failed\n"),
		Err:    errors.New("exit status 1"),
	})
	mock.AddRule(func(dir, name string, args []string) bool {
		return dir == "/elsewhere"
	}, MockResponse{Stdout: []byte("by dir")})
	return mock
}

func TestMockExecutor_Matching(t *testing.T) {
	tests := []struct {
		name       string
		dir        string
		args       []string
		wantStdout string
		wantStderr string
		wantErr    bool
	}{
		{name: "exact rule wins over later prefix", args: []string{"fetch", "origin", "main"}, wantStdout: "exact"},
		{name: "prefix rule", args: []string{"fetch", "upstream", "dev"}, wantStdout: "any fetch"},
		{name: "error response keeps output", args: []string{"merge", "--no-edit", "abc"},
			wantStdout: "CONFLICT (content)\n", wantStderr: "Automatic merge failed\n", wantErr: true},
		{name: "custom matcher", dir: "/elsewhere", args: []string{"status"}, wantStdout: "by dir"},
		{name: "unmatched succeeds empty", args: []string{"status"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := newGitMock().Run(context.Background(), tt.dir, "git", tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if string(stdout) != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout, tt.wantStdout)
			}
			if string(stderr) != tt.wantStderr {
				t.Errorf("stderr = %q, want %q", stderr, tt.wantStderr)
			}
		})
	}
}

func TestMockExecutor_OutputVariants(t *testing.T) {
	mock := newGitMock()
	bg := context.Background()

	out, err := mock.Output(bg, "/repo", "git", "fetch", "origin", "main")
	if err != nil || string(out) != "exact" {
		t.Errorf("Output = %q, %v", out, err)
	}

	for i := 0; i < 2; i++ {
		combined, err := mock.CombinedOutput(bg, "/repo", "git", "merge", "abc")
		if err == nil {
			t.Error("merge response should carry its error")
		}
		if want := "CONFLICT (content)\nAutomatic merge failed\n"; string(combined) != want {
			t.Errorf("call %d: CombinedOutput = %q, want %q", i+1, combined, want)
		}
	}
}

func TestMockExecutor_RecordsCalls(t *testing.T) {
	mock := newGitMock()
	bg := context.Background()

	mock.Run(bg, "/repo", "git", "stash", "push", "-m", "label")
	mock.Output(bg, "/repo", "git", "rev-parse", "refs/stash")

	calls := mock.GetCalls()
	if len(calls) != 2 {
		t.Fatalf("recorded %d calls, want 2", len(calls))
	}
	if calls[0].Dir != "/repo" || calls[0].String() != "git stash push -m label" {
		t.Errorf("first call = %+v", calls[0])
	}

	if !mock.CalledWithPrefix("git", "stash", "push") {
		t.Error("stash push should be recorded")
	}
	if mock.CalledWithPrefix("git", "merge") {
		t.Error("merge was never called")
	}
	if mock.CalledWithPrefix("git", "stash", "push", "-m", "label", "extra") {
		t.Error("prefix longer than the call must not match")
	}

	mock.ClearCalls()
	if len(mock.GetCalls()) != 0 || mock.CalledWithPrefix("git", "stash") {
		t.Error("ClearCalls should forget every call")
	}
}

func TestMockExecutor_Fallback(t *testing.T) {
	mock := NewMockExecutor(NewRealExecutor())
	mock.AddPrefixMatch("git", nil, MockResponse{Stdout: []byte("mocked")})
	bg := context.Background()

	if out, _ := mock.Output(bg, "", "git", "status"); string(out) != "mocked" {
		t.Errorf("git should be mocked, got %q", out)
	}
	out, err := mock.Output(bg, "", "echo", "real")
	if err != nil {
		t.Fatalf("fallback: %v", err)
	}
	if string(out) != "real\n" {
		t.Errorf("fallback output = %q", out)
	}
}

func TestMockExecutor_AddSequence(t *testing.T) {
	mock := NewMockExecutor(nil)
	mock.AddSequence("git", []string{"rev-parse", "refs/stash"},
		MockResponse{Err: errors.New("no stash")},
		MockResponse{Stdout: []byte("abc\n")},
	)
	mock.AddSequence("git", []string{"status"})
	bg := context.Background()

	if _, err := mock.Output(bg, "", "git", "rev-parse", "refs/stash"); err == nil {
		t.Error("first call should return the first response")
	}
	for i := 2; i <= 3; i++ {
		out, err := mock.Output(bg, "", "git", "rev-parse", "refs/stash")
		if err != nil || string(out) != "abc\n" {
			t.Errorf("call %d = %q, %v; last response should repeat", i, out, err)
		}
	}
	if len(mock.rules) != 1 {
		t.Errorf("an empty sequence should not register a rule, have %d", len(mock.rules))
	}
}
