package reposync

import (
	"errors"
	"strings"
	"testing"

	pexec "github.com/zhubert/plural-sync/exec"
	"github.com/zhubert/plural-sync/git"
)

func TestInspector_Inspect(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   WorkingTreeState
	}{
		{"clean", "", Clean},
		{"unstaged", " M README.md\x00", Dirty},
		{"staged", "A  new.go\x00", Dirty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := pexec.NewMockExecutor(nil)
			mock.AddExactMatch("git", []string{"status", "--porcelain", "-z", "--untracked-files=no"}, pexec.MockResponse{
				Stdout: []byte(tt.status),
			})
			addHealthyRepo(mock)

			got, err := NewInspector(git.NewGitServiceWithExecutor(mock), "/repo").Inspect(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Inspect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInspector_InspectHasNoSideEffects(t *testing.T) {
	mock := pexec.NewMockExecutor(nil)
	dirtyTree(mock)
	addHealthyRepo(mock)

	if _, err := NewInspector(git.NewGitServiceWithExecutor(mock), "/repo").Inspect(ctx); err != nil {
		t.Fatal(err)
	}
	for _, c := range mock.GetCalls() {
		if c.Args[0] != "status" && c.Args[0] != "rev-parse" {
			t.Errorf("unexpected command %s", c)
		}
	}
}

func TestInspector_ResolveTargetKeepsExplicitValues(t *testing.T) {
	mock := pexec.NewMockExecutor(nil)
	addHealthyRepo(mock)
	in := NewInspector(git.NewGitServiceWithExecutor(mock), "/repo")

	target, err := in.ResolveTarget(ctx, Target{Branch: "develop", Message: "custom"}, "ignored {branch}")
	if err != nil {
		t.Fatal(err)
	}
	want := Target{Remote: "origin", Branch: "develop", Current: "main", Message: "custom"}
	if target != want {
		t.Errorf("target = %+v, want %+v", target, want)
	}
}

func TestInspector_ResolveTargetUpstreamError(t *testing.T) {
	mock := pexec.NewMockExecutor(nil)
	mock.AddExactMatch("git", []string{"symbolic-ref", "-q", "--short", "HEAD"}, pexec.MockResponse{
		Err: errors.New("exit status 128"),
	})
	mock.AddExactMatch("git", []string{"rev-parse", "--verify", "HEAD"}, pexec.MockResponse{
		Err: errors.New("exit status 128"),
	})

	_, err := NewInspector(git.NewGitServiceWithExecutor(mock), "/repo").ResolveTarget(ctx, Target{}, "")
	if err == nil || errors.Is(err, git.ErrDetachedHead) {
		t.Errorf("expected a plain branch error, got %v", err)
	}
}

func TestStashManager_Preserve(t *testing.T) {
	mock := pexec.NewMockExecutor(nil)
	addHealthyRepo(mock)
	m := NewStashManager(git.NewGitServiceWithExecutor(mock), "/repo")
	m.now = fixedNow

	h, err := m.Preserve(ctx, "label")
	if err != nil {
		t.Fatal(err)
	}
	if h.Label != "label" || h.Commit != stashCommit || !h.CreatedAt.Equal(fixedNow()) {
		t.Errorf("handle = %+v", h)
	}
	if !mock.CalledWithPrefix("git", "stash", "push", "-m", "label") {
		t.Error("expected labelled stash push")
	}
}

func TestStashManager_PreserveNothingStashed(t *testing.T) {
	mock := pexec.NewMockExecutor(nil)
	mock.AddExactMatch("git", []string{"rev-parse", "-q", "--verify", "refs/stash"}, pexec.MockResponse{
		Stdout: []byte("same\n"),
	})
	addHealthyRepo(mock)

	_, err := NewStashManager(git.NewGitServiceWithExecutor(mock), "/repo").Preserve(ctx, "x")
	if !errors.Is(err, git.ErrNothingToStash) {
		t.Errorf("expected ErrNothingToStash, got %v", err)
	}
}

func TestStashManager_PreserveKeepsHandleWhenPushFailsLate(t *testing.T) {
	mock := pexec.NewMockExecutor(nil)
	mock.AddPrefixMatch("git", []string{"stash", "push"}, pexec.MockResponse{Err: errors.New("signal: terminated")})
	addHealthyRepo(mock)

	m := NewStashManager(git.NewGitServiceWithExecutor(mock), "/repo")
	m.now = fixedNow
	h, err := m.Preserve(ctx, "label")
	if err == nil {
		t.Fatal("expected the push error")
	}
	if h == nil || h.Commit != stashCommit {
		t.Errorf("handle = %+v, want the stash git stored", h)
	}
}

func TestStashManager_AdviseRestoreIsPure(t *testing.T) {
	mock := pexec.NewMockExecutor(nil)
	m := NewStashManager(git.NewGitServiceWithExecutor(mock), "/repo")

	n := m.AdviseRestore(&StashHandle{Label: "plural-sync 2026-10-18", Commit: "deadbeef"})

	if n.Kind != NoticeStashRestore {
		t.Errorf("Kind = %v", n.Kind)
	}
	text := n.Text()
	for _, want := range []string{"plural-sync 2026-10-18", "git stash pop", "git stash apply deadbeef", "not restored"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}
	if len(mock.GetCalls()) != 0 {
		t.Error("AdviseRestore must not run git")
	}
}

func TestMergeExecutor_Merge(t *testing.T) {
	ref := &git.FetchedRef{Remote: "origin", Branch: "main", Commit: fetchedCommit}

	t.Run("success", func(t *testing.T) {
		mock := pexec.NewMockExecutor(nil)
		addHealthyRepo(mock)
		out, err := NewMergeExecutor(git.NewGitServiceWithExecutor(mock), "/repo").Merge(ctx, ref, "msg")
		if err != nil || !out.Succeeded() || out.Ref != ref {
			t.Errorf("got %+v, %v", out, err)
		}
	})

	t.Run("conflict", func(t *testing.T) {
		mock := pexec.NewMockExecutor(nil)
		conflictingMerge(mock, "z.go", "a.go", "z.go")
		out, err := NewMergeExecutor(git.NewGitServiceWithExecutor(mock), "/repo").Merge(ctx, ref, "msg")
		if err != nil {
			t.Fatalf("conflict is not an error: %v", err)
		}
		if out.Kind != MergeConflict || strings.Join(out.Conflicts, ",") != "a.go,z.go" {
			t.Errorf("got %+v", out)
		}
	})

	t.Run("nothing fetched", func(t *testing.T) {
		mock := pexec.NewMockExecutor(nil)
		if _, err := NewMergeExecutor(git.NewGitServiceWithExecutor(mock), "/repo").Merge(ctx, nil, "msg"); err == nil {
			t.Error("expected error for a missing ref")
		}
		if len(mock.GetCalls()) != 0 {
			t.Error("git must not run without a ref")
		}
	})
}
