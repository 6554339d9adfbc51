package git

import (
	"context"

	pexec "github.com/zhubert/plural-sync/exec"
)

// Client is the set of repository operations a sync run needs. GitService is
// the production implementation.
type Client interface {
	TopLevel(ctx context.Context, dir string) (string, error)
	InspectStatus(ctx context.Context, repoPath string) (*Status, error)
	IsMergeInProgress(ctx context.Context, repoPath string) (bool, error)
	CurrentBranch(ctx context.Context, repoPath string) (string, error)
	Upstream(ctx context.Context, repoPath, branch string) (remote, remoteBranch string, err error)
	DefaultBranch(ctx context.Context, repoPath, remote string) string
	Fetch(ctx context.Context, repoPath, remote, branch string) (*FetchedRef, error)
	StashPush(ctx context.Context, repoPath, label string) (*StashEntry, error)
	Merge(ctx context.Context, repoPath, commit, message string) (*MergeResult, error)
}

// GitService provides git operations with explicit dependency injection.
// Each instance holds its own executor so tests can swap in a mock.
type GitService struct {
	executor pexec.CommandExecutor
}

// NewGitService creates a GitService backed by the real git binary, with
// output in the C locale and terminal credential prompts disabled.
func NewGitService() *GitService {
	return &GitService{executor: &pexec.RealExecutor{
		Env: []string{"LC_ALL=C", "GIT_TERMINAL_PROMPT=0"},
	}}
}

// NewGitServiceWithExecutor creates a new GitService with a custom executor.
// This is primarily used for testing where a mock executor is needed.
func NewGitServiceWithExecutor(exec pexec.CommandExecutor) *GitService {
	return &GitService{executor: exec}
}

var _ Client = (*GitService)(nil)
