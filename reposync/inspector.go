package reposync

import (
	"context"
	"errors"
	"fmt"

	"github.com/zhubert/plural-sync/config"
	"github.com/zhubert/plural-sync/git"
)

const defaultRemote = "origin"

// Inspector reads repository state without changing it.
type Inspector struct {
	client   git.Client
	repoPath string
}

// NewInspector returns an Inspector for the repository at repoPath.
func NewInspector(client git.Client, repoPath string) *Inspector {
	return &Inspector{client: client, repoPath: repoPath}
}

// Inspect classifies the working tree. Changes to tracked files, staged or
// not, make it Dirty; untracked files do not.
func (i *Inspector) Inspect(ctx context.Context) (WorkingTreeState, error) {
	inProgress, err := i.client.IsMergeInProgress(ctx, i.repoPath)
	if err != nil {
		return Clean, err
	}
	if inProgress {
		return Clean, errors.New("a merge is already in progress; finish it with git commit or abandon it with git merge --abort")
	}

	status, err := i.client.InspectStatus(ctx, i.repoPath)
	if err != nil {
		return Clean, err
	}
	if status.HasChanges() {
		return Dirty, nil
	}
	return Clean, nil
}

// ResolveTarget fills in whatever want leaves empty. Remote and branch come
// from the current branch's upstream, falling back to origin and its default
// branch. messageTemplate is expanded with {remote}, {branch} and {current}.
func (i *Inspector) ResolveTarget(ctx context.Context, want Target, messageTemplate string) (Target, error) {
	current, err := i.client.CurrentBranch(ctx, i.repoPath)
	if err != nil {
		if errors.Is(err, git.ErrDetachedHead) {
			return Target{}, errors.New("HEAD is detached; check out the branch to sync first")
		}
		return Target{}, err
	}

	t := want
	t.Current = current

	if t.Remote == "" || t.Branch == "" {
		remote, branch, err := i.client.Upstream(ctx, i.repoPath, current)
		switch {
		case err == nil:
			if t.Remote == "" {
				t.Remote = remote
			}
			if t.Branch == "" {
				t.Branch = branch
			}
		case errors.Is(err, git.ErrNoUpstream):
			if t.Remote == "" {
				t.Remote = defaultRemote
			}
			if t.Branch == "" {
				t.Branch = i.client.DefaultBranch(ctx, i.repoPath, t.Remote)
			}
		default:
			return Target{}, fmt.Errorf("failed to read upstream of %s: %w", current, err)
		}
	}

	if t.Message == "" {
		t.Message = config.Expand(messageTemplate, map[string]string{
			"remote":  t.Remote,
			"branch":  t.Branch,
			"current": t.Current,
		})
	}
	return t, nil
}
