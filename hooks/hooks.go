// Package hooks runs the commands configured under after_sync once a sync
// has reported its result.
package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zhubert/plural-sync/config"
	pexec "github.com/zhubert/plural-sync/exec"
	"github.com/zhubert/plural-sync/reposync"
)

// Context provides environment variables for hook execution.
type Context struct {
	RepoPath  string
	RunID     string
	Status    string
	Remote    string
	Branch    string
	Current   string
	Stash     string // Stash commit id, empty when nothing was stashed
	Conflicts []string
}

// FromReport builds the hook context for a finished run.
func FromReport(repoPath string, r *reposync.RunReport) Context {
	c := Context{
		RepoPath: repoPath,
		RunID:    r.RunID,
		Status:   r.Status.String(),
		Remote:   r.Target.Remote,
		Branch:   r.Target.Branch,
		Current:  r.Target.Current,
	}
	if r.Stash != nil {
		c.Stash = r.Stash.Commit
	}
	if r.Outcome != nil {
		c.Conflicts = r.Outcome.Conflicts
	}
	return c
}

// envVars returns the hook context as environment variable pairs.
func (c Context) envVars() []string {
	return []string{
		fmt.Sprintf("PLURAL_REPO_PATH=%s", c.RepoPath),
		fmt.Sprintf("PLURAL_SYNC_RUN_ID=%s", c.RunID),
		fmt.Sprintf("PLURAL_SYNC_STATUS=%s", c.Status),
		fmt.Sprintf("PLURAL_SYNC_REMOTE=%s", c.Remote),
		fmt.Sprintf("PLURAL_SYNC_BRANCH=%s", c.Branch),
		fmt.Sprintf("PLURAL_BRANCH=%s", c.Current),
		fmt.Sprintf("PLURAL_SYNC_STASH=%s", c.Stash),
		fmt.Sprintf("PLURAL_SYNC_CONFLICTS=%s", strings.Join(c.Conflicts, "\n")),
	}
}

// Run executes hooks sequentially through executor. Errors are logged but do
// not change the outcome of the sync. It returns the number of hooks that failed.
func Run(ctx context.Context, executor pexec.CommandExecutor, hooks []config.HookConfig, hookCtx Context, log *slog.Logger) int {
	failed := 0
	for _, hook := range hooks {
		if hook.Run == "" {
			continue
		}

		args := append(hookCtx.envVars(), "sh", "-c", hook.Run)
		output, err := executor.CombinedOutput(ctx, hookCtx.RepoPath, "env", args...)
		if err != nil {
			failed++
			log.Warn("hook failed",
				"command", hook.Run,
				"error", err,
				"output", string(output),
			)
			continue
		}

		log.Debug("hook completed",
			"command", hook.Run,
			"output", string(output),
		)
	}
	return failed
}
