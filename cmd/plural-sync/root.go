package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zhubert/plural-sync/cli"
	"github.com/zhubert/plural-sync/config"
	pexec "github.com/zhubert/plural-sync/exec"
	"github.com/zhubert/plural-sync/git"
	"github.com/zhubert/plural-sync/hooks"
	"github.com/zhubert/plural-sync/logger"
	"github.com/zhubert/plural-sync/reposync"
)

// exitError carries a non-zero exit status for a run whose report has
// already been printed.
type exitError struct {
	code   int
	status reposync.Status
}

func (e *exitError) Error() string {
	return fmt.Sprintf("sync finished with status %s", e.status)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plural-sync",
		Short: "Merge the remote branch into the current branch, stashing local edits first",
		Long: `plural-sync fetches the branch the current branch tracks and merges it.

Uncommitted changes to tracked files are stashed before the fetch and are
never restored automatically; the report tells you how to restore them.

Exit status is 0 when the merge completed and 1 on conflicts or failure.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSync,
	}
	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	runID := uuid.New().String()
	log := logger.WithRun(runID).With("component", "cli")
	console := cli.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr())

	// Failures before the orchestrator starts are reported like any other
	// fatal run.
	preflight := func(err error) error {
		log.Error("sync could not start", "error", err)
		report := reposync.PreflightFailure(runID, err, time.Now())
		console.Notify(report.OutcomeNotice())
		console.Summary(report)
		return &exitError{code: report.Status.ExitCode(), status: report.Status}
	}

	checker := cli.NewChecker()
	if err := checker.ValidateRequired(ctx, cli.DefaultPrerequisites()); err != nil {
		return preflight(err)
	}

	dir, err := os.Getwd()
	if err != nil {
		return preflight(fmt.Errorf("failed to get working directory: %w", err))
	}

	client := git.NewGitService()

	// Outside a work tree only the user config applies; the run itself
	// reports the inspection failure.
	repoPath, err := client.TopLevel(ctx, dir)
	if err != nil {
		repoPath = ""
	}
	cfg, err := config.LoadAndMerge(repoPath)
	if err != nil {
		return preflight(err)
	}
	logger.SetDebug(cfg.Debug)
	log.Info("starting sync", "version", version, "dir", dir, "repo", repoPath)

	report := reposync.NewOrchestrator(client, reposync.Options{
		RunID:              runID,
		Dir:                dir,
		Remote:             cfg.Remote,
		Branch:             cfg.Branch,
		MessageTemplate:    cfg.Message,
		StashLabelTemplate: cfg.StashLabel,
		Notifier:           console,
	}).Run(ctx)
	console.Summary(report)

	if len(cfg.AfterSync) > 0 && repoPath != "" {
		hookCtx := hooks.FromReport(repoPath, report)
		if failed := hooks.Run(ctx, pexec.NewRealExecutor(), cfg.AfterSync, hookCtx, logger.WithRun(report.RunID)); failed > 0 {
			fmt.Fprintf(console.Err, "%d after_sync hook(s) failed; see %s\n", failed, logger.Path())
		}
	}

	if code := report.Status.ExitCode(); code != 0 {
		return &exitError{code: code, status: report.Status}
	}
	return nil
}
