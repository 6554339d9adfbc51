package reposync

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zhubert/plural-sync/config"
	"github.com/zhubert/plural-sync/git"
	"github.com/zhubert/plural-sync/logger"
)

// Options configures an Orchestrator. Empty fields fall back to defaults.
type Options struct {
	Dir                string // Any directory inside the repository
	Remote             string // Remote to fetch from; resolved from upstream when empty
	Branch             string // Branch to merge; resolved from upstream when empty
	MessageTemplate    string // Merge commit message, with {remote}, {branch} and {current}
	StashLabelTemplate string // Stash label, with {time}, {run}, {current}, {remote} and {branch}
	Notifier           Notifier
	Now                func() time.Time
	RunID              string
}

// Orchestrator runs one sync of the checked out branch.
type Orchestrator struct {
	client git.Client
	opts   Options
}

// NewOrchestrator returns an Orchestrator that talks to the repository
// through client.
func NewOrchestrator(client git.Client, opts Options) *Orchestrator {
	defaults := config.DefaultConfig()
	if opts.MessageTemplate == "" {
		opts.MessageTemplate = defaults.Message
	}
	if opts.StashLabelTemplate == "" {
		opts.StashLabelTemplate = defaults.StashLabel
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(Notice) {})
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{client: client, opts: opts}
}

// run carries the state of a single Run between stages.
type run struct {
	id       string
	log      *slog.Logger
	repoPath string
	target   Target
	tree     WorkingTreeState
	stashes  *StashManager
	stash    *StashHandle
	ref      *git.FetchedRef
	outcome  *MergeOutcome
	err      *StageError
	trace    []State
	started  time.Time
}

func (r *run) enter(s State) {
	r.trace = append(r.trace, s)
	r.log.Debug("entering state", "state", s)
}

// Run executes the state machine to completion and returns its report. It
// never returns nil; failures are carried in RunReport.Err.
func (o *Orchestrator) Run(ctx context.Context) *RunReport {
	id := o.opts.RunID
	if id == "" {
		id = uuid.New().String()
	}
	r := &run{
		id:      id,
		log:     logger.WithRun(id).With("component", "sync"),
		started: o.opts.Now(),
	}
	r.enter(StateStart)

	if r.err = o.inspect(ctx, r); r.err == nil && r.tree == Dirty {
		r.err = o.preserve(ctx, r)
	}
	if r.err == nil {
		r.err = o.fetch(ctx, r)
	}
	if r.err == nil {
		r.err = o.merge(ctx, r)
	}

	report := o.report(r)
	r.enter(StateEnd)
	report.Trace = r.trace
	return report
}

func (o *Orchestrator) inspect(ctx context.Context, r *run) *StageError {
	r.enter(StateInspecting)

	repoPath, err := o.client.TopLevel(ctx, o.opts.Dir)
	if err != nil {
		return inspectionError(err)
	}
	r.repoPath = repoPath

	inspector := NewInspector(o.client, repoPath)
	tree, err := inspector.Inspect(ctx)
	if err != nil {
		return inspectionError(err)
	}
	r.tree = tree

	target, err := inspector.ResolveTarget(ctx, Target{Remote: o.opts.Remote, Branch: o.opts.Branch}, o.opts.MessageTemplate)
	if err != nil {
		return inspectionError(err)
	}
	r.target = target

	r.log.Info("inspected repository", "repo", repoPath, "tree", tree, "target", target.Ref(), "current", target.Current)
	return nil
}

func (o *Orchestrator) preserve(ctx context.Context, r *run) *StageError {
	r.enter(StatePreserving)

	label := config.Expand(o.opts.StashLabelTemplate, map[string]string{
		"time":    r.started.Format("2006-01-02 15:04:05"),
		"run":     r.id,
		"current": r.target.Current,
		"remote":  r.target.Remote,
		"branch":  r.target.Branch,
	})

	if err := ctx.Err(); err != nil {
		return stashError(err)
	}

	r.stashes = NewStashManager(o.client, r.repoPath)
	r.stashes.now = o.opts.Now
	handle, err := r.stashes.Preserve(ctx, label)
	if handle != nil {
		r.stash = handle
		r.log.Info("stashed uncommitted changes", "label", handle.Label, "commit", handle.Commit)
		o.opts.Notifier.Notify(stashCreatedNotice(handle))
	}
	if err != nil {
		return stashError(err)
	}
	return nil
}

func (o *Orchestrator) fetch(ctx context.Context, r *run) *StageError {
	r.enter(StateFetching)
	o.opts.Notifier.Notify(fetchStartNotice(r.target))

	ref, err := o.client.Fetch(ctx, r.repoPath, r.target.Remote, r.target.Branch)
	if err != nil {
		return fetchError(err)
	}
	r.ref = ref
	return nil
}

func (o *Orchestrator) merge(ctx context.Context, r *run) *StageError {
	r.enter(StateMerging)

	if err := ctx.Err(); err != nil {
		return mergeNotStarted(err)
	}

	outcome, err := NewMergeExecutor(o.client, r.repoPath).Merge(ctx, r.ref, r.target.Message)
	if err != nil {
		return mergeError(err)
	}
	r.outcome = &outcome

	r.log.Info("merge finished", "outcome", outcome.Kind, "conflicts", len(outcome.Conflicts))
	return nil
}

func (o *Orchestrator) report(r *run) *RunReport {
	r.enter(StateReporting)

	report := &RunReport{
		RunID:      r.id,
		Target:     r.target,
		TreeState:  r.tree,
		Stash:      r.stash,
		Outcome:    r.outcome,
		Err:        r.err,
		Status:     classify(r.outcome, r.err),
		StartedAt:  r.started,
		FinishedAt: o.opts.Now(),
	}

	if r.err != nil {
		r.log.Error("sync failed", "stage", r.err.Stage, "error", r.err,
			"stashed", report.StashCreated(), "duration", report.Duration())
	} else {
		r.log.Info("sync finished", "status", report.Status,
			"stashed", report.StashCreated(), "duration", report.Duration())
	}

	o.opts.Notifier.Notify(report.OutcomeNotice())
	if r.stash != nil {
		o.opts.Notifier.Notify(r.stashes.AdviseRestore(r.stash))
	}
	return report
}
