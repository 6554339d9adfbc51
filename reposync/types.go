package reposync

import (
	"time"

	"github.com/zhubert/plural-sync/git"
)

// WorkingTreeState classifies the working tree at the start of a run.
type WorkingTreeState int

const (
	Clean WorkingTreeState = iota
	Dirty
)

func (s WorkingTreeState) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "clean"
}

// State is a stage of the run state machine.
type State string

const (
	StateStart      State = "start"
	StateInspecting State = "inspecting"
	StatePreserving State = "preserving"
	StateFetching   State = "fetching"
	StateMerging    State = "merging"
	StateReporting  State = "reporting"
	StateEnd        State = "end"
)

// Target is the remote branch a run merges into the current branch.
type Target struct {
	Remote  string // Remote name
	Branch  string // Branch on the remote
	Current string // Checked out local branch
	Message string // Merge commit message
}

// Ref is the short name of the remote branch, e.g. "origin/main".
func (t Target) Ref() string {
	return t.Remote + "/" + t.Branch
}

// StashHandle identifies the edits a run stashed.
type StashHandle struct {
	Label     string
	Commit    string
	CreatedAt time.Time
}

// ShortCommit returns the abbreviated stash commit id.
func (h *StashHandle) ShortCommit() string {
	if len(h.Commit) > 7 {
		return h.Commit[:7]
	}
	return h.Commit
}

// OutcomeKind tags a MergeOutcome.
type OutcomeKind int

const (
	MergeSuccess OutcomeKind = iota
	MergeConflict
)

func (k OutcomeKind) String() string {
	if k == MergeConflict {
		return "conflict"
	}
	return "success"
}

// MergeOutcome is the terminal result of a merge that git carried out.
// Conflicts is set only for MergeConflict and is sorted.
type MergeOutcome struct {
	Kind      OutcomeKind
	Ref       *git.FetchedRef
	Conflicts []string
}

// Succeeded reports whether the merge completed without conflicts.
func (o MergeOutcome) Succeeded() bool {
	return o.Kind == MergeSuccess
}
