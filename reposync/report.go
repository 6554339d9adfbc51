package reposync

import (
	"errors"
	"time"
)

// Status is the final classification of a run.
type Status int

const (
	StatusOK Status = iota
	StatusConflict
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusConflict:
		return "CONFLICT"
	default:
		return "FATAL"
	}
}

// ExitCode maps the status onto the process exit status: 0 for OK, 1 otherwise.
func (s Status) ExitCode() int {
	if s == StatusOK {
		return 0
	}
	return 1
}

// RunReport is everything a run did, assembled once at Reporting.
type RunReport struct {
	RunID      string
	Target     Target
	TreeState  WorkingTreeState
	Stash      *StashHandle  // Set iff the tree was dirty and the stash succeeded
	Outcome    *MergeOutcome // Set iff git carried out the merge
	Err        *StageError   // Set iff the run failed
	Status     Status
	Trace      []State // States visited, in order
	StartedAt  time.Time
	FinishedAt time.Time
}

// StashCreated reports whether the run left a stash behind.
func (r *RunReport) StashCreated() bool {
	return r.Stash != nil
}

// Duration is how long the run took.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// OutcomeNotice describes how the run ended: the failure, the conflicts or
// the successful merge. The restore reminder for a stash is separate.
func (r *RunReport) OutcomeNotice() Notice {
	switch {
	case r.Err != nil:
		return fatalNotice(r.Err)
	case r.Outcome != nil && r.Outcome.Succeeded():
		return mergeSuccessNotice(*r.Outcome)
	case r.Outcome != nil:
		return mergeConflictNotice(*r.Outcome)
	}
	return fatalNotice(inspectionError(errors.New("run ended without an outcome")))
}

// PreflightFailure is the report of a run that could not start, such as a
// missing git binary or an invalid config. It is an inspection failure.
func PreflightFailure(runID string, err error, at time.Time) *RunReport {
	return &RunReport{
		RunID:      runID,
		Err:        inspectionError(err),
		Status:     StatusFatal,
		Trace:      []State{StateStart, StateInspecting, StateReporting, StateEnd},
		StartedAt:  at,
		FinishedAt: at,
	}
}

func classify(outcome *MergeOutcome, err *StageError) Status {
	switch {
	case err != nil:
		return StatusFatal
	case outcome != nil && outcome.Kind == MergeConflict:
		return StatusConflict
	case outcome != nil:
		return StatusOK
	default:
		return StatusFatal
	}
}
