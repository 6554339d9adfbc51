package reposync

import (
	"errors"
	"fmt"
)

// Fatal error kinds. A *StageError matches exactly one of these with errors.Is.
var (
	ErrInspection = errors.New("inspection failed")
	ErrStash      = errors.New("stash failed")
	ErrFetch      = errors.New("fetch failed")
	ErrMerge      = errors.New("merge failed")
)

// StageError is a fatal failure of one stage of a run.
type StageError struct {
	Stage State
	Kind  error // One of ErrInspection, ErrStash, ErrFetch, ErrMerge
	Err   error

	notStarted bool
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Unwrap exposes both the kind and the underlying cause.
func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// MergeAttempted reports whether the failure happened after git was asked to merge.
func (e *StageError) MergeAttempted() bool {
	return e.Stage == StateMerging && !e.notStarted
}

func inspectionError(err error) *StageError {
	return &StageError{Stage: StateInspecting, Kind: ErrInspection, Err: err}
}

func stashError(err error) *StageError {
	return &StageError{Stage: StatePreserving, Kind: ErrStash, Err: err}
}

func fetchError(err error) *StageError {
	return &StageError{Stage: StateFetching, Kind: ErrFetch, Err: err}
}

func mergeError(err error) *StageError {
	return &StageError{Stage: StateMerging, Kind: ErrMerge, Err: err}
}

// mergeNotStarted is a merge-stage failure raised before git was invoked.
func mergeNotStarted(err error) *StageError {
	return &StageError{Stage: StateMerging, Kind: ErrMerge, Err: err, notStarted: true}
}
