// Package git is the version-control client behind plural-sync. Every
// operation shells out to the git binary through an exec.CommandExecutor
// and returns a structured result instead of raw process output.
//
// The package is organized into focused files:
//   - service.go: GitService struct, constructors, and the Client interface
//   - status.go: working tree status, conflicted files, merge-in-progress
//   - branch.go: top level, current branch, upstream and default branch
//   - fetch.go: fetching a single remote branch
//   - stash.go: stashing uncommitted edits
//   - merge.go: merging a fetched commit
package git
