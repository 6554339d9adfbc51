// Package reposync brings the checked out branch up to date with its remote
// branch.
//
// A run moves through a fixed sequence of stages:
//
//	Start → Inspecting → (Preserving)? → Fetching → Merging → Reporting → End
//
// Inspecting classifies the working tree as clean or dirty and resolves the
// remote branch to merge. Preserving runs only for a dirty tree and stashes
// the uncommitted edits. Fetching retrieves the remote branch and Merging
// merges the fetched commit. Reporting assembles the RunReport and emits the
// final notices.
//
// A failure in any stage before Reporting is fatal and jumps straight to
// Reporting. A merge that stops on conflicts is not a failure: it is one of
// the two merge outcomes and is reported with the conflicting paths.
//
// A stash created by a run is never restored by plural-sync. The report
// always tells the operator how to restore it.
package reposync
