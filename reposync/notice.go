package reposync

import (
	"fmt"
	"strings"
)

// NoticeKind enumerates the messages a run can show the operator.
type NoticeKind int

const (
	NoticeFetchStart NoticeKind = iota
	NoticeStashCreated
	NoticeMergeSuccess
	NoticeMergeConflict
	NoticeStashRestore
	NoticeFatal
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeFetchStart:
		return "fetch-start"
	case NoticeStashCreated:
		return "stash-created"
	case NoticeMergeSuccess:
		return "merge-success"
	case NoticeMergeConflict:
		return "merge-conflict"
	case NoticeStashRestore:
		return "stash-restore"
	case NoticeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("notice(%d)", int(k))
	}
}

// Notice is one message for the operator. Details are rendered as indented
// lines below Message.
type Notice struct {
	Kind    NoticeKind
	Message string
	Details []string
}

// Text renders the notice as plain text.
func (n Notice) Text() string {
	if len(n.Details) == 0 {
		return n.Message
	}
	var sb strings.Builder
	sb.WriteString(n.Message)
	for _, d := range n.Details {
		sb.WriteString("\n  ")
		sb.WriteString(d)
	}
	return sb.String()
}

// Notifier receives notices as a run produces them.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

func fetchStartNotice(t Target) Notice {
	return Notice{
		Kind:    NoticeFetchStart,
		Message: fmt.Sprintf("Fetching %s...", t.Ref()),
	}
}

func stashCreatedNotice(h *StashHandle) Notice {
	return Notice{
		Kind:    NoticeStashCreated,
		Message: fmt.Sprintf("Working tree has uncommitted changes; stashed them as %q (%s)", h.Label, h.ShortCommit()),
	}
}

func mergeSuccessNotice(o MergeOutcome) Notice {
	msg := "Merge complete, no conflicts"
	if o.Ref != nil {
		msg = fmt.Sprintf("Merged %s (%s): merge complete, no conflicts", o.Ref.TrackingRef(), o.Ref.ShortCommit())
	}
	return Notice{Kind: NoticeMergeSuccess, Message: msg}
}

func mergeConflictNotice(o MergeOutcome) Notice {
	details := make([]string, 0, len(o.Conflicts)+3)
	for _, path := range o.Conflicts {
		details = append(details, "conflict: "+path)
	}
	details = append(details,
		"Resolve the conflicts, then:",
		"  1. Stage the resolved files with: git add <file>...",
		"  2. Finish the merge with: git commit",
	)
	return Notice{
		Kind:    NoticeMergeConflict,
		Message: fmt.Sprintf("Merge stopped with conflicts in %d file(s); you must resolve them manually", len(o.Conflicts)),
		Details: details,
	}
}

func fatalNotice(err *StageError) Notice {
	n := Notice{
		Kind:    NoticeFatal,
		Message: fmt.Sprintf("Sync failed while %s: %v", err.Stage, err.Err),
	}
	if !err.MergeAttempted() {
		n.Details = []string{"No merge was attempted."}
	}
	return n
}
