package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/zhubert/plural-sync/reposync"
)

// Console prints sync notices to the terminal. Failures go to Err, all other
// notices to Out.
type Console struct {
	Out io.Writer // Standard output
	Err io.Writer // Standard error

	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	gray   func(a ...interface{}) string
	red    func(a ...interface{}) string
}

// NewConsole creates a Console writing to out and errOut. Output is colored
// only when out is a terminal and NO_COLOR is unset.
func NewConsole(out, errOut io.Writer) *Console {
	if !isTerminal(out) {
		return NewConsoleForTesting(out, errOut)
	}
	return &Console{
		Out:    out,
		Err:    errOut,
		green:  color.New(color.FgGreen, color.Bold).SprintFunc(),
		yellow: color.New(color.FgYellow).SprintFunc(),
		cyan:   color.New(color.FgCyan).SprintFunc(),
		gray:   color.New(color.FgHiBlack).SprintFunc(),
		red:    color.New(color.FgRed, color.Bold).SprintFunc(),
	}
}

// NewConsoleForTesting creates a Console without colors writing to out and errOut.
func NewConsoleForTesting(out, errOut io.Writer) *Console {
	noColor := func(a ...interface{}) string { return fmt.Sprint(a...) }
	return &Console{
		Out:    out,
		Err:    errOut,
		green:  noColor,
		yellow: noColor,
		cyan:   noColor,
		gray:   noColor,
		red:    noColor,
	}
}

// Notify implements reposync.Notifier.
func (c *Console) Notify(n reposync.Notice) {
	w := c.Out
	var head string
	switch n.Kind {
	case reposync.NoticeFetchStart:
		head = c.cyan("→ ") + n.Message
	case reposync.NoticeStashCreated:
		head = c.yellow("● ") + n.Message
	case reposync.NoticeMergeSuccess:
		head = c.green("✓ ") + n.Message
	case reposync.NoticeMergeConflict:
		head = c.yellow("! ") + c.yellow(n.Message)
	case reposync.NoticeStashRestore:
		head = c.yellow("● ") + n.Message
	case reposync.NoticeFatal:
		w = c.Err
		head = c.red("✗ ") + c.red(n.Message)
	default:
		head = n.Message
	}

	fmt.Fprintln(w, head)
	for _, d := range n.Details {
		fmt.Fprintf(w, "  %s\n", c.detail(n.Kind, d))
	}
}

func (c *Console) detail(kind reposync.NoticeKind, d string) string {
	switch kind {
	case reposync.NoticeMergeConflict, reposync.NoticeFatal:
		return d
	default:
		return c.gray(d)
	}
}

// Summary prints the closing status line of a run.
func (c *Console) Summary(report *reposync.RunReport) {
	var status string
	switch report.Status {
	case reposync.StatusOK:
		status = c.green(report.Status.String())
	case reposync.StatusConflict:
		status = c.yellow(report.Status.String())
	default:
		status = c.red(report.Status.String())
	}

	target := report.Target.Ref()
	if report.Target.Remote == "" {
		target = "unresolved target"
	}
	fmt.Fprintf(c.Out, "%s %s %s\n", status, c.gray("·"), c.gray(fmt.Sprintf("%s into %s, run %s", target, currentOrUnknown(report.Target.Current), report.RunID)))
}

func currentOrUnknown(branch string) string {
	if branch == "" {
		return "?"
	}
	return branch
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var _ reposync.Notifier = (*Console)(nil)
