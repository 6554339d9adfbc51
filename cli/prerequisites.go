// Package cli holds the terminal-facing pieces of plural-sync: the
// prerequisite check run before a sync and the console that prints notices.
package cli

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"

	pexec "github.com/zhubert/plural-sync/exec"
)

// Prerequisite is an external tool plural-sync runs.
type Prerequisite struct {
	Name        string
	Required    bool
	Description string
	InstallURL  string
	MinVersion  string // empty accepts any version
}

// DefaultPrerequisites lists the tools a sync needs. git 2.13 introduced
// "git stash push -m".
func DefaultPrerequisites() []Prerequisite {
	return []Prerequisite{{
		Name:        "git",
		Required:    true,
		Description: "Git version control",
		InstallURL:  "https://git-scm.com/downloads",
		MinVersion:  "2.13.0",
	}}
}

// CheckResult is the outcome of checking one Prerequisite.
type CheckResult struct {
	Prerequisite Prerequisite
	Found        bool
	Path         string
	Version      string // first line of --version
	Error        error
}

// OK reports whether the tool was found and is recent enough.
func (r CheckResult) OK() bool {
	return r.Found && r.Error == nil
}

// problem describes a failed required tool for the user, or "" when there is
// nothing to report.
func (r CheckResult) problem() string {
	p := r.Prerequisite
	switch {
	case !p.Required || r.OK():
		return ""
	case !r.Found:
		return fmt.Sprintf("  - %s (%s)\n    Install: %s", p.Name, p.Description, p.InstallURL)
	default:
		return fmt.Sprintf("  - %s: %v\n    Upgrade: %s", p.Name, r.Error, p.InstallURL)
	}
}

// Checker finds tools in PATH and reads their versions.
type Checker struct {
	lookPath func(string) (string, error)
	executor pexec.CommandExecutor
}

// NewChecker uses the real PATH and runs the tools.
func NewChecker() *Checker {
	return NewCheckerWithExecutor(exec.LookPath, pexec.NewRealExecutor())
}

// NewCheckerWithExecutor injects the PATH lookup and command runner.
func NewCheckerWithExecutor(lookPath func(string) (string, error), executor pexec.CommandExecutor) *Checker {
	return &Checker{lookPath: lookPath, executor: executor}
}

// Check looks p up and, when it declares one, enforces its MinVersion.
func (c *Checker) Check(ctx context.Context, p Prerequisite) CheckResult {
	path, err := c.lookPath(p.Name)
	if err != nil {
		return CheckResult{Prerequisite: p, Error: fmt.Errorf("%s not found in PATH", p.Name)}
	}

	r := CheckResult{Prerequisite: p, Found: true, Path: path, Version: c.version(ctx, p.Name)}
	if p.MinVersion != "" {
		r.Error = checkMinVersion(p, r.Version)
	}
	return r
}

// CheckAll checks each prerequisite in order.
func (c *Checker) CheckAll(ctx context.Context, prereqs []Prerequisite) []CheckResult {
	results := make([]CheckResult, 0, len(prereqs))
	for _, p := range prereqs {
		results = append(results, c.Check(ctx, p))
	}
	return results
}

// ValidateRequired returns an error listing every required tool that is
// missing or too old. Optional tools never fail validation.
func (c *Checker) ValidateRequired(ctx context.Context, prereqs []Prerequisite) error {
	var problems []string
	for _, r := range c.CheckAll(ctx, prereqs) {
		if msg := r.problem(); msg != "" {
			problems = append(problems, msg)
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("missing required CLI tools:\n%s", strings.Join(problems, "\n"))
}

const maxVersionLen = 100

func (c *Checker) version(ctx context.Context, name string) string {
	out, err := c.executor.Output(ctx, "", name, "--version")
	if err != nil {
		return ""
	}
	first, _, _ := strings.Cut(string(out), "\n")
	first = strings.TrimSpace(first)
	if len(first) > maxVersionLen {
		return first[:maxVersionLen] + "..."
	}
	return first
}

var dottedVersion = regexp.MustCompile(`\d+(\.\d+)+`)

// checkMinVersion finds the dotted version in output, e.g.
// "git version 2.39.3 (Apple Git-146)", and compares it to p.MinVersion.
func checkMinVersion(p Prerequisite, output string) error {
	want, err := version.NewVersion(p.MinVersion)
	if err != nil {
		return fmt.Errorf("invalid minimum version %q for %s: %w", p.MinVersion, p.Name, err)
	}

	raw := dottedVersion.FindString(output)
	if raw == "" {
		return fmt.Errorf("could not determine %s version from %q", p.Name, output)
	}
	have, err := version.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("could not parse %s version %q: %w", p.Name, raw, err)
	}
	if have.LessThan(want) {
		return fmt.Errorf("%s %s is older than the required %s", p.Name, have, want)
	}
	return nil
}
