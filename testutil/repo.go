// Package testutil builds throwaway git repositories for integration tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// Fixture is a bare "origin" remote with two clones of it: Local, the
// repository under test, and Peer, used to push commits the local clone has
// not seen yet. Both clones start on main tracking origin/main.
type Fixture struct {
	Remote string
	Local  string
	Peer   string
}

// RequireGit skips the test when git is not installed.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}
}

// NewFixture creates a remote whose initial commit contains README.md and
// config.yaml, then clones it twice.
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	RequireGit(t)

	dir := t.TempDir()
	fx := &Fixture{
		Remote: filepath.Join(dir, "origin.git"),
		Local:  filepath.Join(dir, "local"),
		Peer:   filepath.Join(dir, "peer"),
	}

	seed := filepath.Join(dir, "seed")
	Git(t, dir, "init", "-q", "-b", "main", seed)
	configure(t, seed)
	WriteFile(t, seed, "README.md", "# test\n")
	WriteFile(t, seed, "config.yaml", "name: base\nlevel: 1\n")
	Git(t, seed, "add", ".")
	Git(t, seed, "commit", "-q", "-m", "initial commit")
	Git(t, dir, "clone", "-q", "--bare", seed, fx.Remote)

	for _, clone := range []string{fx.Local, fx.Peer} {
		Git(t, dir, "clone", "-q", fx.Remote, clone)
		configure(t, clone)
	}
	return fx
}

// Commit writes content to file in dir and commits it.
func Commit(t *testing.T, dir, file, content, msg string) {
	t.Helper()
	WriteFile(t, dir, file, content)
	Git(t, dir, "add", file)
	Git(t, dir, "commit", "-q", "-m", msg)
}

// PushFromPeer commits a change in the peer clone and pushes it to origin.
func (fx *Fixture) PushFromPeer(t *testing.T, file, content string) {
	t.Helper()
	Commit(t, fx.Peer, file, content, "peer: update "+file)
	Git(t, fx.Peer, "push", "-q", "origin", "main")
}

// WriteFile writes content to dir/file, creating parent directories.
func WriteFile(t *testing.T, dir, file, content string) {
	t.Helper()
	path := filepath.Join(dir, file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// ReadFile returns the contents of dir/file.
func ReadFile(t *testing.T, dir, file string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// Git runs git in dir, failing the test on error, and returns trimmed stdout.
func Git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "LC_ALL=C", "GIT_TERMINAL_PROMPT=0")
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git %v in %s failed: %v\n%s", args, dir, err, stderr.String())
	}
	return strings.TrimSpace(string(out))
}

func configure(t *testing.T, dir string) {
	t.Helper()
	Git(t, dir, "config", "user.email", "test@example.com")
	Git(t, dir, "config", "user.name", "Test User")
	Git(t, dir, "config", "commit.gpgsign", "false")
}
