// Package paths decides where plural-sync keeps its user-level files: the
// user-wide sync.yaml and the log directory.
//
// An existing ~/.plural directory is shared with the other plural tools and
// holds everything. Otherwise XDG_CONFIG_HOME and XDG_STATE_HOME are honored
// when either is set, with files under a plural-sync subdirectory. With
// neither, ~/.plural is used.
package paths

import (
	"os"
	"path/filepath"
	"sync"
)

const appDirName = "plural-sync"

// Layout is a resolved set of directories.
type Layout struct {
	ConfigDir string
	StateDir  string
	Legacy    bool // Everything lives in ~/.plural
}

// LogsDir is where log files are written.
func (l Layout) LogsDir() string {
	return filepath.Join(l.StateDir, "logs")
}

// UserConfigFile is the user-wide sync.yaml.
func (l Layout) UserConfigFile() string {
	return filepath.Join(l.ConfigDir, "sync.yaml")
}

// Detect computes the layout for home from the environment lookup and
// directory check it is given.
func Detect(home string, getenv func(string) string, isDir func(string) bool) Layout {
	legacy := filepath.Join(home, ".plural")
	if isDir(legacy) {
		return Layout{ConfigDir: legacy, StateDir: legacy, Legacy: true}
	}

	cfg, state := getenv("XDG_CONFIG_HOME"), getenv("XDG_STATE_HOME")
	if cfg == "" && state == "" {
		return Layout{ConfigDir: legacy, StateDir: legacy, Legacy: true}
	}
	if cfg == "" {
		cfg = filepath.Join(home, ".config")
	}
	if state == "" {
		state = filepath.Join(home, ".local", "state")
	}
	return Layout{
		ConfigDir: filepath.Join(cfg, appDirName),
		StateDir:  filepath.Join(state, appDirName),
	}
}

var (
	mu     sync.Mutex
	cached *Layout
)

// Current returns the layout for the running user, computed once.
func Current() (Layout, error) {
	mu.Lock()
	defer mu.Unlock()

	if cached != nil {
		return *cached, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Layout{}, err
	}
	l := Detect(home, os.Getenv, func(p string) bool {
		info, err := os.Stat(p)
		return err == nil && info.IsDir()
	})
	cached = &l
	return l, nil
}

// LogsDir returns the log directory of the current layout.
func LogsDir() (string, error) {
	l, err := Current()
	if err != nil {
		return "", err
	}
	return l.LogsDir(), nil
}

// UserConfigFilePath returns the user-wide sync.yaml of the current layout.
func UserConfigFilePath() (string, error) {
	l, err := Current()
	if err != nil {
		return "", err
	}
	return l.UserConfigFile(), nil
}

// Reset forgets the cached layout. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cached = nil
}
