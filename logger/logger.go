// Package logger owns the process-wide slog logger. Output goes to a file
// under the state directory so stdout stays reserved for the sync report.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/zhubert/plural-sync/paths"
)

const logFileName = "sync.log"

// sink is the open log file and the logger writing to it.
type sink struct {
	path   string
	file   *os.File
	logger *slog.Logger
}

var (
	mu     sync.Mutex
	level  = new(slog.LevelVar)
	active *sink
	opened bool // set by the first Init or default open, cleared by Reset
)

// DefaultLogPath is sync.log inside the user's logs directory.
func DefaultLogPath() (string, error) {
	dir, err := paths.LogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFileName), nil
}

// SetDebug switches between debug and info level.
func SetDebug(enabled bool) {
	if enabled {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(slog.LevelInfo)
}

func openSink(path string) (*sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	l := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return &sink{path: path, file: f, logger: l}, nil
}

// Init directs logging to path. Only the first call has any effect; without
// one, the default path is opened on first use.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if opened {
		return nil
	}
	s, err := openSink(path)
	if err != nil {
		return err
	}
	active, opened = s, true
	s.logger.Debug("logger initialized", "path", path)
	return nil
}

// current returns the active logger, opening the default file if nothing has
// been opened yet. Caller must hold mu.
func current() *slog.Logger {
	if !opened {
		opened = true
		path, err := DefaultLogPath()
		if err == nil {
			active, err = openSink(path)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		}
	}
	if active == nil {
		return slog.Default()
	}
	return active.logger
}

// Path returns the file being written, or "" before anything was opened.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	if active == nil {
		return ""
	}
	return active.path
}

// Get returns the process logger.
func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current()
}

// WithRun returns a logger tagged with the sync run ID.
//
//	log := logger.WithRun(report.RunID)
//	log.Info("fetch complete", "ref", ref.TrackingRef)
//	// level=INFO msg="fetch complete" runID=4f1c... ref=origin/main
func WithRun(runID string) *slog.Logger {
	return Get().With("runID", runID)
}

// WithComponent returns a logger tagged with a component name.
func WithComponent(component string) *slog.Logger {
	return Get().With("component", component)
}

// Close closes the log file. Later calls log through slog.Default.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if active != nil {
		active.file.Close()
		active = nil
	}
}

// Reset closes the log file and forgets it so Init can run again. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	if active != nil {
		active.file.Close()
	}
	active, opened = nil, false
	level = new(slog.LevelVar)
}
