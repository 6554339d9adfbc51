// Package config loads plural-sync settings. A repository can carry
// .plural/sync.yaml and a user can keep sync.yaml in the config directory;
// the repository file wins, and built-in defaults fill whatever neither sets.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zhubert/plural-sync/paths"
)

const (
	configDir      = ".plural"
	configFileName = "sync.yaml"

	// DebugEnv turns on debug logging when set to a true value.
	DebugEnv = "PLURAL_SYNC_DEBUG"
)

// Config holds the sync settings.
type Config struct {
	Remote     string `yaml:"remote,omitempty"`      // Remote to fetch; empty means the branch upstream
	Branch     string `yaml:"branch,omitempty"`      // Remote branch to merge; empty means the branch upstream
	Message    string `yaml:"message,omitempty"`     // Merge commit message template
	StashLabel string `yaml:"stash_label,omitempty"` // Stash message template
	Debug      bool   `yaml:"debug,omitempty"`       // Debug level logging

	AfterSync []HookConfig `yaml:"after_sync,omitempty"` // Commands run once the report is printed
}

// HookConfig defines a shell command to run after a sync.
type HookConfig struct {
	Run string `yaml:"run"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Message:    "Merge {remote}/{branch} into {current}",
		StashLabel: "plural-sync {time}",
	}
}

// RepoConfigPath returns the path of the repository config file.
func RepoConfigPath(repoPath string) string {
	return filepath.Join(repoPath, configDir, configFileName)
}

// Load reads and parses .plural/sync.yaml from the given repo path.
// Returns nil, nil if the file does not exist.
func Load(repoPath string) (*Config, error) {
	return loadFile(RepoConfigPath(repoPath))
}

// LoadUser reads the user-wide sync.yaml. Returns nil, nil if it does not exist.
func LoadUser() (*Config, error) {
	path, err := paths.UserConfigFilePath()
	if err != nil {
		return nil, err
	}
	return loadFile(path)
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sync config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a sync.yaml document. Unknown keys are rejected so that a
// misspelled setting does not silently fall back to its default.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse sync config: %w", err)
	}
	return &cfg, nil
}

// LoadAndMerge layers the repository config over the user config over the
// defaults, applies environment overrides, and validates the result.
func LoadAndMerge(repoPath string) (*Config, error) {
	cfg := DefaultConfig()

	user, err := LoadUser()
	if err != nil {
		return nil, err
	}
	if user != nil {
		cfg = Merge(user, cfg)
	}

	if repoPath != "" {
		repo, err := Load(repoPath)
		if err != nil {
			return nil, err
		}
		if repo != nil {
			cfg = Merge(repo, cfg)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge returns partial with empty fields filled from defaults. Debug is
// enabled if either side enables it.
func Merge(partial, defaults *Config) *Config {
	result := *partial
	if result.Remote == "" {
		result.Remote = defaults.Remote
	}
	if result.Branch == "" {
		result.Branch = defaults.Branch
	}
	if result.Message == "" {
		result.Message = defaults.Message
	}
	if result.StashLabel == "" {
		result.StashLabel = defaults.StashLabel
	}
	if len(result.AfterSync) == 0 {
		result.AfterSync = defaults.AfterSync
	}
	result.Debug = partial.Debug || defaults.Debug
	return &result
}

func applyEnv(cfg *Config) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(DebugEnv))) {
	case "1", "true", "yes", "on":
		cfg.Debug = true
	case "0", "false", "no", "off":
		cfg.Debug = false
	}
}

// Validate checks the settings for values git would reject.
func (c *Config) Validate() error {
	var errs []error
	if strings.ContainsAny(c.Remote, " \t\n") {
		errs = append(errs, fmt.Errorf("remote %q must not contain whitespace", c.Remote))
	}
	if strings.HasPrefix(c.Remote, "-") {
		errs = append(errs, fmt.Errorf("remote %q must not start with '-'", c.Remote))
	}
	if strings.ContainsAny(c.Branch, " \t\n~^:?*[\\") || strings.HasPrefix(c.Branch, "-") || strings.Contains(c.Branch, "..") {
		errs = append(errs, fmt.Errorf("branch %q is not a valid branch name", c.Branch))
	}
	if strings.TrimSpace(c.Message) == "" {
		errs = append(errs, errors.New("message must not be empty"))
	}
	if strings.TrimSpace(c.StashLabel) == "" {
		errs = append(errs, errors.New("stash_label must not be empty"))
	}
	for i, h := range c.AfterSync {
		if strings.TrimSpace(h.Run) == "" {
			errs = append(errs, fmt.Errorf("after_sync[%d]: run must not be empty", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid sync config: %w", errors.Join(errs...))
	}
	return nil
}

// Expand substitutes {name} placeholders in template with values from vars.
// Placeholders without a value are left as written.
func Expand(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
