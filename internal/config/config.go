// Package config loads and persists codeward configuration: sandbox
// allowlists, edit caps, and the read-before-write policy switch.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the engine configuration.
type Config struct {
	// MaxWorkers bounds concurrent sandbox executions across sessions.
	MaxWorkers int `toml:"max_workers"`

	// CommandTimeoutSeconds is the default wall-clock limit for
	// sandboxed commands.
	CommandTimeoutSeconds int `toml:"command_timeout_seconds"`

	// MaxBatchSize caps the number of edits per multi-edit call.
	MaxBatchSize int `toml:"max_batch_size"`

	// MaxStringLenKB caps old/new string sizes per edit, in KiB.
	MaxStringLenKB int `toml:"max_string_len_kb"`

	// ReadBeforeWrite is "enforce" or "warn". Warn is the legacy mode
	// for callers that cannot thread read state; it logs instead of
	// rejecting.
	ReadBeforeWrite string `toml:"read_before_write"`

	// AllowedCommands lists extra executables permitted in the
	// sandbox. git is always allowed.
	AllowedCommands []string `toml:"allowed_commands"`

	// EnvAllowlist names environment variables forwarded to sandboxed
	// processes.
	EnvAllowlist []string `toml:"env_allowlist"`

	// WatchReads enables the fsnotify staleness watcher on sessions.
	WatchReads bool `toml:"watch_reads"`
}

// ProjectConfig holds per-project overrides from .codeward.toml.
type ProjectConfig struct {
	CommandTimeoutSeconds int      `toml:"command_timeout_seconds"`
	ReadBeforeWrite       string   `toml:"read_before_write"`
	AllowedCommands       []string `toml:"allowed_commands"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxWorkers:            4,
		CommandTimeoutSeconds: 60,
		MaxBatchSize:          64,
		MaxStringLenKB:        256,
		ReadBeforeWrite:       "enforce",
		EnvAllowlist:          []string{"PATH", "HOME", "LANG", "LC_ALL", "TMPDIR"},
	}
}

// DataDir returns the codeward data directory.
// Uses CODEWARD_DATA_DIR env var if set, otherwise ~/.codeward
func DataDir() string {
	if dir := os.Getenv("CODEWARD_DATA_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".codeward")
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// LoadGlobal loads the global configuration from the default path.
func LoadGlobal() (*Config, error) {
	return LoadGlobalFrom(GlobalConfigPath())
}

// LoadGlobalFrom loads the global configuration from a specific path.
// A missing file yields the defaults.
func LoadGlobalFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadProjectConfig loads per-project config from .codeward.toml at the
// project root. Returns nil if the file does not exist.
func LoadProjectConfig(root string) (*ProjectConfig, error) {
	path := filepath.Join(root, ".codeward.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	cfg := &ProjectConfig{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge applies non-zero project overrides on top of the global config
// and returns the effective configuration.
func (c *Config) Merge(p *ProjectConfig) *Config {
	if p == nil {
		return c
	}
	merged := *c
	if p.CommandTimeoutSeconds > 0 {
		merged.CommandTimeoutSeconds = p.CommandTimeoutSeconds
	}
	if p.ReadBeforeWrite != "" {
		merged.ReadBeforeWrite = p.ReadBeforeWrite
	}
	if len(p.AllowedCommands) > 0 {
		merged.AllowedCommands = append(append([]string{}, c.AllowedCommands...), p.AllowedCommands...)
	}
	return &merged
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.ReadBeforeWrite {
	case "", "enforce", "warn":
	default:
		return fmt.Errorf("invalid read_before_write %q (want enforce or warn)", c.ReadBeforeWrite)
	}
	return nil
}
