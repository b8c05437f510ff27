package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codeward-dev/codeward/internal/testenv"
)

func TestLoadGlobalFromMissingFile(t *testing.T) {
	cfg, err := LoadGlobalFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadGlobalFrom: %v", err)
	}
	if cfg.MaxWorkers != 4 {
		t.Errorf("MaxWorkers = %d, want default 4", cfg.MaxWorkers)
	}
	if cfg.ReadBeforeWrite != "enforce" {
		t.Errorf("ReadBeforeWrite = %q, want enforce", cfg.ReadBeforeWrite)
	}
}

func TestLoadGlobalFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
max_workers = 8
read_before_write = "warn"
allowed_commands = ["go", "make"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadGlobalFrom(path)
	if err != nil {
		t.Fatalf("LoadGlobalFrom: %v", err)
	}
	if cfg.MaxWorkers != 8 {
		t.Errorf("MaxWorkers = %d, want 8", cfg.MaxWorkers)
	}
	if cfg.ReadBeforeWrite != "warn" {
		t.Errorf("ReadBeforeWrite = %q, want warn", cfg.ReadBeforeWrite)
	}
	if len(cfg.AllowedCommands) != 2 {
		t.Errorf("AllowedCommands = %v", cfg.AllowedCommands)
	}
	// Unset keys keep defaults.
	if cfg.MaxBatchSize != 64 {
		t.Errorf("MaxBatchSize = %d, want default 64", cfg.MaxBatchSize)
	}
}

func TestLoadGlobalFromRejectsBadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`read_before_write = "maybe"`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadGlobalFrom(path); err == nil {
		t.Error("LoadGlobalFrom accepted invalid read_before_write")
	}
}

func TestLoadProjectConfig(t *testing.T) {
	root := t.TempDir()

	cfg, err := LoadProjectConfig(root)
	if err != nil {
		t.Fatalf("LoadProjectConfig: %v", err)
	}
	if cfg != nil {
		t.Error("expected nil config when .codeward.toml is absent")
	}

	content := `command_timeout_seconds = 120`
	if err := os.WriteFile(filepath.Join(root, ".codeward.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadProjectConfig(root)
	if err != nil {
		t.Fatalf("LoadProjectConfig: %v", err)
	}
	if cfg.CommandTimeoutSeconds != 120 {
		t.Errorf("CommandTimeoutSeconds = %d, want 120", cfg.CommandTimeoutSeconds)
	}
}

func TestMerge(t *testing.T) {
	global := DefaultConfig()
	global.AllowedCommands = []string{"go"}

	merged := global.Merge(&ProjectConfig{
		CommandTimeoutSeconds: 300,
		AllowedCommands:       []string{"make"},
	})
	if merged.CommandTimeoutSeconds != 300 {
		t.Errorf("CommandTimeoutSeconds = %d, want 300", merged.CommandTimeoutSeconds)
	}
	if len(merged.AllowedCommands) != 2 {
		t.Errorf("AllowedCommands = %v, want [go make]", merged.AllowedCommands)
	}
	// Untouched settings survive the merge.
	if merged.ReadBeforeWrite != "enforce" {
		t.Errorf("ReadBeforeWrite = %q, want enforce", merged.ReadBeforeWrite)
	}

	if got := global.Merge(nil); got != global {
		t.Error("Merge(nil) should return the receiver")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	cfg.MaxWorkers = 2

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadGlobalFrom(path)
	if err != nil {
		t.Fatalf("LoadGlobalFrom: %v", err)
	}
	if loaded.MaxWorkers != 2 {
		t.Errorf("MaxWorkers = %d, want 2", loaded.MaxWorkers)
	}
}

func TestDataDirEnvOverride(t *testing.T) {
	dir := testenv.SetDataDir(t)
	if got := DataDir(); got != dir {
		t.Errorf("DataDir() = %q, want %q", got, dir)
	}
	if got := GlobalConfigPath(); got != filepath.Join(dir, "config.toml") {
		t.Errorf("GlobalConfigPath() = %q", got)
	}
}
