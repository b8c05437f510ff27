package config

import "testing"

func TestGetConfigValue(t *testing.T) {
	cfg := DefaultConfig()

	got, err := GetConfigValue(cfg, "max_workers")
	if err != nil {
		t.Fatalf("GetConfigValue: %v", err)
	}
	if got != "4" {
		t.Errorf("max_workers = %q, want 4", got)
	}

	got, err = GetConfigValue(cfg, "env_allowlist")
	if err != nil {
		t.Fatalf("GetConfigValue: %v", err)
	}
	if got != "PATH,HOME,LANG,LC_ALL,TMPDIR" {
		t.Errorf("env_allowlist = %q", got)
	}

	if _, err := GetConfigValue(cfg, "no_such_key"); err == nil {
		t.Error("GetConfigValue accepted unknown key")
	}
}

func TestSetConfigValue(t *testing.T) {
	cfg := DefaultConfig()

	if err := SetConfigValue(cfg, "max_workers", "9"); err != nil {
		t.Fatalf("SetConfigValue: %v", err)
	}
	if cfg.MaxWorkers != 9 {
		t.Errorf("MaxWorkers = %d, want 9", cfg.MaxWorkers)
	}

	if err := SetConfigValue(cfg, "watch_reads", "true"); err != nil {
		t.Fatalf("SetConfigValue: %v", err)
	}
	if !cfg.WatchReads {
		t.Error("WatchReads not set")
	}

	if err := SetConfigValue(cfg, "allowed_commands", "go, make"); err != nil {
		t.Fatalf("SetConfigValue: %v", err)
	}
	if len(cfg.AllowedCommands) != 2 || cfg.AllowedCommands[1] != "make" {
		t.Errorf("AllowedCommands = %v", cfg.AllowedCommands)
	}

	if err := SetConfigValue(cfg, "max_workers", "lots"); err == nil {
		t.Error("SetConfigValue accepted non-integer for int key")
	}
}

func TestIsValidKey(t *testing.T) {
	if !IsValidKey("max_workers") {
		t.Error("max_workers should be valid")
	}
	if !IsValidKey("read_before_write") {
		t.Error("read_before_write should be valid")
	}
	if IsValidKey("bogus") {
		t.Error("bogus should not be valid")
	}
}

func TestListConfigKeys(t *testing.T) {
	kvs := ListConfigKeys(DefaultConfig())
	found := map[string]string{}
	for _, kv := range kvs {
		found[kv.Key] = kv.Value
	}
	if found["max_workers"] != "4" {
		t.Errorf("max_workers = %q, want 4", found["max_workers"])
	}
	// Zero values are omitted.
	if _, ok := found["watch_reads"]; ok {
		t.Error("zero-valued watch_reads listed")
	}
}
