package main

import (
	"fmt"
	"time"

	"github.com/codeward-dev/codeward/internal/config"
	"github.com/codeward-dev/codeward/internal/sandbox"
	"github.com/codeward-dev/codeward/internal/session"
	"github.com/codeward-dev/codeward/internal/tool"
)

// exitError is an error that signals a specific exit code
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// loadEffectiveConfig returns the global config with project overrides
// from .codeward.toml applied.
func loadEffectiveConfig(root string) (*config.Config, error) {
	cfg, err := config.LoadGlobal()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	proj, err := config.LoadProjectConfig(root)
	if err != nil {
		return nil, fmt.Errorf("load project config: %w", err)
	}
	return cfg.Merge(proj), nil
}

// newExecutor wires a session, sandbox, and executor for root. The
// caller must Close the returned session.
func newExecutor(root string) (*tool.Executor, *session.Session, error) {
	cfg, err := loadEffectiveConfig(root)
	if err != nil {
		return nil, nil, err
	}

	policy := session.Enforce
	if cfg.ReadBeforeWrite == "warn" {
		policy = session.Warn
	}
	sess, err := session.New(root, session.WithPolicy(policy))
	if err != nil {
		return nil, nil, fmt.Errorf("open session: %w", err)
	}
	if cfg.WatchReads {
		if err := sess.EnableWatcher(); err != nil {
			sess.Close()
			return nil, nil, fmt.Errorf("watch reads: %w", err)
		}
	}

	box := sandbox.New(sandbox.Options{
		AllowedCommands: cfg.AllowedCommands,
		EnvAllowlist:    cfg.EnvAllowlist,
		DefaultTimeout:  time.Duration(cfg.CommandTimeoutSeconds) * time.Second,
		MaxWorkers:      cfg.MaxWorkers,
	})

	return tool.NewExecutor(cfg, sess, box), sess, nil
}
