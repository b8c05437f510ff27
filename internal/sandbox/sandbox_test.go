package sandbox

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestExecuteDisallowed(t *testing.T) {
	s := New(Options{})

	_, err := s.Execute(context.Background(), t.TempDir(), Request{Command: "rm", Args: []string{"-rf", "/"}})
	if !errors.Is(err, ErrDisallowed) {
		t.Errorf("Execute(rm) = %v, want ErrDisallowed", err)
	}

	_, err = s.Execute(context.Background(), t.TempDir(), Request{})
	if !errors.Is(err, ErrDisallowed) {
		t.Errorf("Execute(empty) = %v, want ErrDisallowed", err)
	}
}

func TestExecuteDestructiveRefused(t *testing.T) {
	s := New(Options{})

	_, err := s.Execute(context.Background(), t.TempDir(), Request{
		Command: "git",
		Args:    []string{"reset", "--hard", "HEAD~1"},
	})
	if !errors.Is(err, ErrDestructiveRefused) {
		t.Errorf("Execute(git reset --hard) = %v, want ErrDestructiveRefused", err)
	}

	// Reordering and = syntax do not dodge the gate.
	_, err = s.Execute(context.Background(), t.TempDir(), Request{
		Command: "git",
		Args:    []string{"clean", "-df"},
	})
	if !errors.Is(err, ErrDestructiveRefused) {
		t.Errorf("Execute(git clean -df) = %v, want ErrDestructiveRefused", err)
	}

	// Global flags before the subcommand do not hide it.
	_, err = s.Execute(context.Background(), t.TempDir(), Request{
		Command: "git",
		Args:    []string{"--no-pager", "clean", "--force"},
	})
	if !errors.Is(err, ErrDestructiveRefused) {
		t.Errorf("Execute(git --no-pager clean --force) = %v, want ErrDestructiveRefused", err)
	}
}

func TestExecuteReadOnlyGit(t *testing.T) {
	s := New(Options{})
	dir := t.TempDir()

	res, err := s.Execute(context.Background(), dir, Request{
		Command: "git",
		Args:    []string{"version"},
	})
	if err != nil {
		t.Fatalf("Execute(git version): %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d, stderr: %s", res.ExitCode, res.Stderr)
	}
	if !strings.Contains(res.Stdout, "git version") {
		t.Errorf("stdout = %q", res.Stdout)
	}
}

func TestExecuteNonZeroExitIsNotAnError(t *testing.T) {
	s := New(Options{})

	// git status outside a repository exits nonzero.
	res, err := s.Execute(context.Background(), t.TempDir(), Request{
		Command: "git",
		Args:    []string{"status"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.ExitCode == 0 {
		t.Error("expected nonzero exit code outside a repository")
	}
	if res.Stderr == "" {
		t.Error("expected stderr output")
	}
}

func TestExecuteTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on the sleep binary")
	}
	s := New(Options{AllowedCommands: []string{"sleep"}})

	start := time.Now()
	_, err := s.Execute(context.Background(), t.TempDir(), Request{
		Command: "sleep",
		Args:    []string{"30"},
		Timeout: 100 * time.Millisecond,
	})
	if !errors.Is(err, ErrTimedOut) {
		t.Fatalf("Execute = %v, want ErrTimedOut", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("termination took %s, process not reaped promptly", elapsed)
	}
}

func TestExecuteClearsEnvironment(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on /usr/bin/env")
	}
	t.Setenv("SECRET_TOKEN", "hunter2")
	s := New(Options{AllowedCommands: []string{"env"}})

	res, err := s.Execute(context.Background(), t.TempDir(), Request{Command: "env"})
	if err != nil {
		t.Fatalf("Execute(env): %v", err)
	}
	if strings.Contains(res.Stdout, "SECRET_TOKEN") {
		t.Error("ambient credential leaked into sandboxed environment")
	}
	if !strings.Contains(res.Stdout, "PATH=") {
		t.Error("allowlisted PATH missing from environment")
	}
}

func TestExecuteWorkerPoolBounds(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on the sleep binary")
	}
	s := New(Options{AllowedCommands: []string{"sleep"}, MaxWorkers: 1})

	// Occupy the single slot.
	started := make(chan struct{})
	go func() {
		close(started)
		s.Execute(context.Background(), t.TempDir(), Request{
			Command: "sleep",
			Args:    []string{"2"},
			Timeout: 5 * time.Second,
		})
	}()
	<-started
	time.Sleep(50 * time.Millisecond)

	// A second request cannot acquire a slot before its context ends.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := s.Execute(ctx, t.TempDir(), Request{Command: "sleep", Args: []string{"1"}})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Execute = %v, want context.DeadlineExceeded while pool is full", err)
	}
}

func TestSplitGitArgs(t *testing.T) {
	sub, rest := splitGitArgs([]string{"-C", "/somewhere", "clean", "-fd"})
	if sub != "clean" {
		t.Errorf("sub = %q, want clean", sub)
	}
	if len(rest) != 1 || rest[0] != "-fd" {
		t.Errorf("rest = %v, want [-fd]", rest)
	}

	sub, _ = splitGitArgs([]string{"--no-pager", "log"})
	if sub != "log" {
		t.Errorf("sub = %q, want log", sub)
	}

	if sub, _ = splitGitArgs(nil); sub != "" {
		t.Errorf("sub = %q, want empty", sub)
	}
}
