// Package sandbox executes external commands under a fixed working
// directory, a cleared environment, a command allowlist, and a hard
// wall-clock timeout. Git invocations are gated by the gitsafe
// classifier before any process is spawned.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/codeward-dev/codeward/internal/gitsafe"
)

var (
	// ErrDisallowed indicates the executable is not on the allowlist.
	ErrDisallowed = errors.New("command not allowed in sandbox")

	// ErrDestructiveRefused indicates a destructive git invocation was
	// refused because the caller did not set AllowDestructive.
	ErrDestructiveRefused = errors.New("destructive command refused")

	// ErrTimedOut indicates the process was terminated at its
	// wall-clock deadline.
	ErrTimedOut = errors.New("command timed out")
)

// defaultEnvAllowlist is the environment passed through when the
// caller configures nothing. No ambient credentials: explicitly listed
// variables only.
var defaultEnvAllowlist = []string{"PATH", "HOME", "LANG", "LC_ALL", "TMPDIR"}

// Options configures a Sandbox.
type Options struct {
	// AllowedCommands is the executable allowlist. "git" is always
	// permitted in addition to what is listed here.
	AllowedCommands []string

	// EnvAllowlist names the environment variables forwarded to child
	// processes. Empty means defaultEnvAllowlist.
	EnvAllowlist []string

	// DefaultTimeout bounds executions whose request carries none.
	DefaultTimeout time.Duration

	// MaxWorkers bounds concurrent executions across all sessions.
	MaxWorkers int
}

// Request describes one command execution.
type Request struct {
	Command          string
	Args             []string
	AllowDestructive bool
	Timeout          time.Duration
}

// Result carries the process outcome. A nonzero exit code is a normal
// result, not an error.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Sandbox runs commands for any number of sessions over one bounded
// worker pool, so a hung process cannot starve more than its one slot.
type Sandbox struct {
	allowed        map[string]bool
	envAllow       []string
	defaultTimeout time.Duration
	workers        chan struct{}
}

// New creates a Sandbox from opts.
func New(opts Options) *Sandbox {
	allowed := map[string]bool{"git": true}
	for _, c := range opts.AllowedCommands {
		allowed[c] = true
	}
	envAllow := opts.EnvAllowlist
	if len(envAllow) == 0 {
		envAllow = defaultEnvAllowlist
	}
	timeout := opts.DefaultTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = 4
	}
	return &Sandbox{
		allowed:        allowed,
		envAllow:       envAllow,
		defaultTimeout: timeout,
		workers:        make(chan struct{}, workers),
	}
}

// Execute runs req with root as the working directory. Destructive git
// invocations are refused before a process is spawned unless the
// request sets AllowDestructive.
func (s *Sandbox) Execute(ctx context.Context, root string, req Request) (*Result, error) {
	if req.Command == "" {
		return nil, fmt.Errorf("%w: empty command", ErrDisallowed)
	}
	if !s.allowed[req.Command] {
		return nil, fmt.Errorf("%w: %s", ErrDisallowed, req.Command)
	}

	if req.Command == "git" {
		sub, rest := splitGitArgs(req.Args)
		if gitsafe.Classify(sub, rest) == gitsafe.Destructive && !req.AllowDestructive {
			return nil, fmt.Errorf("%w: git %s", ErrDestructiveRefused, sub)
		}
	}

	// One worker slot per execution, bounded globally.
	select {
	case s.workers <- struct{}{}:
		defer func() { <-s.workers }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.defaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, req.Command, req.Args...)
	cmd.Dir = root
	cmd.Env = s.filteredEnv()
	// Reap stragglers that ignore SIGKILL delivery delays.
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%w after %s: %s", ErrTimedOut, timeout, req.Command)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Result{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}, nil
		}
		return nil, fmt.Errorf("run %s: %w", req.Command, err)
	}

	return &Result{ExitCode: 0, Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// splitGitArgs finds the git subcommand, skipping global flags like
// "-C <dir>" or "--no-pager" that precede it.
func splitGitArgs(args []string) (sub string, rest []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") {
			return a, args[i+1:]
		}
		// Global options taking a separate value.
		switch a {
		case "-C", "-c", "--exec-path", "--git-dir", "--work-tree", "--namespace":
			i++
		}
	}
	return "", nil
}

// filteredEnv builds the child environment from the allowlist only.
func (s *Sandbox) filteredEnv() []string {
	env := make([]string, 0, len(s.envAllow))
	for _, key := range s.envAllow {
		if v, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+v)
		}
	}
	return env
}
