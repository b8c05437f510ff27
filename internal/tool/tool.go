// Package tool is the dispatch boundary of the execution engine: each
// operation arrives as a name plus an argument map and returns either
// an ok payload or a stable, user-safe error message. It wires the
// session context, edit engine, and command sandbox together and owns
// the read-before-write and write-ordering protocol.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codeward-dev/codeward/internal/atomicfile"
	"github.com/codeward-dev/codeward/internal/config"
	"github.com/codeward-dev/codeward/internal/edit"
	"github.com/codeward-dev/codeward/internal/gitsafe"
	"github.com/codeward-dev/codeward/internal/pathsafe"
	"github.com/codeward-dev/codeward/internal/sandbox"
	"github.com/codeward-dev/codeward/internal/session"
)

// Request is one structured operation request.
type Request struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// Response is the boundary result: exactly one of OK or Error is set.
type Response struct {
	OK    string `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
}

// Executor runs operations for one session.
type Executor struct {
	cfg    *config.Config
	sess   *session.Session
	box    *sandbox.Sandbox
	engine *edit.Engine
}

// NewExecutor builds an Executor. The edit caps come from cfg.
func NewExecutor(cfg *config.Config, sess *session.Session, box *sandbox.Sandbox) *Executor {
	return &Executor{
		cfg:  cfg,
		sess: sess,
		box:  box,
		engine: &edit.Engine{Caps: edit.Caps{
			MaxBatchSize: cfg.MaxBatchSize,
			MaxStringLen: cfg.MaxStringLenKB * 1024,
		}},
	}
}

// Dispatch runs a request and folds the outcome into a Response with a
// user-safe message.
func (e *Executor) Dispatch(ctx context.Context, req Request) Response {
	out, err := e.Execute(ctx, req.Name, req.Args)
	if err != nil {
		return Response{Error: err.Error()}
	}
	return Response{OK: out}
}

// Execute runs a single operation by name.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "read":
		return e.executeRead(args)
	case "write":
		return e.executeWrite(args)
	case "edit":
		return e.executeEdit(args)
	case "multi_edit":
		return e.executeMultiEdit(args)
	case "apply_patch":
		return e.executeApplyPatch(args)
	case "git":
		return e.executeGit(ctx, args)
	case "classify":
		return e.executeClassify(args)
	}
	return "", fmt.Errorf("unknown operation: %s", name)
}

func (e *Executor) executeRead(args map[string]any) (string, error) {
	path := getStringArg(args, "file_path")
	if path == "" {
		return "", fmt.Errorf("file_path is required")
	}
	fullPath, err := pathsafe.Validate(path, e.sess.Root())
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if err := edit.CheckText(string(data)); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	e.sess.MarkRead(fullPath, data)
	return string(data), nil
}

func (e *Executor) executeWrite(args map[string]any) (string, error) {
	path := getStringArg(args, "file_path")
	contents := getStringArg(args, "contents")
	if path == "" {
		return "", fmt.Errorf("file_path is required")
	}
	fullPath, err := pathsafe.Validate(path, e.sess.Root())
	if err != nil {
		return "", err
	}

	err = e.sess.Mutate(func() error {
		// Overwriting an existing file requires having read it;
		// creating a new one does not.
		if _, statErr := os.Stat(fullPath); statErr == nil {
			if err := e.sess.CheckRead(fullPath); err != nil {
				return err
			}
		}
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return fmt.Errorf("create parent directory: %w", err)
		}
		if err := atomicfile.Write(fullPath, []byte(contents), 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		e.sess.MarkRead(fullPath, []byte(contents))
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(contents), path), nil
}

func (e *Executor) executeEdit(args map[string]any) (string, error) {
	path := getStringArg(args, "file_path")
	oldStr := getStringArg(args, "old_string")
	newStr := getStringArg(args, "new_string")
	if path == "" {
		return "", fmt.Errorf("file_path is required")
	}
	if oldStr == "" {
		return "", fmt.Errorf("old_string is required")
	}
	return e.applyEdits(path, []edit.Edit{{
		Old:        oldStr,
		New:        newStr,
		ReplaceAll: getBoolArg(args, "replace_all"),
	}})
}

func (e *Executor) executeMultiEdit(args map[string]any) (string, error) {
	path := getStringArg(args, "file_path")
	if path == "" {
		return "", fmt.Errorf("file_path is required")
	}
	rawEdits, ok := args["edits"].([]any)
	if !ok || len(rawEdits) == 0 {
		return "", fmt.Errorf("edits is required")
	}
	edits := make([]edit.Edit, 0, len(rawEdits))
	for i, raw := range rawEdits {
		m, ok := raw.(map[string]any)
		if !ok {
			return "", fmt.Errorf("edit %d: not an object", i+1)
		}
		ed := edit.Edit{
			Old:        getStringArg(m, "old_string"),
			New:        getStringArg(m, "new_string"),
			ReplaceAll: getBoolArg(m, "replace_all"),
		}
		if ed.Old == "" {
			return "", fmt.Errorf("edit %d: old_string is required", i+1)
		}
		edits = append(edits, ed)
	}
	return e.applyEdits(path, edits)
}

func (e *Executor) executeApplyPatch(args map[string]any) (string, error) {
	patch := getStringArg(args, "patch")
	if patch == "" {
		return "", fmt.Errorf("patch is required")
	}
	patches, err := edit.PatchEdits([]byte(patch))
	if err != nil {
		return "", err
	}
	var results string
	for _, fp := range patches {
		out, err := e.applyEdits(fp.Path, fp.Edits)
		if err != nil {
			return "", fmt.Errorf("%s: %w", fp.Path, err)
		}
		results += out
	}
	return results, nil
}

// applyEdits is the shared edit path: validate, check read record,
// apply in memory with all-or-nothing semantics, then write once.
// The on-disk file is untouched unless every edit in the batch
// validated.
func (e *Executor) applyEdits(path string, edits []edit.Edit) (string, error) {
	fullPath, err := pathsafe.Validate(path, e.sess.Root())
	if err != nil {
		return "", err
	}

	var preview string
	err = e.sess.Mutate(func() error {
		if err := e.sess.CheckRead(fullPath); err != nil {
			return err
		}

		data, err := os.ReadFile(fullPath)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", path)
			}
			return fmt.Errorf("read %s: %w", path, err)
		}
		before := string(data)

		after, err := e.engine.Apply(before, edits)
		if err != nil {
			return err
		}

		perm := os.FileMode(0644)
		if info, err := os.Stat(fullPath); err == nil {
			perm = info.Mode().Perm()
		}
		if err := atomicfile.Write(fullPath, []byte(after), perm); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		e.sess.MarkRead(fullPath, []byte(after))

		preview, err = edit.Preview(before, after, path)
		if err != nil {
			// The edit landed; a preview failure is not fatal.
			preview = ""
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return preview, nil
}

func (e *Executor) executeGit(ctx context.Context, args map[string]any) (string, error) {
	subcommand := getStringArg(args, "subcommand")
	if subcommand == "" {
		return "", fmt.Errorf("subcommand is required")
	}
	gitArgs := getStringSliceArg(args, "args")

	// Classification ignores argument values, so path-bearing flag
	// values get their own validation pass.
	for _, p := range gitsafe.PathArgs(subcommand, gitArgs) {
		if _, err := pathsafe.Validate(p, e.sess.Root()); err != nil {
			return "", err
		}
	}

	req := sandbox.Request{
		Command:          "git",
		Args:             append([]string{subcommand}, gitArgs...),
		AllowDestructive: getBoolArg(args, "allow_destructive"),
	}
	if ms := getIntArg(args, "timeout_ms"); ms > 0 {
		req.Timeout = time.Duration(ms) * time.Millisecond
	}

	var res *sandbox.Result
	err := e.sess.Mutate(func() error {
		var execErr error
		res, execErr = e.box.Execute(ctx, e.sess.Root(), req)
		return execErr
	})
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(map[string]any{
		"exit_code": res.ExitCode,
		"stdout":    res.Stdout,
		"stderr":    res.Stderr,
	})
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(out), nil
}

func (e *Executor) executeClassify(args map[string]any) (string, error) {
	subcommand := getStringArg(args, "subcommand")
	if subcommand == "" {
		return "", fmt.Errorf("subcommand is required")
	}
	safety := gitsafe.Classify(subcommand, getStringSliceArg(args, "args"))
	return safety.String(), nil
}
