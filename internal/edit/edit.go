// Package edit applies string-replacement edits to file content with
// all-or-nothing batch semantics. Matching is delegated to the shared
// textmatch strategy chain; this package owns caps, the no-op and
// binary-content gates, and the sequential in-memory batch protocol.
package edit

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/codeward-dev/codeward/internal/textmatch"
)

var (
	// ErrNoOp indicates old and new strings are identical.
	ErrNoOp = errors.New("old_string and new_string are identical")

	// ErrNotText indicates content is not decodable text; the matcher
	// only operates on text.
	ErrNotText = errors.New("content is not text")

	// ErrCapExceeded indicates a batch or string size cap was exceeded.
	ErrCapExceeded = errors.New("edit exceeds configured limit")
)

// Edit is a single replacement request.
type Edit struct {
	Old        string
	New        string
	ReplaceAll bool
}

// Caps bounds resource use per call. Checked before any matching runs.
type Caps struct {
	MaxBatchSize int
	MaxStringLen int
}

// DefaultCaps are used by NewEngine.
var DefaultCaps = Caps{
	MaxBatchSize: 64,
	MaxStringLen: 256 * 1024,
}

// Engine applies edits against in-memory content.
type Engine struct {
	Caps Caps
}

func NewEngine() *Engine {
	return &Engine{Caps: DefaultCaps}
}

// BatchError reports which edit in a batch failed. Index is 1-based,
// matching how agents refer to their own edit lists.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("edit %d: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Apply runs the edits sequentially against an evolving in-memory
// buffer and returns the final content. Each edit's search runs
// against the buffer produced by the prior edits, never against stale
// pre-batch offsets. On any failure the original content is abandoned
// unchanged and the error names the failing edit.
func (e *Engine) Apply(content string, edits []Edit) (string, error) {
	if err := e.checkCaps(edits); err != nil {
		return "", err
	}
	if err := CheckText(content); err != nil {
		return "", err
	}

	buf := content
	for i, ed := range edits {
		next, err := applyOne(buf, ed)
		if err != nil {
			return "", &BatchError{Index: i + 1, Err: err}
		}
		buf = next
	}
	return buf, nil
}

func (e *Engine) checkCaps(edits []Edit) error {
	if len(edits) == 0 {
		return fmt.Errorf("%w: empty batch", ErrCapExceeded)
	}
	if e.Caps.MaxBatchSize > 0 && len(edits) > e.Caps.MaxBatchSize {
		return fmt.Errorf("%w: batch of %d edits (max %d)", ErrCapExceeded, len(edits), e.Caps.MaxBatchSize)
	}
	if e.Caps.MaxStringLen > 0 {
		for i, ed := range edits {
			if len(ed.Old) > e.Caps.MaxStringLen || len(ed.New) > e.Caps.MaxStringLen {
				return fmt.Errorf("%w: edit %d string exceeds %d bytes", ErrCapExceeded, i+1, e.Caps.MaxStringLen)
			}
		}
	}
	return nil
}

func applyOne(content string, ed Edit) (string, error) {
	if ed.Old == ed.New {
		return "", ErrNoOp
	}
	matches, err := textmatch.Find(content, ed.Old, ed.ReplaceAll)
	if err != nil {
		return "", err
	}
	return splice(content, matches, ed.New), nil
}

// splice replaces each matched span with replacement. Matches are in
// content order, so building forward keeps offsets valid.
func splice(content string, matches []textmatch.Match, replacement string) string {
	var b strings.Builder
	prev := 0
	for _, m := range matches {
		b.WriteString(content[prev:m.ByteStart])
		b.WriteString(replacement)
		prev = m.ByteEnd
	}
	b.WriteString(content[prev:])
	return b.String()
}

// CheckText rejects content the matcher cannot operate on: invalid
// UTF-8, or a NUL byte in the first 8KB (the usual binary heuristic).
func CheckText(content string) error {
	if !utf8.ValidString(content) {
		return fmt.Errorf("%w: invalid UTF-8", ErrNotText)
	}
	checkLen := len(content)
	if checkLen > 8192 {
		checkLen = 8192
	}
	for i := 0; i < checkLen; i++ {
		if content[i] == 0 {
			return fmt.Errorf("%w: binary content", ErrNotText)
		}
	}
	return nil
}
