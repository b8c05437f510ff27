// Package session holds the per-session execution context: the
// immutable project root and the read-record table backing the
// read-before-write policy. State is an explicit object threaded
// through every call, never package-level, so two sessions cannot
// observe each other's records by construction.
package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrReadBeforeWrite indicates an edit was requested against a path
// whose current content this session has not observed.
var ErrReadBeforeWrite = errors.New("file must be read before editing")

// Policy controls how a missing read record is handled.
type Policy int

const (
	// Enforce rejects edits against unread paths.
	Enforce Policy = iota
	// Warn logs and proceeds. Legacy behavior for callers that cannot
	// thread read state yet; opt-in via configuration, never a silent
	// default.
	Warn
)

// readRecord is the evidence that a path's content was observed.
type readRecord struct {
	hash    [sha256.Size]byte
	modTime time.Time
}

// Session is one agent session's execution context. The zero value is
// not usable; construct with New.
type Session struct {
	id   string
	root string

	policy Policy

	// opMu serializes mutating operations within the session; mu
	// guards the read-record table and is safe to take while opMu is
	// held. Sessions never share state, so there is no cross-session
	// contention; concurrent writes to the same path from different
	// sessions are a documented hazard, not serialized here.
	opMu    sync.Mutex
	mu      sync.Mutex
	records map[string]readRecord

	watcher *watcher
}

// Option configures a Session at construction.
type Option func(*Session)

// WithPolicy sets the read-before-write policy.
func WithPolicy(p Policy) Option {
	return func(s *Session) { s.policy = p }
}

// New creates a session rooted at root. The root is canonicalized
// exactly once, here; it never changes for the session's lifetime.
func New(root string, opts ...Option) (*Session, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	info, err := os.Stat(canon)
	if err != nil {
		return nil, fmt.Errorf("stat project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root is not a directory")
	}

	s := &Session{
		id:      uuid.NewString(),
		root:    canon,
		records: make(map[string]readRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Root returns the canonical project root.
func (s *Session) Root() string { return s.root }

// MarkRead records that content was observed for path. Call after
// every successful read handed to the agent.
func (s *Session) MarkRead(path string, content []byte) {
	rec := readRecord{hash: sha256.Sum256(content)}
	if info, err := os.Stat(path); err == nil {
		rec.modTime = info.ModTime()
	}
	s.mu.Lock()
	s.records[path] = rec
	s.mu.Unlock()
	s.watchPath(path)
}

// WasRead reports whether this session has a read record for path.
func (s *Session) WasRead(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[path]
	return ok
}

// VerifyRead reports whether the recorded content hash for path still
// matches content. False means the file changed since it was read (or
// was never read).
func (s *Session) VerifyRead(path string, content []byte) bool {
	s.mu.Lock()
	rec, ok := s.records[path]
	s.mu.Unlock()
	return ok && rec.hash == sha256.Sum256(content)
}

// Invalidate drops the read record for path, forcing a fresh read
// before the next edit.
func (s *Session) Invalidate(path string) {
	s.mu.Lock()
	delete(s.records, path)
	s.mu.Unlock()
}

// CheckRead applies the read-before-write policy for path. Under
// Enforce a missing record is an error; under Warn it is logged and
// allowed through.
func (s *Session) CheckRead(path string) error {
	if s.WasRead(path) {
		return nil
	}
	if s.policy == Warn {
		log.Printf("session %s: editing %s without a prior read", s.id, filepath.Base(path))
		return nil
	}
	return fmt.Errorf("%w: %s", ErrReadBeforeWrite, filepath.Base(path))
}

// Mutate runs fn while holding the session's mutation lock. Edits and
// command executions go through here so one in-flight mutating
// operation exists per session at a time.
func (s *Session) Mutate(fn func() error) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return fn()
}

// Close releases session resources (the staleness watcher, if enabled).
func (s *Session) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w != nil {
		return w.close()
	}
	return nil
}
