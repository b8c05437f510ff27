package session

import (
	"fmt"
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// watcher invalidates read records when a tracked file changes on disk
// outside the session, so a stale record cannot satisfy the
// read-before-write check after external modification.
//
// Not restart-safe: once closed, enable watching again by creating a
// new session.
type watcher struct {
	fw       *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// EnableWatcher starts staleness watching for this session. Paths are
// added as they are read (MarkRead); a write or remove event drops the
// path's read record.
func (s *Session) EnableWatcher() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w := &watcher{
		fw:     fw,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.watcher = w
	go s.watchLoop(w)
	return nil
}

func (s *Session) watchLoop(w *watcher) {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				s.Invalidate(ev.Name)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("session %s: watch error: %v", s.id, err)
		case <-w.stopCh:
			return
		}
	}
}

// watchPath registers path with the watcher, if one is enabled.
// Errors are logged, not fatal: watching is best-effort hardening on
// top of the hash check in VerifyRead.
func (s *Session) watchPath(path string) {
	s.mu.Lock()
	w := s.watcher
	s.mu.Unlock()
	if w == nil {
		return
	}
	if err := w.fw.Add(path); err != nil {
		log.Printf("session %s: watch %s: %v", s.id, path, err)
	}
}

func (w *watcher) close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.fw.Close()
		<-w.done
	})
	return err
}
