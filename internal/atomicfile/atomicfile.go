// Package atomicfile commits file contents via a same-directory temp
// file and rename, so readers never observe a partial write and an
// interrupted write leaves the original file untouched.
package atomicfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrIntegrity indicates the post-rename size check failed: the
// destination does not contain exactly the bytes that were written.
var ErrIntegrity = errors.New("written file failed integrity check")

// Write atomically replaces path with data. The temp file is created
// in the same directory as path (same filesystem, so the rename is
// atomic) with a crypto-random suffix, gets its final permissions set
// before the rename, and is removed on any failure before the rename.
// After the rename the destination is re-stat'd and its size compared
// to len(data).
func Write(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp := filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	// Any exit before the rename must remove the temp file. After a
	// successful rename it no longer exists and removal is skipped.
	renamed := false
	defer func() {
		if !renamed {
			os.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	// Final permissions go on before the rename so the destination
	// never exists with broader permissions than requested.
	if err := f.Chmod(perm); err != nil {
		f.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	renamed = true

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: stat after rename: %v", ErrIntegrity, err)
	}
	if info.Size() != int64(len(data)) {
		return fmt.Errorf("%w: size %d, wrote %d bytes", ErrIntegrity, info.Size(), len(data))
	}

	// Persist the rename itself. Best effort: some filesystems do not
	// support fsync on directories.
	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}

	return nil
}
