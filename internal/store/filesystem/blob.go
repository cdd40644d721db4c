// Package filesystem implements a cache.BlobStore backed by a flat
// directory on the local filesystem. Grounded on the teacher's
// internal/store/filesystem package.
package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/korvatunturi/filecached/internal/cache"
	"github.com/korvatunturi/filecached/internal/domain"
)

// Ensure Store implements cache.BlobStore.
var _ cache.BlobStore = (*Store)(nil)

// Store implements cache.BlobStore using the local filesystem. Files are
// named by identifier with no extension, directly under root.
type Store struct {
	root string
}

// New returns a filesystem-backed blob store rooted at dir, which must
// already exist.
func New(root string) (*Store, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("filesystem: stat root: %w", err)
	}
	if !fi.IsDir() {
		return nil, errors.New("filesystem: blob root is not a directory")
	}
	return &Store{root: root}, nil
}

func (s *Store) path(id domain.ID) string {
	return filepath.Join(s.root, id.String())
}

// Write stores data for id, replacing any existing blob. A temp file plus
// rename keeps a concurrent reader from ever observing a partial write.
func (s *Store) Write(id domain.ID, data []byte) error {
	p := s.path(id)
	tmp := p + ".tmp"

	// #nosec G304 -- path is root + validated 32-char hex ID, no traversal possible.
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("filesystem: create temp blob: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		if errors.Is(err, syscall.ENOSPC) {
			return cache.ErrNoSpaceLeftOnDevice
		}
		return fmt.Errorf("filesystem: write blob: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("filesystem: sync blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("filesystem: close blob: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("filesystem: rename blob: %w", err)
	}
	return nil
}

// ReadAll slurps the blob for id into memory.
func (s *Store) ReadAll(id domain.ID) ([]byte, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, cache.ErrBackingFileMissing
		}
		return nil, fmt.Errorf("filesystem: read blob: %w", err)
	}
	return data, nil
}

// OpenReader opens a streaming reader handle for id.
func (s *Store) OpenReader(id domain.ID) (io.ReadCloser, error) {
	f, err := os.Open(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, cache.ErrBackingFileMissing
		}
		return nil, fmt.Errorf("filesystem: open blob: %w", err)
	}
	return f, nil
}

// Delete removes the blob for id. A missing file is not an error.
func (s *Store) Delete(id domain.ID) error {
	err := os.Remove(s.path(id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("filesystem: delete blob: %w", err)
	}
	return nil
}

// List returns every blob identifier currently present, skipping
// incomplete .tmp files and anything younger than one second (the same
// freshness guard the teacher's filesystem store uses to avoid racing an
// in-flight Write during bootstrap reconciliation).
func (s *Store) List() ([]domain.ID, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("filesystem: list blobs: %w", err)
	}
	var ids []domain.ID
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) == ".tmp" {
			continue
		}
		id, err := domain.ParseID(name)
		if err != nil {
			continue
		}
		if info, err := e.Info(); err == nil && time.Since(info.ModTime()) < time.Second {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
