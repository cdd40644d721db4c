package cache

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by FileCache operations. Callers use errors.Is
// against these; wrapped causes (IoError, MetadataError in spec terms) are
// available via errors.Unwrap.
var (
	ErrNotFound            = errors.New("not found")
	ErrBackingFileMissing  = errors.New("backing file missing")
	ErrNoSpaceLeftOnDevice = errors.New("no space left on device")
)

// wrapIO wraps a blob-store I/O failure with the operation name, keeping the
// underlying cause reachable through errors.Is/errors.As (so a store's
// ErrNoSpaceLeftOnDevice or ErrBackingFileMissing still matches).
func wrapIO(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("filecache: %s: %w", op, err)
}

// wrapMetadata wraps a metadata-store failure the same way.
func wrapMetadata(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("filecache: metadata %s: %w", op, err)
}
