package cache

import (
	"context"
	"io"
	"time"

	"github.com/korvatunturi/filecached/internal/domain"
)

// MetadataRow is the durable representation of an Entry's metadata, keyed by
// identifier. ExpiresAtUTC is always a wall-clock timestamp; the monotonic
// ExpiresAt on Entry is re-derived from it at bootstrap (see bootstrap.go).
type MetadataRow struct {
	ID            domain.ID
	UploadName    string
	ExpiresAtUTC  time.Time
	BurnAfterRead bool
	ReadCount     int64
	SizeBytes     int64
}

// MetadataStore is the durable table of entry metadata (C3). It is touched
// only by the maintenance loop, so implementations need no internal
// concurrency control.
type MetadataStore interface {
	// LoadAll returns every row in the store, called once at bootstrap.
	LoadAll(ctx context.Context) ([]MetadataRow, error)
	// Put inserts or replaces the row for id. Idempotent on the same
	// (id, row).
	Put(ctx context.Context, row MetadataRow) error
	// Delete removes the row for id; an absent row is not an error.
	Delete(ctx context.Context, id domain.ID) error
}

// BlobStore is the flat directory of blob files (C4), named by identifier.
type BlobStore interface {
	// Write stores the full payload for id.
	Write(id domain.ID, data []byte) error
	// ReadAll slurps the blob for id into memory.
	ReadAll(id domain.ID) ([]byte, error)
	// OpenReader opens a streaming reader handle for id.
	OpenReader(id domain.ID) (io.ReadCloser, error)
	// Delete removes the blob for id; a missing file is non-fatal.
	Delete(id domain.ID) error
	// List returns every blob identifier currently present, used only at
	// bootstrap for orphan reconciliation.
	List() ([]domain.ID, error)
}
