package cache

import (
	"context"
	"fmt"

	"github.com/korvatunturi/filecached/internal/domain"
)

// UploadFile stores data durably on disk, optionally keeping a resident
// in-memory copy if the accountant has room, and registers the new entry
// in the Index before handing off persistence to the maintenance loop via
// a Save signal. Grounded on the original Rust write path (cache/io/write.rs).
//
// The write path does not pre-reserve against the accountant before
// writing the blob: a resident copy is only attempted after the durable
// write succeeds, and losing the reservation race simply means the entry
// starts disk-only, which the next flush-tick or reload will account for.
// This keeps the common case (happy path, budget available) a single
// Reserve call instead of a reserve/rollback pair.
func (fc *FileCache) UploadFile(ctx context.Context, data []byte, opts UploadOptions) (domain.ID, error) {
	id, err := domain.NewID()
	if err != nil {
		return "", fmt.Errorf("filecache: generate id: %w", err)
	}

	if err := fc.blobs.Write(id, data); err != nil {
		return "", wrapIO("write blob", err)
	}

	now := fc.now()
	ttl := opts.ExpiresIn
	if ttl <= 0 {
		ttl = fc.settings.OnDiskTTL
	}

	entry := Entry{
		UploadName:    opts.Filename,
		SizeBytes:     int64(len(data)),
		AccessedAt:    now,
		ExpiresAt:     now.Add(ttl),
		BurnAfterRead: opts.BurnAfterRead,
	}

	if fc.accountant.Reserve(entry.SizeBytes) {
		entry.Body = data
	}

	fc.index.Insert(id, entry)
	fc.bus.Emit(Signal{ID: id, Action: ActionSave})
	fc.metrics.IncUploads()
	fc.metrics.SetResident(fc.index.Len(), fc.accountant.UsedBytes())

	return id, nil
}

// persistNewEntry writes the durable metadata row for a freshly inserted
// entry; called exclusively by the maintenance loop in response to an
// ActionSave signal.
func (fc *FileCache) persistNewEntry(ctx context.Context, id domain.ID) error {
	entry, ok := fc.index.Get(id)
	if !ok {
		return nil
	}
	row := MetadataRow{
		ID:            id,
		UploadName:    entry.UploadName,
		ExpiresAtUTC:  entry.ExpiresAt,
		BurnAfterRead: entry.BurnAfterRead,
		ReadCount:     entry.ReadCount,
		SizeBytes:     entry.SizeBytes,
	}
	if err := fc.metadata.Put(ctx, row); err != nil {
		return fmt.Errorf("persist entry %s: %w", id, err)
	}
	return nil
}
