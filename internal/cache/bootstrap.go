package cache

import (
	"context"
	"fmt"

	"github.com/korvatunturi/filecached/internal/domain"
)

// bootstrap loads the metadata store into the Index, re-anchors wall-clock
// expiry onto the current clock basis, and deletes any blob on disk that
// has no corresponding Index entry. Grounded on the original Rust
// FileCache::new reconciliation pass (cache/core.rs) and the teacher's
// store.Reconcile step in internal/app/service.go.
func (fc *FileCache) bootstrap(ctx context.Context) error {
	rows, err := fc.metadata.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load metadata: %w", err)
	}

	now := fc.now()
	live := make(map[domain.ID]struct{}, len(rows))

	for _, row := range rows {
		// A row whose wall-clock expiry has already passed during downtime
		// is kept for one more sweep cycle rather than dropped here: the
		// maintenance loop's file-cleanup tick will retire it on its next
		// pass, using the same IsExpired path live entries go through.
		expiresAt := row.ExpiresAtUTC
		if !expiresAt.After(now) {
			expiresAt = now
		}

		fc.index.Insert(row.ID, Entry{
			UploadName:    row.UploadName,
			SizeBytes:     row.SizeBytes,
			AccessedAt:    now,
			ExpiresAt:     expiresAt,
			BurnAfterRead: row.BurnAfterRead,
			ReadCount:     row.ReadCount,
			Body:          nil,
		})
		live[row.ID] = struct{}{}
	}

	blobIDs, err := fc.blobs.List()
	if err != nil {
		return fmt.Errorf("list blobs: %w", err)
	}

	for _, id := range blobIDs {
		if _, ok := live[id]; ok {
			continue
		}
		if err := fc.blobs.Delete(id); err != nil {
			fc.logger.Warn("bootstrap: failed to remove orphan blob", "id", id.String(), "error", err)
		} else {
			fc.logger.Info("bootstrap: removed orphan blob", "id", id.String())
		}
	}

	fc.logger.Info("bootstrap: reconciled cache", "entries", len(rows), "orphans_checked", len(blobIDs))
	return nil
}
