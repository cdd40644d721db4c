package cache

import (
	"context"
	"time"

	"github.com/korvatunturi/filecached/internal/domain"
)

// maintain is the single background goroutine that owns every durable
// write: it drains the SignalBus, runs the file-cleanup tick (expired
// entries: blob + metadata + index removal), and runs the memory-cleanup
// tick (idle resident bodies: accountant Free + Index clear). Pending
// signals take priority over both ticks; the two ticks have no fixed order
// relative to each other. Adapted from the teacher's janitor.go ticker-loop shape
// and the original Rust core.rs biased select loop.
func (fc *FileCache) maintain() {
	defer close(fc.doneCh)

	fileTicker := time.NewTicker(fc.settings.FileCleanupInterval)
	defer fileTicker.Stop()

	memTicker := time.NewTicker(fc.settings.CacheCleanupInterval)
	defer memTicker.Stop()

	ctx := context.Background()

	for {
		// Signals are drained preferentially: a pending Save/Delete/Accessed
		// represents a caller waiting on durable state to catch up, and
		// takes priority over the periodic sweeps.
		select {
		case sig := <-fc.bus.Events():
			fc.handleSignal(ctx, sig)
			continue
		default:
		}

		select {
		case sig := <-fc.bus.Events():
			fc.handleSignal(ctx, sig)

		case <-fileTicker.C:
			fc.sweepExpired(ctx)

		case <-memTicker.C:
			fc.sweepIdleMemory()

		case <-fc.stopCh:
			fc.drainSignals(ctx)
			return
		}
	}
}

// drainSignals processes any signals still queued at shutdown so a Delete
// emitted just before Close is never lost.
func (fc *FileCache) drainSignals(ctx context.Context) {
	for {
		select {
		case sig := <-fc.bus.Events():
			fc.handleSignal(ctx, sig)
		default:
			return
		}
	}
}

func (fc *FileCache) handleSignal(ctx context.Context, sig Signal) {
	switch sig.Action {
	case ActionSave:
		if err := fc.persistNewEntry(ctx, sig.ID); err != nil {
			fc.logger.Error("maintenance: persist failed", "id", sig.ID.String(), "error", err)
		}

	case ActionAccessed:
		entry, ok := fc.index.Get(sig.ID)
		if !ok {
			return
		}
		if err := fc.metadata.Put(ctx, MetadataRow{
			ID:            sig.ID,
			UploadName:    entry.UploadName,
			ExpiresAtUTC:  entry.ExpiresAt,
			BurnAfterRead: entry.BurnAfterRead,
			ReadCount:     entry.ReadCount,
			SizeBytes:     entry.SizeBytes,
		}); err != nil {
			fc.logger.Error("maintenance: read-count persist failed", "id", sig.ID.String(), "error", err)
		}
		if entry.BurnAfterRead && entry.ReadCount >= 1 {
			fc.retire(ctx, sig.ID, "burn_after_read")
		}

	case ActionDelete:
		fc.retire(ctx, sig.ID, "deleted")
	}
}

// sweepExpired retires every entry whose IsExpired(now) is true.
func (fc *FileCache) sweepExpired(ctx context.Context) {
	now := fc.now()
	for _, id := range fc.index.ExpiredIDs(now) {
		fc.retire(ctx, id, "expired")
	}
}

// retire tears an entry down completely: blob, metadata row, index entry,
// and any reserved accountant bytes.
func (fc *FileCache) retire(ctx context.Context, id domain.ID, reason string) {
	entry, ok := fc.index.Get(id)
	if !ok {
		return
	}
	if entry.Body != nil {
		fc.accountant.Free(int64(len(entry.Body)))
	}
	if err := fc.blobs.Delete(id); err != nil {
		fc.logger.Warn("maintenance: blob delete failed", "id", id.String(), "error", err)
	}
	if err := fc.metadata.Delete(ctx, id); err != nil {
		fc.logger.Warn("maintenance: metadata delete failed", "id", id.String(), "error", err)
	}
	fc.index.Remove(id)
	fc.metrics.IncEviction(reason)
	fc.metrics.SetResident(fc.index.Len(), fc.accountant.UsedBytes())
}

// sweepIdleMemory drops resident bodies that have been idle for at least
// InMemoryTTL, freeing their bytes back to the accountant. The durable
// blob and metadata row are untouched: the entry becomes disk-only, not
// gone.
func (fc *FileCache) sweepIdleMemory() {
	freed := fc.index.FlushIdle(fc.settings.InMemoryTTL, fc.now())
	if freed > 0 {
		fc.accountant.Free(freed)
		fc.metrics.SetResident(fc.index.Len(), fc.accountant.UsedBytes())
	}
}
