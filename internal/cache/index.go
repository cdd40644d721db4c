package cache

import (
	"sync"
	"time"

	"github.com/korvatunturi/filecached/internal/domain"
)

// Index is the concurrent identifier -> Entry map and the sole authoritative
// view of live entries (the metadata store is derived durable state, kept in
// sync only by the maintenance loop). Multiple readers may observe
// concurrently; writers are serialized, mirroring the original
// Arc<RwLock<HashMap<String, CacheEntry>>>.
type Index struct {
	mu sync.RWMutex
	m  map[domain.ID]Entry
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{m: make(map[domain.ID]Entry)}
}

// Get returns a copy of the entry for id, if present.
func (ix *Index) Get(id domain.ID) (Entry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	e, ok := ix.m[id]
	return e, ok
}

// Insert adds or replaces the entry for id.
func (ix *Index) Insert(id domain.ID, e Entry) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.m[id] = e
}

// Remove deletes the entry for id, reporting whether it was present.
func (ix *Index) Remove(id domain.ID) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	_, ok := ix.m[id]
	delete(ix.m, id)
	return ok
}

// Mutate applies fn to the entry for id under the write lock and stores the
// (possibly modified) result back, returning whether the entry was present.
// This is the Go stand-in for the spec's get_mut: map values aren't
// addressable, so we round-trip a copy through fn.
func (ix *Index) Mutate(id domain.ID, fn func(e *Entry)) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	e, ok := ix.m[id]
	if !ok {
		return false
	}
	fn(&e)
	ix.m[id] = e
	return true
}

// Snapshot returns an EntryView of every entry currently in the index, for
// the status surface. The views carry no identifiers.
func (ix *Index) Snapshot() []EntryView {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]EntryView, 0, len(ix.m))
	for _, e := range ix.m {
		out = append(out, e.view())
	}
	return out
}

// ExpiredIDs returns the identifiers of every entry that IsExpired(now),
// without mutating the index (used by the file-cleanup tick, which collects
// under a read lock before removing under a write lock).
func (ix *Index) ExpiredIDs(now time.Time) []domain.ID {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []domain.ID
	for id, e := range ix.m {
		if e.IsExpired(now) {
			out = append(out, id)
		}
	}
	return out
}

// FlushIdle clears the resident body of every entry idle for at least ttl
// and returns the total bytes freed, for the accountant to reclaim. Runs
// under a single write lock so the memory-cleanup tick observes a
// consistent snapshot of access times.
func (ix *Index) FlushIdle(ttl time.Duration, now time.Time) int64 {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	var freed int64
	for id, e := range ix.m {
		size, shouldFlush := e.FlushIfIdle(ttl, now)
		if !shouldFlush {
			continue
		}
		e.Body = nil
		ix.m[id] = e
		freed += size
	}
	return freed
}

// Len reports the number of live entries, for metrics.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.m)
}
