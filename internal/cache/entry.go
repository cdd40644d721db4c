package cache

import "time"

// Entry is the per-blob metadata record, with an optional resident body.
// A nil Body means "on disk only". Entries are plain values; the Index owns
// all mutation under its RWMutex, so Entry itself has no internal locking.
type Entry struct {
	UploadName    string
	SizeBytes     int64
	AccessedAt    time.Time
	ExpiresAt     time.Time
	BurnAfterRead bool
	ReadCount     int64
	// Body holds the resident payload, or nil if the entry is disk-only.
	// Handing the slice to a caller and later clearing this field does not
	// invalidate the caller's copy: the backing array stays alive for as
	// long as the caller holds a reference to it, which is Go's GC-backed
	// equivalent of the reference-counted buffer spec.md calls for.
	Body []byte
}

// IsExpired reports whether the entry is expired per spec invariant 3:
// now >= ExpiresAt, or burn-after-read with at least one read recorded.
func (e Entry) IsExpired(now time.Time) bool {
	if !now.Before(e.ExpiresAt) {
		return true
	}
	return e.BurnAfterRead && e.ReadCount >= 1
}

// FlushIfIdle reports whether the resident body should be dropped because it
// has been idle for at least ttl, and if so returns its size so the caller
// can free that many bytes from the memory accountant. The caller is
// responsible for actually clearing e.Body in the Index.
func (e Entry) FlushIfIdle(ttl time.Duration, now time.Time) (size int64, shouldFlush bool) {
	if e.Body == nil {
		return 0, false
	}
	if now.Sub(e.AccessedAt) >= ttl {
		return int64(len(e.Body)), true
	}
	return 0, false
}

// Touch records a fresh access, attaching a (possibly newly-read) body.
func (e *Entry) Touch(now time.Time, body []byte) {
	e.AccessedAt = now
	e.Body = body
}

// EntryView is the subset of Entry fields exposed by the status surface
// (FetchEntries); it deliberately omits Body to avoid ever serializing
// resident bytes wholesale.
type EntryView struct {
	UploadName    string    `json:"upload_name"`
	SizeBytes     int64     `json:"size_bytes"`
	AccessedAt    time.Time `json:"accessed_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	BurnAfterRead bool      `json:"burn_after_read"`
	ReadCount     int64     `json:"read_count"`
	Resident      bool      `json:"resident"`
}

func (e Entry) view() EntryView {
	return EntryView{
		UploadName:    e.UploadName,
		SizeBytes:     e.SizeBytes,
		AccessedAt:    e.AccessedAt,
		ExpiresAt:     e.ExpiresAt,
		BurnAfterRead: e.BurnAfterRead,
		ReadCount:     e.ReadCount,
		Resident:      e.Body != nil,
	}
}

// UploadOptions carries the per-upload overrides accepted by UploadFile.
type UploadOptions struct {
	// ExpiresIn overrides Settings.OnDiskTTL when positive.
	ExpiresIn time.Duration
	// BurnAfterRead marks the entry to expire after its first successful read.
	BurnAfterRead bool
	// Filename is stored as the entry's UploadName exactly as given (the
	// HTTP layer passes the multipart part's file name). There is no
	// separate display name to fall back on when it is empty.
	Filename string
}
