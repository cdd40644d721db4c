// Package cache implements the FileCache subsystem: a two-tier (memory +
// disk) cache of uploaded blobs backed by a durable metadata store. It owns
// the in-memory index, the memory budget accountant, the signal bus, and the
// background maintenance loop that is the sole writer of durable state.
package cache

import "time"

// Settings holds the tunables for a FileCache instance. New replaces every
// zero or negative field with its DefaultSettings value, so a zero-value or
// partial Settings is valid.
type Settings struct {
	// InMemoryTTL is how long a resident body may sit idle before the
	// memory-cleanup tick flushes it back to disk-only.
	InMemoryTTL time.Duration
	// CacheCleanupInterval is the period of the memory-cleanup tick.
	CacheCleanupInterval time.Duration
	// OnDiskTTL is the default expiry applied to uploads that don't
	// specify an explicit expires_in.
	OnDiskTTL time.Duration
	// FileCleanupInterval is the period of the file-cleanup tick.
	FileCleanupInterval time.Duration
	// MaximumSize is the memory accountant's capacity in bytes: the
	// upper bound on the sum of SizeBytes across resident-body entries.
	MaximumSize int64
	// SignalBufferSize is the capacity of the signal bus. Defaults to
	// 1000 when zero.
	SignalBufferSize int
}

// DefaultSettings returns the default configuration per spec: 30s in-memory
// TTL, 5s memory-cleanup cadence, 60s on-disk TTL, 10s file-cleanup cadence,
// and a 200MB memory budget.
func DefaultSettings() Settings {
	return Settings{
		InMemoryTTL:          30 * time.Second,
		CacheCleanupInterval: 5 * time.Second,
		OnDiskTTL:            60 * time.Second,
		FileCleanupInterval:  10 * time.Second,
		MaximumSize:          200_000_000,
		SignalBufferSize:     1000,
	}
}

// normalized returns s with zero-valued durations/sizes replaced by defaults,
// so callers constructing a partial Settings literal still get a working
// cache.
func (s Settings) normalized() Settings {
	d := DefaultSettings()
	if s.InMemoryTTL > 0 {
		d.InMemoryTTL = s.InMemoryTTL
	}
	if s.CacheCleanupInterval > 0 {
		d.CacheCleanupInterval = s.CacheCleanupInterval
	}
	if s.OnDiskTTL > 0 {
		d.OnDiskTTL = s.OnDiskTTL
	}
	if s.FileCleanupInterval > 0 {
		d.FileCleanupInterval = s.FileCleanupInterval
	}
	if s.MaximumSize > 0 {
		d.MaximumSize = s.MaximumSize
	}
	if s.SignalBufferSize > 0 {
		d.SignalBufferSize = s.SignalBufferSize
	}
	return d
}
