// Package cache implements the two-tier file cache: a resident in-memory
// body layer backed by a durable on-disk blob store, with a single
// background maintenance loop that is the sole writer of durable state.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// FileCache is the two-tier cache core: the in-memory Index plus the
// durable MetadataStore and BlobStore, coordinated by a SignalBus and a
// single maintenance goroutine. Grounded on the original Rust FileCache
// struct (cache/core.rs), rendered with Go's ports-and-adapters idiom
// (internal/app/service.go in the teacher).
type FileCache struct {
	settings Settings
	clock    Clock

	index      *Index
	accountant *Accountant
	bus        *SignalBus

	metadata MetadataStore
	blobs    BlobStore
	metrics  Metrics

	logger *slog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

// Metrics is the set of observability hooks the cache core updates
// directly on its hot paths. Declared here, rather than importing
// prometheus, so the cache package stays free of a metrics-library
// dependency; internal/metrics.Registry implements it.
type Metrics interface {
	IncUploads()
	IncDownloads()
	IncNotFound()
	IncEviction(reason string)
	SetResident(entries int, bytes int64)
}

// noopMetrics is the default Metrics used when no WithMetrics option is given.
type noopMetrics struct{}

func (noopMetrics) IncUploads()                       {}
func (noopMetrics) IncDownloads()                      {}
func (noopMetrics) IncNotFound()                       {}
func (noopMetrics) IncEviction(reason string)          {}
func (noopMetrics) SetResident(entries int, bytes int64) {}

// Option configures optional FileCache dependencies.
type Option func(*FileCache)

// WithClock overrides the cache's time source, for deterministic tests.
func WithClock(c Clock) Option {
	return func(fc *FileCache) { fc.clock = c }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(fc *FileCache) { fc.logger = l }
}

// WithMetrics attaches a Metrics sink; uploads, downloads, evictions, and
// gauges are reported to it as they occur.
func WithMetrics(m Metrics) Option {
	return func(fc *FileCache) { fc.metrics = m }
}

// New constructs a FileCache, reconciles it against durable state, and
// starts its background maintenance loop. Callers must call Close to stop
// the loop cleanly.
func New(ctx context.Context, settings Settings, metadata MetadataStore, blobs BlobStore, opts ...Option) (*FileCache, error) {
	settings = settings.normalized()

	fc := &FileCache{
		settings:   settings,
		clock:      realClock{},
		index:      NewIndex(),
		accountant: NewAccountant(settings.MaximumSize),
		bus:        NewSignalBus(settings.SignalBufferSize),
		metadata:   metadata,
		blobs:      blobs,
		metrics:    noopMetrics{},
		logger:     slog.Default(),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(fc)
	}

	if err := fc.bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("filecache: bootstrap: %w", err)
	}

	go fc.maintain()

	return fc, nil
}

// Close signals the maintenance loop to stop and waits for it to drain.
func (fc *FileCache) Close(ctx context.Context) error {
	fc.once.Do(func() { close(fc.stopCh) })
	select {
	case <-fc.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len reports the number of live entries, for metrics and health checks.
func (fc *FileCache) Len() int { return fc.index.Len() }

// UsedBytes reports the current resident-body byte total.
func (fc *FileCache) UsedBytes() int64 { return fc.accountant.UsedBytes() }

// now is a small helper so call sites read naturally.
func (fc *FileCache) now() time.Time { return fc.clock.Now() }
