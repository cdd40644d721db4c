// Package main provides the filecached binary entry point: an HTTP file
// cache with a two-tier memory/disk storage core. It loads configuration
// from the environment, reconciles durable state, and serves the upload,
// download, and status API until terminated.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/korvatunturi/filecached/internal/cache"
	"github.com/korvatunturi/filecached/internal/config"
	"github.com/korvatunturi/filecached/internal/httpx"
	"github.com/korvatunturi/filecached/internal/metrics"
	"github.com/korvatunturi/filecached/internal/store/filesystem"
	"github.com/korvatunturi/filecached/internal/store/sqlite"
)

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "err", err)
		os.Exit(2)
	}
	return cfg
}

func ensureDataDirs(cfg *config.Config) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		slog.Error("create data directory", "dir", cfg.DataDir, "err", err)
		os.Exit(3)
	}
	if err := os.MkdirAll(cfg.BlobDir(), 0o700); err != nil {
		slog.Error("create blob directory", "dir", cfg.BlobDir(), "err", err)
		os.Exit(3)
	}
}

func openMetadataStore(cfg *config.Config) (*sql.DB, *sqlite.Store) {
	db, err := sql.Open("sqlite3", cfg.SQLiteDSN())
	if err != nil {
		slog.Error("open sqlite driver", "err", err)
		os.Exit(4)
	}
	store, err := sqlite.New(db)
	if err != nil {
		slog.Error("init sqlite schema", "err", err)
		os.Exit(4)
	}
	return db, store
}

func openBlobStore(cfg *config.Config) *filesystem.Store {
	blobs, err := filesystem.New(cfg.BlobDir())
	if err != nil {
		slog.Error("init blob storage", "err", err)
		os.Exit(5)
	}
	return blobs
}

func cacheSettings(cfg *config.Config) cache.Settings {
	return cache.Settings{
		InMemoryTTL:          cfg.InMemoryTTL,
		CacheCleanupInterval: cfg.CacheCleanupInterval,
		OnDiskTTL:            cfg.OnDiskTTL,
		FileCleanupInterval:  cfg.FileCleanupInterval,
		MaximumSize:          int64(cfg.MaximumSize),
		SignalBufferSize:     cfg.SignalBufferSize,
	}
}

func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

func run() error {
	cfg := loadConfig()
	ensureDataDirs(cfg)

	db, metaStore := openMetadataStore(cfg)
	defer db.Close()

	blobs := openBlobStore(cfg)

	reg := metrics.New()
	reg.SetCapacity(int64(cfg.MaximumSize))

	ctx := context.Background()
	fc, err := cache.New(ctx, cacheSettings(cfg), metaStore, blobs, cache.WithMetrics(reg))
	if err != nil {
		return err
	}
	defer fc.Close(context.Background())

	readiness := func(ctx context.Context) error {
		return db.PingContext(ctx)
	}

	h := httpx.New(fc, int64(cfg.MaximumSize), readiness)
	h.IPAllowlist = cfg.IPAllowlist

	srv := newServer(cfg, h.Router())

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: reg.Handler(), ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second, IdleTimeout: 30 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server error", "err", err)
			}
		}()
		slog.Info("metrics server started", "addr", cfg.MetricsAddr)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-sigCtx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
	}()

	slog.Info("starting server", "addr", cfg.Addr, "pid", os.Getpid())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
