// Package sqlite implements a SQLite-based MetadataStore for the file
// cache, using mattn/go-sqlite3 for the database/sql driver. Grounded on
// the teacher's internal/store/sqlite package.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Import SQLite3 driver for database/sql.
	_ "github.com/mattn/go-sqlite3"

	"github.com/korvatunturi/filecached/internal/cache"
	"github.com/korvatunturi/filecached/internal/domain"
)

// Ensure Store implements cache.MetadataStore.
var _ cache.MetadataStore = (*Store)(nil)

// Store implements cache.MetadataStore using SQLite. A single table holds
// one row per live cache entry; the maintenance loop is the only writer.
type Store struct {
	db *sql.DB
}

// New returns a SQLite-backed metadata store. The caller provides an
// already-opened *sql.DB (busy timeout / WAL pragmas are its concern);
// schema creation happens here if necessary.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	const schema = `CREATE TABLE IF NOT EXISTS cache (
uuid TEXT PRIMARY KEY,
filename TEXT NOT NULL,
expiration_utc TEXT NOT NULL,
burn_after_read INTEGER NOT NULL DEFAULT 0,
read_count INTEGER NOT NULL DEFAULT 0,
file_size INTEGER NOT NULL DEFAULT 0
);`
	_, err := s.db.Exec(schema)
	return err
}

// LoadAll implements cache.MetadataStore.
func (s *Store) LoadAll(ctx context.Context) ([]cache.MetadataRow, error) {
	const q = `SELECT uuid, filename, expiration_utc, burn_after_read, read_count, file_size FROM cache`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load all: %w", err)
	}
	defer rows.Close()

	var out []cache.MetadataRow
	for rows.Next() {
		var (
			idStr      string
			filename   string
			expiresRaw string
			burnInt    int
			readCount  int64
			size       int64
		)
		if err := rows.Scan(&idStr, &filename, &expiresRaw, &burnInt, &readCount, &size); err != nil {
			return nil, fmt.Errorf("sqlite: scan row: %w", err)
		}
		id, err := domain.ParseID(idStr)
		if err != nil {
			return nil, fmt.Errorf("sqlite: invalid id %q in store: %w", idStr, err)
		}
		expiresAt, err := time.Parse(time.RFC3339Nano, expiresRaw)
		if err != nil {
			return nil, fmt.Errorf("sqlite: invalid expiration_utc %q: %w", expiresRaw, err)
		}
		out = append(out, cache.MetadataRow{
			ID:            id,
			UploadName:    filename,
			ExpiresAtUTC:  expiresAt.UTC(),
			BurnAfterRead: burnInt != 0,
			ReadCount:     readCount,
			SizeBytes:     size,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate rows: %w", err)
	}
	return out, nil
}

// Put implements cache.MetadataStore as an upsert keyed on uuid.
func (s *Store) Put(ctx context.Context, row cache.MetadataRow) error {
	const q = `INSERT INTO cache (uuid, filename, expiration_utc, burn_after_read, read_count, file_size)
VALUES (?,?,?,?,?,?)
ON CONFLICT(uuid) DO UPDATE SET
filename=excluded.filename,
expiration_utc=excluded.expiration_utc,
burn_after_read=excluded.burn_after_read,
read_count=excluded.read_count,
file_size=excluded.file_size`

	burnInt := 0
	if row.BurnAfterRead {
		burnInt = 1
	}

	_, err := s.db.ExecContext(ctx, q,
		row.ID.String(),
		row.UploadName,
		row.ExpiresAtUTC.UTC().Format(time.RFC3339Nano),
		burnInt,
		row.ReadCount,
		row.SizeBytes,
	)
	if err != nil {
		return fmt.Errorf("sqlite: put %s: %w", row.ID, err)
	}
	return nil
}

// Delete implements cache.MetadataStore. A missing row is not an error.
func (s *Store) Delete(ctx context.Context, id domain.ID) error {
	const q = `DELETE FROM cache WHERE uuid = ?`
	_, err := s.db.ExecContext(ctx, q, id.String())
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: delete %s: %w", id, err)
	}
	return nil
}
