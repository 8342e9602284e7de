// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/pnpimport/internal/ports/secondary"
)

// CacheRepository implements secondary.FetchCache with SQLite.
type CacheRepository struct {
	db *sql.DB
}

// NewCacheRepository creates a new SQLite fetch cache repository.
func NewCacheRepository(db *sql.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// Get returns the cached payload for a part, or nil on a miss or when
// the entry is older than maxAge.
func (r *CacheRepository) Get(ctx context.Context, lcscID string, maxAge time.Duration) (*secondary.ComponentRecord, error) {
	var (
		record    secondary.ComponentRecord
		fetchedAt time.Time
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT lcsc_id, title, payload, fetched_at FROM vendor_cache WHERE lcsc_id = ?",
		lcscID,
	).Scan(&record.LCSCID, &record.Title, &record.Payload, &fetchedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if maxAge > 0 && time.Since(fetchedAt) > maxAge {
		return nil, nil
	}
	return &record, nil
}

// Put stores or refreshes a payload.
func (r *CacheRepository) Put(ctx context.Context, record *secondary.ComponentRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO vendor_cache (lcsc_id, title, payload, fetched_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP) ON CONFLICT(lcsc_id) DO UPDATE SET title = excluded.title, payload = excluded.payload, fetched_at = excluded.fetched_at",
		record.LCSCID, record.Title, record.Payload,
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Clear removes all cached payloads.
func (r *CacheRepository) Clear(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM vendor_cache")
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted entries: %w", err)
	}
	return int(deleted), nil
}
