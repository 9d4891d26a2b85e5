package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	tmerrors "github.com/FocuswithJustin/transmark/core/errors"
	"github.com/FocuswithJustin/transmark/core/loss"
	"github.com/FocuswithJustin/transmark/core/sqlite"
	"github.com/FocuswithJustin/transmark/internal/logging"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS conversions (
		key         TEXT PRIMARY KEY,
		source      TEXT NOT NULL,
		target      TEXT NOT NULL,
		source_hash TEXT NOT NULL,
		output      TEXT NOT NULL,
		report      TEXT NOT NULL,
		created_at  INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS conversions_created ON conversions (created_at)`,
}

// Entry is one cached conversion result.
type Entry struct {
	Output     string
	Report     *loss.Report
	SourceHash string
	CreatedAt  time.Time
}

// Store is a persistent conversion cache with an in-memory LRU in front.
// It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	memory Cache[string, *Entry]
	maxAge time.Duration
}

// Options configures Open.
type Options struct {
	// Memory configures the in-memory front cache.
	Memory Config

	// MaxAge expires persisted entries older than this (0 = never).
	MaxAge time.Duration
}

// Open opens or creates the cache database at path. Use ":memory:" for a
// throwaway cache.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	db, err := sqlite.OpenFile(ctx, path, schema...)
	if err != nil {
		return nil, tmerrors.NewIO("open cache", path, err)
	}
	return &Store{
		db:     db,
		memory: NewLRUCache[string, *Entry](opts.Memory),
		maxAge: opts.MaxAge,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the entry stored under key. A miss is not an error.
func (s *Store) Get(ctx context.Context, key string) (*Entry, bool, error) {
	if e, ok := s.memory.Get(key); ok {
		logging.CacheEvent(ctx, "hit", key, "tier", "memory")
		return e, true, nil
	}

	var (
		output, report, sourceHash string
		created                    int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT output, report, source_hash, created_at FROM conversions WHERE key = ?`, key,
	).Scan(&output, &report, &sourceHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		logging.CacheEvent(ctx, "miss", key)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, tmerrors.NewIO("read cache", key, err)
	}

	e := &Entry{Output: output, SourceHash: sourceHash, CreatedAt: time.Unix(0, created)}
	if s.maxAge > 0 && time.Since(e.CreatedAt) > s.maxAge {
		logging.CacheEvent(ctx, "expired", key)
		return nil, false, s.Remove(ctx, key)
	}
	if err := json.Unmarshal([]byte(report), &e.Report); err != nil {
		// An unreadable row is treated as a miss and overwritten later.
		logging.CacheEvent(ctx, "corrupt", key, "error", err.Error())
		return nil, false, nil
	}

	s.memory.Put(key, e)
	logging.CacheEvent(ctx, "hit", key, "tier", "sqlite")
	return e, true, nil
}

// Put stores an entry under key, replacing any previous one.
func (s *Store) Put(ctx context.Context, key string, e *Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	report := e.Report
	if report == nil {
		report = loss.NewReport("", "")
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode cache report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO conversions (key, source, target, source_hash, output, report, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key, report.SourceFormat, report.TargetFormat, e.SourceHash, e.Output, string(data), e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return tmerrors.NewIO("write cache", key, err)
	}

	s.memory.Put(key, e)
	logging.CacheEvent(ctx, "store", key, "bytes", len(e.Output))
	return nil
}

// Remove deletes the entry stored under key.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.memory.Remove(key)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversions WHERE key = ?`, key); err != nil {
		return tmerrors.NewIO("delete cache", key, err)
	}
	return nil
}

// Purge deletes every entry created before cutoff and returns how many rows
// were removed. A zero cutoff removes everything.
func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	s.memory.Clear()

	var (
		res sql.Result
		err error
	)
	if cutoff.IsZero() {
		res, err = s.db.ExecContext(ctx, `DELETE FROM conversions`)
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM conversions WHERE created_at < ?`, cutoff.UnixNano())
	}
	if err != nil {
		return 0, tmerrors.NewIO("purge cache", "", err)
	}
	return res.RowsAffected()
}

// Len returns the number of persisted entries.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversions`).Scan(&n); err != nil {
		return 0, tmerrors.NewIO("count cache", "", err)
	}
	return n, nil
}

// MemoryStats returns statistics of the in-memory front cache.
func (s *Store) MemoryStats() Stats {
	return s.memory.Stats()
}
