// Package simdb persists normalized SIM metadata in an embedded SQLite
// store: publications, issues, and release-count snapshots, each upserted
// by natural key. One process owns the store at a time; concurrent
// ingestion into the same file is not supported.
package simdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// Store manages SIM metadata persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the store at path, acquiring an exclusive
// run lock and applying the schema when absent. Opening an existing store
// with an incompatible schema fails with ErrSchemaMismatch.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("store %s is locked by another process", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// Single connection: the run is sequential, and EXCLUSIVE locking mode
	// would starve a second pooled connection anyway.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA locking_mode = EXCLUSIVE",
		"PRAGMA synchronous = OFF",
		"PRAGMA cache_size = 20000",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Path returns the store's database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection and releases the run lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// LookupContainer returns the stored container ident for a publication, or
// the empty string when the publication is unknown or unresolved. Used to
// seed the resolver cache from an earlier ingestion run.
func (s *Store) LookupContainer(ctx context.Context, simPubID string) (string, error) {
	var ident sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT container_ident FROM sim_pub WHERE sim_pubid = ?", simPubID,
	).Scan(&ident)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup container for %s: %w", simPubID, err)
	}
	return ident.String, nil
}

// Stats summarizes store contents for the status command.
type Stats struct {
	Publications         int
	ResolvedPublications int
	Issues               int
	ReleaseCounts        int
}

// Stats returns row counts for the three tables plus the number of
// publications with a resolved container.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM sim_pub", &stats.Publications},
		{"SELECT COUNT(*) FROM sim_pub WHERE container_ident IS NOT NULL", &stats.ResolvedPublications},
		{"SELECT COUNT(*) FROM sim_issue", &stats.Issues},
		{"SELECT COUNT(*) FROM release_counts", &stats.ReleaseCounts},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return Stats{}, fmt.Errorf("store stats: %w", err)
		}
	}
	return stats, nil
}
