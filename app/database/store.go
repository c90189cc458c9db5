package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidItem      = errors.New("invalid item")
)

const busyTimeoutMillis = 5000

// Store is the SQLite-backed item store. Only one Store may be open per
// database file; Open takes an exclusive lock on <path>.lock.
type Store struct {
	db     *sql.DB
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// Open creates the parent directory if needed, takes the run lock and opens
// the database. Every failure wraps ErrStoreUnavailable.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create directory %s: %w", ErrStoreUnavailable, dir, err)
		}
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: acquire lock: %w", ErrStoreUnavailable, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s is locked by another run", ErrStoreUnavailable, path)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, busyTimeoutMillis)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("%w: open sqlite db: %w", ErrStoreUnavailable, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("%w: connect to %s: %w", ErrStoreUnavailable, path, err)
	}

	logger.Debug("Store opened", "path", path)

	return &Store{db: db, path: path, lock: lock, logger: logger}, nil
}

// Initialize applies pending schema migrations. It is safe on every run and
// adopts a pre-existing items table.
func (s *Store) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	version, dirty, err := RunMigrations(s.db)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if dirty {
		return fmt.Errorf("%w: schema version %d is dirty", ErrStoreUnavailable, version)
	}

	s.logger.Debug("Store initialized", "path", s.path, "schema_version", version)
	return nil
}

// Close closes the database and releases the run lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	err := s.db.Close()
	if unlockErr := s.lock.Unlock(); unlockErr != nil {
		err = errors.Join(err, fmt.Errorf("release lock: %w", unlockErr))
	}
	s.db = nil

	return err
}

func (s *Store) Path() string {
	return s.path
}
