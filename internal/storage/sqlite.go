package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	logger   *zap.SugaredLogger
	mu       sync.Mutex
	initOnce sync.Once
	initErr  error
}

// NewSQLiteStorage creates a SQLite store backed by the file at dbPath.
// The parent directory is created on Init.
func NewSQLiteStorage(dbPath string, logger *zap.SugaredLogger) *SQLiteStorage {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SQLiteStorage{
		dbPath: dbPath,
		logger: logger,
	}
}

// Init opens the database and runs migrations.
func (s *SQLiteStorage) Init(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.open(ctx)
	})
	return s.initErr
}

func (s *SQLiteStorage) open(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create db directory")
	}

	s.logger.Debugw("Opening database", "path", s.dbPath, "driver", "sqlite")

	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	// Writes are serialized by mu; one connection also keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return errors.Wrap(err, "failed to ping database")
	}

	s.db = db
	if err := s.runMigrations(ctx); err != nil {
		db.Close()
		s.db = nil
		return errors.Wrap(err, "failed to run migrations")
	}

	s.logger.Infow("Database opened", "path", s.dbPath, "driver", "sqlite")
	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, "failed to close database")
	}
	s.db = nil
	return nil
}

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      string
}

var sqliteMigrations = []migration{
	{
		version: 1,
		name:    "usage_events",
		up: `
			CREATE TABLE IF NOT EXISTS usage_events (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				id TEXT NOT NULL UNIQUE,
				tab TEXT NOT NULL,
				filename TEXT NOT NULL,
				"timestamp" TEXT NOT NULL,
				entities TEXT NOT NULL DEFAULT '[]',
				selected_entities TEXT NOT NULL DEFAULT '[]',
				created_at TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_usage_events_tab ON usage_events(tab);
			CREATE INDEX IF NOT EXISTS idx_usage_events_filename ON usage_events(filename);
			CREATE INDEX IF NOT EXISTS idx_usage_events_timestamp ON usage_events("timestamp");
		`,
	},
}

// runMigrations applies every migration newer than the recorded version.
func (s *SQLiteStorage) runMigrations(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return errors.Wrap(err, "create schema_migrations")
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return errors.Wrap(err, "read migration version")
	}

	for _, m := range sqliteMigrations {
		if version >= m.version {
			continue
		}

		s.logger.Infow("Applying migration", "version", m.version, "name", m.name)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return errors.Wrapf(err, "begin migration %d", m.version)
		}
		if _, err := tx.ExecContext(ctx, m.up); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "migration %d (%s)", m.version, m.name)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "record migration %d", m.version)
		}
		if err := tx.Commit(); err != nil {
			return errors.Wrapf(err, "commit migration %d", m.version)
		}
	}

	return nil
}
