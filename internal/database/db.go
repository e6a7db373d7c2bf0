package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"uptime-monitor/internal/logging"
)

// SchemaVersion is bumped whenever the schema below changes
const SchemaVersion = 1

// DB wraps sql.DB with the check store operations
type DB struct {
	*sql.DB
	path   string
	logger *zap.Logger
	now    func() time.Time
}

// New creates a new database connection
func New(path string, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}

	// Enable WAL mode for better concurrent access
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	return &DB{
		DB:     db,
		path:   path,
		logger: logging.OrNop(logger).Named("database"),
		now:    time.Now,
	}, nil
}

// Open creates the connection and makes sure the schema exists
func Open(ctx context.Context, path string, logger *zap.Logger) (*DB, error) {
	db, err := New(path, logger)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitSchema creates all necessary tables
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
    CREATE TABLE IF NOT EXISTS checks (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        cycle_id TEXT NOT NULL,
        timestamp INTEGER NOT NULL,
        kind TEXT NOT NULL,
        outcome TEXT NOT NULL,
        latency_ms INTEGER,
        target TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_checks_timestamp ON checks(timestamp);
    CREATE INDEX IF NOT EXISTS idx_checks_cycle ON checks(cycle_id);

    -- one row per hour, target and kind; survives pruning of raw checks
    CREATE TABLE IF NOT EXISTS hourly_stats (
        hour INTEGER NOT NULL,
        target TEXT NOT NULL,
        kind TEXT NOT NULL,
        total INTEGER NOT NULL,
        failed INTEGER NOT NULL,
        avg_latency_ms REAL,
        max_latency_ms REAL,
        failure_rate REAL NOT NULL,
        PRIMARY KEY (hour, target, kind)
    );

    CREATE TABLE IF NOT EXISTS meta (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL
    );
    `

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', ?)`,
		fmt.Sprint(SchemaVersion))
	if err != nil {
		return fmt.Errorf("schema version: %w", err)
	}

	return nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}
