package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	"uptime-monitor/internal/models"
)

// Meta describes the store: schema version, record counts and a digest of
// the database file.
func (db *DB) Meta(ctx context.Context) (models.StoreMeta, error) {
	meta := models.StoreMeta{Path: db.path}

	var version string
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	if err != nil {
		return meta, fmt.Errorf("schema version: %w", err)
	}
	if meta.SchemaVersion, err = strconv.Atoi(version); err != nil {
		return meta, fmt.Errorf("schema version %q: %w", version, err)
	}

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM checks`).Scan(&meta.Checks); err != nil {
		return meta, fmt.Errorf("count checks: %w", err)
	}
	if meta.Cycles, err = db.CycleCount(ctx); err != nil {
		return meta, fmt.Errorf("count cycles: %w", err)
	}

	if db.path == "" || db.path == ":memory:" {
		return meta, nil
	}

	// Fold the WAL into the main file so the digest reflects every commit
	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return meta, fmt.Errorf("checkpoint: %w", err)
	}

	f, err := os.Open(db.path)
	if err != nil {
		return meta, fmt.Errorf("open database file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return meta, fmt.Errorf("hash database file: %w", err)
	}
	meta.FileSize = n
	meta.FileHash = hex.EncodeToString(h.Sum(nil))

	return meta, nil
}
