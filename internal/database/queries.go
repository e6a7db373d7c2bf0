package database

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/guregu/null/v5"
	"go.uber.org/zap"

	"uptime-monitor/internal/models"
)

// SaveCycle stores all checks of one cycle in a single transaction
func (db *DB) SaveCycle(ctx context.Context, cycleID string, checks []models.Check) error {
	if len(checks) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cycle %s: %w", cycleID, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO checks (cycle_id, timestamp, kind, outcome, latency_ms, target)
        VALUES (?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range checks {
		d, ok := c.Latency()
		latency := null.NewInt(d.Milliseconds(), ok)
		_, err := stmt.ExecContext(ctx,
			cycleID,
			c.Timestamp(),
			c.Kind().Code(),
			c.Outcome().String(),
			latency,
			c.Target().String(),
		)
		if err != nil {
			return fmt.Errorf("insert check %s: %w", c.Hash(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cycle %s: %w", cycleID, err)
	}
	return nil
}

// Checks returns every stored check in timestamp order. Rows with an
// unknown kind or outcome are kept as Unknown; rows whose target cannot be
// parsed are skipped. Both are logged.
func (db *DB) Checks(ctx context.Context) ([]models.Check, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT timestamp, kind, outcome, latency_ms, target
        FROM checks
        ORDER BY timestamp, id
    `)
	if err != nil {
		return nil, fmt.Errorf("query checks: %w", err)
	}
	defer rows.Close()

	var checks []models.Check
	for rows.Next() {
		var (
			ts                    int64
			kindCode, outcomeCode string
			latency               null.Int
			targetText            string
		)
		if err := rows.Scan(&ts, &kindCode, &outcomeCode, &latency, &targetText); err != nil {
			return nil, fmt.Errorf("scan check: %w", err)
		}

		target, err := netip.ParseAddr(targetText)
		if err != nil {
			db.logger.Warn("skipping check with invalid target",
				zap.Int64("timestamp", ts), zap.String("target", targetText), zap.Error(err))
			continue
		}
		kind, ok := models.ParseCheckKind(kindCode)
		if !ok {
			db.logger.Warn("unknown check kind", zap.Int64("timestamp", ts), zap.String("kind", kindCode))
		}
		outcome, ok := models.ParseOutcome(outcomeCode)
		if !ok {
			db.logger.Warn("unknown check outcome", zap.Int64("timestamp", ts), zap.String("outcome", outcomeCode))
		}

		latencyMS := int64(-1)
		if latency.Valid {
			latencyMS = latency.Int64
		}
		checks = append(checks, models.Restore(ts, kind, outcome, latencyMS, target))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read checks: %w", err)
	}

	return checks, nil
}

// CycleCount returns the number of distinct stored cycles
func (db *DB) CycleCount(ctx context.Context) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT cycle_id) FROM checks`).Scan(&n)
	return n, err
}
