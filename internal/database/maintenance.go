package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"uptime-monitor/internal/models"
)

// AggregateHourlyStats rolls the raw checks up into hourly_stats. Hours are
// recomputed from scratch, so running it twice is harmless.
func (db *DB) AggregateHourlyStats(ctx context.Context) error {
	query := `
        INSERT OR REPLACE INTO hourly_stats (hour, target, kind, total, failed, avg_latency_ms, max_latency_ms, failure_rate)
        SELECT
            (timestamp / 3600) * 3600 as hour,
            target,
            kind,
            COUNT(*) as total,
            SUM(CASE WHEN outcome != 'success' THEN 1 ELSE 0 END) as failed,
            AVG(CASE WHEN outcome = 'success' THEN latency_ms ELSE NULL END) as avg_latency_ms,
            MAX(CASE WHEN outcome = 'success' THEN latency_ms ELSE NULL END) as max_latency_ms,
            ROUND((SUM(CASE WHEN outcome != 'success' THEN 1 ELSE 0 END) * 100.0 / COUNT(*)), 2) as failure_rate
        FROM checks
        GROUP BY hour, target, kind
    `
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("aggregate hourly stats: %w", err)
	}
	return nil
}

// HourlyStats returns the aggregated rows for hours starting at or after since
func (db *DB) HourlyStats(ctx context.Context, since time.Time) ([]models.HourlyStat, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT hour, target, kind, total, failed, avg_latency_ms, max_latency_ms, failure_rate
        FROM hourly_stats
        WHERE hour >= ?
        ORDER BY hour, target, kind
    `, since.Truncate(time.Hour).Unix())
	if err != nil {
		return nil, fmt.Errorf("query hourly stats: %w", err)
	}
	defer rows.Close()

	var stats []models.HourlyStat
	for rows.Next() {
		var (
			s          models.HourlyStat
			hour       int64
			avgL, maxL sql.NullFloat64
		)
		if err := rows.Scan(&hour, &s.Target, &s.Kind, &s.Total, &s.Failed, &avgL, &maxL, &s.FailureRate); err != nil {
			return nil, fmt.Errorf("scan hourly stat: %w", err)
		}
		s.Hour = time.Unix(hour, 0).UTC()
		if avgL.Valid {
			s.AvgLatencyMS = avgL.Float64
		}
		if maxL.Valid {
			s.MaxLatencyMS = maxL.Float64
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Prune deletes raw checks older than before, rounded down to the hour, and
// returns how many were removed. The affected hours are aggregated first so
// hourly_stats keeps covering them.
func (db *DB) Prune(ctx context.Context, before time.Time) (int64, error) {
	if err := db.AggregateHourlyStats(ctx); err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM checks WHERE timestamp < ?`, before.Truncate(time.Hour).Unix())
	if err != nil {
		return 0, fmt.Errorf("prune checks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	db.logger.Info("pruned checks", zap.Int64("deleted", n), zap.Time("before", before))

	// Vacuum to reclaim space (run occasionally)
	if n > 0 && db.now().Day() == 1 {
		if _, err := db.ExecContext(ctx, "VACUUM"); err != nil {
			return n, fmt.Errorf("vacuum: %w", err)
		}
	}
	return n, nil
}
