package models

import (
	"context"
	"net/netip"
	"time"
)

// CheckSource provides a completed snapshot of all stored checks
type CheckSource interface {
	Checks(ctx context.Context) ([]Check, error)
}

// Store defines operations for check persistence
type Store interface {
	CheckSource
	SaveCycle(ctx context.Context, cycleID string, checks []Check) error
	HourlyStats(ctx context.Context, since time.Time) ([]HourlyStat, error)
	AggregateHourlyStats(ctx context.Context) error
	Prune(ctx context.Context, before time.Time) (int64, error)
	Meta(ctx context.Context) (StoreMeta, error)
	Close() error
}

// Prober performs a single probe of one kind against a target
type Prober interface {
	Kind() CheckKind
	Probe(ctx context.Context, target netip.Addr, at time.Time) Check
}
