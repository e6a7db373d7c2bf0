package models

import "time"

// Stats summarizes a set of checks
type Stats struct {
	Label        string    `json:"label"`
	Total        int       `json:"total"`
	Successful   int       `json:"successful"`
	Failed       int       `json:"failed"`
	SuccessRatio float64   `json:"success_ratio"`
	FirstCheck   time.Time `json:"first_check"`
	LastCheck    time.Time `json:"last_check"`
	AvgLatencyMS float64   `json:"avg_latency_ms"`
	MinLatencyMS int64     `json:"min_latency_ms"`
	MaxLatencyMS int64     `json:"max_latency_ms"`
}

// OutageSummary is the serialized form of an outage
type OutageSummary struct {
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	Duration         string    `json:"duration"`
	Total            int       `json:"total_checks"`
	Failed           int       `json:"failed_checks"`
	Severity         string    `json:"severity"`
	SeverityFraction float64   `json:"severity_fraction"`
}

// SeverityPoint is the severity of a single time-group
type SeverityPoint struct {
	Time     time.Time `json:"time"`
	Fraction float64   `json:"fraction"`
	Severity string    `json:"severity"`
}

// HourlyStat is one row of the hourly aggregation table
type HourlyStat struct {
	Hour         time.Time `json:"hour"`
	Target       string    `json:"target"`
	Kind         string    `json:"kind"`
	Total        int       `json:"total"`
	Failed       int       `json:"failed"`
	AvgLatencyMS float64   `json:"avg_latency_ms"`
	MaxLatencyMS float64   `json:"max_latency_ms"`
	FailureRate  float64   `json:"failure_rate"`
}

// StoreMeta describes the persisted store
type StoreMeta struct {
	Path          string `json:"path"`
	SchemaVersion int    `json:"schema_version"`
	Checks        int64  `json:"checks"`
	Cycles        int64  `json:"cycles"`
	FileSize      int64  `json:"file_size"`
	FileHash      string `json:"file_hash"`
}
