package analyze

import (
	"time"

	"uptime-monitor/internal/models"
)

// ComputeStats summarizes checks under the given label
func ComputeStats(label string, checks []*models.Check) models.Stats {
	s := models.Stats{Label: label, Total: len(checks)}
	if len(checks) == 0 {
		return s
	}

	first, last := checks[0].Timestamp(), checks[0].Timestamp()
	var (
		latencySum int64
		latencyN   int64
	)
	for _, c := range checks {
		first = min(first, c.Timestamp())
		last = max(last, c.Timestamp())
		if !c.IsSuccess() {
			continue
		}
		s.Successful++
		l, ok := c.Latency()
		if !ok {
			continue
		}
		ms := l.Milliseconds()
		if latencyN == 0 || ms < s.MinLatencyMS {
			s.MinLatencyMS = ms
		}
		if ms > s.MaxLatencyMS {
			s.MaxLatencyMS = ms
		}
		latencySum += ms
		latencyN++
	}

	s.Failed = s.Total - s.Successful
	s.SuccessRatio = float64(s.Successful) / float64(s.Total)
	s.FirstCheck = time.Unix(first, 0).UTC()
	s.LastCheck = time.Unix(last, 0).UTC()
	if latencyN > 0 {
		s.AvgLatencyMS = float64(latencySum) / float64(latencyN)
	}
	return s
}

// SeverityTimeline classifies every time-group of checks, oldest first
func SeverityTimeline(checks []*models.Check) ([]models.SeverityPoint, error) {
	groups := GroupByTime(checks)
	points := make([]models.SeverityPoint, 0, len(groups))
	for _, ts := range SortedTimestamps(groups) {
		sev, err := SeverityOf(groups[ts])
		if err != nil {
			return nil, err
		}
		points = append(points, models.SeverityPoint{
			Time:     time.Unix(ts, 0).UTC(),
			Fraction: sev.Fraction(),
			Severity: sev.String(),
		})
	}
	return points, nil
}
