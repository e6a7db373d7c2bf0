package analyze

import (
	"fmt"
	"time"

	"uptime-monitor/internal/models"
)

// DefaultTolerance is the largest gap between two failing time-groups that
// still belong to one outage. One and a half check periods of 60s, so a
// cycle that starts a second late does not split an outage.
const DefaultTolerance = 90 * time.Second

// FailGroups finds the runs of failing time-groups in checks.
//
// A time-group fails when at least one of its checks failed. Consecutive
// failing groups are merged while the gap between them is at most tolerance.
// Successful groups lying between two merged failing groups become part of
// the run; successful groups after the last failing group of a run do not.
// A tolerance <= 0 merges only failing groups with no successful group in
// between.
//
// Runs are returned in chronological order.
func FailGroups(checks []*models.Check, tolerance time.Duration) [][]*models.Check {
	groups := GroupByTime(checks)

	var (
		runs     [][]*models.Check
		current  []*models.Check
		pending  []*models.Check
		lastFail int64
		open     bool
	)

	for _, ts := range SortedTimestamps(groups) {
		group := groups[ts]
		if !hasFailure(group) {
			if open {
				pending = append(pending, group...)
			}
			continue
		}

		if open {
			if mergeable(ts-lastFail, len(pending) > 0, tolerance) {
				current = append(current, pending...)
			} else {
				runs = append(runs, current)
				current = nil
			}
			pending = nil
		}

		current = append(current, group...)
		lastFail = ts
		open = true
	}

	if open {
		runs = append(runs, current)
	}
	return runs
}

func mergeable(gapSeconds int64, successBetween bool, tolerance time.Duration) bool {
	if tolerance <= 0 {
		return !successBetween
	}
	return time.Duration(gapSeconds)*time.Second <= tolerance
}

// Outages builds one outage per fail-group, in chronological order
func Outages(checks []*models.Check, tolerance time.Duration) ([]*Outage, error) {
	runs := FailGroups(checks, tolerance)
	outages := make([]*Outage, 0, len(runs))
	for i, run := range runs {
		o, err := NewOutage(run)
		if err != nil {
			return nil, fmt.Errorf("fail group %d: %w", i, err)
		}
		outages = append(outages, o)
	}
	SortChronological(outages)
	return outages, nil
}

// OutagesOf analyzes a whole store snapshot
func OutagesOf(snapshot []models.Check, tolerance time.Duration) ([]*Outage, error) {
	return Outages(Refs(snapshot), tolerance)
}
