// Package analyze reconstructs outages from a snapshot of check records.
//
// Everything here is synchronous and free of I/O. Callers hand in a completed
// snapshot (see database.DB.Checks) and must not mutate it while an analysis
// is running. Outages and filtered views hold pointers into that snapshot
// rather than copies of the records.
package analyze

import (
	"slices"

	"uptime-monitor/internal/models"
)

// Refs returns pointers into the backing slice, in the same order
func Refs(checks []models.Check) []*models.Check {
	refs := make([]*models.Check, len(checks))
	for i := range checks {
		refs[i] = &checks[i]
	}
	return refs
}

// GroupByTime groups checks sharing the same timestamp. Checks of one cycle
// run concurrently, so input order carries no meaning.
func GroupByTime(checks []*models.Check) map[int64][]*models.Check {
	groups := make(map[int64][]*models.Check)
	for _, c := range checks {
		groups[c.Timestamp()] = append(groups[c.Timestamp()], c)
	}
	return groups
}

// SortedTimestamps returns the keys of groups in ascending order
func SortedTimestamps(groups map[int64][]*models.Check) []int64 {
	keys := make([]int64, 0, len(groups))
	for ts := range groups {
		keys = append(keys, ts)
	}
	slices.Sort(keys)
	return keys
}

// Filter keeps the checks matching keep
func Filter(checks []*models.Check, keep func(*models.Check) bool) []*models.Check {
	var out []*models.Check
	for _, c := range checks {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// OfKind matches checks produced by the given probe kind
func OfKind(kind models.CheckKind) func(*models.Check) bool {
	return func(c *models.Check) bool { return c.Kind() == kind }
}

// OfFamily matches checks against targets of the given family
func OfFamily(family models.IPFamily) func(*models.Check) bool {
	return func(c *models.Check) bool { return c.IPFamily() == family }
}

// Failed matches unsuccessful checks
func Failed(c *models.Check) bool { return !c.IsSuccess() }

func hasFailure(group []*models.Check) bool {
	return slices.ContainsFunc(group, Failed)
}
