package analyze

import (
	"fmt"
	"sort"
	"time"

	"uptime-monitor/internal/models"
)

// IPFilter restricts checks to an address family
type IPFilter uint8

const (
	IPAny IPFilter = iota
	IPOnlyV4
	IPOnlyV6
)

func (f IPFilter) String() string {
	switch f {
	case IPOnlyV4:
		return "v4"
	case IPOnlyV6:
		return "v6"
	default:
		return "any"
	}
}

// Matches reports whether a check of the given family passes the filter
func (f IPFilter) Matches(family models.IPFamily) bool {
	switch f {
	case IPOnlyV4:
		return family == models.IPv4
	case IPOnlyV6:
		return family == models.IPv6
	default:
		return true
	}
}

// ParseIPFilter accepts "", "any", "v4", "ipv4", "v6" and "ipv6"
func ParseIPFilter(s string) (IPFilter, error) {
	switch s {
	case "", "any":
		return IPAny, nil
	case "v4", "ipv4":
		return IPOnlyV4, nil
	case "v6", "ipv6":
		return IPOnlyV6, nil
	default:
		return IPAny, fmt.Errorf("unknown ip filter %q", s)
	}
}

// AccessConstraints selects a view of the stored checks
type AccessConstraints struct {
	FailedOnly          bool
	IP                  IPFilter
	Since               *time.Time
	OnlyCompleteOutages bool
}

// Validate rejects contradictory constraints
func (c AccessConstraints) Validate() error {
	if c.OnlyCompleteOutages && !c.FailedOnly {
		return ErrCompleteWithoutFailed
	}
	return nil
}

// GetChecks applies the constraints to a snapshot. It keeps, in this order,
// checks inside complete outages (when OnlyCompleteOutages is set), failed
// checks, checks of the requested family and checks at or after Since.
//
// The failed-only predicate runs even after the complete-outage step; a
// complete outage holds nothing but failed checks, so it removes nothing
// there.
//
// The result points into source and has no guaranteed order.
func GetChecks(source []models.Check, c AccessConstraints, tolerance time.Duration) ([]*models.Check, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	checks := Refs(source)

	if c.OnlyCompleteOutages {
		windows, err := completeWindows(checks, tolerance)
		if err != nil {
			return nil, err
		}
		checks = Filter(checks, func(ch *models.Check) bool { return windows.contains(ch.Timestamp()) })
	}

	return Filter(checks, func(ch *models.Check) bool {
		if c.FailedOnly && ch.IsSuccess() {
			return false
		}
		if !c.IP.Matches(ch.IPFamily()) {
			return false
		}
		if c.Since != nil && ch.Timestamp() < c.Since.Unix() {
			return false
		}
		return true
	}), nil
}

// windowSet holds the [start, end] timestamps of non-overlapping outages,
// sorted by start.
type windowSet struct {
	starts []int64
	ends   []int64
}

func completeWindows(checks []*models.Check, tolerance time.Duration) (windowSet, error) {
	outages, err := Outages(checks, tolerance)
	if err != nil {
		return windowSet{}, fmt.Errorf("building outages: %w", err)
	}
	var w windowSet
	for _, o := range outages {
		sev, err := o.Severity()
		if err != nil {
			return windowSet{}, err
		}
		if sev.Class() != ClassComplete {
			continue
		}
		w.starts = append(w.starts, o.First().Timestamp())
		w.ends = append(w.ends, o.Last().Timestamp())
	}
	return w, nil
}

func (w windowSet) contains(ts int64) bool {
	i := sort.Search(len(w.starts), func(i int) bool { return w.starts[i] > ts }) - 1
	return i >= 0 && ts <= w.ends[i]
}
