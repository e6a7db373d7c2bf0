package analyze

import (
	"net/netip"
	"time"

	"uptime-monitor/internal/models"
)

var (
	targetV4 = netip.MustParseAddr("1.1.1.1")
	targetV6 = netip.MustParseAddr("2606:4700:4700::1111")
	baseTime = time.Date(2023, 6, 10, 20, 35, 0, 0, time.UTC)
)

func at(minute int) time.Time {
	return baseTime.Add(time.Duration(minute) * time.Minute)
}

func check(when time.Time, kind models.CheckKind, target netip.Addr, ok bool) models.Check {
	if ok {
		return models.NewSuccess(when, kind, target, 20*time.Millisecond)
	}
	return models.NewFailure(when, kind, target, models.OutcomeUnreachable)
}

// cycle returns the four checks of one period: HTTP and ICMP against an IPv4
// and an IPv6 target.
func cycle(minute int, ok bool) []models.Check {
	return cycleMask(minute, func(int) bool { return ok })
}

func cycleMask(minute int, ok func(i int) bool) []models.Check {
	when := at(minute)
	return []models.Check{
		check(when, models.KindHTTP, targetV4, ok(0)),
		check(when, models.KindHTTP, targetV6, ok(1)),
		check(when, models.KindICMP, targetV4, ok(2)),
		check(when, models.KindICMP, targetV6, ok(3)),
	}
}

// scenario: minute 0 ok, minutes 1-2 down, minute 3 ok, minute 4 down
func scenario() []models.Check {
	var checks []models.Check
	checks = append(checks, cycle(0, true)...)
	checks = append(checks, cycle(1, false)...)
	checks = append(checks, cycle(2, false)...)
	checks = append(checks, cycle(3, true)...)
	checks = append(checks, cycle(4, false)...)
	return checks
}

func timestamps(checks []*models.Check) []int64 {
	out := make([]int64, len(checks))
	for i, c := range checks {
		out[i] = c.Timestamp()
	}
	return out
}

func mustOutage(checks []models.Check) *Outage {
	o, err := NewOutage(Refs(checks))
	if err != nil {
		panic(err)
	}
	return o
}

func mustAddr(s string) netip.Addr {
	return netip.MustParseAddr(s)
}
