package models

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2023, 6, 10, 20, 35, 0, 0, time.UTC)

func TestFamilyOf(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want IPFamily
	}{
		{name: "ipv4", addr: "1.1.1.1", want: IPv4},
		{name: "ipv6", addr: "2606:4700:4700::1111", want: IPv6},
		{name: "ipv4 mapped", addr: "::ffff:1.1.1.1", want: IPv4},
		{name: "loopback v6", addr: "::1", want: IPv6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FamilyOf(netip.MustParseAddr(tt.addr)))
		})
	}
}

func TestNewSuccess(t *testing.T) {
	target := netip.MustParseAddr("1.1.1.1")
	local := baseTime.In(time.FixedZone("CEST", 2*60*60))

	c := NewSuccess(local, KindHTTP, target, 42*time.Millisecond+300*time.Microsecond)

	assert.Equal(t, baseTime.Unix(), c.Timestamp())
	assert.True(t, c.IsSuccess())
	assert.Equal(t, KindHTTP, c.Kind())
	assert.Equal(t, IPv4, c.IPFamily())
	latency, ok := c.Latency()
	require.True(t, ok)
	assert.Equal(t, 42*time.Millisecond, latency)
}

func TestNewFailure(t *testing.T) {
	target := netip.MustParseAddr("2606:4700:4700::1111")

	c := NewFailure(baseTime, KindICMP, target, OutcomeTimeout)
	assert.False(t, c.IsSuccess())
	assert.Equal(t, OutcomeTimeout, c.Outcome())
	assert.Equal(t, IPv6, c.IPFamily())
	_, ok := c.Latency()
	assert.False(t, ok)

	coerced := NewFailure(baseTime, KindICMP, target, OutcomeSuccess)
	assert.False(t, coerced.IsSuccess())
	assert.Equal(t, OutcomeError, coerced.Outcome())
}

func TestRestoreDropsLatencyOfFailures(t *testing.T) {
	target := netip.MustParseAddr("1.1.1.1")

	failed := Restore(baseTime.Unix(), KindHTTP, OutcomeUnreachable, 15, target)
	_, ok := failed.Latency()
	assert.False(t, ok)

	ok1 := Restore(baseTime.Unix(), KindHTTP, OutcomeSuccess, 15, target)
	latency, ok := ok1.Latency()
	require.True(t, ok)
	assert.Equal(t, 15*time.Millisecond, latency)
}

func TestParseCheckKind(t *testing.T) {
	for _, k := range AllKinds() {
		got, ok := ParseCheckKind(k.Code())
		assert.True(t, ok, k.Code())
		assert.Equal(t, k, got)
	}

	got, ok := ParseCheckKind("http|icmp")
	assert.False(t, ok)
	assert.Equal(t, KindUnknown, got)
}

func TestParseOutcome(t *testing.T) {
	got, ok := ParseOutcome("timeout")
	assert.True(t, ok)
	assert.Equal(t, OutcomeTimeout, got)

	got, ok = ParseOutcome("exploded")
	assert.False(t, ok)
	assert.Equal(t, OutcomeUnknown, got)
}

func TestCompareIsTotal(t *testing.T) {
	v4 := netip.MustParseAddr("1.1.1.1")
	v6 := netip.MustParseAddr("2606:4700:4700::1111")

	a := NewSuccess(baseTime, KindHTTP, v4, 10*time.Millisecond)
	b := NewSuccess(baseTime, KindHTTP, v6, 10*time.Millisecond)
	c := NewSuccess(baseTime, KindICMP, v4, 10*time.Millisecond)
	d := NewFailure(baseTime, KindHTTP, v4, OutcomeTimeout)
	e := NewSuccess(baseTime.Add(time.Second), KindHTTP, v4, 10*time.Millisecond)

	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, -1, a.Compare(b), "target breaks timestamp ties")
	assert.Equal(t, -1, a.Compare(c), "kind breaks target ties")
	assert.Equal(t, -1, a.Compare(d), "outcome breaks kind ties")
	assert.Equal(t, -1, d.Compare(e), "timestamp dominates")
	assert.Equal(t, 1, e.Compare(a))
}

func TestCheckString(t *testing.T) {
	c := NewSuccess(baseTime, KindICMP, netip.MustParseAddr("1.1.1.1"), 12*time.Millisecond)

	s := c.String()
	assert.Contains(t, s, "Time: 2023-06-10T20:35:00Z")
	assert.Contains(t, s, "Type: ICMP")
	assert.Contains(t, s, "Ok: true")
	assert.Contains(t, s, "Latency: 12 ms")
	assert.Contains(t, s, "Hash: "+c.Hash())

	f := NewFailure(baseTime, KindHTTP, netip.MustParseAddr("1.1.1.1"), OutcomeTimeout)
	assert.Contains(t, f.String(), "Latency: (Error)")
	assert.NotEqual(t, c.Hash(), f.Hash())
}
