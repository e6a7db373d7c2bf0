package models

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/netip"
	"time"
)

// TimestampLayout is used wherever a check timestamp is shown to a human.
const TimestampLayout = time.RFC3339

// CheckKind identifies the probe that produced a Check
type CheckKind uint8

const (
	KindUnknown CheckKind = iota
	KindHTTP
	KindICMP
	KindDNS
)

// AllKinds lists every kind a probe can produce
func AllKinds() []CheckKind {
	return []CheckKind{KindHTTP, KindICMP, KindDNS}
}

func (k CheckKind) String() string {
	switch k {
	case KindHTTP:
		return "HTTP(S)"
	case KindICMP:
		return "ICMP"
	case KindDNS:
		return "DNS"
	default:
		return "Unknown"
	}
}

// Code is the stable identifier used in storage and on the command line
func (k CheckKind) Code() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindICMP:
		return "icmp"
	case KindDNS:
		return "dns"
	default:
		return "unknown"
	}
}

// ParseCheckKind maps a Code back to its kind. Unrecognized codes yield
// KindUnknown and false.
func ParseCheckKind(code string) (CheckKind, bool) {
	for _, k := range AllKinds() {
		if k.Code() == code {
			return k, true
		}
	}
	return KindUnknown, false
}

// IPFamily is the address family of a check target
type IPFamily uint8

const (
	IPv4 IPFamily = iota
	IPv6
)

func (f IPFamily) String() string {
	if f == IPv6 {
		return "IPv6"
	}
	return "IPv4"
}

// FamilyOf derives the family from the address itself. IPv4-mapped IPv6
// addresses count as IPv4.
func FamilyOf(addr netip.Addr) IPFamily {
	if addr.Unmap().Is4() {
		return IPv4
	}
	return IPv6
}

// Outcome is the result of a single probe
type Outcome uint8

const (
	OutcomeUnknown Outcome = iota
	OutcomeSuccess
	OutcomeTimeout
	OutcomeUnreachable
	OutcomeError
)

var outcomeCodes = map[Outcome]string{
	OutcomeUnknown:     "unknown",
	OutcomeSuccess:     "success",
	OutcomeTimeout:     "timeout",
	OutcomeUnreachable: "unreachable",
	OutcomeError:       "error",
}

func (o Outcome) String() string {
	if s, ok := outcomeCodes[o]; ok {
		return s
	}
	return outcomeCodes[OutcomeUnknown]
}

// ParseOutcome maps a stored outcome code back to its value. Unrecognized
// codes yield OutcomeUnknown and false.
func ParseOutcome(code string) (Outcome, bool) {
	for o, s := range outcomeCodes {
		if s == code && o != OutcomeUnknown {
			return o, true
		}
	}
	return OutcomeUnknown, false
}

// Check is the immutable result of one probe against one target.
//
// Kind and family cannot disagree with the record: the kind is fixed by the
// constructor used by the probe and the family is derived from the target.
type Check struct {
	timestamp int64
	kind      CheckKind
	outcome   Outcome
	latency   time.Duration
	target    netip.Addr
}

// NewSuccess records a successful probe. Latency is truncated to milliseconds.
func NewSuccess(at time.Time, kind CheckKind, target netip.Addr, latency time.Duration) Check {
	if latency < 0 {
		latency = 0
	}
	return Check{
		timestamp: at.UTC().Unix(),
		kind:      kind,
		outcome:   OutcomeSuccess,
		latency:   latency.Truncate(time.Millisecond),
		target:    target,
	}
}

// NewFailure records a failed probe. A success outcome is not a failure and is
// recorded as OutcomeError.
func NewFailure(at time.Time, kind CheckKind, target netip.Addr, outcome Outcome) Check {
	if outcome == OutcomeSuccess {
		outcome = OutcomeError
	}
	return Check{
		timestamp: at.UTC().Unix(),
		kind:      kind,
		outcome:   outcome,
		target:    target,
	}
}

// Restore rebuilds a check from its persisted fields. latencyMS is ignored
// unless the outcome is a success; a negative value means no latency.
func Restore(timestamp int64, kind CheckKind, outcome Outcome, latencyMS int64, target netip.Addr) Check {
	c := Check{
		timestamp: timestamp,
		kind:      kind,
		outcome:   outcome,
		target:    target,
	}
	if outcome == OutcomeSuccess && latencyMS >= 0 {
		c.latency = time.Duration(latencyMS) * time.Millisecond
	}
	return c
}

// Timestamp returns seconds since the Unix epoch
func (c Check) Timestamp() int64 { return c.timestamp }

// Time returns the timestamp as UTC time
func (c Check) Time() time.Time { return time.Unix(c.timestamp, 0).UTC() }

func (c Check) Kind() CheckKind { return c.kind }

func (c Check) Outcome() Outcome { return c.outcome }

func (c Check) IsSuccess() bool { return c.outcome == OutcomeSuccess }

func (c Check) Target() netip.Addr { return c.target }

func (c Check) IPFamily() IPFamily { return FamilyOf(c.target) }

// Latency is only present for successful checks
func (c Check) Latency() (time.Duration, bool) {
	if !c.IsSuccess() {
		return 0, false
	}
	return c.latency, true
}

// Compare orders checks by timestamp, then target, kind, outcome and latency.
func (c Check) Compare(o Check) int {
	if r := cmp.Compare(c.timestamp, o.timestamp); r != 0 {
		return r
	}
	if r := c.target.Compare(o.target); r != 0 {
		return r
	}
	if r := cmp.Compare(c.kind, o.kind); r != 0 {
		return r
	}
	if r := cmp.Compare(c.outcome, o.outcome); r != 0 {
		return r
	}
	return cmp.Compare(c.latency, o.latency)
}

// Hash identifies the record by its content
func (c Check) Hash() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s|%d|%s",
		c.timestamp, c.kind.Code(), c.outcome, c.latency.Milliseconds(), c.target)))
	return hex.EncodeToString(sum[:])
}

func (c Check) String() string {
	latency := "(Error)"
	if l, ok := c.Latency(); ok {
		latency = fmt.Sprintf("%d ms", l.Milliseconds())
	}
	return fmt.Sprintf("Time: %s\nType: %s\nOk: %t\nTarget: %s\nLatency: %s\nHash: %s",
		c.Time().Format(TimestampLayout), c.kind, c.IsSuccess(), c.target, latency, c.Hash())
}
