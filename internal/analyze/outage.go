package analyze

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"uptime-monitor/internal/models"
)

// Outage is a non-empty, time-sorted view of the checks of one fail-group.
// It is never modified after construction.
type Outage struct {
	checks []*models.Check
}

// NewOutage sorts a copy of checks and wraps it. The records themselves are
// not copied.
func NewOutage(checks []*models.Check) (*Outage, error) {
	if len(checks) == 0 {
		return nil, ErrEmptyOutage
	}
	sorted := slices.Clone(checks)
	slices.SortFunc(sorted, func(a, b *models.Check) int { return a.Compare(*b) })
	return &Outage{checks: sorted}, nil
}

// All returns the checks of the outage in order
func (o *Outage) All() []*models.Check { return slices.Clone(o.checks) }

func (o *Outage) First() *models.Check { return o.checks[0] }

func (o *Outage) Last() *models.Check { return o.checks[len(o.checks)-1] }

func (o *Outage) Len() int { return len(o.checks) }

// IsEmpty is always false for an outage built with NewOutage
func (o *Outage) IsEmpty() bool { return len(o.checks) == 0 }

func (o *Outage) Start() time.Time { return o.First().Time() }

func (o *Outage) End() time.Time { return o.Last().Time() }

func (o *Outage) Duration() time.Duration { return o.End().Sub(o.Start()) }

// Failed counts the unsuccessful checks
func (o *Outage) Failed() int { return len(Filter(o.checks, Failed)) }

// Contains reports whether ts lies within the outage window
func (o *Outage) Contains(ts int64) bool {
	return ts >= o.First().Timestamp() && ts <= o.Last().Timestamp()
}

// Severity is derived from the checks on every call
func (o *Outage) Severity() (Severity, error) {
	return SeverityOf(o.checks)
}

// CompareSeverity orders by severity, then by number of checks
func (o *Outage) CompareSeverity(other *Outage) (int, error) {
	a, err := o.Severity()
	if err != nil {
		return 0, err
	}
	b, err := other.Severity()
	if err != nil {
		return 0, err
	}
	if r := a.Compare(b); r != 0 {
		return r, nil
	}
	return cmp.Compare(o.Len(), other.Len()), nil
}

// ShortReport renders the outage as a single line
func (o *Outage) ShortReport() (string, error) {
	sev, err := o.Severity()
	if err != nil {
		return "", fmt.Errorf("outage starting %s: %w", o.Start().Format(models.TimestampLayout), err)
	}
	return fmt.Sprintf("From %s To %s, Total %6d, %s",
		o.Start().Format(models.TimestampLayout),
		o.End().Format(models.TimestampLayout),
		o.Len(), sev), nil
}

// Summary converts the outage for serialization
func (o *Outage) Summary() (models.OutageSummary, error) {
	sev, err := o.Severity()
	if err != nil {
		return models.OutageSummary{}, err
	}
	return models.OutageSummary{
		Start:            o.Start(),
		End:              o.End(),
		Duration:         o.Duration().String(),
		Total:            o.Len(),
		Failed:           o.Failed(),
		Severity:         sev.String(),
		SeverityFraction: sev.Fraction(),
	}, nil
}

func (o *Outage) String() string {
	var b strings.Builder
	kv := func(key string, value any) { fmt.Fprintf(&b, "%-24s: %v\n", key, value) }

	kv("From", o.Start().Format(models.TimestampLayout))
	kv("To", o.End().Format(models.TimestampLayout))
	kv("Total", o.Len())
	if sev, err := o.Severity(); err != nil {
		kv("Severity", "<"+err.Error()+">")
	} else {
		kv("Severity", sev)
	}
	fmt.Fprintf(&b, "\nFirst\n%s\n", o.First())
	fmt.Fprintf(&b, "\nLast\n%s\n", o.Last())
	return b.String()
}
