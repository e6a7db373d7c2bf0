package analyze

import (
	"cmp"
	"fmt"
	"math"

	"uptime-monitor/internal/models"
)

// SeverityClass is the coarse classification of a Severity
type SeverityClass uint8

const (
	ClassNone SeverityClass = iota
	ClassPartial
	ClassComplete
)

// Severity classifies how many checks of an outage failed: Complete,
// Partial(p) with 0 < p < 1, or None.
type Severity struct {
	class    SeverityClass
	fraction float64
}

var (
	Complete = Severity{class: ClassComplete, fraction: 1}
	NoOutage = Severity{class: ClassNone}
)

// NewSeverity classifies a failure fraction. Values outside [0, 1] are a
// *SeverityRangeError, never clamped.
func NewSeverity(fraction float64) (Severity, error) {
	switch {
	case math.IsNaN(fraction) || fraction < 0 || fraction > 1:
		return Severity{}, &SeverityRangeError{Fraction: fraction}
	case fraction == 1:
		return Complete, nil
	case fraction == 0:
		return NoOutage, nil
	default:
		return Severity{class: ClassPartial, fraction: fraction}, nil
	}
}

// SeverityOf classifies the share of failed checks
func SeverityOf(checks []*models.Check) (Severity, error) {
	if len(checks) == 0 {
		return Severity{}, ErrNoChecks
	}
	failed := len(Filter(checks, Failed))
	return NewSeverity(float64(failed) / float64(len(checks)))
}

func (s Severity) Class() SeverityClass { return s.class }

// Fraction is 1 for Complete and 0 for None
func (s Severity) Fraction() float64 { return s.fraction }

// Compare orders Complete above any Partial above None. Partials compare by
// fraction.
func (s Severity) Compare(o Severity) int {
	if r := cmp.Compare(s.class, o.class); r != 0 {
		return r
	}
	return cmp.Compare(s.fraction, o.fraction)
}

func (s Severity) String() string {
	switch s.class {
	case ClassComplete:
		return "Complete"
	case ClassPartial:
		return fmt.Sprintf("Partial (%.2f %%)", s.fraction*100)
	default:
		return "No Outage"
	}
}
