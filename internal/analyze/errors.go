package analyze

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyOutage is returned when an outage would contain no checks
	ErrEmptyOutage = errors.New("outage must contain at least one check")
	// ErrNoChecks is returned when a severity is requested for zero checks
	ErrNoChecks = errors.New("no checks to classify")
	// ErrCompleteWithoutFailed rejects a complete-outage filter that is not
	// restricted to failed checks
	ErrCompleteWithoutFailed = errors.New("only complete outages requires failed only")
)

// SeverityRangeError reports a failure fraction outside [0, 1]. It means the
// failed/total counting went wrong somewhere upstream.
type SeverityRangeError struct {
	Fraction float64
}

func (e *SeverityRangeError) Error() string {
	return fmt.Sprintf("severity fraction %v is outside [0, 1]", e.Fraction)
}
