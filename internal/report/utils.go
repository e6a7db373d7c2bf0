package report

import (
	"fmt"
	"strings"

	"uptime-monitor/internal/models"
)

// sanitizeFilename replaces dots and special characters for safe filenames
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		".", "_",
		":", "_",
		"/", "_",
		"\\", "_",
		" ", "_",
	)
	return replacer.Replace(s)
}

// seriesKey identifies one chart series: a target probed with one kind
type seriesKey struct {
	kind   string
	target string
}

func (k seriesKey) String() string {
	return fmt.Sprintf("%s %s", k.kind, k.target)
}

func (k seriesKey) filename(prefix string) string {
	return fmt.Sprintf("%s_%s_%s.png", prefix, k.kind, sanitizeFilename(k.target))
}

func keyOf(c *models.Check) seriesKey {
	return seriesKey{kind: c.Kind().Code(), target: c.Target().String()}
}
