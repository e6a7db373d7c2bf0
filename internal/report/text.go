package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"uptime-monitor/internal/analyze"
	"uptime-monitor/internal/models"
)

// ErrFormatting wraps failures to write the report to its destination
var ErrFormatting = errors.New("report formatting failed")

// DefaultMostSevere is how many outages the full report ranks by severity
const DefaultMostSevere = 5

// Options control the text report
type Options struct {
	Tolerance  time.Duration
	Latest     int
	Dump       bool
	MostSevere int
}

// errWriter remembers the first write error so formatting code can write
// unconditionally and check once at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) Err() error {
	if e.err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrFormatting, e.err)
}

// barrier writes a section divider with the title, e.g.
// "========== General ============================================="
func (e *errWriter) barrier(title string) {
	label := " " + title + " "
	if pad := 48 - len(label); pad > 0 {
		label += strings.Repeat("=", pad)
	}
	e.printf("%s%s\n", strings.Repeat("=", 10), label)
}

func (e *errWriter) keyValue(key string, value any) {
	e.printf("%-24s: %v\n", key, value)
}

// Analyze writes the full report: statistics per kind and address family,
// the outages, the most severe outages and the store metadata (when meta is
// not nil). A failing outage is reported inline and its error returned after
// the rest of the report has been written.
func Analyze(w io.Writer, checks []*models.Check, meta *models.StoreMeta, opts Options) error {
	ew := &errWriter{w: w}

	ew.barrier("General")
	if len(checks) == 0 {
		ew.printf("Store has no checks yet\n\n")
	} else {
		ew.checkSet(analyze.ComputeStats("all", checks))
	}
	for _, kind := range []models.CheckKind{models.KindHTTP, models.KindICMP} {
		ew.barrier(kind.String())
		ew.checkSet(analyze.ComputeStats(kind.Code(), analyze.Filter(checks, analyze.OfKind(kind))))
	}
	for _, family := range []models.IPFamily{models.IPv4, models.IPv6} {
		ew.barrier(family.String())
		ew.checkSet(analyze.ComputeStats(family.String(), analyze.Filter(checks, analyze.OfFamily(family))))
	}

	outages, err := analyze.Outages(checks, opts.Tolerance)
	if err != nil {
		return fmt.Errorf("detect outages: %w", err)
	}

	ew.barrier("Outages")
	listErr := ew.outageList(outages, false)

	ew.barrier("Most severe")
	n := opts.MostSevere
	if n == 0 {
		n = DefaultMostSevere
	}
	// failures here are the ones the listing above already returns
	ranked, _ := analyze.MostSevere(outages, n)
	ew.outageList(ranked, false)

	if meta != nil {
		ew.barrier("Store Metadata")
		ew.storeMeta(*meta)
	}

	if err := ew.Err(); err != nil {
		return err
	}
	return listErr
}

// Outages writes the outage listing, most recent first, truncated to
// opts.Latest when positive. With opts.Dump every outage is followed by
// its checks.
func Outages(w io.Writer, checks []*models.Check, opts Options) error {
	outages, err := analyze.Outages(checks, opts.Tolerance)
	if err != nil {
		return fmt.Errorf("detect outages: %w", err)
	}

	ew := &errWriter{w: w}
	listErr := ew.outageList(analyze.Latest(outages, opts.Latest), opts.Dump)
	if err := ew.Err(); err != nil {
		return err
	}
	return listErr
}

// Dump writes every check with its index, multi-line form and hash
func Dump(w io.Writer, checks []*models.Check) error {
	ew := &errWriter{w: w}
	ew.dump(checks)
	return ew.Err()
}

func (e *errWriter) checkSet(s models.Stats) {
	if s.Total == 0 {
		e.printf("None\n\n")
		return
	}
	e.keyValue("checks", fmt.Sprintf("%08d", s.Total))
	e.keyValue("checks ok", fmt.Sprintf("%08d", s.Successful))
	e.keyValue("checks bad", fmt.Sprintf("%08d", s.Failed))
	e.keyValue("success ratio", fmt.Sprintf("%03.2f%%", s.SuccessRatio*100))
	e.keyValue("first check at", s.FirstCheck.Format(models.TimestampLayout))
	e.keyValue("last check at", s.LastCheck.Format(models.TimestampLayout))
	if s.Successful > 0 {
		e.keyValue("latency min/avg/max", fmt.Sprintf("%d/%.1f/%d ms", s.MinLatencyMS, s.AvgLatencyMS, s.MaxLatencyMS))
	}
	e.printf("\n")
}

// outageList writes one line per outage. An outage whose severity cannot
// be determined gets an error line instead; the errors are joined and
// returned.
func (e *errWriter) outageList(outages []*analyze.Outage, dump bool) error {
	if len(outages) == 0 {
		e.printf("None\n\n")
		return nil
	}

	var errs []error
	for i, o := range outages {
		line, err := o.ShortReport()
		if err != nil {
			errs = append(errs, err)
			line = fmt.Sprintf("<%v>", err)
		}
		e.printf("%d: %s\n", i, line)
		if dump {
			e.dump(o.All())
			e.printf("\n")
		}
	}
	e.printf("\n")
	return errors.Join(errs...)
}

func (e *errWriter) dump(checks []*models.Check) {
	if len(checks) == 0 {
		e.printf("\t<Empty>\n")
		return
	}
	for i, c := range checks {
		e.printf("%d:\n\t%s\n", i, strings.ReplaceAll(c.String(), "\n", "\n\t"))
	}
}

func (e *errWriter) storeMeta(meta models.StoreMeta) {
	e.keyValue("Store Path", meta.Path)
	e.keyValue("Store Version", meta.SchemaVersion)
	e.keyValue("Checks", meta.Checks)
	e.keyValue("Cycles", meta.Cycles)
	e.keyValue("Store Size (file)", meta.FileSize)
	if meta.FileHash != "" {
		e.keyValue("Hash Store File", meta.FileHash)
	}
	e.printf("\n")
}
