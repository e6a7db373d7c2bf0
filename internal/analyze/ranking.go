package analyze

import (
	"cmp"
	"errors"
	"slices"
)

// SortChronological sorts outages in place by start, then end
func SortChronological(outages []*Outage) {
	slices.SortStableFunc(outages, func(a, b *Outage) int {
		if r := a.Start().Compare(b.Start()); r != 0 {
			return r
		}
		return a.End().Compare(b.End())
	})
}

// Latest returns the n outages that ended most recently, newest first.
// n <= 0 returns all of them.
func Latest(outages []*Outage, n int) []*Outage {
	sorted := slices.Clone(outages)
	slices.SortStableFunc(sorted, func(a, b *Outage) int {
		if r := b.End().Compare(a.End()); r != 0 {
			return r
		}
		return b.Start().Compare(a.Start())
	})
	return head(sorted, n)
}

// MostSevere returns the n most severe outages, most severe first. Outages
// whose severity cannot be computed are left out and their errors joined
// into the returned error; the ranking of the others is still returned.
func MostSevere(outages []*Outage, n int) ([]*Outage, error) {
	type ranked struct {
		outage   *Outage
		severity Severity
	}

	var (
		rows []ranked
		errs []error
	)
	for _, o := range outages {
		sev, err := o.Severity()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows = append(rows, ranked{outage: o, severity: sev})
	}

	slices.SortStableFunc(rows, func(a, b ranked) int {
		if r := b.severity.Compare(a.severity); r != 0 {
			return r
		}
		return cmp.Compare(b.outage.Len(), a.outage.Len())
	})

	out := make([]*Outage, len(rows))
	for i, r := range rows {
		out[i] = r.outage
	}
	return head(out, n), errors.Join(errs...)
}

func head(outages []*Outage, n int) []*Outage {
	if n <= 0 || n >= len(outages) {
		return outages
	}
	return outages[:n]
}
