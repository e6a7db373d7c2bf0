package analyze

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uptime-monitor/internal/models"
)

func TestFailGroupsScenario(t *testing.T) {
	groups := FailGroups(Refs(scenario()), time.Minute)

	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 8)
	assert.Len(t, groups[1], 4)

	outages, err := OutagesOf(scenario(), time.Minute)
	require.NoError(t, err)
	require.Len(t, outages, 2)

	assert.Equal(t, at(1), outages[0].Start())
	assert.Equal(t, at(2), outages[0].End())
	assert.Equal(t, 8, outages[0].Len())
	sev, err := outages[0].Severity()
	require.NoError(t, err)
	assert.Equal(t, Complete, sev)

	assert.Equal(t, at(4), outages[1].Start())
	assert.Equal(t, at(4), outages[1].End())
	assert.Equal(t, 4, outages[1].Len())
	sev, err = outages[1].Severity()
	require.NoError(t, err)
	assert.Equal(t, Complete, sev)
}

func TestFailGroupsToleranceMerging(t *testing.T) {
	var checks []models.Check
	for _, minute := range []int{0, 1, 2} {
		checks = append(checks, cycle(minute, false)...)
	}

	tests := []struct {
		name      string
		tolerance time.Duration
		want      []int
	}{
		{name: "wider than the gap merges", tolerance: 90 * time.Second, want: []int{12}},
		{name: "equal to the gap merges", tolerance: 60 * time.Second, want: []int{12}},
		{name: "narrower than the gap splits", tolerance: 30 * time.Second, want: []int{4, 4, 4}},
		{name: "zero merges consecutive groups", tolerance: 0, want: []int{12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := FailGroups(Refs(checks), tt.tolerance)
			var sizes []int
			for _, g := range groups {
				sizes = append(sizes, len(g))
			}
			assert.Equal(t, tt.want, sizes)
		})
	}
}

func TestFailGroupsSuccessBetweenMergedFailures(t *testing.T) {
	var checks []models.Check
	checks = append(checks, cycle(0, false)...)
	checks = append(checks, cycle(1, true)...)
	checks = append(checks, cycle(2, false)...)
	checks = append(checks, cycle(3, true)...)
	checks = append(checks, cycle(4, true)...)

	t.Run("blip inside tolerance is part of the outage", func(t *testing.T) {
		outages, err := OutagesOf(checks, 2*time.Minute)
		require.NoError(t, err)
		require.Len(t, outages, 1)

		o := outages[0]
		assert.Equal(t, 12, o.Len())
		assert.Equal(t, 8, o.Failed())
		assert.Equal(t, at(0), o.Start())
		assert.Equal(t, at(2), o.End(), "trailing successes are not part of the outage")

		sev, err := o.Severity()
		require.NoError(t, err)
		assert.Equal(t, ClassPartial, sev.Class())
		assert.InDelta(t, 2.0/3.0, sev.Fraction(), 1e-9)
	})

	t.Run("zero tolerance splits on any success", func(t *testing.T) {
		groups := FailGroups(Refs(checks), 0)
		require.Len(t, groups, 2)
		assert.Len(t, groups[0], 4)
		assert.Len(t, groups[1], 4)
	})
}

func TestFailGroupsPartialTimeGroup(t *testing.T) {
	var checks []models.Check
	checks = append(checks, cycle(0, true)...)
	checks = append(checks, cycleMask(1, func(i int) bool { return i != 1 })...)
	checks = append(checks, cycle(2, true)...)

	groups := FailGroups(Refs(checks), time.Minute)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0], 4, "the whole time-group is taken, not only the failure")
	assert.Len(t, Filter(groups[0], Failed), 1)
}

func TestFailGroupsEdgeCases(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, FailGroups(nil, time.Minute))
		outages, err := Outages(nil, time.Minute)
		require.NoError(t, err)
		assert.Empty(t, outages)
	})

	t.Run("no failures", func(t *testing.T) {
		var checks []models.Check
		for minute := 0; minute < 5; minute++ {
			checks = append(checks, cycle(minute, true)...)
		}
		assert.Empty(t, FailGroups(Refs(checks), time.Minute))
	})

	t.Run("single failing group", func(t *testing.T) {
		groups := FailGroups(Refs(cycle(7, false)), time.Minute)
		require.Len(t, groups, 1)
		assert.Len(t, groups[0], 4)
	})

	t.Run("long silence splits even without successes", func(t *testing.T) {
		var checks []models.Check
		checks = append(checks, cycle(0, false)...)
		checks = append(checks, cycle(60, false)...)
		assert.Len(t, FailGroups(Refs(checks), DefaultTolerance), 2)
	})
}

func TestFailGroupsChronological(t *testing.T) {
	var checks []models.Check
	for _, minute := range []int{40, 3, 20, 11} {
		checks = append(checks, cycle(minute, false)...)
	}
	checks = append(checks, cycle(0, true)...)

	groups := FailGroups(Refs(checks), time.Minute)
	require.Len(t, groups, 4)
	var starts []int64
	for _, g := range groups {
		starts = append(starts, g[0].Timestamp())
	}
	assert.IsIncreasing(t, starts)
}

func TestOutagesNeverEmpty(t *testing.T) {
	outages, err := OutagesOf(scenario(), DefaultTolerance)
	require.NoError(t, err)
	for _, o := range outages {
		assert.False(t, o.IsEmpty())
	}

	_, err = NewOutage(nil)
	assert.True(t, errors.Is(err, ErrEmptyOutage))
}
