package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"uptime-monitor/internal/analyze"
	"uptime-monitor/internal/models"
)

// ErrNoData is returned when there is nothing to draw
var ErrNoData = errors.New("no data to draw")

var (
	gridStyle = chart.Style{
		StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
		StrokeWidth: 1.0,
	}
	axisStyle = chart.Style{
		StrokeColor: drawing.ColorBlack,
		FontSize:    10,
	}
	padding = chart.Style{
		Padding: chart.Box{
			Top:    20,
			Left:   20,
			Right:  20,
			Bottom: 20,
		},
	}
)

type timeline struct {
	timestamps []time.Time
	values     []float64
}

func (t *timeline) add(at time.Time, v float64) {
	t.timestamps = append(t.timestamps, at)
	t.values = append(t.values, v)
}

// SeverityGraph draws the severity of every time-group as an area chart
func SeverityGraph(w io.Writer, checks []*models.Check) error {
	points, err := analyze.SeverityTimeline(checks)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return ErrNoData
	}

	var data timeline
	for _, p := range points {
		data.add(p.Time, p.Fraction)
	}
	// a single time-group still needs a non-empty x range
	if len(points) == 1 {
		data.add(points[0].Time.Add(time.Second), points[0].Fraction)
	}

	graph := chart.Chart{
		Title:      "Outage Severity over all time",
		TitleStyle: chart.Style{FontSize: 16},
		Background: padding,
		Width:      1920,
		Height:     1080,
		XAxis: chart.XAxis{
			Name:           "Time",
			Style:          axisStyle,
			ValueFormatter: chart.TimeMinuteValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Severity",
			Style:          axisStyle,
			Range:          &chart.ContinuousRange{Min: 0, Max: 1},
			GridMajorStyle: gridStyle,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "severity",
				Style: chart.Style{
					StrokeColor: drawing.ColorRed,
					FillColor:   drawing.ColorRed.WithAlpha(50),
					StrokeWidth: 1,
				},
				XValues: data.timestamps,
				YValues: data.values,
			},
		},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render severity graph: %w", err)
	}
	return nil
}

// LatencyCharts draws one latency chart per target and kind into dir and
// returns the written files. Series with fewer than two successful checks
// are skipped.
func LatencyCharts(dir string, checks []*models.Check) ([]string, error) {
	series := make(map[seriesKey]*timeline)
	for _, c := range checks {
		latency, ok := c.Latency()
		if !ok {
			continue
		}
		key := keyOf(c)
		if series[key] == nil {
			series[key] = &timeline{}
		}
		series[key].add(c.Time(), float64(latency.Milliseconds()))
	}

	var written []string
	for _, key := range sortedKeys(series) {
		data := series[key]
		if len(data.values) < 2 {
			continue
		}

		graph := chart.Chart{
			Title:      fmt.Sprintf("Latency - %s", key),
			TitleStyle: chart.Style{FontSize: 16},
			Background: padding,
			Width:      1200,
			Height:     400,
			XAxis: chart.XAxis{
				Name:           "Time",
				NameStyle:      chart.Style{FontSize: 12},
				Style:          axisStyle,
				ValueFormatter: chart.TimeMinuteValueFormatter,
			},
			YAxis: chart.YAxis{
				Name:           "Latency (ms)",
				NameStyle:      chart.Style{FontSize: 12},
				Style:          axisStyle,
				GridMajorStyle: gridStyle,
			},
			Series: []chart.Series{
				chart.TimeSeries{
					Name: key.String(),
					Style: chart.Style{
						StrokeColor: chart.GetDefaultColor(0),
						StrokeWidth: 2,
					},
					XValues: data.timestamps,
					YValues: data.values,
				},
			},
		}

		// a flat series has no y range of its own
		if lo, hi := slices.Min(data.values), slices.Max(data.values); lo == hi {
			graph.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: hi + 1}
		}

		// Add moving average
		if len(data.values) > 10 {
			ts := graph.Series[0].(chart.TimeSeries)
			graph.Series = append(graph.Series, chart.SMASeries{
				Name: "Moving Avg",
				Style: chart.Style{
					StrokeColor:     chart.GetDefaultColor(1),
					StrokeWidth:     2,
					StrokeDashArray: []float64{5, 5},
				},
				InnerSeries: ts,
				Period:      10,
			})
		}

		filename := filepath.Join(dir, key.filename("latency"))
		if err := renderFile(filename, graph); err != nil {
			return written, err
		}
		written = append(written, filename)
	}

	return written, nil
}

// AvailabilityChart draws the hourly availability of every target and kind
// into one chart
func AvailabilityChart(w io.Writer, hourly []models.HourlyStat) error {
	series := make(map[seriesKey]*timeline)
	for _, h := range hourly {
		key := seriesKey{kind: h.Kind, target: h.Target}
		if series[key] == nil {
			series[key] = &timeline{}
		}
		series[key].add(h.Hour, 100-h.FailureRate)
	}

	var allSeries []chart.Series
	for i, key := range sortedKeys(series) {
		data := series[key]
		if len(data.values) < 2 {
			continue
		}
		allSeries = append(allSeries, chart.TimeSeries{
			Name: key.String(),
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				StrokeWidth: 2,
			},
			XValues: data.timestamps,
			YValues: data.values,
		})
	}
	if len(allSeries) == 0 {
		return ErrNoData
	}

	graph := chart.Chart{
		Title:      "Availability (Hourly)",
		TitleStyle: chart.Style{FontSize: 16},
		Background: padding,
		Width:      1200,
		Height:     400,
		XAxis: chart.XAxis{
			Name:           "Time",
			Style:          axisStyle,
			ValueFormatter: chart.TimeHourValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Uptime %",
			Style:          axisStyle,
			Range:          &chart.ContinuousRange{Min: 0, Max: 100},
			GridMajorStyle: gridStyle,
		},
		Series: allSeries,
	}
	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render availability chart: %w", err)
	}
	return nil
}

func renderFile(filename string, graph chart.Chart) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := graph.Render(chart.PNG, file); err != nil {
		file.Close()
		return fmt.Errorf("render %s: %w", filepath.Base(filename), err)
	}
	return file.Close()
}

func sortedKeys(m map[seriesKey]*timeline) []seriesKey {
	keys := make([]seriesKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b seriesKey) int {
		if c := strings.Compare(a.kind, b.kind); c != 0 {
			return c
		}
		return strings.Compare(a.target, b.target)
	})
	return keys
}
