// Package report renders checks and outages as text reports and charts.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"uptime-monitor/internal/logging"
	"uptime-monitor/internal/models"
)

// Generator writes a report directory with the text report and charts
type Generator struct {
	store  models.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewGenerator creates a new report generator
func NewGenerator(store models.Store, logger *zap.Logger) *Generator {
	return &Generator{
		store:  store,
		logger: logging.OrNop(logger).Named("report"),
		now:    time.Now,
	}
}

// GenerateReport creates a timestamped directory under outputDir holding
// summary.txt, severity.png, the latency charts and the availability chart,
// and returns its path. A chart that cannot be drawn is logged and skipped.
func (g *Generator) GenerateReport(ctx context.Context, outputDir string, checks []*models.Check, opts Options) (string, error) {
	timestamp := g.now().Format("2006-01-02_15-04-05")
	reportDir := filepath.Join(outputDir, fmt.Sprintf("uptime_report_%s", timestamp))
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	if err := g.writeSummary(ctx, reportDir, checks, opts); err != nil {
		return reportDir, err
	}

	if err := g.writeFile(filepath.Join(reportDir, "severity.png"), func(f *os.File) error {
		return SeverityGraph(f, checks)
	}); err != nil {
		g.logger.Warn("failed to generate severity graph", zap.Error(err))
	}

	files, err := LatencyCharts(reportDir, checks)
	if err != nil {
		g.logger.Warn("failed to generate latency charts", zap.Error(err))
	}
	g.logger.Debug("latency charts written", zap.Strings("files", files))

	if err := g.availability(ctx, reportDir); err != nil {
		g.logger.Warn("failed to generate availability chart", zap.Error(err))
	}

	g.logger.Info("report generated", zap.String("dir", reportDir))
	return reportDir, nil
}

func (g *Generator) writeSummary(ctx context.Context, dir string, checks []*models.Check, opts Options) error {
	meta, err := g.store.Meta(ctx)
	if err != nil {
		return fmt.Errorf("store metadata: %w", err)
	}
	return g.writeFile(filepath.Join(dir, "summary.txt"), func(f *os.File) error {
		fmt.Fprintf(f, "Uptime Report\nGenerated: %s\n\n", g.now().UTC().Format(models.TimestampLayout))
		return Analyze(f, checks, &meta, opts)
	})
}

func (g *Generator) availability(ctx context.Context, dir string) error {
	if err := g.store.AggregateHourlyStats(ctx); err != nil {
		return err
	}
	hourly, err := g.store.HourlyStats(ctx, time.Time{})
	if err != nil {
		return err
	}
	return g.writeFile(filepath.Join(dir, "availability.png"), func(f *os.File) error {
		return AvailabilityChart(f, hourly)
	})
}

// writeFile creates filename, fills it with write and removes it again if
// write fails
func (g *Generator) writeFile(filename string, write func(*os.File) error) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	werr := write(file)
	cerr := file.Close()
	if werr != nil || cerr != nil {
		os.Remove(filename)
		if werr != nil {
			return werr
		}
		return cerr
	}
	return nil
}
