package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"uptime-monitor/internal/analyze"
	"uptime-monitor/internal/config"
	"uptime-monitor/internal/database"
	"uptime-monitor/internal/logging"
	"uptime-monitor/internal/models"
	"uptime-monitor/internal/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "uptime-report: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := config.ParseReportFlags(flag.NewFlagSet("uptime-report", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// opening a missing path would create an empty store
	if _, err := os.Stat(cfg.DatabasePath); err != nil {
		return fmt.Errorf("store not found: %w", err)
	}
	db, err := database.Open(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}
	defer db.Close()

	snapshot, err := db.Checks(ctx)
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}
	checks, err := analyze.GetChecks(snapshot, cfg.Constraints, cfg.Tolerance)
	if err != nil {
		return err
	}
	logger.Debug("checks selected",
		zap.Int("stored", len(snapshot)),
		zap.Int("selected", len(checks)),
		zap.Bool("failed_only", cfg.Constraints.FailedOnly),
		zap.Stringer("ip", cfg.Constraints.IP))

	opts := report.Options{
		Tolerance: cfg.Tolerance,
		Latest:    cfg.Latest,
		Dump:      cfg.Dump,
	}

	switch {
	case cfg.Outages:
		err = report.Outages(stdout, checks, opts)
	case cfg.Dump:
		err = report.Dump(stdout, checks)
	default:
		meta, merr := db.Meta(ctx)
		if merr != nil {
			return fmt.Errorf("store metadata: %w", merr)
		}
		err = report.Analyze(stdout, checks, &meta, opts)
	}
	if err != nil {
		return err
	}

	if cfg.GraphPath != "" {
		if err := writeGraph(cfg.GraphPath, checks); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "severity graph written to %s\n", cfg.GraphPath)
	}

	if cfg.ChartsDir != "" {
		dir, err := report.NewGenerator(db, logger).GenerateReport(ctx, cfg.ChartsDir, checks, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "report written to %s\n", dir)
	}

	return nil
}

func writeGraph(path string, checks []*models.Check) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.SeverityGraph(file, checks); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("draw severity graph: %w", err)
	}
	return file.Close()
}
