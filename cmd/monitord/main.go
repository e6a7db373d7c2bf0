package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"uptime-monitor/internal/analyze"
	"uptime-monitor/internal/config"
	"uptime-monitor/internal/database"
	"uptime-monitor/internal/logging"
	"uptime-monitor/internal/models"
	"uptime-monitor/internal/monitor"
	"uptime-monitor/internal/probe"
	"uptime-monitor/internal/report"
	"uptime-monitor/internal/web"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "monitord: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// Parse configuration
	cfg, err := config.ParseFlags(flag.NewFlagSet("monitord", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	probers, err := probe.ForKinds(cfg.Kinds, cfg.Timeout, logger)
	if err != nil {
		return err
	}

	// Handle shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TestRun {
		return testRun(ctx, cfg, probers, logger)
	}

	// Initialize database
	db, err := database.Open(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	mon := monitor.New(cfg, db, probers, logger)
	if err := mon.Start(ctx); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}

	if cfg.Port != 0 {
		server := web.New(db, cfg.Port, cfg.Tolerance, logger)
		go func() {
			if err := server.Start(ctx); err != nil {
				logger.Error("web server failed", zap.Error(err))
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")
	mon.Stop()
	mon.Wait()
	return nil
}

// testRun performs one cycle without touching the database and prints it
func testRun(ctx context.Context, cfg config.Config, probers []models.Prober, logger *zap.Logger) error {
	cycle, err := monitor.New(cfg, nil, probers, logger).RunCycle(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("cycle %s at %s\n", cycle.ID, cycle.At.Format(models.TimestampLayout))
	return report.Dump(os.Stdout, analyze.Refs(cycle.Checks))
}
