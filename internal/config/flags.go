package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"uptime-monitor/internal/analyze"
)

// SinceLayouts are accepted by the -since flag, tried in order
var SinceLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseFlags parses the monitor daemon's command-line flags
func ParseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	var (
		interval  = fs.Duration("interval", 60*time.Second, "Check interval")
		timeout   = fs.Duration("timeout", 10*time.Second, "Per-check timeout")
		tolerance = fs.Duration("tolerance", analyze.DefaultTolerance, "Largest gap between failing cycles of one outage")
		retention = fs.Duration("retention", 0, "Delete checks older than this (0 keeps everything)")
		dbPath    = fs.String("db", "uptime.db", "Database path")
		port      = fs.Int("port", 8080, "Web API port (0 disables it)")
		targets   = fs.String("targets", strings.Join(DefaultTargets, ","), "Comma-separated target IP addresses")
		kinds     = fs.String("kinds", "http,icmp", "Comma-separated check kinds")
		logLevel  = fs.String("log-level", "info", "Log level (debug, info, warn, error)")
		testRun   = fs.Bool("test", false, "Run one check cycle, print it and exit")
	)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	addrs, err := ParseTargets(strings.Split(*targets, ","))
	if err != nil {
		return Config{}, err
	}
	ks, err := ParseKinds(strings.Split(*kinds, ","))
	if err != nil {
		return Config{}, err
	}

	return Config{
		Targets:      addrs,
		Kinds:        ks,
		Interval:     *interval,
		Timeout:      *timeout,
		Tolerance:    *tolerance,
		Retention:    *retention,
		DatabasePath: *dbPath,
		Port:         *port,
		LogLevel:     *logLevel,
		TestRun:      *testRun,
	}, nil
}

// ParseReportFlags parses the reporting tool's command-line flags
func ParseReportFlags(fs *flag.FlagSet, args []string) (ReportConfig, error) {
	var (
		dbPath    = fs.String("db", "uptime.db", "Database path")
		tolerance = fs.Duration("tolerance", analyze.DefaultTolerance, "Largest gap between failing cycles of one outage")
		logLevel  = fs.String("log-level", "warn", "Log level (debug, info, warn, error)")
		outages   = fs.Bool("outages", false, "List outages only")
		dump      = fs.Bool("dump", false, "Print the checks (with -outages: the checks of every outage)")
		latest    = fs.Int("latest", 0, "Only show the N latest outages (0 shows all)")
		ipv4      = fs.Bool("ipv4", false, "Only consider IPv4 checks")
		ipv6      = fs.Bool("ipv6", false, "Only consider IPv6 checks")
		failed    = fs.Bool("failed", false, "Only consider failed checks")
		complete  = fs.Bool("complete", false, "Only consider checks inside complete outages (implies -failed)")
		since     = fs.String("since", "", "Only consider checks at or after DATETIME")
		graph     = fs.String("graph", "", "Draw the severity over time to this PNG file")
		charts    = fs.String("charts", "", "Write latency and availability charts into this directory")
	)
	if err := fs.Parse(args); err != nil {
		return ReportConfig{}, err
	}
	if *ipv4 && *ipv6 {
		return ReportConfig{}, errBothFamilies
	}

	cfg := ReportConfig{
		DatabasePath: *dbPath,
		Tolerance:    *tolerance,
		LogLevel:     *logLevel,
		Outages:      *outages,
		Dump:         *dump,
		Latest:       *latest,
		GraphPath:    *graph,
		ChartsDir:    *charts,
		Constraints: analyze.AccessConstraints{
			FailedOnly:          *failed || *complete,
			OnlyCompleteOutages: *complete,
		},
	}
	switch {
	case *ipv4:
		cfg.Constraints.IP = analyze.IPOnlyV4
	case *ipv6:
		cfg.Constraints.IP = analyze.IPOnlyV6
	}
	if *since != "" {
		t, err := ParseSince(*since)
		if err != nil {
			return ReportConfig{}, err
		}
		cfg.Constraints.Since = &t
	}
	return cfg, nil
}

// ParseSince parses a -since value; values without a zone are local time
func ParseSince(s string) (time.Time, error) {
	for _, layout := range SinceLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date/time, use one of %s", s, strings.Join(SinceLayouts, ", "))
}
