package config

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"uptime-monitor/internal/analyze"
	"uptime-monitor/internal/models"
)

// Config holds all configuration for the monitor daemon
type Config struct {
	Targets      []netip.Addr
	Kinds        []models.CheckKind
	Interval     time.Duration
	Timeout      time.Duration
	Tolerance    time.Duration
	Retention    time.Duration
	DatabasePath string
	Port         int
	LogLevel     string
	TestRun      bool
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("at least one target must be specified")
	}
	if len(c.Kinds) == 0 {
		return fmt.Errorf("at least one check kind must be specified")
	}
	for _, k := range c.Kinds {
		if k == models.KindUnknown || k == models.KindDNS {
			return fmt.Errorf("check kind %q cannot be probed", k.Code())
		}
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Timeout >= c.Interval {
		return fmt.Errorf("timeout %v must be shorter than the interval %v", c.Timeout, c.Interval)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("outage tolerance cannot be negative")
	}
	if c.Retention < 0 {
		return fmt.Errorf("retention cannot be negative")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535")
	}
	return nil
}

// ReportConfig holds the options of the reporting tool
type ReportConfig struct {
	DatabasePath string
	Tolerance    time.Duration
	LogLevel     string

	Outages bool
	Dump    bool
	Latest  int

	Constraints analyze.AccessConstraints

	GraphPath string
	ChartsDir string
}

var errBothFamilies = errors.New("-ipv4 and -ipv6 are mutually exclusive")

// Validate checks if the report options are consistent
func (c *ReportConfig) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("outage tolerance cannot be negative")
	}
	if c.Latest < 0 {
		return fmt.Errorf("latest must not be negative")
	}
	return c.Constraints.Validate()
}

// DefaultTargets are probed when no -targets flag is given
var DefaultTargets = []string{"1.1.1.1", "2606:4700:4700::1111"}

// ParseTargets parses comma separated IP addresses
func ParseTargets(raw []string) ([]netip.Addr, error) {
	var out []netip.Addr
	for _, s := range raw {
		if s == "" {
			continue
		}
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", s, err)
		}
		out = append(out, addr)
	}
	return out, nil
}

// ParseKinds parses check kind codes such as "http" and "icmp"
func ParseKinds(raw []string) ([]models.CheckKind, error) {
	var out []models.CheckKind
	for _, s := range raw {
		if s == "" {
			continue
		}
		k, ok := models.ParseCheckKind(s)
		if !ok {
			return nil, fmt.Errorf("unknown check kind %q", s)
		}
		out = append(out, k)
	}
	return out, nil
}
