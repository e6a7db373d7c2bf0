// Package probe runs the individual HTTP and ICMP checks of a cycle.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"uptime-monitor/internal/logging"
	"uptime-monitor/internal/models"
)

var (
	// ErrNoReply is returned when an echo request went unanswered
	ErrNoReply = errors.New("no reply")
	// ErrUnreachable is returned when the network reported the target unreachable
	ErrUnreachable = errors.New("destination unreachable")
)

// echoer sends a single ICMP echo request and returns the round-trip time
type echoer interface {
	Echo(ctx context.Context, target netip.Addr, timeout time.Duration) (time.Duration, error)
}

// Classify maps a probe error to the outcome stored with the check
func Classify(err error) models.Outcome {
	if err == nil {
		return models.OutcomeSuccess
	}
	if errors.Is(err, ErrNoReply) || errors.Is(err, context.DeadlineExceeded) {
		return models.OutcomeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.OutcomeTimeout
	}
	if errors.Is(err, ErrUnreachable) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return models.OutcomeUnreachable
	}
	if strings.Contains(strings.ToLower(err.Error()), "unreachable") {
		return models.OutcomeUnreachable
	}
	return models.OutcomeError
}

func record(at time.Time, kind models.CheckKind, target netip.Addr, latency time.Duration, err error) models.Check {
	if err != nil {
		return models.NewFailure(at, kind, target, Classify(err))
	}
	return models.NewSuccess(at, kind, target, latency)
}

func effectiveDeadline(ctx context.Context, timeout time.Duration) time.Time {
	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		return ctxDeadline
	}
	return deadline
}

// ICMPProber sends one echo request per check. It uses raw sockets when
// permitted, then unprivileged go-ping, then the system ping binary.
type ICMPProber struct {
	echo    echoer
	timeout time.Duration
	logger  *zap.Logger
}

// NewICMPProber creates an ICMP prober with the default method chain
func NewICMPProber(timeout time.Duration, logger *zap.Logger) *ICMPProber {
	logger = logging.OrNop(logger).Named("icmp")
	return &ICMPProber{
		echo: &fallbackEchoer{
			methods: []namedEchoer{
				{name: "raw", echoer: newRawEchoer()},
				{name: "go-ping", echoer: goPingEchoer{}},
				{name: "ping", echoer: externalEchoer{}},
			},
			logger: logger,
		},
		timeout: timeout,
		logger:  logger,
	}
}

// Kind implements models.Prober
func (p *ICMPProber) Kind() models.CheckKind {
	return models.KindICMP
}

// Probe implements models.Prober
func (p *ICMPProber) Probe(ctx context.Context, target netip.Addr, at time.Time) models.Check {
	rtt, err := p.echo.Echo(ctx, target, p.timeout)
	if err != nil {
		p.logger.Debug("check failed", zap.Stringer("target", target), zap.Error(err))
	}
	return record(at, models.KindICMP, target, rtt, err)
}

// ForKinds builds one prober per requested kind
func ForKinds(kinds []models.CheckKind, timeout time.Duration, logger *zap.Logger) ([]models.Prober, error) {
	var probers []models.Prober
	for _, k := range kinds {
		switch k {
		case models.KindHTTP:
			probers = append(probers, NewHTTPProber(timeout, logger))
		case models.KindICMP:
			probers = append(probers, NewICMPProber(timeout, logger))
		default:
			return nil, fmt.Errorf("no prober for check kind %s", k)
		}
	}
	return probers, nil
}
