package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"time"

	"go.uber.org/zap"

	"uptime-monitor/internal/logging"
	"uptime-monitor/internal/models"
)

// HTTPProber measures the time to complete a HEAD request against the
// target's address. Any HTTP response counts as success; only transport
// failures make the check fail.
type HTTPProber struct {
	client *http.Client
	scheme string
	port   uint16
	logger *zap.Logger
}

// NewHTTPProber creates a prober that sends HEAD requests to http://<target>/
func NewHTTPProber(timeout time.Duration, logger *zap.Logger) *HTTPProber {
	return &HTTPProber{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		scheme: "http",
		logger: logging.OrNop(logger).Named("http"),
	}
}

// Kind implements models.Prober
func (p *HTTPProber) Kind() models.CheckKind {
	return models.KindHTTP
}

// Probe implements models.Prober
func (p *HTTPProber) Probe(ctx context.Context, target netip.Addr, at time.Time) models.Check {
	latency, err := p.head(ctx, target)
	if err != nil {
		p.logger.Debug("check failed", zap.Stringer("target", target), zap.Error(err))
	}
	return record(at, models.KindHTTP, target, latency, err)
}

func (p *HTTPProber) head(ctx context.Context, target netip.Addr) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url(target), nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	latency := time.Since(start)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return latency, nil
}

// url brackets IPv6 literals so they form a valid host
func (p *HTTPProber) url(target netip.Addr) string {
	if p.port != 0 {
		return fmt.Sprintf("%s://%s/", p.scheme, netip.AddrPortFrom(target, p.port))
	}
	if target.Is6() && !target.Is4In6() {
		return fmt.Sprintf("%s://[%s]/", p.scheme, target)
	}
	return fmt.Sprintf("%s://%s/", p.scheme, target.Unmap())
}
