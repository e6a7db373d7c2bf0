package probe

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/go-ping/ping"
)

// goPingEchoer uses go-ping in unprivileged (UDP datagram) mode, which
// works for users inside net.ipv4.ping_group_range.
type goPingEchoer struct{}

func (goPingEchoer) Echo(ctx context.Context, target netip.Addr, timeout time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	pinger, err := ping.NewPinger(target.Unmap().String())
	if err != nil {
		return 0, fmt.Errorf("create pinger: %w", err)
	}
	pinger.Count = 1
	pinger.Timeout = time.Until(effectiveDeadline(ctx, timeout))
	pinger.SetPrivileged(false)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pinger.Stop()
		case <-done:
		}
	}()

	if err := pinger.Run(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return 0, fmt.Errorf("%w from %s after %v", ErrNoReply, target, timeout)
	}
	return stats.AvgRtt, nil
}
