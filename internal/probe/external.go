package probe

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// externalEchoer invokes the system ping command for environments without
// raw socket access or unprivileged ICMP.
type externalEchoer struct {
	command string
}

func (p externalEchoer) Echo(ctx context.Context, target netip.Addr, timeout time.Duration) (time.Duration, error) {
	command := p.command
	if command == "" {
		command = "ping"
	}

	ctx, cancel := context.WithDeadline(ctx, effectiveDeadline(ctx, timeout+time.Second))
	defer cancel()

	output, err := exec.CommandContext(ctx, command, pingArgs(target.Unmap(), timeout)...).CombinedOutput()
	if err != nil {
		if strings.Contains(strings.ToLower(string(output)), "unreachable") {
			return 0, fmt.Errorf("%w: %w", ErrUnreachable, err)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return 0, fmt.Errorf("%w: %w", ErrNoReply, err)
		}
		return 0, fmt.Errorf("external ping failed: %w", err)
	}

	if rtt, ok := parsePingOutput(string(output)); ok {
		return rtt, nil
	}
	return 0, fmt.Errorf("no round-trip time in ping output")
}

// Platform-specific ping command
func pingArgs(target netip.Addr, timeout time.Duration) []string {
	var args []string
	if target.Is6() {
		args = append(args, "-6")
	}
	switch runtime.GOOS {
	case "windows":
		return append(args, "-n", "1", "-w", strconv.Itoa(int(timeout.Milliseconds())), target.String())
	case "darwin":
		return append(args, "-n", "-c", "1", "-W", strconv.Itoa(max(100, int(timeout.Milliseconds()))), target.String())
	default:
		return append(args, "-n", "-c", "1", "-W", strconv.Itoa(max(1, int(timeout.Seconds()+0.5))), target.String())
	}
}

// Linux/Mac: "time=XX.X ms"
// Windows: "time=XXms" or "time<1ms"
// Summaries: "round-trip min/avg/max/stddev = a/b/c/d ms", "rtt min/avg/max/mdev = a/b/c/d ms"
var rttPatterns = []*regexp.Regexp{
	regexp.MustCompile(`time[=<]([0-9.]+)\s*ms`),
	regexp.MustCompile(`(?:round-trip|rtt) min/avg/max(?:/[a-z]+)? = [0-9.]+/([0-9.]+)/`),
}

// parsePingOutput parses the round-trip time from ping output
func parsePingOutput(output string) (time.Duration, bool) {
	for _, re := range rttPatterns {
		matches := re.FindStringSubmatch(output)
		if len(matches) < 2 {
			continue
		}
		ms, err := strconv.ParseFloat(matches[1], 64)
		if err != nil {
			continue
		}
		return time.Duration(ms * float64(time.Millisecond)), true
	}
	return 0, false
}
