package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"uptime-monitor/internal/models"
)

var baseTime = time.Date(2023, 6, 10, 20, 35, 0, 0, time.UTC)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want models.Outcome
	}{
		{name: "nil", err: nil, want: models.OutcomeSuccess},
		{name: "no reply", err: fmt.Errorf("wrapped: %w", ErrNoReply), want: models.OutcomeTimeout},
		{name: "context deadline", err: context.DeadlineExceeded, want: models.OutcomeTimeout},
		{name: "net timeout", err: timeoutErr{}, want: models.OutcomeTimeout},
		{name: "icmp unreachable", err: ErrUnreachable, want: models.OutcomeUnreachable},
		{name: "host unreachable", err: &os.SyscallError{Syscall: "connect", Err: syscall.EHOSTUNREACH}, want: models.OutcomeUnreachable},
		{name: "unreachable text", err: errors.New("Network is unreachable"), want: models.OutcomeUnreachable},
		{name: "other", err: errors.New("connection reset by peer"), want: models.OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestParsePingOutput(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected time.Duration
		ok       bool
	}{
		{
			name:     "macOS individual response",
			output:   "64 bytes from 8.8.8.8: icmp_seq=0 ttl=118 time=44.347 ms",
			expected: 44347 * time.Microsecond,
			ok:       true,
		},
		{
			name:     "macOS summary line",
			output:   "round-trip min/avg/max/stddev = 44.347/44.347/44.347/0.000 ms",
			expected: 44347 * time.Microsecond,
			ok:       true,
		},
		{
			name:     "Linux summary line",
			output:   "rtt min/avg/max/mdev = 12.100/12.300/12.500/0.100 ms",
			expected: 12300 * time.Microsecond,
			ok:       true,
		},
		{
			name:     "BusyBox summary line",
			output:   "round-trip min/avg/max = 12.3/12.3/12.3 ms",
			expected: 12300 * time.Microsecond,
			ok:       true,
		},
		{
			name:     "Windows response",
			output:   "Reply from 8.8.8.8: bytes=32 time=15ms TTL=118",
			expected: 15 * time.Millisecond,
			ok:       true,
		},
		{
			name:     "Windows sub-millisecond reports the bound",
			output:   "Reply from 8.8.8.8: bytes=32 time<1ms TTL=118",
			expected: time.Millisecond,
			ok:       true,
		},
		{
			name:   "No match",
			output: "ping: unknown host example.invalid",
		},
		{
			name:   "Empty output",
			output: "",
		},
		{
			name: "Multiple lines with macOS output",
			output: `PING 8.8.8.8 (8.8.8.8): 56 data bytes
64 bytes from 8.8.8.8: icmp_seq=0 ttl=118 time=44.347 ms

--- 8.8.8.8 ping statistics ---
1 packets transmitted, 1 packets received, 0.0% packet loss
round-trip min/avg/max/stddev = 44.347/44.347/44.347/0.000 ms`,
			expected: 44347 * time.Microsecond,
			ok:       true,
		},
		{
			name:     "Single digit RTT",
			output:   "64 bytes from 8.8.8.8: icmp_seq=0 ttl=118 time=5.2 ms",
			expected: 5200 * time.Microsecond,
			ok:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parsePingOutput(tt.output)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, float64(tt.expected), float64(got), float64(time.Microsecond))
		})
	}
}

func TestPingArgs(t *testing.T) {
	v4 := pingArgs(netip.MustParseAddr("1.1.1.1"), 2*time.Second)
	assert.Equal(t, "1.1.1.1", v4[len(v4)-1])
	assert.NotContains(t, v4, "-6")

	v6 := pingArgs(netip.MustParseAddr("2606:4700:4700::1111"), 2*time.Second)
	assert.Equal(t, "-6", v6[0])
	assert.Equal(t, "2606:4700:4700::1111", v6[len(v6)-1])
}

func TestICMPSettings(t *testing.T) {
	network, _, _, _ := icmpSettings(netip.MustParseAddr("127.0.0.1"))
	assert.Equal(t, "ip4:icmp", network)

	network, _, _, _ = icmpSettings(netip.MustParseAddr("2001:db8::1"))
	assert.Equal(t, "ip6:ipv6-icmp", network)
}

func TestQuotedEcho(t *testing.T) {
	echo := []byte{8, 0, 0xab, 0xcd, 0x12, 0x34, 0x00, 0x07}

	v4 := append(make([]byte, 20), echo...)
	v4[0] = 0x45
	id, seq, ok := quotedEcho(v4, false)
	require.True(t, ok)
	assert.Equal(t, 0x1234, id)
	assert.Equal(t, 7, seq)

	v6 := append(make([]byte, 40), echo...)
	id, seq, ok = quotedEcho(v6, true)
	require.True(t, ok)
	assert.Equal(t, 0x1234, id)
	assert.Equal(t, 7, seq)

	_, _, ok = quotedEcho(v4[:24], false)
	assert.False(t, ok, "truncated quote")

	_, _, ok = quotedEcho([]byte{0x41}, false)
	assert.False(t, ok)
}

type stubEchoer struct {
	rtt   time.Duration
	err   error
	calls int
}

func (s *stubEchoer) Echo(ctx context.Context, target netip.Addr, timeout time.Duration) (time.Duration, error) {
	s.calls++
	return s.rtt, s.err
}

func newFallback(t *testing.T, echoers ...*stubEchoer) *fallbackEchoer {
	f := &fallbackEchoer{logger: zaptest.NewLogger(t)}
	for i, e := range echoers {
		f.methods = append(f.methods, namedEchoer{name: strconv.Itoa(i), echoer: e})
	}
	return f
}

func TestFallbackOnPermissionError(t *testing.T) {
	target := netip.MustParseAddr("1.1.1.1")
	raw := &stubEchoer{err: &os.SyscallError{Syscall: "socket", Err: syscall.EPERM}}
	unpriv := &stubEchoer{rtt: 12 * time.Millisecond}
	external := &stubEchoer{}
	f := newFallback(t, raw, unpriv, external)

	rtt, err := f.Echo(context.Background(), target, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 12*time.Millisecond, rtt)

	_, err = f.Echo(context.Background(), target, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, raw.calls, "unavailable method is not retried")
	assert.Equal(t, 2, unpriv.calls)
	assert.Zero(t, external.calls)
}

func TestFallbackKeepsOrdinaryFailures(t *testing.T) {
	raw := &stubEchoer{err: ErrNoReply}
	next := &stubEchoer{}
	f := newFallback(t, raw, next)

	_, err := f.Echo(context.Background(), netip.MustParseAddr("1.1.1.1"), time.Second)
	assert.ErrorIs(t, err, ErrNoReply)
	assert.Zero(t, next.calls)
}

func TestFallbackLastMethodAlwaysAnswers(t *testing.T) {
	denied := errors.New("listen ip4:icmp: permission denied")
	f := newFallback(t, &stubEchoer{err: denied}, &stubEchoer{err: exec.ErrNotFound})

	for i := 0; i < 2; i++ {
		_, err := f.Echo(context.Background(), netip.MustParseAddr("1.1.1.1"), time.Second)
		assert.ErrorIs(t, err, exec.ErrNotFound)
	}
}

func TestICMPProberRecordsOutcome(t *testing.T) {
	target := netip.MustParseAddr("2606:4700:4700::1111")
	stub := &stubEchoer{rtt: 9 * time.Millisecond}
	p := &ICMPProber{echo: stub, timeout: time.Second, logger: zaptest.NewLogger(t)}

	c := p.Probe(context.Background(), target, baseTime)
	assert.True(t, c.IsSuccess())
	assert.Equal(t, models.KindICMP, c.Kind())
	assert.Equal(t, models.IPv6, c.IPFamily())
	assert.Equal(t, baseTime.Unix(), c.Timestamp())

	stub.err = ErrNoReply
	c = p.Probe(context.Background(), target, baseTime)
	assert.False(t, c.IsSuccess())
	assert.Equal(t, models.OutcomeTimeout, c.Outcome())
}

func testHTTPProber(t *testing.T, server *httptest.Server, timeout time.Duration) (*HTTPProber, netip.Addr) {
	t.Helper()
	addrPort := netip.MustParseAddrPort(server.Listener.Addr().String())
	p := NewHTTPProber(timeout, zaptest.NewLogger(t))
	p.port = addrPort.Port()
	return p, addrPort.Addr()
}

func TestHTTPProber(t *testing.T) {
	var method string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p, target := testHTTPProber(t, server, time.Second)
	c := p.Probe(context.Background(), target, baseTime)

	assert.Equal(t, http.MethodHead, method)
	assert.True(t, c.IsSuccess(), "any response means the target is reachable")
	assert.Equal(t, models.KindHTTP, c.Kind())
	_, ok := c.Latency()
	assert.True(t, ok)
}

func TestHTTPProberTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	p, target := testHTTPProber(t, server, 50*time.Millisecond)
	c := p.Probe(context.Background(), target, baseTime)

	assert.False(t, c.IsSuccess())
	assert.Equal(t, models.OutcomeTimeout, c.Outcome())
}

func TestHTTPProberConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	p, target := testHTTPProber(t, server, time.Second)
	server.Close()

	c := p.Probe(context.Background(), target, baseTime)
	assert.False(t, c.IsSuccess())
	assert.Equal(t, models.OutcomeError, c.Outcome())
}

func TestHTTPURL(t *testing.T) {
	p := NewHTTPProber(time.Second, nil)
	assert.Equal(t, "http://1.1.1.1/", p.url(netip.MustParseAddr("1.1.1.1")))
	assert.Equal(t, "http://[2606:4700:4700::1111]/", p.url(netip.MustParseAddr("2606:4700:4700::1111")))
	assert.Equal(t, "http://1.1.1.1/", p.url(netip.MustParseAddr("::ffff:1.1.1.1")))
}

func TestForKinds(t *testing.T) {
	probers, err := ForKinds([]models.CheckKind{models.KindHTTP, models.KindICMP}, time.Second, nil)
	require.NoError(t, err)
	require.Len(t, probers, 2)
	assert.Equal(t, models.KindHTTP, probers[0].Kind())
	assert.Equal(t, models.KindICMP, probers[1].Kind())

	_, err = ForKinds([]models.CheckKind{models.KindDNS}, time.Second, nil)
	assert.Error(t, err)
}

func TestExternalEchoLoopback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ping integration test in short mode")
	}
	if _, err := exec.LookPath("ping"); err != nil {
		t.Skip("ping binary not available on PATH")
	}

	rtt, err := externalEchoer{}.Echo(context.Background(), netip.MustParseAddr("127.0.0.1"), 2*time.Second)
	if err != nil {
		t.Skipf("skipping due to unexpected ping failure: %v", err)
	}
	assert.GreaterOrEqual(t, rtt, time.Duration(0))
}
