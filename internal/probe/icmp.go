package probe

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const echoData = "uptime-monitor"

// rawEchoer sends ICMP echo requests using raw sockets. It needs
// CAP_NET_RAW or root.
type rawEchoer struct {
	id  int
	seq uint32
}

func newRawEchoer() *rawEchoer {
	return &rawEchoer{id: os.Getpid() & 0xffff}
}

func (p *rawEchoer) Echo(ctx context.Context, target netip.Addr, timeout time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	target = target.Unmap()
	network, protocol, requestType, replyType := icmpSettings(target)
	conn, err := icmp.ListenPacket(network, "")
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	seq := int(atomic.AddUint32(&p.seq, 1) & 0xffff)
	msg := icmp.Message{
		Type: requestType,
		Code: 0,
		Body: &icmp.Echo{
			ID:   p.id,
			Seq:  seq,
			Data: []byte(echoData),
		},
	}
	payload, err := msg.Marshal(nil)
	if err != nil {
		return 0, err
	}

	if err := conn.SetDeadline(effectiveDeadline(ctx, timeout)); err != nil {
		return 0, err
	}

	start := time.Now()
	if _, err := conn.WriteTo(payload, &net.IPAddr{IP: target.AsSlice()}); err != nil {
		return 0, err
	}

	buf := make([]byte, 1500)
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return 0, fmt.Errorf("%w: %w", ErrNoReply, err)
			}
			return 0, err
		}
		if peer == nil {
			continue
		}

		reply, err := icmp.ParseMessage(protocol, buf[:n])
		if err != nil {
			continue
		}
		switch body := reply.Body.(type) {
		case *icmp.Echo:
			if reply.Type != replyType || body.ID != p.id || body.Seq != seq {
				continue
			}
			return time.Since(start), nil
		case *icmp.DstUnreach:
			id, s, ok := quotedEcho(body.Data, target.Is6())
			if ok && id == p.id && s == seq {
				return 0, fmt.Errorf("%w: reported by %s", ErrUnreachable, peer)
			}
		}
	}
}

func icmpSettings(target netip.Addr) (network string, protocol int, requestType icmp.Type, replyType icmp.Type) {
	if target.Is4() {
		return "ip4:icmp", ipv4.ICMPTypeEcho.Protocol(), ipv4.ICMPTypeEcho, ipv4.ICMPTypeEchoReply
	}
	return "ip6:ipv6-icmp", ipv6.ICMPTypeEchoRequest.Protocol(), ipv6.ICMPTypeEchoRequest, ipv6.ICMPTypeEchoReply
}

// quotedEcho extracts the echo identifier and sequence number from the
// original datagram quoted in an ICMP error message.
func quotedEcho(data []byte, v6 bool) (id, seq int, ok bool) {
	var headerLen int
	if v6 {
		headerLen = ipv6.HeaderLen
	} else {
		if len(data) < ipv4.HeaderLen {
			return 0, 0, false
		}
		headerLen = int(data[0]&0x0f) * 4
	}
	// type, code, checksum, id, seq
	if headerLen < ipv4.HeaderLen || len(data) < headerLen+8 {
		return 0, 0, false
	}
	echo := data[headerLen:]
	return int(binary.BigEndian.Uint16(echo[4:6])), int(binary.BigEndian.Uint16(echo[6:8])), true
}
