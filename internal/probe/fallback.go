package probe

import (
	"context"
	"errors"
	"net/netip"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type namedEchoer struct {
	name string
	echoer
}

// fallbackEchoer tries each method in order and moves on to the next one
// when a method cannot run for lack of privileges. The method that worked
// is remembered for later echoes. The last method is always tried.
type fallbackEchoer struct {
	methods []namedEchoer
	active  atomic.Int32
	logger  *zap.Logger
}

func (f *fallbackEchoer) Echo(ctx context.Context, target netip.Addr, timeout time.Duration) (time.Duration, error) {
	for i := int(f.active.Load()); ; i++ {
		rtt, err := f.methods[i].Echo(ctx, target, timeout)
		if !isUnavailable(err) || i == len(f.methods)-1 {
			return rtt, err
		}
		if f.active.CompareAndSwap(int32(i), int32(i+1)) {
			f.logger.Warn("icmp method unavailable, falling back",
				zap.String("method", f.methods[i].name),
				zap.String("next", f.methods[i+1].name),
				zap.Error(err))
		}
	}
}

// isUnavailable reports whether err means the method cannot be used at all
func isUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) ||
		errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPROTONOSUPPORT) ||
		errors.Is(err, exec.ErrNotFound) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "operation not permitted") || strings.Contains(msg, "permission denied")
}
