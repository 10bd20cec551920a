package probe

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"
)

// TCPProber checks liveness by opening a TCP connection
type TCPProber struct {
	// Timeout is the connection timeout used when the caller passes none (default: 5 seconds)
	Timeout time.Duration
}

// NewTCPProber creates a new TCP prober
func NewTCPProber() *TCPProber {
	return &TCPProber{
		Timeout: DefaultTimeout,
	}
}

// Probe connects to host:port. Latency is the wall-clock time from the
// start of the connect attempt to the established connection.
func (t *TCPProber) Probe(ctx context.Context, host string, port int, timeout time.Duration) Result {
	start := time.Now()

	if timeout <= 0 {
		timeout = t.Timeout
	}

	dialer := &net.Dialer{
		Timeout: timeout,
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return failed(MethodTCP, start, describeDialError(err))
	}
	latency := time.Since(start)
	_ = conn.Close()

	return succeeded(MethodTCP, start, latency)
}

// WithTimeout sets the fallback connection timeout
func (t *TCPProber) WithTimeout(timeout time.Duration) *TCPProber {
	t.Timeout = timeout
	return t
}

func describeDialError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Err != nil {
		return opErr.Err.Error()
	}
	return err.Error()
}
