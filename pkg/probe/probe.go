package probe

import (
	"context"
	"time"

	"github.com/cuemby/lookout/pkg/metrics"
)

// Method represents the kind of liveness check performed
type Method string

const (
	MethodICMP Method = "ICMP"
	MethodTCP  Method = "TCP"
)

// DefaultTimeout bounds a single probe attempt when the caller gives none
const DefaultTimeout = 5 * time.Second

// Result represents the outcome of a single probe attempt.
// LatencyMs is set if and only if Alive is true.
type Result struct {
	Alive     bool
	LatencyMs *int64
	Error     string
	Method    Method
	CheckedAt time.Time
}

// Prober is the interface all probes implement. Probe never returns an
// error: every failure mode is folded into the Result.
type Prober interface {
	Probe(ctx context.Context, host string, port int, timeout time.Duration) Result
}

// ProberFunc adapts a function to the Prober interface
type ProberFunc func(ctx context.Context, host string, port int, timeout time.Duration) Result

// Probe calls f
func (f ProberFunc) Probe(ctx context.Context, host string, port int, timeout time.Duration) Result {
	return f(ctx, host, port, timeout)
}

// MethodFor returns the probe method used for the given port
func MethodFor(port int) Method {
	if port > 0 {
		return MethodTCP
	}
	return MethodICMP
}

// Dispatcher routes a probe to ICMP when no port is given and to TCP
// otherwise, bounding each attempt by its timeout.
type Dispatcher struct {
	ICMP Prober
	TCP  Prober
}

// NewDispatcher creates a dispatcher backed by the real ICMP and TCP probes
func NewDispatcher(privilegedICMP bool) *Dispatcher {
	return &Dispatcher{
		ICMP: NewICMPProber().WithPrivileged(privilegedICMP),
		TCP:  NewTCPProber(),
	}
}

// Probe performs one attempt against host, or host:port when port > 0
func (d *Dispatcher) Probe(ctx context.Context, host string, port int, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	timer := metrics.NewTimer()

	var result Result
	if port > 0 {
		result = d.TCP.Probe(probeCtx, host, port, timeout)
	} else {
		result = d.ICMP.Probe(probeCtx, host, 0, timeout)
	}

	outcome := "offline"
	if result.Alive {
		outcome = "online"
	}
	metrics.ProbesTotal.WithLabelValues(string(result.Method), outcome).Inc()
	timer.ObserveDurationVec(metrics.ProbeDuration, string(result.Method))

	return result
}

// failed builds a failed Result
func failed(method Method, start time.Time, msg string) Result {
	return Result{
		Alive:     false,
		Error:     msg,
		Method:    method,
		CheckedAt: start,
	}
}

// succeeded builds a successful Result with the latency rounded to whole milliseconds
func succeeded(method Method, start time.Time, latency time.Duration) Result {
	ms := latency.Round(time.Millisecond).Milliseconds()
	return Result{
		Alive:     true,
		LatencyMs: &ms,
		Method:    method,
		CheckedAt: start,
	}
}
