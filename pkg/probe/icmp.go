package probe

import (
	"context"
	"fmt"
	"net"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// ICMPProber checks liveness with a single ICMP echo request
type ICMPProber struct {
	// Privileged selects raw ICMP sockets instead of unprivileged UDP pings.
	// Unprivileged mode needs net.ipv4.ping_group_range to include the process group.
	Privileged bool

	// Resolver looks up hostnames before pinging
	Resolver *net.Resolver
}

// NewICMPProber creates a new ICMP prober in unprivileged mode
func NewICMPProber() *ICMPProber {
	return &ICMPProber{
		Resolver: net.DefaultResolver,
	}
}

// WithPrivileged toggles raw socket mode
func (p *ICMPProber) WithPrivileged(privileged bool) *ICMPProber {
	p.Privileged = privileged
	return p
}

// Probe sends one echo request to host. The port argument is ignored.
func (p *ICMPProber) Probe(ctx context.Context, host string, _ int, timeout time.Duration) Result {
	start := time.Now()

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// DNS time counts against the probe timeout
	addr, err := p.resolve(ctx, host)
	if err != nil {
		return failed(MethodICMP, start, err.Error())
	}

	pinger, err := probing.NewPinger(addr)
	if err != nil {
		return failed(MethodICMP, start, fmt.Sprintf("create pinger: %v", err))
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(p.Privileged)

	runErr := pinger.RunWithContext(ctx)
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		return failed(MethodICMP, start, "timeout")
	case ctx.Err() != nil:
		return failed(MethodICMP, start, "cancelled")
	case runErr != nil:
		return failed(MethodICMP, start, runErr.Error())
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return failed(MethodICMP, start, "timeout")
	}
	return succeeded(MethodICMP, start, stats.AvgRtt)
}

func (p *ICMPProber) resolve(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}

	resolver := p.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	addrs, err := resolver.LookupIPAddr(ctx, host)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("timeout")
		}
		return "", fmt.Errorf("resolve %s: %w", host, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("resolve %s: no addresses", host)
	}

	// Prefer IPv4, matching what the system ping does by default
	for _, a := range addrs {
		if a.IP.To4() != nil {
			return a.IP.String(), nil
		}
	}
	return addrs[0].IP.String(), nil
}
