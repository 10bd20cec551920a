/*
Package probe performs single liveness checks against a host.

Two probes exist, selected by whether a port is given:

	port == 0  →  ICMP echo (pro-bing), one packet
	port  > 0  →  TCP connect to host:port

Both implement Prober. A probe never returns an error value; unreachable hosts,
DNS failures, refusals and timeouts all come back as

	Result{Alive: false, LatencyMs: nil, Error: "<short diagnostic>"}

and a reply comes back as Alive with LatencyMs in whole milliseconds. Timeouts
are reported as the string "timeout".

The Dispatcher is what the scheduler uses: it routes by port, wraps every
attempt in its own context deadline (DefaultTimeout when none is given) and
records probe metrics.

# ICMP privileges

By default pings use unprivileged UDP ICMP sockets, which on Linux requires the
process group to be inside net.ipv4.ping_group_range. Set Privileged (or the
icmp_privileged config option) to use raw sockets when running as root or with
CAP_NET_RAW.
*/
package probe
