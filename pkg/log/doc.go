/*
Package log provides structured logging for Lookout using zerolog.

The package wraps zerolog with a single global Logger, a level/format
configuration, and helpers that create component-scoped child loggers.
Every long-lived component (scheduler, reconciler, monitor, api, storage)
takes a child logger at construction time and logs through it.

# Configuration

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: false, // console output for humans
		Output:     os.Stdout,
	})

Levels:
  - debug: per-probe detail (attempt results, skipped entries)
  - info: lifecycle (service start/stop, reconciliation summaries)
  - warn: malformed configuration entries that were skipped
  - error: failed storage writes, listener errors

Before Init is called the Logger writes JSON to stdout, so packages can log
from tests without any setup.

# Component Loggers

	schedLog := log.WithComponent("scheduler")
	schedLog.Info().Str("target_id", t.ID).Dur("interval", t.Interval).Msg("Target scheduled")

	targetLog := log.WithTarget("scheduler", "link-42", "nas.local", 5000)
	targetLog.Debug().Int("attempt", 2).Msg("Probe failed, retrying")

WithTarget logs ICMP targets (port 0) with method=icmp instead of a port.
ParseLevel validates level names read from the service configuration.

# Output

Console format:

	2025-01-12T10:30:00Z INF Target scheduled component=scheduler target_id=link-42 interval=1m0s

JSON format:

	{"level":"info","component":"scheduler","target_id":"link-42","interval":60000,"time":"2025-01-12T10:30:00Z","message":"Target scheduled"}
*/
package log
