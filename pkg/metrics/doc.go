/*
Package metrics provides Prometheus metrics and component health reporting for Lookout.

All metrics are package-level collectors registered with the default Prometheus
registry at init and exposed through Handler() on /metrics.

# Metric Catalogue

Probe:
  - lookout_probes_total{method,result}: probe attempts (method ICMP|TCP, result online|offline)
  - lookout_probe_duration_seconds{method}: per-attempt duration

Scheduler:
  - lookout_targets_scheduled: targets with an active monitoring task
  - lookout_targets_status{status}: cached statuses by online/offline (Collector)
  - lookout_check_cycles_total{trigger}: retry-wrapped cycles (initial, tick, force)
  - lookout_status_transitions_total{status}: online/offline flips

Reconciler:
  - lookout_reconciliation_duration_seconds
  - lookout_reconciliation_cycles_total
  - lookout_reconciliation_changes_total{change}: added, removed, rescheduled

API:
  - lookout_api_requests_total{route,status}
  - lookout_api_request_duration_seconds{route}
  - lookout_websocket_clients

# Timing Operations

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ReconciliationDuration)

# Component Health

Components report their state with UpdateComponent. /health is unhealthy when
any registered component is; /ready additionally requires every entry of
CriticalComponents (storage, monitor, api) to be registered; /live always
answers 200 while the process runs.

	metrics.UpdateComponent(metrics.ComponentMonitor, true, "running")
*/
package metrics
