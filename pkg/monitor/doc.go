// Package monitor is the host monitoring service facade.
//
// A Monitor wires the resolver, reconciler, scheduler and status cache
// together. Start loads the configuration and schedules every target,
// Reconcile is called after each configuration change, and Stop tears all
// tasks down and clears the cache. Readers only ever see the status cache;
// they never wait on a probe, except through ForceCheck and TestHost which run
// one on demand.
//
//	mon := monitor.NewMonitor(probe.NewDispatcher(false)).WithBroker(broker)
//	if err := mon.Start(ctx, store); err != nil {
//		return err
//	}
//	defer mon.Stop()
package monitor
