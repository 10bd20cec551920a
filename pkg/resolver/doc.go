// Package resolver derives the set of monitor targets from a configuration
// snapshot.
//
// Targets come from two sources: links with monitoring enabled
// ("link-<linkId>") and the servers of enabled server-monitor widgets
// ("widget-<widgetId>-<serverId>"). Entries that cannot yield a host are
// skipped with a warning instead of failing the whole resolution.
package resolver
