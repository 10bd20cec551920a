/*
Package types defines the data structures shared across Lookout.

Two families of types live here:

  - The dashboard document (Document, Settings, Category, Link, Widget) as it is
    stored, exported and imported. JSON field names are camelCase so an exported
    document round-trips through the admin API unchanged.
  - The monitoring model (MonitorTarget, StatusRecord, TestResult). Targets are
    derived from the document on demand and never persisted; status records
    live only in the in-memory status cache.

# Ports

A port of 0 means "no port" and selects an ICMP ping instead of a TCP connect.
Records exposed to API clients carry the port as a nullable value (see PortPtr)
so "no port" serialises as null.

# Target identity

MonitorTarget.ID is a deterministic composite key:

	link-<linkId>
	widget-<widgetId>-<serverId>

The same logical target always resolves to the same id, which is what lets the
reconciler diff two resolutions by id alone.
*/
package types
