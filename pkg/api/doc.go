/*
Package api provides the HTTP surface of Lookout.

# Endpoints

Public:

	GET  /api/public/data           settings, categories, links and enabled widgets
	GET  /api/favicon?url=          redirect to a favicon for the URL's host

Monitor:

	GET  /api/monitor/status        every cached status, keyed by target id
	GET  /api/monitor/status/{id}   one status, 404 when unknown
	POST /api/monitor/check/{id}    check a scheduled target now, 404 when unknown
	POST /api/monitor/test          probe {host, port} once without caching
	GET  /api/monitor/targets       the scheduled targets
	GET  /api/monitor/ws            websocket status stream

Admin (every mutation is followed by a monitor reconcile):

	GET    /api/admin/config
	PUT    /api/admin/settings
	POST   /api/admin/categories    PUT|DELETE /api/admin/categories/{id}    PUT /api/admin/categories/reorder
	POST   /api/admin/links         PUT|DELETE /api/admin/links/{id}         PUT /api/admin/links/reorder
	POST   /api/admin/widgets       PUT|DELETE /api/admin/widgets/{id}       POST /api/admin/widgets/{id}/toggle
	GET    /api/admin/export
	POST   /api/admin/import

Ops: /health, /ready, /live and /metrics.

Errors are returned as {"error": "..."} with 400 for invalid input, 404 for
unknown entities and 500 otherwise. With ReadOnly set, admin requests other
than GET, HEAD and OPTIONS get 403.

# Status stream

The websocket at /api/monitor/ws sends a "snapshot" frame with every status on
connect and every StatusPushInterval, and an "event" frame for each broker
event (status.changed, target.scheduled, target.removed, config.changed).
Clients apply events on top of the last snapshot.
*/
package api
