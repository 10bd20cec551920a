/*
Package storage provides BoltDB-backed persistence for the Lookout dashboard
document.

The document is made of settings, categories, links and widgets. Each kind
lives in its own bucket, keyed by id, with JSON values:

	<dataDir>/lookout.db
	  settings    "settings" -> Settings
	  categories  <id>       -> Category
	  links       <id>       -> Link
	  widgets     <id>       -> Widget

Default settings, including the monitoring defaults (60s interval, 5000ms
timeout, 2 retries), are seeded when the database is first created.

# Updates

Create operations assign a UUID and an order when the entity has no id.
Update operations take a Patch: the top-level JSON fields present in the patch
replace the stored ones and every other field is kept. Nested objects such as
monitoringSettings are replaced as a whole.

Deleting a category deletes its links and moves its child categories to the
top level. Import replaces the whole document in one transaction.

# Errors

Missing entities wrap ErrNotFound and failed validation wraps ErrInvalid; test
with errors.Is.

# Monitoring

Snapshot reads links, widgets and monitoring settings in one read transaction
and is what the monitor uses as its configuration provider.
*/
package storage
