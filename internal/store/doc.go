// Package store persists the patientdesk client settings.
//
// The [Store] interface covers settings only; patient records live in the
// backend service and are never cached locally.
//
// Two backends exist, chosen at build time:
//   - SQLite (default): key/value rows in patientdesk.db, schema managed by
//     embedded migrations (see the sqlite subpackage).
//   - bbolt (-tags bolt): one JSON document in patientdesk.bolt.
//
// Use [GetDB] for the store in the application directory, or [Open] for a
// store at an explicit path.
package store
