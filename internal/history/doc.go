// Package history records conversion runs in a SQLite database so past runs
// can be listed with `connect2vid history`.
//
// Each run is inserted as running when the pipeline starts and updated with
// its final status, part count and output path when it finishes. The schema
// version lives in PRAGMA user_version; a database stamped with a different
// version is rejected with ErrSchemaMismatch rather than migrated.
package history
