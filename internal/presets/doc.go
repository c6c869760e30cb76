// Package presets persists named beautification parameter sets and the last
// set used, in a SQLite database under the state directory.
//
// Schema changes bump schemaVersion; an older database is rejected with
// ErrSchemaMismatch rather than migrated.
package presets
