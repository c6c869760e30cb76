// Package ipc exposes the mirror over JSON-RPC on a Unix socket and ships
// the matching client used by the CLI.
//
// The wire types in types.go are the protocol; keep field names stable when
// adding endpoints so older CLI builds keep working.
package ipc
