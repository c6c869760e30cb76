// Package logs reads the daemon log file for `qween logs`.
//
// Tail returns the last lines of the file and the byte offset reached, and
// Follow keeps polling from that offset until the context ends. A Filter
// narrows output to one component or session, matching both the console and
// JSON encodings written by internal/logging.
package logs
