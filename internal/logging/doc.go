// Package logging assembles the structured slog loggers used by the qween
// daemon and CLI.
//
// It owns the console and JSON handlers, maps configuration onto levels and
// outputs, and exposes helpers for component loggers, standardized field keys
// (component, session_id, device, event_type) and warnings that carry an
// impact and a hint for the operator. A no-op logger is provided for tests and
// for wiring code that must not fail.
package logging
