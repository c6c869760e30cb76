// Package session drives one AR mirror session from Idle through
// Initializing to Ready or Failed.
//
// A Controller is latched by Start and unlatched by Stop: a second Start
// before Stop is ignored, so a mirror view never constructs two engine
// sessions. Every asynchronous result carries the generation it was started
// under and is discarded once Stop has moved the controller on.
package session
