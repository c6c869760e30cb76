// Package mirror composes one mirror view: the session controller, the
// parameter store, the sync bridge, preset persistence and camera hotplug
// handling. The daemon owns exactly one Mirror and exposes it over the
// control socket.
package mirror
