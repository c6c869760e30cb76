// Package wsengine reaches an AR effect runtime over a websocket.
//
// The runtime hosts the vendor SDK (typically a kiosk browser page) and
// speaks a small JSON protocol. The daemon sends create, auth, get_output,
// set_beautify and close; the runtime answers with created, ready, error,
// auth_request and output. Beautify updates are coalesced: when several
// arrive faster than the socket drains, only the latest is written.
package wsengine
