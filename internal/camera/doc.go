// Package camera negotiates the capture resolution used for a mirror session
// and watches the configured capture device.
//
// Negotiation asks the device for the ideal 1920x1080 profile and adopts
// whatever the driver grants. A failed probe is never fatal: the negotiator
// logs it and falls back to 640x480 so session construction can proceed and
// surface the real acquisition error.
//
// The V4L2 prober holds an exclusive per-device lock for the duration of a
// probe so two daemons never fight over one camera.
package camera
