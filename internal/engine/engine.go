// Package engine defines the capability the mirror needs from an AR effect
// runtime: create a camera-backed session, observe its lifecycle, fetch the
// processed output and push beautification values.
package engine

import (
	"context"
	"errors"
	"fmt"

	"qween/internal/auth"
	"qween/internal/beauty"
	"qween/internal/camera"
)

// CameraConfig is the capture configuration handed to the runtime.
type CameraConfig struct {
	Width  int  `json:"width"`
	Height int  `json:"height"`
	Mirror bool `json:"mirror"`
}

// LoadingConfig controls the runtime's own loading indicator.
type LoadingConfig struct {
	Enabled   bool `json:"enabled"`
	LineWidth int  `json:"lineWidth"`
}

// Config describes one session. Auth is invoked whenever the runtime asks
// for a fresh signature.
type Config struct {
	Auth       func() auth.Signature
	AppID      string
	LicenseKey string
	Camera     CameraConfig
	Loading    LoadingConfig
	Beautify   beauty.Effective
}

// EventKind is a session lifecycle notification.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventReady   EventKind = "ready"
	EventError   EventKind = "error"
)

// Event is delivered on Session.Events. Err is set for EventError.
type Event struct {
	Kind EventKind
	Err  *Error
}

// MediaStream describes the processed output handed to presentation.
type MediaStream struct {
	ID     string `json:"id"`
	URL    string `json:"url,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Session is a live effect session.
type Session interface {
	// Events is closed when the session ends.
	Events() <-chan Event
	Output(ctx context.Context) (MediaStream, error)
	// SetBeautify is fire-and-forget.
	SetBeautify(values beauty.Effective)
	Close() error
}

// Engine constructs sessions.
type Engine interface {
	Create(ctx context.Context, cfg Config) (Session, error)
}

// Error is a runtime-reported failure.
type Error struct {
	Message     string `json:"message"`
	Code        int    `json:"code,omitempty"`
	Name        string `json:"name,omitempty"`
	Environment string `json:"environment,omitempty"`
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Message)
	}
	return e.Message
}

// Unwrap maps the runtime's camera error names onto the camera sentinels.
func (e *Error) Unwrap() error {
	switch e.Name {
	case "NotAllowedError", "PermissionDeniedError", "SecurityError":
		return camera.ErrPermissionDenied
	case "NotFoundError", "DevicesNotFoundError", "OverconstrainedError":
		return camera.ErrNoDevice
	case "NotReadableError", "TrackStartError", "AbortError":
		return camera.ErrDeviceBusy
	}
	return nil
}

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("engine session closed")
