package session

import (
	"errors"
	"fmt"
	"time"

	"qween/internal/camera"
	"qween/internal/engine"
)

// State is the readiness of the mirror session.
type State string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateReady        State = "ready"
	StateFailed       State = "failed"
)

// Terminal reports whether s ends an initialization attempt.
func (s State) Terminal() bool {
	return s == StateReady || s == StateFailed
}

// FailureKind is the error taxonomy class of a failure.
type FailureKind string

const (
	FailureNone          FailureKind = ""
	FailureConfiguration FailureKind = "configuration"
	FailureCamera        FailureKind = "camera"
	FailureConstruction  FailureKind = "construction"
	FailureRuntime       FailureKind = "runtime"
)

// User-visible failure reasons.
const (
	ReasonMissingCredentials = "missing credentials"
	ReasonCameraDenied       = "camera access denied"
	ReasonNoCamera           = "no camera found"
	ReasonCameraBusy         = "camera busy"
)

// Status is a snapshot of the controller.
type Status struct {
	State      State               `json:"state"`
	Reason     string              `json:"reason,omitempty"`
	Kind       FailureKind         `json:"kind,omitempty"`
	Loading    bool                `json:"loading"`
	Profile    camera.Profile      `json:"profile"`
	Output     *engine.MediaStream `json:"output,omitempty"`
	SessionID  string              `json:"session_id,omitempty"`
	Generation uint64              `json:"generation"`
	StartedAt  time.Time           `json:"started_at,omitzero"`
	SettledAt  time.Time           `json:"settled_at,omitzero"`
	Diagnostic string              `json:"diagnostic,omitempty"`
}

func initializationFailed(err error) string {
	return "initialization failed: " + err.Error()
}

func runtimeFailed(e *engine.Error) string {
	return fmt.Sprintf("AR engine error: %s. Environment: %s", e.Message, e.Environment)
}

// classifyConstruction maps an engine construction error to a failure.
func classifyConstruction(err error) (FailureKind, string) {
	if kind, reason, ok := classifyCamera(err); ok {
		return kind, reason
	}
	return FailureConstruction, initializationFailed(err)
}

// classifyRuntime maps an error event received before Ready. Engine error
// names are reported verbatim; only construction errors carry camera reasons.
func classifyRuntime(e *engine.Error) (FailureKind, string) {
	return FailureRuntime, runtimeFailed(e)
}

// classifyCameraRemoved maps the capture device disappearing before Ready.
func classifyCameraRemoved(*engine.Error) (FailureKind, string) {
	return FailureCamera, ReasonNoCamera
}

func classifyCamera(err error) (FailureKind, string, bool) {
	switch {
	case errors.Is(err, camera.ErrPermissionDenied):
		return FailureCamera, ReasonCameraDenied, true
	case errors.Is(err, camera.ErrNoDevice):
		return FailureCamera, ReasonNoCamera, true
	case errors.Is(err, camera.ErrDeviceBusy):
		return FailureCamera, ReasonCameraBusy, true
	}
	return FailureNone, "", false
}
