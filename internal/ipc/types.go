package ipc

import (
	"qween/internal/beauty"
	"qween/internal/presets"
	"qween/internal/session"
	"qween/internal/syncbridge"
)

// StatusRequest requests mirror status.
type StatusRequest struct{}

// StatusResponse summarizes the mirror.
type StatusResponse struct {
	Running      bool             `json:"running"`
	Session      session.Status   `json:"session"`
	Parameters   beauty.Snapshot  `json:"parameters"`
	Effective    beauty.Effective `json:"effective"`
	Bridge       syncbridge.Stats `json:"bridge"`
	Device       string           `json:"device"`
	Hotplug      bool             `json:"hotplug"`
	LockPath     string           `json:"lock_path"`
	PresetDBPath string           `json:"preset_db_path"`
	PID          int              `json:"pid"`
}

// ParametersRequest requests the stored parameters.
type ParametersRequest struct{}

// ParametersResponse carries the stored parameters and the values the
// engine receives.
type ParametersResponse struct {
	Parameters beauty.Parameters `json:"parameters"`
	Enabled    bool              `json:"enabled"`
	Effective  beauty.Effective  `json:"effective"`
}

// UpdateRequest sets one slider.
type UpdateRequest struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

// UpdateResponse returns the parameters after the update.
type UpdateResponse struct {
	Key        string            `json:"key"`
	Parameters beauty.Parameters `json:"parameters"`
}

// SetEnabledRequest switches effects on or off.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// SetEnabledResponse echoes the resulting flag.
type SetEnabledResponse struct {
	Enabled bool `json:"enabled"`
}

// ToggleRequest flips the enabled flag.
type ToggleRequest struct{}

// ToggleResponse returns the new flag.
type ToggleResponse struct {
	Enabled bool `json:"enabled"`
}

// ResetRequest restores default parameters.
type ResetRequest struct{}

// ResetResponse returns the defaults now in effect.
type ResetResponse struct {
	Parameters beauty.Parameters `json:"parameters"`
}

// SavePresetRequest stores the current parameters under Name.
type SavePresetRequest struct {
	Name string `json:"name"`
}

// SavePresetResponse returns the stored preset.
type SavePresetResponse struct {
	Preset presets.Preset `json:"preset"`
}

// LoadPresetRequest applies the preset called Name.
type LoadPresetRequest struct {
	Name string `json:"name"`
}

// LoadPresetResponse returns the applied preset.
type LoadPresetResponse struct {
	Preset presets.Preset `json:"preset"`
}

// ListPresetsRequest lists saved presets.
type ListPresetsRequest struct{}

// ListPresetsResponse carries the saved presets ordered by name.
type ListPresetsResponse struct {
	Presets []presets.Preset `json:"presets"`
}

// DeletePresetRequest removes the preset called Name.
type DeletePresetRequest struct {
	Name string `json:"name"`
}

// DeletePresetResponse reports whether the preset was removed.
type DeletePresetResponse struct {
	Deleted bool `json:"deleted"`
}

// ExportPresetRequest renders the preset called Name as TOML.
type ExportPresetRequest struct {
	Name string `json:"name"`
}

// ExportPresetResponse carries the TOML document.
type ExportPresetResponse struct {
	Document string `json:"document"`
}

// ImportPresetRequest stores a TOML preset document.
type ImportPresetRequest struct {
	Document string `json:"document"`
}

// ImportPresetResponse returns the stored preset.
type ImportPresetResponse struct {
	Preset presets.Preset `json:"preset"`
}

// RemountRequest tears the session down and starts a new one.
type RemountRequest struct {
	// TimeoutSeconds bounds the wait for the new session to settle.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// RemountResponse reports the settled session.
type RemountResponse struct {
	Session session.Status `json:"session"`
	// TimedOut is set when the session was still initializing at the deadline.
	TimedOut bool `json:"timed_out"`
}
