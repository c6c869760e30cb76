package mirror

import (
	"context"
	"errors"
	"fmt"

	"qween/internal/beauty"
	"qween/internal/logging"
	"qween/internal/presets"
)

// ErrPresetsUnavailable is returned when no preset store is configured.
var ErrPresetsUnavailable = errors.New("preset store unavailable")

// Parameters returns the stored parameters and flag.
func (m *Mirror) Parameters() beauty.Snapshot {
	return m.store.Snapshot()
}

// Update sets one slider. The value is clamped to the slider range.
func (m *Mirror) Update(key string, value int) (beauty.Parameters, error) {
	k, err := beauty.ParseKey(key)
	if err != nil {
		return beauty.Parameters{}, err
	}
	return m.store.Update(k, beauty.Clamp(value))
}

// SetEnabled switches effects on or off without touching stored values.
func (m *Mirror) SetEnabled(enabled bool) beauty.Snapshot {
	m.store.SetEnabled(enabled)
	return m.store.Snapshot()
}

// Toggle flips the enabled flag.
func (m *Mirror) Toggle() bool {
	return m.store.Toggle()
}

// Reset restores the default parameters.
func (m *Mirror) Reset() beauty.Parameters {
	return m.store.Reset()
}

// SavePreset stores the current parameters under name.
func (m *Mirror) SavePreset(ctx context.Context, name string) (presets.Preset, error) {
	if m.presets == nil {
		return presets.Preset{}, ErrPresetsUnavailable
	}
	preset, err := m.presets.Save(ctx, name, m.store.Snapshot())
	if err != nil {
		return presets.Preset{}, err
	}
	m.logger.Info("preset saved",
		logging.String(logging.FieldEventType, "preset_saved"),
		logging.String("preset", preset.Name),
	)
	return preset, nil
}

// LoadPreset applies the preset called name.
func (m *Mirror) LoadPreset(ctx context.Context, name string) (presets.Preset, error) {
	if m.presets == nil {
		return presets.Preset{}, ErrPresetsUnavailable
	}
	preset, err := m.presets.Load(ctx, name)
	if err != nil {
		return presets.Preset{}, err
	}
	m.store.Restore(preset.Parameters, preset.Enabled)
	m.logger.Info("preset loaded",
		logging.String(logging.FieldEventType, "preset_loaded"),
		logging.String("preset", preset.Name),
	)
	return preset, nil
}

// ImportPreset saves an exported preset document and returns it.
func (m *Mirror) ImportPreset(ctx context.Context, preset presets.Preset) (presets.Preset, error) {
	if m.presets == nil {
		return presets.Preset{}, ErrPresetsUnavailable
	}
	return m.presets.Save(ctx, preset.Name, preset.Snapshot())
}

// ListPresets returns every saved preset.
func (m *Mirror) ListPresets(ctx context.Context) ([]presets.Preset, error) {
	if m.presets == nil {
		return nil, ErrPresetsUnavailable
	}
	return m.presets.List(ctx)
}

// DeletePreset removes the preset called name.
func (m *Mirror) DeletePreset(ctx context.Context, name string) error {
	if m.presets == nil {
		return ErrPresetsUnavailable
	}
	if err := m.presets.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}
	return nil
}

// Preset returns the preset called name without applying it.
func (m *Mirror) Preset(ctx context.Context, name string) (presets.Preset, error) {
	if m.presets == nil {
		return presets.Preset{}, ErrPresetsUnavailable
	}
	return m.presets.Load(ctx, name)
}
