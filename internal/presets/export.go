package presets

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// Export renders p as a TOML document.
func Export(p Preset) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encode preset: %w", err)
	}
	return buf.Bytes(), nil
}

// Import parses a document produced by Export. Values are clamped to the
// slider range.
func Import(data []byte) (Preset, error) {
	var p Preset
	if err := toml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("parse preset: %w", err)
	}
	name, err := NormalizeName(p.Name)
	if err != nil {
		return Preset{}, err
	}
	p.Name = name
	p.Parameters = p.Parameters.Clamped()
	return p, nil
}
