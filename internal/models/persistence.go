package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// EncodeEnvelope renders d as the persisted record at SchemaVersion.
func EncodeEnvelope(d *Document) ([]byte, error) {
	data, err := yaml.Marshal(Envelope{Version: SchemaVersion, State: d})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return data, nil
}

// DecodeRawEnvelope reads a persisted record without trusting its shape.
// The state is returned untyped for the migration engine; a missing or
// non-integer version reads as 0.
func DecodeRawEnvelope(data []byte) (int, any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return 0, nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	version := 0
	switch v := raw["version"].(type) {
	case int:
		version = v
	case int64:
		version = int(v)
	case uint64:
		version = int(v)
	case float64:
		if v == float64(int(v)) {
			version = int(v)
		}
	}
	return version, raw["state"], nil
}
