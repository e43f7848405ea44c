package event

import (
	"encoding/json"
	"fmt"
)

// EventUpgrader rewrites a stored payload from one schema version to the next.
// Upgraders are chained, so each one only handles a single step (v1 -> v2, v2 -> v3...).
type EventUpgrader interface {
	SourceVersion() int
	Upgrade(payload []byte) ([]byte, error)
}

// ExtractVersion reads the schema version of a stored payload.
// Payloads written before versioning carry no version and are treated as version 1.
func ExtractVersion(payload []byte) int {
	var info struct {
		SchemaVersion int `json:"schema_version"`
	}
	if err := json.Unmarshal(payload, &info); err != nil || info.SchemaVersion == 0 {
		return 1
	}
	return info.SchemaVersion
}

// FieldUpgrader upgrades a payload by transforming its decoded JSON object
type FieldUpgrader struct {
	source    int
	transform func(data map[string]any) error
}

// NewFieldUpgrader creates an upgrader from source to source+1 applying transform in place
func NewFieldUpgrader(source int, transform func(data map[string]any) error) *FieldUpgrader {
	return &FieldUpgrader{source: source, transform: transform}
}

// SourceVersion returns the version this upgrader reads
func (u *FieldUpgrader) SourceVersion() int {
	return u.source
}

// Upgrade applies the transformation and stamps the next version
func (u *FieldUpgrader) Upgrade(payload []byte) ([]byte, error) {
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if err := u.transform(data); err != nil {
		return nil, fmt.Errorf("transform v%d failed: %w", u.source, err)
	}
	data["schema_version"] = u.source + 1

	upgraded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upgraded payload: %w", err)
	}
	return upgraded, nil
}

var _ EventUpgrader = (*FieldUpgrader)(nil)
