// Package fingerprint hashes publish payloads for change detection.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"meetingsync/internal/domain"
)

// Compute returns a stable content hash of the payload with latitude and
// longitude removed. Coordinates drift between geocoding calls for an
// unchanged address and must not trigger a republish. Keys are serialized in
// sorted order so the hash is independent of field layout.
func Compute(m domain.Meeting) (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	var flat map[string]any
	if err := json.Unmarshal(raw, &flat); err != nil {
		return "", fmt.Errorf("flatten payload: %w", err)
	}
	delete(flat, "latitude")
	delete(flat, "longitude")

	blob, err := json.Marshal(flat)
	if err != nil {
		return "", fmt.Errorf("marshal fingerprint input: %w", err)
	}

	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:]), nil
}
