package store

import (
	"encoding/json"
	"fmt"
)

// MergePatch applies a shallow merge of patch onto a JSON object blob:
// last writer wins at top-level-key granularity, untouched keys survive.
// An empty or blank blob merges against an empty object.
func MergePatch(blob string, patch map[string]interface{}) (string, error) {
	current := map[string]interface{}{}
	if blob != "" {
		if err := json.Unmarshal([]byte(blob), &current); err != nil {
			return "", fmt.Errorf("store: merge: existing blob is not an object: %w", err)
		}
	}
	for k, v := range patch {
		current[k] = v
	}
	out, err := json.Marshal(current)
	if err != nil {
		return "", fmt.Errorf("store: merge: %w", err)
	}
	return string(out), nil
}

// appendToEvents appends event to the blob's "events" array, creating the
// array if absent. Everything else in the blob is preserved.
func appendToEvents(blob string, event map[string]interface{}) (string, error) {
	current := map[string]interface{}{}
	if blob != "" {
		if err := json.Unmarshal([]byte(blob), &current); err != nil {
			return "", fmt.Errorf("store: append event: existing blob is not an object: %w", err)
		}
	}

	events, _ := current["events"].([]interface{})
	events = append(events, event)
	current["events"] = events

	out, err := json.Marshal(current)
	if err != nil {
		return "", fmt.Errorf("store: append event: %w", err)
	}
	return string(out), nil
}
