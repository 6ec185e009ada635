package persist

import (
	"encoding/json"
	"log/slog"
)

// List and map columns are always written as canonical JSON. On read there
// is exactly one fallback: a malformed cell decodes to an empty collection,
// logged at warning level. No type probing beyond that.

func encodeNames(names []string) string {
	if names == nil {
		names = []string{}
	}
	raw, err := json.Marshal(names)
	if err != nil {
		// []string cannot fail to marshal; keep the column well-formed anyway.
		return "[]"
	}
	return string(raw)
}

func encodeMappings(mappings map[string]int64) string {
	if mappings == nil {
		mappings = map[string]int64{}
	}
	raw, err := json.Marshal(mappings)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// DecodeNames parses a JSON string-list cell. Malformed input yields an
// empty list.
func DecodeNames(cell string) []string {
	if cell == "" {
		return []string{}
	}
	var names []string
	if err := json.Unmarshal([]byte(cell), &names); err != nil {
		slog.Warn("malformed name list cell, defaulting to empty", "cell", cell, "error", err)
		return []string{}
	}
	if names == nil {
		return []string{}
	}
	return names
}

// DecodeMappings parses a JSON name-to-EIN map cell. Malformed input yields
// an empty map.
func DecodeMappings(cell string) map[string]int64 {
	if cell == "" {
		return map[string]int64{}
	}
	var mappings map[string]int64
	if err := json.Unmarshal([]byte(cell), &mappings); err != nil {
		slog.Warn("malformed mappings cell, defaulting to empty", "cell", cell, "error", err)
		return map[string]int64{}
	}
	if mappings == nil {
		return map[string]int64{}
	}
	return mappings
}
