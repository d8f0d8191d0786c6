package wodjson

import (
	"encoding/json"
	"fmt"
)

// ParseStats decodes a JSON stat dump.
//
// Postcondition: Returns the entries in file order, or an error when data is
// not a JSON array of objects.
func ParseStats(data []byte) ([]Stat, error) {
	var out []Stat
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding stat dump: %w", err)
	}
	return out, nil
}
