// Package wodjson reads the JSON stat dumps used by the legacy game database:
// a top-level array of objects with name, description, game_line, category,
// stat_type and values fields.
package wodjson

import "encoding/json"

// Stat is one entry of a JSON stat dump.
type Stat struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	GameLine    string          `json:"game_line"`
	Category    string          `json:"category"`
	StatType    string          `json:"stat_type"`
	Values      json.RawMessage `json:"values"`
}
