package wodjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/soma-satoro/dies/internal/game/stat"
)

var (
	errMissingName   = errors.New("missing stat name")
	errMissingFields = errors.New("game_line, category and stat_type are required")
	errBadValues     = errors.New("values must be a list of integers")
)

// Convert maps one dump entry to a numeric stat definition. Category and type
// are lowercased and must be known to the stat package.
//
// Postcondition: Returns a definition that passes Validate, or an error
// describing why the entry cannot be imported.
func Convert(s Stat) (*stat.Definition, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return nil, errMissingName
	}
	if strings.TrimSpace(s.GameLine) == "" || strings.TrimSpace(s.Category) == "" || strings.TrimSpace(s.StatType) == "" {
		return nil, fmt.Errorf("stat %q: %w", name, errMissingFields)
	}
	values, err := parseValues(s.Values)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", name, err)
	}
	d := &stat.Definition{
		Name:        name,
		Category:    stat.Category(strings.ToLower(strings.TrimSpace(s.Category))),
		Type:        strings.ToLower(strings.TrimSpace(s.StatType)),
		Kind:        stat.Number,
		Values:      values,
		GameLine:    strings.TrimSpace(s.GameLine),
		Description: strings.TrimSpace(s.Description),
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// parseValues accepts a missing or null list as unconstrained.
func parseValues(raw json.RawMessage) ([]stat.Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var nums []json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&nums); err != nil {
		return nil, errBadValues
	}
	out := make([]stat.Value, 0, len(nums))
	for _, n := range nums {
		i, err := n.Int64()
		if err != nil {
			return nil, errBadValues
		}
		out = append(out, stat.Int(int(i)))
	}
	return out, nil
}
