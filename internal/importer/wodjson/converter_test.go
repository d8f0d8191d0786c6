package wodjson_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/soma-satoro/dies/internal/game/stat"
	"github.com/soma-satoro/dies/internal/importer/wodjson"
)

func TestConvert_Valid(t *testing.T) {
	d, err := wodjson.Convert(wodjson.Stat{
		Name:        " Brawl ",
		Description: "Unarmed combat.",
		GameLine:    "Vampire",
		Category:    "Abilities",
		StatType:    "Talent",
		Values:      json.RawMessage(`[0,1,2,3,4,5]`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Brawl", d.Name)
	assert.Equal(t, stat.Abilities, d.Category)
	assert.Equal(t, "talent", d.Type)
	assert.Equal(t, stat.Number, d.Kind)
	assert.Len(t, d.Values, 6)
	assert.Equal(t, "Vampire", d.GameLine)
}

func TestConvert_MissingValuesIsUnconstrained(t *testing.T) {
	for _, raw := range []string{"", "null"} {
		d, err := wodjson.Convert(wodjson.Stat{
			Name: "Generation", GameLine: "Vampire", Category: "backgrounds", StatType: "background",
			Values: json.RawMessage(raw),
		})
		require.NoError(t, err)
		assert.Empty(t, d.Values)
	}
}

func TestConvert_Rejects(t *testing.T) {
	cases := []struct {
		name string
		in   wodjson.Stat
		want string
	}{
		{"no name", wodjson.Stat{GameLine: "Mortal", Category: "abilities", StatType: "talent"}, "missing stat name"},
		{"no game line", wodjson.Stat{Name: "Brawl", Category: "abilities", StatType: "talent"}, "required"},
		{"string values", wodjson.Stat{Name: "Clan", GameLine: "Vampire", Category: "identity", StatType: "lineage",
			Values: json.RawMessage(`["Brujah"]`)}, "list of integers"},
		{"fractional values", wodjson.Stat{Name: "Brawl", GameLine: "Mortal", Category: "abilities", StatType: "talent",
			Values: json.RawMessage(`[1.5]`)}, "list of integers"},
		{"unknown category", wodjson.Stat{Name: "Brawl", GameLine: "Mortal", Category: "weapons", StatType: "talent"}, "unknown category"},
		{"unknown type", wodjson.Stat{Name: "Brawl", GameLine: "Mortal", Category: "abilities", StatType: "sword"}, "unknown type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := wodjson.Convert(tc.in)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestParseStats_NotAnArray(t *testing.T) {
	_, err := wodjson.ParseStats([]byte(`{"name":"Brawl"}`))
	assert.Error(t, err)
}

func TestProperty_Convert_KeepsIntegerValues(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		vals := rapid.SliceOf(rapid.IntRange(-10, 10)).Draw(rt, "values")
		raw, err := json.Marshal(vals)
		if err != nil {
			rt.Fatal(err)
		}
		d, err := wodjson.Convert(wodjson.Stat{
			Name: "Strength", GameLine: "Mortal", Category: "attributes", StatType: "physical", Values: raw,
		})
		if err != nil {
			rt.Fatalf("Convert: %v", err)
		}
		for i, v := range vals {
			if got, _ := d.Values[i].Int(); got != v {
				rt.Fatalf("value %d: got %d want %d", i, got, v)
			}
		}
	})
}
