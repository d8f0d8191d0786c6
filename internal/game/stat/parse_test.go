package stat_test

import (
	"math"
	"testing"

	"github.com/soma-satoro/dies/internal/game/stat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue_Number(t *testing.T) {
	def := &stat.Definition{Name: "Strength", Category: stat.Attributes, Type: "physical",
		Values: []stat.Value{stat.Int(1), stat.Int(2), stat.Int(3), stat.Int(4), stat.Int(5)}}

	v, err := stat.ParseValue(def, " 3 ", stat.Int(1))
	require.NoError(t, err)
	assert.Equal(t, stat.Int(3), v)

	v, err = stat.ParseValue(def, "+2", stat.Int(2))
	require.NoError(t, err)
	assert.Equal(t, stat.Int(4), v, "leading + is relative")

	v, err = stat.ParseValue(def, "-1", stat.Int(2))
	require.NoError(t, err)
	assert.Equal(t, stat.Int(1), v, "leading - is relative")

	_, err = stat.ParseValue(def, "strong", stat.Int(1))
	assert.ErrorIs(t, err, stat.ErrNotANumber)

	_, err = stat.ParseValue(def, "7", stat.Int(1))
	assert.ErrorIs(t, err, stat.ErrIllegalValue)

	_, err = stat.ParseValue(def, "+4", stat.Int(3))
	assert.ErrorIs(t, err, stat.ErrIllegalValue, "relative result is validated too")
}

func TestParseValue_RelativeOverflow(t *testing.T) {
	def := &stat.Definition{Name: "Experience", Category: stat.Other, Type: "personal"}
	cases := []struct {
		raw     string
		current int
		want    int
		err     error
	}{
		{"+1", math.MaxInt - 1, math.MaxInt, nil},
		{"+1", math.MaxInt, 0, stat.ErrIllegalValue},
		{"+9223372036854775807", 1, 0, stat.ErrIllegalValue},
		{"-1", math.MinInt + 1, math.MinInt, nil},
		{"-1", math.MinInt, 0, stat.ErrIllegalValue},
		{"-9223372036854775808", -1, 0, stat.ErrIllegalValue},
		{"+99999999999999999999", 0, 0, stat.ErrNotANumber},
	}
	for _, tc := range cases {
		v, err := stat.ParseValue(def, tc.raw, stat.Int(tc.current))
		if tc.err != nil {
			assert.ErrorIs(t, err, tc.err, "%s on %d", tc.raw, tc.current)
			continue
		}
		require.NoError(t, err, "%s on %d", tc.raw, tc.current)
		assert.Equal(t, stat.Int(tc.want), v)
	}
}

func TestParseValue_Text(t *testing.T) {
	def := &stat.Definition{Name: "Clan", Category: stat.Identity, Type: "lineage", Kind: stat.Text,
		Values: []stat.Value{stat.Str("Brujah"), stat.Str("Ventrue")}}

	v, err := stat.ParseValue(def, "ventrue", stat.Str(""))
	require.NoError(t, err)
	assert.Equal(t, stat.Str("Ventrue"), v, "canonical spelling")

	_, err = stat.ParseValue(def, "Tremere", stat.Str(""))
	assert.ErrorIs(t, err, stat.ErrIllegalValue)

	free := &stat.Definition{Name: "Nature", Category: stat.Identity, Type: "personal", Kind: stat.Text}
	v, err = stat.ParseValue(free, "Architect", stat.Str(""))
	require.NoError(t, err)
	assert.Equal(t, stat.Str("Architect"), v)
}

func TestParseValue_PanicsOnNilDefinition(t *testing.T) {
	assert.Panics(t, func() { _, _ = stat.ParseValue(nil, "1", stat.Int(0)) })
}
