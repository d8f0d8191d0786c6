package stat_test

import (
	"encoding/json"
	"testing"

	"github.com/soma-satoro/dies/internal/game/stat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValue_ZeroIsNumberZero(t *testing.T) {
	var v stat.Value
	assert.True(t, v.IsNumber())
	assert.True(t, v.IsZero())
	assert.Equal(t, "0", v.String())
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, stat.Str("Ventrue").Equal(stat.Str("ventrue")))
	assert.False(t, stat.Str("1").Equal(stat.Int(1)))
	assert.True(t, stat.Int(3).Equal(stat.Int(3)))
}

func TestValue_JSON(t *testing.T) {
	raw, err := json.Marshal([]stat.Value{stat.Int(4), stat.Str("Gangrel")})
	require.NoError(t, err)
	assert.Equal(t, `[4,"Gangrel"]`, string(raw))

	var back []stat.Value
	require.NoError(t, json.Unmarshal([]byte(`[4,"Gangrel",null]`), &back))
	assert.Equal(t, []stat.Value{stat.Int(4), stat.Str("Gangrel"), stat.Int(0)}, back)

	var bad stat.Value
	assert.ErrorIs(t, json.Unmarshal([]byte(`4.5`), &bad), stat.ErrNotANumber)
}

func TestValue_YAML(t *testing.T) {
	var vals []stat.Value
	require.NoError(t, yaml.Unmarshal([]byte("[1, two, \"3\"]"), &vals))
	assert.Equal(t, []stat.Value{stat.Int(1), stat.Str("two"), stat.Str("3")}, vals)

	out, err := yaml.Marshal(vals)
	require.NoError(t, err)
	assert.Equal(t, "- 1\n- two\n- \"3\"\n", string(out))
}

func TestKind_Text(t *testing.T) {
	var k stat.Kind
	require.NoError(t, k.UnmarshalText([]byte("text")))
	assert.Equal(t, stat.Text, k)
	assert.Error(t, k.UnmarshalText([]byte("float")))
}

func TestSplitInstance(t *testing.T) {
	base, inst := stat.SplitInstance("Status(Ventrue)")
	assert.Equal(t, "Status", base)
	assert.Equal(t, "Ventrue", inst)

	base, inst = stat.SplitInstance("Strength")
	assert.Equal(t, "Strength", base)
	assert.Empty(t, inst)

	assert.Equal(t, "Status(Camarilla)", stat.InstanceName("Status", "Camarilla"))
}
