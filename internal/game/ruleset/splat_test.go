package ruleset_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/soma-satoro/dies/internal/game/ruleset"
	"github.com/soma-satoro/dies/internal/game/stat"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadSplats_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "vampire.yaml"), `
id: Vampire
name: "Vampire"
undead: true
health_levels: 7
seeds:
  - {category: pools, type: dual, name: Blood, value: 10}
  - {category: identity, type: personal, name: Enlightenment, value: Humanity}
`)
	splats, err := ruleset.LoadSplats(dir)
	require.NoError(t, err)
	require.Len(t, splats, 1)
	s := splats[0]
	assert.Equal(t, "vampire", s.ID, "IDs are normalised to lower case")
	assert.True(t, s.Undead)
	require.Len(t, s.Seeds, 2)
	assert.Equal(t, stat.BloodKey, s.Seeds[0].Key())
	assert.Equal(t, stat.Int(10), s.Seeds[0].Value)
	assert.Equal(t, stat.Str("Humanity"), s.Seeds[1].Value)
	assert.Equal(t, []string{"Blood", "Willpower"}, s.Pools())
}

func TestLoadSplats_EmptyDir(t *testing.T) {
	splats, err := ruleset.LoadSplats(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, splats)
}

func TestLoadSplats_MissingDir(t *testing.T) {
	_, err := ruleset.LoadSplats(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLoadSplats_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.yaml"), `{{{ not yaml`)
	_, err := ruleset.LoadSplats(dir)
	require.Error(t, err)
}

func TestLoadSplats_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "typo.yaml"), "id: mage\nname: Mage\nhealth_level: 7\n")
	_, err := ruleset.LoadSplats(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "typo.yaml")
}

func TestDecodeSplat_ValidationCollectsEveryProblem(t *testing.T) {
	_, err := ruleset.DecodeSplat([]byte(`
id: ""
health_levels: -1
seeds:
  - {category: nowhere, type: dual, name: X, value: 1}
  - {category: pools, type: bogus, name: "", value: 1}
`))
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"id must be non-empty", "name must be non-empty", "health_levels", "nowhere", "bogus", "seed 1: name"} {
		assert.Contains(t, msg, want)
	}
	assert.ErrorIs(t, err, stat.ErrUnknownStat)
}

func TestDecodeSplat_EmptyDocument(t *testing.T) {
	_, err := ruleset.DecodeSplat(nil)
	require.Error(t, err)
}

func TestSplat_PoolsAlwaysIncludeWillpower(t *testing.T) {
	s := &ruleset.Splat{ID: "mortal", Name: "Mortal"}
	assert.Equal(t, []string{"Willpower"}, s.Pools())
}

func TestLoadSplats_ActualContent(t *testing.T) {
	splats, err := ruleset.LoadSplats("../../../content/splats")
	require.NoError(t, err)
	reg := ruleset.NewRegistry(splats...)
	assert.Equal(t, []string{"changeling", "mage", "mortal", "shifter", "vampire"}, reg.IDs())

	vamp, err := reg.Splat("Vampire")
	require.NoError(t, err)
	assert.True(t, vamp.Undead)
	assert.Equal(t, []string{"Blood", "Willpower"}, vamp.Pools())

	shifter, err := reg.Splat("shifter")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gnosis", "Rage", "Willpower"}, shifter.Pools())
}

// Property: every loaded splat has a non-empty ID and Name.
func TestLoadSplats_AllHaveIDAndName(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(rt, "n")
		levels := rapid.IntRange(0, 12).Draw(rt, "levels")
		dir := t.TempDir()
		for i := 0; i < n; i++ {
			content := fmt.Sprintf("id: splat_%d\nname: \"Splat %d\"\nhealth_levels: %d\nseeds: []\n", i, i, levels)
			if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("splat_%d.yaml", i)), []byte(content), 0644); err != nil {
				rt.Fatal(err)
			}
		}
		splats, err := ruleset.LoadSplats(dir)
		if err != nil {
			rt.Fatal(err)
		}
		if len(splats) != n {
			rt.Fatalf("loaded %d splats, want %d", len(splats), n)
		}
		for _, s := range splats {
			if s.ID == "" || s.Name == "" {
				rt.Fatalf("splat has empty ID or Name: %+v", s)
			}
		}
	})
}
