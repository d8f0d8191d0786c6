package character_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/soma-satoro/dies/internal/game/character"
	"github.com/soma-satoro/dies/internal/game/health"
	"github.com/soma-satoro/dies/internal/game/ruleset"
	"github.com/soma-satoro/dies/internal/game/stat"
)

func vampireSplat() *ruleset.Splat {
	return &ruleset.Splat{
		ID: "vampire", Name: "Vampire", Undead: true, HealthLevels: 7,
		Seeds: []ruleset.Seed{
			{Category: "pools", Type: "dual", Name: "Blood", Value: stat.Int(10)},
			{Category: "identity", Type: "personal", Name: "Enlightenment", Value: stat.Str("Humanity")},
			{Category: "identity", Type: "lineage", Name: "Clan", Value: stat.Str("")},
		},
	}
}

func mortalSplat() *ruleset.Splat {
	return &ruleset.Splat{ID: "mortal", Name: "Mortal"}
}

func TestBuild_Mortal(t *testing.T) {
	c, err := character.Build("Anna", mortalSplat(), nil)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, "mortal", c.Splat)
	assert.Equal(t, 1, c.Stats.Int(stat.WillpowerKey, false))
	assert.Equal(t, 1, c.Stats.Int(stat.WillpowerKey, true))
	assert.Equal(t, health.DefaultHealthLevels, c.Health.HealthLevels)
	assert.False(t, c.Health.Undead)
	assert.True(t, c.Is("Mortal"))
	assert.False(t, c.Is("vampire"))
}

func TestBuild_VampireSeedsAndDerives(t *testing.T) {
	c, err := character.Build("Lucita", vampireSplat(), nil)
	require.NoError(t, err)

	assert.Equal(t, 10, c.Stats.Int(stat.BloodKey, false))
	assert.Equal(t, 10, c.Stats.Int(stat.BloodKey, true))
	assert.True(t, c.Health.Undead)
	assert.True(t, c.Is("vampire"))

	virtues := c.Stats.Entries(stat.Virtues, "moral")
	assert.Len(t, virtues, 3)
	assert.Contains(t, virtues, stat.Conscience)
	assert.Contains(t, virtues, stat.SelfControl)
	assert.Contains(t, virtues, stat.Courage)
	assert.Equal(t, 1, c.Stats.Int(stat.WillpowerKey, false))
	assert.Equal(t, 2, c.Stats.Int(stat.RoadKey, false))
}

func TestBuild_Errors(t *testing.T) {
	_, err := character.Build("", mortalSplat(), nil)
	require.Error(t, err)
	_, err = character.Build("Anna", nil, nil)
	require.Error(t, err)
}

func TestApplySplat_KeepsDamage(t *testing.T) {
	c, err := character.Build("Anna", mortalSplat(), nil)
	require.NoError(t, err)
	_, err = c.Health.Apply(3, health.Lethal)
	require.NoError(t, err)

	c.ApplySplat(vampireSplat())
	assert.Equal(t, "vampire", c.Splat)
	assert.Equal(t, 3, c.Health.Lethal)
	assert.True(t, c.Health.Undead)
	assert.Equal(t, health.Hurt, c.Health.Injury)
	assert.Equal(t, -1, c.Penalty())

	assert.Panics(t, func() { c.ApplySplat(nil) })
}

func TestBuild_ExtraDeriversRun(t *testing.T) {
	calls := 0
	extra := stat.Derived{
		Label:   "counter",
		Inputs:  func(k stat.Key) bool { return k == stat.BloodKey },
		Compute: func(stat.Reader) []stat.Change { calls++; return nil },
	}
	_, err := character.Build("Lucita", vampireSplat(), nil, extra)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

// Property: every built character gets a distinct ID.
func TestBuild_UniqueIDs(t *testing.T) {
	seen := map[uuid.UUID]bool{}
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.StringMatching(`[A-Z][a-z]{1,10}`).Draw(rt, "name")
		c, err := character.Build(name, mortalSplat(), nil)
		require.NoError(rt, err)
		assert.False(rt, seen[c.ID])
		seen[c.ID] = true
	})
}
