package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soma-satoro/dies/internal/game/stat"
	"github.com/soma-satoro/dies/internal/scripting"
)

var (
	staminaKey   = stat.Key{Category: stat.Attributes, Type: "physical", Name: "Stamina"}
	dexterityKey = stat.Key{Category: stat.Attributes, Type: "physical", Name: "Dexterity"}
	witsKey      = stat.Key{Category: stat.Attributes, Type: "mental", Name: "Wits"}
)

func TestStatName(t *testing.T) {
	assert.Equal(t, "Soak", scripting.StatName("derive_soak"))
	assert.Equal(t, "Health Bonus", scripting.StatName("derive_health_bonus"))
}

func TestDerivers_RecomputeOnInputChange(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "derived.lua", `
		function derive_soak(get)
			return get("Stamina")
		end
		function derive_initiative(get)
			return get("Dexterity") + get("Wits")
		end
	`)
	require.NoError(t, mgr.LoadGlobal(dir, 0))

	derivers := mgr.Derivers("vampire")
	require.Len(t, derivers, 2)
	assert.Equal(t, "lua:derive_initiative", derivers[0].Name())

	b := stat.NewBlock(nil, derivers...)
	b.SetBoth(staminaKey, stat.Int(3))
	assert.Equal(t, 3, b.Int(scripting.DerivedKey("Soak"), false))
	assert.Equal(t, 3, b.Int(scripting.DerivedKey("Soak"), true))

	b.SetBoth(dexterityKey, stat.Int(2))
	b.SetBoth(witsKey, stat.Int(4))
	assert.Equal(t, 6, b.Int(scripting.DerivedKey("Initiative"), false))

	// Temp values feed get, as with every effective read.
	b.Set(staminaKey, stat.Int(5), true)
	assert.Equal(t, 5, b.Int(scripting.DerivedKey("Soak"), false))
}

func TestDerivers_NonNumberLeavesStatAlone(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "derived.lua", `
		function derive_mood(get)
			return "grim"
		end
		function derive_broken(get)
			error("boom")
		end
	`)
	require.NoError(t, mgr.Load("mortal", dir, 0))

	b := stat.NewBlock(nil, mgr.Derivers("mortal")...)
	b.SetBoth(staminaKey, stat.Int(2))

	_, ok := b.Lookup(scripting.DerivedKey("Mood"))
	assert.False(t, ok)
	_, ok = b.Lookup(scripting.DerivedKey("Broken"))
	assert.False(t, ok)
	assert.NotEmpty(t, logs.FilterMessage("scripting: deriver returned a non-number").All())
	assert.NotEmpty(t, logs.FilterMessage("scripting: Lua runtime error").All())
}

func TestDerivers_IgnoreDerivedWrites(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "derived.lua", `
		calls = 0
		function derive_count(get)
			calls = calls + 1
			return calls
		end
	`)
	require.NoError(t, mgr.Load("mortal", dir, 0))
	d := mgr.Derivers("mortal")
	require.Len(t, d, 1)
	assert.False(t, d[0].Triggered(scripting.DerivedKey("Count")))
	assert.True(t, d[0].Triggered(staminaKey))
}

func TestDerivers_ContentScripts(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal("../../content/scripts", 0))
	b := stat.NewBlock(nil, mgr.Derivers(scripting.GlobalScope)...)
	b.SetBoth(staminaKey, stat.Int(2))
	b.SetBoth(dexterityKey, stat.Int(3))
	b.SetBoth(witsKey, stat.Int(2))

	assert.Equal(t, 2, b.Int(scripting.DerivedKey("Soak"), false))
	assert.Equal(t, 5, b.Int(scripting.DerivedKey("Initiative"), false))
}
