package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/soma-satoro/dies/internal/game/character"
	"github.com/soma-satoro/dies/internal/game/health"
	"github.com/soma-satoro/dies/internal/game/ruleset"
	"github.com/soma-satoro/dies/internal/game/stat"
	"github.com/soma-satoro/dies/internal/storage"
	"github.com/soma-satoro/dies/internal/storage/sqlite"
)

var strengthKey = stat.Key{Category: stat.Attributes, Type: "physical", Name: "Strength"}

type fixture struct {
	store  *sqlite.Store
	defs   *stat.Registry
	splats *ruleset.Registry
}

func openTempStore(t *testing.T) fixture {
	t.Helper()
	defs, err := stat.LoadDirectory("../../../content/stats")
	require.NoError(t, err)
	loaded, err := ruleset.LoadSplats("../../../content/splats")
	require.NoError(t, err)
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "dies.db"), defs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return fixture{store: store, defs: defs, splats: ruleset.NewRegistry(loaded...)}
}

func (f fixture) build(t *testing.T, name, splat string) *character.Character {
	t.Helper()
	sp, err := f.splats.Splat(splat)
	require.NoError(t, err)
	c, err := character.Build(name, sp, f.defs)
	require.NoError(t, err)
	return c
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := sqlite.Open("  ", nil)
	assert.Error(t, err)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dies.db")
	s1, err := sqlite.Open(path, nil)
	require.NoError(t, err)
	f := openTempStore(t)
	_, err = s1.Create(context.Background(), f.build(t, "Keep", ruleset.Mortal))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := sqlite.Open(path, nil)
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.GetByName(context.Background(), "keep")
	require.NoError(t, err)
	assert.Equal(t, "Keep", got.Name)
}

func TestStore_CreateGetRoundTrip(t *testing.T) {
	f := openTempStore(t)
	ctx := context.Background()
	c := f.build(t, "Zara", "vampire")
	c.Stats.SetBoth(strengthKey, stat.Int(4))
	c.Stats.Set(strengthKey, stat.Int(5), true)
	_, err := c.Health.Apply(2, health.Lethal)
	require.NoError(t, err)

	created, err := f.store.Create(ctx, c)
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := f.store.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "vampire", got.Splat)
	assert.Equal(t, 4, got.Stats.Int(strengthKey, false))
	assert.Equal(t, 5, got.Stats.Int(strengthKey, true))
	assert.Equal(t, *c.Health, *got.Health)
}

func TestStore_NameTakenIgnoresCase(t *testing.T) {
	f := openTempStore(t)
	ctx := context.Background()
	_, err := f.store.Create(ctx, f.build(t, "Dup", ruleset.Mortal))
	require.NoError(t, err)
	_, err = f.store.Create(ctx, f.build(t, "dUP", ruleset.Mortal))
	assert.ErrorIs(t, err, storage.ErrCharacterNameTaken)
}

func TestStore_NotFound(t *testing.T) {
	f := openTempStore(t)
	ctx := context.Background()
	_, err := f.store.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrCharacterNotFound)
	_, err = f.store.GetByName(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrCharacterNotFound)
	assert.ErrorIs(t, f.store.Save(ctx, f.build(t, "Ghost", ruleset.Mortal)), storage.ErrCharacterNotFound)
	assert.ErrorIs(t, f.store.Delete(ctx, uuid.New()), storage.ErrCharacterNotFound)
}

func TestStore_SaveAndList(t *testing.T) {
	f := openTempStore(t)
	ctx := context.Background()
	b, err := f.store.Create(ctx, f.build(t, "beta", ruleset.Mortal))
	require.NoError(t, err)
	_, err = f.store.Create(ctx, f.build(t, "Alpha", ruleset.Mortal))
	require.NoError(t, err)

	_, err = b.Health.Apply(3, health.Bashing)
	require.NoError(t, err)
	b.Stats.SetBoth(strengthKey, stat.Int(2))
	require.NoError(t, f.store.Save(ctx, b))

	all, err := f.store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha", all[0].Name)
	assert.Equal(t, "beta", all[1].Name)
	assert.Equal(t, 3, all[1].Health.Bashing)
	assert.Equal(t, 2, all[1].Stats.Int(strengthKey, false))
}

func TestBoostStore_LifecycleAndCascade(t *testing.T) {
	f := openTempStore(t)
	ctx := context.Background()
	c, err := f.store.Create(ctx, f.build(t, "Vee", "vampire"))
	require.NoError(t, err)
	boosts := f.store.Boosts()

	now := time.Now().UTC().Truncate(time.Millisecond)
	late := character.Boost{ID: uuid.New(), Attribute: "Strength", Amount: 2, Expires: now.Add(time.Hour)}
	early := character.Boost{ID: uuid.New(), Attribute: "Dexterity", Amount: 1, Expires: now.Add(time.Minute)}
	require.NoError(t, boosts.Schedule(ctx, c.ID, late))
	require.NoError(t, boosts.Schedule(ctx, c.ID, early))
	require.NoError(t, boosts.Schedule(ctx, c.ID, early))

	pending, err := boosts.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, early.ID, pending[0].Boost.ID)
	assert.Equal(t, c.ID, pending[0].CharacterID)
	assert.True(t, early.Expires.Equal(pending[0].Boost.Expires))

	require.NoError(t, boosts.Delete(ctx, early.ID))
	require.NoError(t, f.store.Delete(ctx, c.ID))
	pending, err = boosts.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProperty_Store_HealthRoundTrip(t *testing.T) {
	f := openTempStore(t)
	ctx := context.Background()
	c, err := f.store.Create(ctx, f.build(t, "Prop", "vampire"))
	require.NoError(t, err)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(-5, 12).Draw(rt, "amount")
		class := health.Class(rapid.IntRange(0, 2).Draw(rt, "class"))
		if _, err := c.Health.Apply(n, class); err != nil {
			rt.Fatalf("Apply: %v", err)
		}
		if err := f.store.Save(ctx, c); err != nil {
			rt.Fatalf("Save: %v", err)
		}
		got, err := f.store.GetByID(ctx, c.ID)
		if err != nil {
			rt.Fatalf("GetByID: %v", err)
		}
		if *got.Health != *c.Health {
			rt.Fatalf("health mismatch: got %+v want %+v", *got.Health, *c.Health)
		}
	})
}
