package command_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/soma-satoro/dies/internal/game/character"
	"github.com/soma-satoro/dies/internal/game/command"
	"github.com/soma-satoro/dies/internal/game/ruleset"
	"github.com/soma-satoro/dies/internal/game/stat"
)

func boostedVampire(t *testing.T, name string, strength int) *character.Character {
	t.Helper()
	reg := ruleset.NewRegistry(&ruleset.Splat{ID: "vampire", Name: "Vampire", Undead: true, Seeds: []ruleset.Seed{
		{Category: "pools", Type: "dual", Name: "Blood", Value: stat.Int(10)},
	}})
	sp, err := reg.Splat("vampire")
	require.NoError(t, err)
	c, err := character.Build(name, sp, nil)
	require.NoError(t, err)
	c.Stats.SetBoth(strengthKey, stat.Int(strength))
	return c
}

func TestBoostQueue_RevertsOnlyExpired(t *testing.T) {
	q := command.NewBoostQueue()
	now := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	a := boostedVampire(t, "Anna", 2)
	b := boostedVampire(t, "Bea", 4)

	ba, err := a.Pump("strength", 1, now)
	require.NoError(t, err)
	bb, err := b.Pump("strength", 2, now.Add(10*time.Minute))
	require.NoError(t, err)
	q.Schedule(a, ba)
	q.Schedule(b, bb)

	assert.Empty(t, q.RevertDue(now.Add(59*time.Minute)))
	assert.Equal(t, []string{"Anna's Strength returns to normal (2)."}, q.RevertDue(now.Add(time.Hour)))
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, []string{"Bea's Strength returns to normal (4)."}, q.RevertDue(now.Add(2*time.Hour)))
	assert.Zero(t, q.Len())
}

func TestBoostQueue_RevertNeverDropsBelowPermanent(t *testing.T) {
	q := command.NewBoostQueue()
	now := time.Now()
	c := boostedVampire(t, "Anna", 3)
	boost, err := c.Pump("strength", 2, now)
	require.NoError(t, err)
	q.Schedule(c, boost)

	// A permanent raise while boosted survives the reversion.
	c.Stats.Set(strengthKey, stat.Int(5), false)
	assert.Equal(t, []string{"Anna's Strength returns to normal (5)."}, q.RevertDue(now.Add(2*time.Hour)))
}

func TestBoostQueue_ScheduleNilPanics(t *testing.T) {
	q := command.NewBoostQueue()
	assert.Panics(t, func() {
		q.Schedule(nil, character.Boost{ID: uuid.New()})
	})
}

func TestBoostQueue_ConcurrentSchedule(t *testing.T) {
	q := command.NewBoostQueue()
	c := boostedVampire(t, "Anna", 1)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Schedule(c, character.Boost{ID: uuid.New(), Attribute: "Strength", Expires: time.Now().Add(time.Hour)})
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, q.Len())
}

// memStore records persisted boost IDs.
type memStore struct {
	mu      sync.Mutex
	saved   map[uuid.UUID]uuid.UUID
	failing bool
}

func newMemStore() *memStore { return &memStore{saved: map[uuid.UUID]uuid.UUID{}} }

func (m *memStore) Schedule(_ context.Context, characterID uuid.UUID, b character.Boost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("store down")
	}
	m.saved[b.ID] = characterID
	return nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, id)
	return nil
}

func TestPersistentBoostQueue_MirrorsStore(t *testing.T) {
	store := newMemStore()
	q := command.NewPersistentBoostQueue(store, zap.NewNop())
	now := time.Now()
	c := boostedVampire(t, "Anna", 2)
	b, err := c.Pump("strength", 1, now)
	require.NoError(t, err)

	q.Schedule(c, b)
	assert.Equal(t, c.ID, store.saved[b.ID])

	q.RevertDue(now.Add(2 * time.Hour))
	assert.Empty(t, store.saved)
}

func TestPersistentBoostQueue_RestoreSkipsStore(t *testing.T) {
	store := newMemStore()
	q := command.NewPersistentBoostQueue(store, zap.NewNop())
	c := boostedVampire(t, "Anna", 2)
	q.Restore(c, character.Boost{ID: uuid.New(), Attribute: "Strength", Amount: 1, Expires: time.Now()})
	assert.Empty(t, store.saved)
	assert.Equal(t, 1, q.Len())
}

func TestPersistentBoostQueue_StoreFailureIsLogged(t *testing.T) {
	store := newMemStore()
	store.failing = true
	core, logs := observer.New(zap.ErrorLevel)
	q := command.NewPersistentBoostQueue(store, zap.New(core))
	c := boostedVampire(t, "Anna", 2)

	q.Schedule(c, character.Boost{ID: uuid.New(), Attribute: "Strength", Amount: 1, Expires: time.Now()})
	assert.Equal(t, 1, q.Len())
	entries := logs.FilterMessage("persisting boost").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Anna", entries[0].ContextMap()["character"])
}

func TestNewPersistentBoostQueue_NilStorePanics(t *testing.T) {
	assert.Panics(t, func() { command.NewPersistentBoostQueue(nil, zap.NewNop()) })
}
