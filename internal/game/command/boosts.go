package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soma-satoro/dies/internal/game/character"
)

// BoostStore persists pending boosts so they survive a restart.
type BoostStore interface {
	Schedule(ctx context.Context, characterID uuid.UUID, b character.Boost) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type pendingBoost struct {
	char  *character.Character
	boost character.Boost
}

// BoostQueue holds pump boosts until they expire.
//
// BoostQueue is safe for concurrent use.
type BoostQueue struct {
	mu      sync.Mutex
	pending []pendingBoost
	store   BoostStore
	logger  *zap.Logger
}

// NewBoostQueue returns an empty in-memory queue.
func NewBoostQueue() *BoostQueue {
	return &BoostQueue{logger: zap.NewNop()}
}

// NewPersistentBoostQueue returns an empty queue that mirrors every Schedule
// and revert into store. Store failures are logged and never block play.
//
// Precondition: store and logger must be non-nil.
func NewPersistentBoostQueue(store BoostStore, logger *zap.Logger) *BoostQueue {
	if store == nil || logger == nil {
		panic("command.NewPersistentBoostQueue: precondition violated: store and logger must be non-nil")
	}
	return &BoostQueue{store: store, logger: logger}
}

// Restore queues b without writing it to the store. Used to reload boosts
// that were persisted by an earlier session.
//
// Precondition: c must be non-nil.
func (q *BoostQueue) Restore(c *character.Character, b character.Boost) {
	if c == nil {
		panic("command.BoostQueue.Restore: precondition violated: c must be non-nil")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, pendingBoost{char: c, boost: b})
}

// Schedule queues b for reversion once b.Expires has passed.
//
// Precondition: c must be non-nil.
func (q *BoostQueue) Schedule(c *character.Character, b character.Boost) {
	if c == nil {
		panic("command.BoostQueue.Schedule: precondition violated: c must be non-nil")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, pendingBoost{char: c, boost: b})
	if q.store != nil {
		if err := q.store.Schedule(context.Background(), c.ID, b); err != nil {
			q.logger.Error("persisting boost", zap.String("character", c.Name), zap.Error(err))
		}
	}
}

// Len returns the number of boosts still pending.
func (q *BoostQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// RevertDue reverts every boost that expired at or before now, in the order
// they were scheduled, and returns one notice per reverted boost.
func (q *BoostQueue) RevertDue(now time.Time) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	var (
		notices []string
		keep    []pendingBoost
	)
	for _, p := range q.pending {
		if p.boost.Expires.After(now) {
			keep = append(keep, p)
			continue
		}
		v := p.char.RevertBoost(p.boost)
		if q.store != nil {
			if err := q.store.Delete(context.Background(), p.boost.ID); err != nil {
				q.logger.Error("deleting boost", zap.String("character", p.char.Name), zap.Error(err))
			}
		}
		notices = append(notices, fmt.Sprintf("%s's %s returns to normal (%d).", p.char.Name, p.boost.Attribute, v))
	}
	q.pending = keep
	return notices
}
