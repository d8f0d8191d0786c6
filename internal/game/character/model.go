// Package character defines the character domain model: a stat block and a
// health track bound to a splat template.
package character

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soma-satoro/dies/internal/game/health"
	"github.com/soma-satoro/dies/internal/game/stat"
)

// Character represents a character's persistent state.
//
// CreatedAt and UpdatedAt are set by the persistence layer; zero values
// indicate an unsaved character.
type Character struct {
	ID    uuid.UUID
	Name  string
	Splat string // splat ID, e.g. "vampire"

	Stats  *stat.Block
	Health *health.Track

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Is reports whether the character's splat ID or display name is splat.
func (c *Character) Is(splat string) bool {
	if strings.EqualFold(c.Splat, splat) {
		return true
	}
	v, ok := c.Stats.Get(stat.SplatKey, false)
	return ok && strings.EqualFold(v.String(), splat)
}

// Penalty returns the current wound penalty to apply to dice pools.
func (c *Character) Penalty() int {
	return c.Health.Penalty()
}
