package character

import (
	"errors"

	"github.com/google/uuid"

	"github.com/soma-satoro/dies/internal/game/health"
	"github.com/soma-satoro/dies/internal/game/ruleset"
	"github.com/soma-satoro/dies/internal/game/stat"
)

// Build constructs a new Character of the given splat. The stat block runs
// the default derivers followed by extra, and starts with Willpower 1 plus
// the splat's seeds.
//
// Precondition: name must be non-empty; splat must be non-nil. defs may be nil.
// Postcondition: Returns a Character with a fresh ID, or a non-nil error.
func Build(name string, splat *ruleset.Splat, defs stat.Definitions, extra ...stat.Deriver) (*Character, error) {
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if splat == nil {
		return nil, errors.New("splat must not be nil")
	}
	derivers := append(stat.DefaultDerivers(), extra...)
	c := &Character{
		ID:     uuid.New(),
		Name:   name,
		Stats:  stat.NewBlock(defs, derivers...),
		Health: health.New(splat.HealthLevels, splat.Undead),
	}
	c.Stats.SetBoth(stat.WillpowerKey, stat.Int(stat.ComputeWillpower(c.Stats)))
	c.ApplySplat(splat)
	return c, nil
}

// ApplySplat switches the character to splat: records it under
// other/splat/Splat, writes every seed to both sides, and resizes the health
// track while keeping existing damage.
//
// Precondition: splat must be non-nil.
// Postcondition: c.Splat == splat.ID and every seed key is stored.
func (c *Character) ApplySplat(splat *ruleset.Splat) {
	if splat == nil {
		panic("character.ApplySplat: precondition violated: splat must be non-nil")
	}
	c.Splat = splat.ID
	c.Stats.SetBoth(stat.SplatKey, stat.Str(splat.Name))
	for _, seed := range splat.Seeds {
		c.Stats.SetBoth(seed.Key(), seed.Value)
	}
	levels := splat.HealthLevels
	if levels <= 0 {
		levels = health.DefaultHealthLevels
	}
	c.Health.HealthLevels = levels
	c.Health.Undead = splat.Undead
	c.Health.Injury = health.InjuryLevel(c.Health.Total(), c.Health.Aggravated, levels, splat.Undead)
}
