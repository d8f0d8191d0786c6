// Package health implements the bashing/lethal/aggravated wound track and
// the injury-level ladder derived from it.
package health

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultHealthLevels is the number of boxes a character has before the
// terminal box(es).
const DefaultHealthLevels = 7

// ErrUnknownDamageClass indicates a damage class other than bashing, lethal or aggravated.
var ErrUnknownDamageClass = errors.New("health: unknown damage class")

// Class is a damage severity.
type Class int

const (
	Bashing Class = iota
	Lethal
	Aggravated
)

// String returns "bashing", "lethal" or "aggravated".
func (c Class) String() string {
	switch c {
	case Bashing:
		return "bashing"
	case Lethal:
		return "lethal"
	case Aggravated:
		return "aggravated"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Valid reports whether c is one of the three damage classes.
func (c Class) Valid() bool {
	return c >= Bashing && c <= Aggravated
}

// ParseClass accepts a class name or its abbreviation: b, bash, bashing,
// l, lethal, a, agg, aggravated. Matching is case-insensitive.
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "b", "bash", "bashing":
		return Bashing, nil
	case "l", "lethal":
		return Lethal, nil
	case "a", "agg", "aggravated":
		return Aggravated, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownDamageClass)
	}
}

// Level is an injury-level label.
type Level string

// Injury levels, least to most severe. Injured appears only on the stacked
// ladder; the status ladder goes from Hurt straight to Wounded.
const (
	Healthy       Level = "Healthy"
	Bruised       Level = "Bruised"
	Hurt          Level = "Hurt"
	Injured       Level = "Injured"
	Wounded       Level = "Wounded"
	Mauled        Level = "Mauled"
	Crippled      Level = "Crippled"
	Incapacitated Level = "Incapacitated"
	Dead          Level = "Dead"
	Torpor        Level = "Torpor"
	FinalDeath    Level = "Final Death"
)

// Terminal reports whether l ends the character's ability to act for good
// (or, for Torpor, until revived).
func (l Level) Terminal() bool {
	return l == Dead || l == Torpor || l == FinalDeath
}

// Penalty returns the dice-pool modifier for acting at level l.
func (l Level) Penalty() int {
	switch l {
	case Hurt, Injured:
		return -1
	case Wounded, Mauled:
		return -2
	case Crippled:
		return -5
	default:
		return 0
	}
}

// InjuryLevel maps wound totals to a label. It is the one ladder used
// everywhere in this package.
//
// Aggravated damage at hl+1 is Dead for mortals and Torpor for the undead;
// undead reach Final Death at hl+2. Otherwise, by total boxes filled:
// >= hl Incapacitated, >= hl-1 Crippled, >= hl-2 Mauled, >= hl-3 Wounded,
// >= hl-4 Hurt, else Bruised. No boxes filled is always Healthy.
//
// Postcondition: monotonic in total for fixed agg, hl and undead.
func InjuryLevel(total, agg, hl int, undead bool) Level {
	switch {
	case undead && agg >= hl+2:
		return FinalDeath
	case undead && agg >= hl+1:
		return Torpor
	case !undead && agg >= hl+1:
		return Dead
	}
	switch {
	case total <= 0:
		return Healthy
	case total >= hl:
		return Incapacitated
	case total >= hl-1:
		return Crippled
	case total >= hl-2:
		return Mauled
	case total >= hl-3:
		return Wounded
	case total >= hl-4:
		return Hurt
	default:
		return Bruised
	}
}
