package health

import (
	"fmt"
	"math"
)

// Track is a character's wound state.
//
// Invariant: Bashing+Lethal+Aggravated <= Limit() and every counter is
// non-negative after any sequence of Apply calls.
type Track struct {
	HealthLevels int   `json:"health_levels"`
	Bashing      int   `json:"bashing"`
	Lethal       int   `json:"lethal"`
	Aggravated   int   `json:"aggravated"`
	Undead       bool  `json:"undead"`
	Injury       Level `json:"injury_level"`
}

// New returns a healthy track with levels boxes; levels <= 0 selects
// DefaultHealthLevels.
func New(levels int, undead bool) *Track {
	if levels <= 0 {
		levels = DefaultHealthLevels
	}
	return &Track{HealthLevels: levels, Undead: undead, Injury: Healthy}
}

// Limit returns the total box capacity: HealthLevels plus one terminal box,
// or two for the undead (Torpor, then Final Death).
func (t *Track) Limit() int {
	if t.Undead {
		return t.HealthLevels + 2
	}
	return t.HealthLevels + 1
}

// Total returns the number of filled boxes.
func (t *Track) Total() int {
	return t.Bashing + t.Lethal + t.Aggravated
}

// Terminal reports whether the track has reached Dead, Torpor or Final Death.
func (t *Track) Terminal() bool {
	return t.level().Terminal()
}

// Penalty returns the dice-pool modifier for the current injury level.
func (t *Track) Penalty() int {
	return t.level().Penalty()
}

func (t *Track) level() Level {
	return InjuryLevel(t.Total(), t.Aggravated, t.HealthLevels, t.Undead)
}

// Outcome reports the effect of one Apply call.
type Outcome struct {
	Previous Level
	Injury   Level
	// Ignored is set when non-aggravated damage hit a terminal track.
	Ignored bool
	// Clamped is set when aggravated damage reached the limit and the
	// remaining points were discarded.
	Clamped bool
}

// String describes the transition, e.g. "Bruised -> Wounded".
func (o Outcome) String() string {
	switch {
	case o.Ignored:
		return fmt.Sprintf("%s (no effect)", o.Injury)
	case o.Previous == o.Injury:
		return string(o.Injury)
	default:
		return fmt.Sprintf("%s -> %s", o.Previous, o.Injury)
	}
}

// Apply adds amount points of damage of class c, or heals -amount points
// when amount is negative. Zero is a no-op.
//
// Damage, one point at a time, with room meaning fewer than HealthLevels boxes filled:
//   - Bashing: room adds bashing; otherwise a bashing box becomes lethal,
//     else a lethal box becomes aggravated, else aggravated is added.
//   - Lethal: room adds lethal; otherwise aggravated is added and one bashing
//     (else lethal) box is freed.
//   - Aggravated: adds aggravated; without room one bashing (else lethal)
//     box is freed.
//
// Aggravated stops at Limit() and further points are discarded. A terminal
// track ignores bashing and lethal damage.
//
// Healing removes boxes of class c and spills any excess into lower classes
// (aggravated, then lethal, then bashing). It never raises a counter.
//
// Precondition: none; an invalid c returns ErrUnknownDamageClass.
// Postcondition: On error the track is unchanged. Otherwise t.Injury is
// recomputed and the capacity invariant holds.
func (t *Track) Apply(amount int, c Class) (Outcome, error) {
	if !c.Valid() {
		return Outcome{}, fmt.Errorf("applying %d: %w", amount, ErrUnknownDamageClass)
	}
	if t.HealthLevels <= 0 {
		t.HealthLevels = DefaultHealthLevels
	}
	out := Outcome{Previous: t.level()}

	switch {
	case amount > 0:
		if t.Terminal() && c != Aggravated {
			out.Ignored = true
			break
		}
		for i := 0; i < amount; i++ {
			t.damage(c)
			if t.Aggravated >= t.Limit() {
				t.Aggravated = t.Limit()
				out.Clamped = i < amount-1
				break
			}
		}
	case amount < 0:
		n := -amount
		if amount == math.MinInt {
			n = math.MaxInt
		}
		t.heal(n, c)
	}

	t.Injury = t.level()
	out.Injury = t.Injury
	return out, nil
}

// ApplyNamed parses class with ParseClass and calls Apply.
func (t *Track) ApplyNamed(amount int, class string) (Outcome, error) {
	c, err := ParseClass(class)
	if err != nil {
		return Outcome{}, err
	}
	return t.Apply(amount, c)
}

func (t *Track) room() bool {
	return t.Total() < t.HealthLevels
}

// freeLower removes one bashing box, else one lethal box.
func (t *Track) freeLower() {
	switch {
	case t.Bashing > 0:
		t.Bashing--
	case t.Lethal > 0:
		t.Lethal--
	}
}

func (t *Track) damage(c Class) {
	switch c {
	case Bashing:
		switch {
		case t.room():
			t.Bashing++
		case t.Bashing > 0:
			t.Bashing--
			t.Lethal++
		case t.Lethal > 0:
			t.Lethal--
			t.Aggravated++
		default:
			t.Aggravated++
		}
	case Lethal:
		if t.room() {
			t.Lethal++
			return
		}
		t.Aggravated++
		t.freeLower()
	case Aggravated:
		full := !t.room()
		t.Aggravated++
		if full {
			t.freeLower()
		}
	}
}

func (t *Track) heal(n int, c Class) {
	take := func(counter *int, n int) int {
		if n <= 0 {
			return 0
		}
		d := min(*counter, n)
		*counter -= d
		return n - d
	}
	switch c {
	case Aggravated:
		n = take(&t.Aggravated, n)
		n = take(&t.Lethal, n)
		take(&t.Bashing, n)
	case Lethal:
		n = take(&t.Lethal, n)
		take(&t.Bashing, n)
	case Bashing:
		take(&t.Bashing, n)
	}
}

// Reset heals every box, e.g. for an admin override.
func (t *Track) Reset() {
	t.Bashing, t.Lethal, t.Aggravated = 0, 0, 0
	t.Injury = Healthy
}
