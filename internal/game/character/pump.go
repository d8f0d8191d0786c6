package character

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/soma-satoro/dies/internal/game/stat"
)

// MaxAttribute caps a pumped attribute.
const MaxAttribute = 10

// BoostDuration is how long a blood-pump boost lasts before the caller
// should revert it.
const BoostDuration = time.Hour

// Pump errors.
var (
	ErrNotVampire       = errors.New("character: only vampires can pump blood")
	ErrNotPhysical      = errors.New("character: attribute is not physical")
	ErrAttributeAtLimit = errors.New("character: attribute already at maximum")
)

// PhysicalAttributes lists the attributes blood can boost.
var PhysicalAttributes = []string{"Strength", "Dexterity", "Stamina"}

// Boost records one blood-pump so it can be reverted later.
type Boost struct {
	ID        uuid.UUID
	Attribute string
	Amount    int
	Expires   time.Time
}

func physicalKey(name string) stat.Key {
	return stat.Key{Category: stat.Attributes, Type: "physical", Name: name}
}

// Pump spends Blood to raise the temp value of a physical attribute by up to
// amount, stopping at MaxAttribute. Only the points actually gained cost blood.
//
// Precondition: now is the current time, used to stamp Expires.
// Postcondition: On success Blood temp fell by Boost.Amount and the attribute's
// temp value rose by the same. On error nothing changed; errors wrap
// ErrNotVampire, ErrNotPhysical, stat.ErrInvalidAmount,
// stat.ErrInsufficientPool or ErrAttributeAtLimit.
func (c *Character) Pump(attribute string, amount int, now time.Time) (Boost, error) {
	if !c.Is("vampire") {
		return Boost{}, ErrNotVampire
	}
	name := cases.Title(language.English).String(attribute)
	if !slices.Contains(PhysicalAttributes, name) {
		return Boost{}, fmt.Errorf("%q: %w", attribute, ErrNotPhysical)
	}
	if amount <= 0 {
		return Boost{}, fmt.Errorf("pump %d: %w", amount, stat.ErrInvalidAmount)
	}
	blood := c.Stats.Int(stat.BloodKey, true)
	if blood < amount {
		return Boost{}, fmt.Errorf("pump %d with %d blood: %w", amount, blood, stat.ErrInsufficientPool)
	}

	k := physicalKey(name)
	e, _ := c.Stats.Lookup(k)
	current, _ := e.Effective().Int()
	gained := min(current+amount, MaxAttribute) - current
	if gained <= 0 {
		return Boost{}, fmt.Errorf("%s at %d: %w", name, current, ErrAttributeAtLimit)
	}
	if _, err := stat.Spend(c.Stats, stat.BloodKey.Name, gained); err != nil {
		return Boost{}, err
	}
	if _, ok := c.Stats.Lookup(k); !ok {
		c.Stats.SetBoth(k, stat.Int(current))
	}
	c.Stats.Set(k, stat.Int(current+gained), true)
	return Boost{ID: uuid.New(), Attribute: name, Amount: gained, Expires: now.Add(BoostDuration)}, nil
}

// RevertBoost undoes b, lowering the attribute's temp value by b.Amount but
// never below its perm value.
//
// Postcondition: Returns the attribute's new temp value.
func (c *Character) RevertBoost(b Boost) int {
	k := physicalKey(b.Attribute)
	e, ok := c.Stats.Lookup(k)
	if !ok {
		return 0
	}
	temp, _ := e.Temp.Int()
	perm, _ := e.Perm.Int()
	next := max(temp-b.Amount, perm)
	c.Stats.Set(k, stat.Int(next), true)
	return next
}
