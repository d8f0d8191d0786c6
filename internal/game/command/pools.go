package command

import (
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/soma-satoro/dies/internal/game/character"
	"github.com/soma-satoro/dies/internal/game/stat"
)

// parseAmount splits "<name>=<amount>[/<reason>]".
func parseAmount(cmd *Command, raw string) (name string, amount int, reason string, err error) {
	name, rest, found := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !found || name == "" {
		return "", 0, "", usage(cmd)
	}
	amt, reason, _ := strings.Cut(rest, "/")
	amount, convErr := strconv.Atoi(strings.TrimSpace(amt))
	if convErr != nil {
		return "", 0, "", reply("The amount must be a number.")
	}
	if amount <= 0 {
		return "", 0, "", reply("The amount must be a positive number.")
	}
	return name, amount, strings.TrimSpace(reason), nil
}

func handleSpend(d *Dispatcher, ctx *Context) (string, error) {
	return changePool(d, ctx, true)
}

func handleGain(d *Dispatcher, ctx *Context) (string, error) {
	return changePool(d, ctx, false)
}

// changePool renders "You have spent 1 point of Willpower. Reason: Drive
// check New Willpower value: 4" and logs the change at info.
func changePool(d *Dispatcher, ctx *Context, spend bool) (string, error) {
	c := ctx.Self
	typed, amount, reason, err := parseAmount(ctx.Cmd, ctx.Parsed.RawArgs)
	if err != nil {
		return "", err
	}
	pool, err := stat.ResolvePool(c.Stats, d.resolver, typed)
	if err != nil {
		var amb *stat.AmbiguousError
		if errors.As(err, &amb) {
			return "", reply("'%s' matches more than one pool: %s", typed, strings.Join(amb.Matches, ", "))
		}
		return "", reply("Invalid pool: %s", typed)
	}

	before := c.Stats.Int(stat.PoolKey(pool), true)
	var (
		value  int
		action string
	)
	if spend {
		action = "spent"
		value, err = stat.Spend(c.Stats, pool, amount)
		if errors.Is(err, stat.ErrInsufficientPool) {
			return "", reply("You don't have enough %s. Current %s: %d", pool, pool, before)
		}
	} else {
		action = "gained"
		value, err = stat.Gain(c.Stats, pool, amount)
		amount = value - before
	}
	if err != nil {
		return "", err
	}

	d.logger.Info("pool "+action,
		zap.String("character", c.Name),
		zap.String("pool", pool),
		zap.Int("amount", amount),
		zap.String("reason", reason),
		zap.Int("value", value),
	)
	var b strings.Builder
	b.WriteString(green("You have %s %d point%s of %s.", action, amount, plural(amount), pool))
	if reason != "" {
		b.WriteString(" Reason: " + reason)
	}
	b.WriteString(" New " + pool + " value: " + strconv.Itoa(value))
	return b.String(), nil
}

func handlePump(d *Dispatcher, ctx *Context) (string, error) {
	c := ctx.Self
	attr, amount, _, err := parseAmount(ctx.Cmd, ctx.Parsed.RawArgs)
	if err != nil {
		return "", err
	}
	boost, err := c.Pump(attr, amount, d.now())
	switch {
	case errors.Is(err, character.ErrNotVampire):
		return "", reply("Only vampires can use this power.")
	case errors.Is(err, character.ErrNotPhysical):
		return "", reply("Invalid attribute. Choose from: %s", strings.ToLower(strings.Join(character.PhysicalAttributes, ", ")))
	case errors.Is(err, stat.ErrInsufficientPool):
		return "", reply("You don't have enough blood. Current blood: %d", c.Stats.Int(stat.BloodKey, true))
	case errors.Is(err, character.ErrAttributeAtLimit):
		return "", reply("Your %s is already at maximum (%d).", boostName(attr), character.MaxAttribute)
	case err != nil:
		return "", err
	}
	if d.boosts != nil {
		d.boosts.Schedule(c, boost)
	}
	d.logger.Info("blood pumped",
		zap.String("character", c.Name),
		zap.String("attribute", boost.Attribute),
		zap.Int("amount", boost.Amount),
		zap.Stringer("boost", boost.ID),
		zap.Time("expires", boost.Expires),
	)
	next := c.Stats.Int(stat.Key{Category: stat.Attributes, Type: "physical", Name: boost.Attribute}, true)
	return green("You spend %d blood point%s to boost your %s to %d for one hour.",
		boost.Amount, plural(boost.Amount), boost.Attribute, next), nil
}

func boostName(attr string) string {
	attr = strings.TrimSpace(attr)
	if attr == "" {
		return attr
	}
	return strings.ToUpper(attr[:1]) + strings.ToLower(attr[1:])
}
