package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soma-satoro/dies/internal/game/dice"
	"github.com/soma-satoro/dies/internal/game/stat"
	"github.com/soma-satoro/dies/internal/render"
)

// handleRoll composes a pool from the character's stats, rolls it, and
// renders "Roll> You roll Strength (3) + Brawl (2) vs 6 => (2) Successes (...)".
func handleRoll(d *Dispatcher, ctx *Context) (string, error) {
	if ctx.Parsed.RawArgs == "" {
		return "", usage(ctx.Cmd)
	}
	expr, err := dice.ParsePool(ctx.Parsed.RawArgs)
	if err != nil {
		return "", reply("Invalid roll format. Use: %s %s", ctx.Cmd.Name, ctx.Cmd.Usage)
	}
	if !expr.Explicit {
		expr.Difficulty = d.difficulty
	}
	self := ctx.Self
	comp := dice.Compose(expr, func(name string) (string, int, error) {
		return stat.EffectiveInt(self.Stats, d.resolver, name)
	})
	if d.woundPenalty {
		if p := self.Penalty(); p != 0 {
			comp.Terms = append(comp.Terms, dice.ComposedTerm{
				Term:     dice.Term{Sign: -1, Name: "Wounds"},
				Resolved: "Wounds",
				Value:    p,
			})
			comp.Size = dice.AddSaturating(comp.Size, p)
		}
	}

	result, err := d.roller.Roll(comp)
	if errors.Is(err, dice.ErrInvalidDifficulty) {
		return "", reply("Difficulty must be between %d and %d.", dice.MinDifficulty, dice.MaxDifficulty)
	}
	if errors.Is(err, dice.ErrPoolTooLarge) {
		return "", reply("Pool of %d is too large; the limit is %d dice.", comp.Size, dice.MaxPool)
	}
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s %s %s %s",
		render.Colorize(render.Red, "Roll>"),
		render.Colorize(render.Yellow, "You roll"),
		detailed(comp),
		render.Colorf(render.Yellow, "vs %d", comp.Difficulty),
		render.Colorize(render.Red, "=>"),
		dice.Render(dice.Interpret(result)))
	for _, w := range comp.Warnings {
		b.WriteString("\n")
		b.WriteString(render.Colorize(render.Red, "Warning: "+w))
	}
	return b.String(), nil
}

// detailed describes a composition with each stat's contribution,
// e.g. "Strength (3) + Brawl (2) - 1".
func detailed(c dice.Composition) string {
	var b strings.Builder
	for i, t := range c.Terms {
		switch {
		case i == 0 && t.Sign < 0:
			b.WriteString("- ")
		case i > 0 && t.Sign < 0:
			b.WriteString(" - ")
		case i > 0:
			b.WriteString(" + ")
		}
		if t.IsLiteral() {
			b.WriteString(render.Colorize(render.BrightWhite, t.Resolved))
			continue
		}
		fmt.Fprintf(&b, "%s (%d)", render.Colorize(render.BrightWhite, t.Resolved), t.Sign*t.Value)
	}
	return b.String()
}
