package command

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/soma-satoro/dies/internal/game/health"
	"github.com/soma-satoro/dies/internal/render"
)

// parseWound splits "[<name>=]<amount><b|l|a>".
func parseWound(raw string) (target string, amount int, class health.Class, ok bool) {
	spec := raw
	if name, rest, found := strings.Cut(raw, "="); found {
		target, spec = strings.TrimSpace(name), rest
	}
	spec = strings.TrimSpace(spec)
	if len(spec) < 2 {
		return "", 0, 0, false
	}
	n, err := strconv.Atoi(spec[:len(spec)-1])
	if err != nil || n <= 0 {
		return "", 0, 0, false
	}
	c, err := health.ParseClass(spec[len(spec)-1:])
	if err != nil {
		return "", 0, 0, false
	}
	return target, n, c, true
}

func handleHurt(d *Dispatcher, ctx *Context) (string, error) {
	return applyWound(d, ctx, false)
}

func handleHeal(d *Dispatcher, ctx *Context) (string, error) {
	return applyWound(d, ctx, true)
}

// applyWound renders:
//
//	HURT> Anna takes 3 lethal.
//	HURT> [X][X][X][ ][ ][ ][ ] Status: Hurt (-1)
func applyWound(d *Dispatcher, ctx *Context, heal bool) (string, error) {
	tag, color, verb, noun := "HURT>", render.Red, "takes", "damage"
	if heal {
		tag, color, verb, noun = "HEAL>", render.Green, "heals", "healing"
	}
	if ctx.Parsed.RawArgs == "" {
		return "", usage(ctx.Cmd)
	}
	name, amount, class, ok := parseWound(ctx.Parsed.RawArgs)
	if !ok {
		return "", reply("Invalid %s input. Use a positive number followed by b, l, or a (e.g., 3l, 2b, 4a).", noun)
	}
	c, err := d.target(ctx.Self, name)
	if err != nil {
		return "", err
	}
	delta := amount
	if heal {
		delta = -amount
	}
	out, err := c.Health.Apply(delta, class)
	if err != nil {
		return "", err
	}
	if out.Ignored {
		return "", reply("%s is already %s and cannot take more bashing or lethal damage.", c.Name, strings.ToLower(string(out.Injury)))
	}
	d.logger.Info("health changed",
		zap.String("character", c.Name),
		zap.Int("amount", delta),
		zap.Stringer("class", class),
		zap.String("from", string(out.Previous)),
		zap.String("to", string(out.Injury)),
		zap.Bool("clamped", out.Clamped),
	)
	prefix := render.Colorize(color, tag)
	return prefix + " " + c.Name + " " + verb + " " + render.Colorf(color, "%d", amount) + " " +
		render.Colorize(render.Yellow, class.String()) + ".\n" +
		prefix + " " + c.Health.Strip() + " Status: " + c.Health.Status(), nil
}
