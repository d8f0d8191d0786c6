package command

import (
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/soma-satoro/dies/internal/game/stat"
)

// splitStatSpec splits "Status(Ventrue)/social" into name, instance and
// qualifier. The instance form wins over a bare "/" split.
func splitStatSpec(spec string) (name, instance, qualifier string) {
	spec = strings.TrimSpace(spec)
	if open := strings.IndexByte(spec, '('); open >= 0 {
		if closeAt := strings.IndexByte(spec[open:], ')'); closeAt >= 0 {
			closeAt += open
			rest := strings.TrimSpace(spec[closeAt+1:])
			return strings.TrimSpace(spec[:open]),
				strings.TrimSpace(spec[open+1 : closeAt]),
				strings.TrimSpace(strings.TrimPrefix(rest, "/"))
		}
	}
	name, qualifier, _ = strings.Cut(spec, "/")
	return strings.TrimSpace(name), "", strings.TrimSpace(qualifier)
}

func handleStats(d *Dispatcher, ctx *Context) (string, error) {
	c := ctx.Self
	raw := ctx.Parsed.RawArgs
	if strings.EqualFold(raw, "reset") || ctx.Parsed.HasSwitch("reset") {
		c.Stats.Reset()
		d.logger.Info("stats reset", zap.String("character", c.Name))
		return green("Reset all stats for %s.", c.Name), nil
	}
	spec, value, found := strings.Cut(raw, "=")
	if !found || strings.TrimSpace(spec) == "" {
		return "", usage(ctx.Cmd)
	}
	name, instance, qualifier := splitStatSpec(spec)
	def, err := d.defs.Find(name, qualifier)
	switch {
	case errors.Is(err, stat.ErrAmbiguousStat):
		return "", reply("Multiple stats matching '%s' found. Please be more specific.", name)
	case err != nil:
		return "", reply("No stats matching '%s' found.", name)
	}

	full := stat.InstanceName(def.Name, instance)
	switch {
	case def.Instanced && instance == "":
		return "", reply("The stat '%s' requires an instance. Use the format: %s(instance)", def.Name, def.Name)
	case !def.Instanced && instance != "":
		return "", reply("The stat '%s' does not support instances.", def.Name)
	}
	k := def.Key(instance)

	if k.Category == stat.Pools {
		splat, err := d.splats.Splat(c.Splat)
		if err != nil {
			return "", err
		}
		valid := append(splat.Pools(), stat.RoadKey.Name)
		if !slices.Contains(valid, def.Name) {
			return "", reply("The pool '%s' is not valid for %s.", def.Name, splat.Name)
		}
	}

	value = strings.TrimSpace(value)
	if value == "" {
		if _, ok := c.Stats.Lookup(k); !ok {
			return "", reply("Stat '%s' not found on %s.", full, c.Name)
		}
		c.Stats.Remove(k)
		d.logger.Info("stat removed", zap.String("character", c.Name), zap.Stringer("key", k))
		return green("Removed stat '%s' from %s.", full, c.Name), nil
	}

	temp := ctx.Parsed.HasSwitch("temp")
	current, _ := c.Stats.Get(k, temp)
	v, err := stat.ParseValue(def, value, current)
	switch {
	case errors.Is(err, stat.ErrNotANumber) && (value[0] == '+' || value[0] == '-'):
		return "", reply("Increment/decrement values must be integers.")
	case errors.Is(err, stat.ErrNotANumber):
		return "", reply("Invalid value for %s. Please provide an integer.", full)
	case errors.Is(err, stat.ErrIllegalValue):
		return "", reply("Value '%s' is not valid for stat '%s'. Valid values are: %s", value, full, joinValues(def.Values))
	case err != nil:
		return "", err
	}

	if k == stat.SplatKey {
		splat, err := d.splats.Splat(v.String())
		if err != nil {
			return "", reply("Unknown splat '%s'. Known splats: %s", v.String(), strings.Join(d.splats.IDs(), ", "))
		}
		c.ApplySplat(splat)
		d.logger.Info("splat applied", zap.String("character", c.Name), zap.String("splat", splat.ID))
		return green("Updated %s's %s to %s.", c.Name, full, splat.Name) + "\n" +
			green("Applied default stats for %s to %s.", splat.Name, c.Name), nil
	}

	var lines []string
	switch {
	case temp:
		c.Stats.Set(k, v, true)
		lines = append(lines, green("Updated %s's temporary %s to %s.", c.Name, full, v))
	case k.IsDual():
		c.Stats.SetBoth(k, v)
		lines = append(lines, green("Updated %s's %s to %s (both permanent and temporary).", c.Name, full, v))
	default:
		c.Stats.Set(k, v, false)
		lines = append(lines, green("Updated %s's %s to %s.", c.Name, full, v))
	}
	d.logger.Info("stat updated",
		zap.String("character", c.Name),
		zap.Stringer("key", k),
		zap.Stringer("value", v),
		zap.Bool("temp", temp),
	)

	if k.Category == stat.Virtues || k == stat.EnlightenmentKey {
		lines = append(lines,
			green("Recalculated Willpower to %d.", c.Stats.Int(stat.WillpowerKey, false)),
			green("Recalculated Road to %d.", c.Stats.Int(stat.RoadKey, false)))
	}
	return strings.Join(lines, "\n"), nil
}

func joinValues(vs []stat.Value) string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return strings.Join(out, ", ")
}
