package command_test

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/soma-satoro/dies/internal/game/character"
	"github.com/soma-satoro/dies/internal/game/command"
	"github.com/soma-satoro/dies/internal/game/dice"
	"github.com/soma-satoro/dies/internal/game/ruleset"
	"github.com/soma-satoro/dies/internal/game/stat"
	"github.com/soma-satoro/dies/internal/render"
)

// fixedSource replays a scripted list of die faces (1-10).
type fixedSource struct {
	faces []int
	pos   int
}

func (f *fixedSource) Intn(n int) int {
	v := f.faces[f.pos%len(f.faces)]
	f.pos++
	return v - 1
}

type mapRoster map[string]*character.Character

func (m mapRoster) Find(name string) (*character.Character, bool) {
	for n, c := range m {
		if strings.EqualFold(n, name) {
			return c, true
		}
	}
	return nil, false
}

type fixture struct {
	d      *command.Dispatcher
	self   *character.Character
	other  *character.Character
	splats *ruleset.Registry
	boosts *command.BoostQueue
	logs   *observer.ObservedLogs
	now    time.Time
}

type fixtureOption func(*command.Options)

func withFaces(faces ...int) fixtureOption {
	return func(o *command.Options) {
		o.Roller = dice.NewLoggedRoller(&fixedSource{faces: faces}, o.Logger)
	}
}

func newFixture(t *testing.T, splat string, opts ...fixtureOption) *fixture {
	t.Helper()
	defs, err := stat.LoadDirectory("../../../content/stats")
	require.NoError(t, err)
	loaded, err := ruleset.LoadSplats("../../../content/splats")
	require.NoError(t, err)
	reg := ruleset.NewRegistry(loaded...)

	sp, err := reg.Splat(splat)
	require.NoError(t, err)
	self, err := character.Build("Anna", sp, defs)
	require.NoError(t, err)
	mortal, err := reg.Splat(ruleset.Mortal)
	require.NoError(t, err)
	other, err := character.Build("Bob", mortal, defs)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	f := &fixture{
		self:   self,
		other:  other,
		splats: reg,
		boosts: command.NewBoostQueue(),
		logs:   logs,
		now:    time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC),
	}
	o := command.Options{
		Definitions: defs,
		Splats:      reg,
		Logger:      zap.New(core),
		Roster:      mapRoster{"Bob": other},
		Boosts:      f.boosts,
		Now:         func() time.Time { return f.now },
	}
	o.Roller = dice.NewLoggedRoller(&fixedSource{faces: []int{6}}, o.Logger)
	for _, opt := range opts {
		opt(&o)
	}
	f.d = command.NewDispatcher(o)
	return f
}

// run executes line for Anna and returns the output without colour codes.
func (f *fixture) run(t *testing.T, line string) string {
	t.Helper()
	out, err := f.d.Execute(f.self, line)
	require.NoError(t, err)
	return render.StripANSI(out)
}

func TestHandlers_EveryBuiltinIsWired(t *testing.T) {
	h := command.Handlers()
	for _, cmd := range command.BuiltinCommands() {
		_, ok := h[cmd.Handler]
		assert.True(t, ok, "command %q has no handler %q", cmd.Name, cmd.Handler)
	}
}

func TestNewDispatcher_NilRollerPanics(t *testing.T) {
	assert.Panics(t, func() { command.NewDispatcher(command.Options{}) })
}

func TestExecute_NilSelfPanics(t *testing.T) {
	f := newFixture(t, ruleset.Mortal)
	assert.Panics(t, func() { _, _ = f.d.Execute(nil, "help") })
}

func TestExecute_EmptyLine(t *testing.T) {
	f := newFixture(t, ruleset.Mortal)
	assert.Equal(t, "", f.run(t, "   "))
}

func TestExecute_UnknownCommand(t *testing.T) {
	f := newFixture(t, ruleset.Mortal)
	assert.Equal(t, "Unknown command: +fly. Type 'help' for available commands.", f.run(t, "+fly high"))
}

func TestExecute_Quit(t *testing.T) {
	f := newFixture(t, ruleset.Mortal)
	out, err := f.d.Execute(f.self, "quit")
	assert.ErrorIs(t, err, command.ErrQuit)
	assert.Equal(t, "Goodbye.", out)
}

func TestExecute_Help(t *testing.T) {
	f := newFixture(t, ruleset.Mortal)
	out := f.run(t, "help")
	for _, name := range []string{"+roll", "+hurt", "+heal", "+stats", "+spend", "+gain", "+pump", "+sheet"} {
		assert.Contains(t, out, name)
	}
}

func TestRoll_StatsAndLiteral(t *testing.T) {
	f := newFixture(t, ruleset.Mortal, withFaces(9, 8, 7, 6, 5, 4, 3, 1))
	f.self.Stats.SetBoth(stat.Key{Category: stat.Attributes, Type: "physical", Name: "Strength"}, stat.Int(3))
	f.self.Stats.SetBoth(stat.Key{Category: stat.Attributes, Type: "physical", Name: "Dexterity"}, stat.Int(2))

	out := f.run(t, "+roll stre+dex+3 vs 6")
	assert.Equal(t, "Roll> You roll Strength (3) + Dexterity (2) + 3 vs 6 => (3) Successes (9 8 7 6 5 4 3 1)", out)
}

func TestRoll_DefaultDifficultyFromOptions(t *testing.T) {
	f := newFixture(t, ruleset.Mortal, withFaces(3, 1), func(o *command.Options) { o.DefaultDifficulty = 8 })
	out := f.run(t, "+roll 2")
	assert.Equal(t, "Roll> You roll 2 vs 8 => (-1) Botch! (3 1)", out)
}

func TestRoll_UnknownStatWarns(t *testing.T) {
	f := newFixture(t, ruleset.Mortal)
	f.self.Stats.SetBoth(stat.Key{Category: stat.Attributes, Type: "physical", Name: "Strength"}, stat.Int(2))

	out := f.run(t, "+roll strength+occult")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Roll> You roll Strength (2) + Occult (0) vs 6 => (2) Successes (6 6)", lines[0])
	assert.Equal(t, "Warning: Stat 'Occult' not found or has no value. Treating as 0.", lines[1])
}

func TestRoll_Errors(t *testing.T) {
	f := newFixture(t, ruleset.Mortal)
	assert.Equal(t, "Difficulty must be between 2 and 10.", f.run(t, "+roll 3 vs 11"))
	assert.Equal(t, "Usage: +roll <expression> [vs <difficulty>]", f.run(t, "+roll"))
}

func TestRoll_PoolSizeLimits(t *testing.T) {
	f := newFixture(t, ruleset.Mortal)
	strength := stat.Key{Category: stat.Attributes, Type: "physical", Name: "Strength"}

	var out string
	require.NotPanics(t, func() { out = f.run(t, "+roll 4611686018427387904") })
	assert.True(t, strings.HasPrefix(out, "Invalid roll format."), out)

	assert.Equal(t, "Pool of 120 is too large; the limit is 100 dice.", f.run(t, "+roll 60+60"))

	f.self.Stats.SetBoth(strength, stat.Int(math.MaxInt))
	require.NotPanics(t, func() { out = f.run(t, "+roll stre+stre+100") })
	assert.Equal(t, fmt.Sprintf("Pool of %d is too large; the limit is %d dice.", math.MaxInt, dice.MaxPool), out)

	f.self.Stats.SetBoth(strength, stat.Int(40))
	out = f.run(t, "+roll stre+stre+20")
	assert.True(t, strings.HasPrefix(out, "Roll> You roll Strength (40) + Strength (40) + 20 vs 6 => (100) Successes"), out)
}

func TestWound_ExtremeAmountsKeepTrackValid(t *testing.T) {
	f := newFixture(t, ruleset.Mortal)
	require.NotPanics(t, func() { f.run(t, "+hurt 9223372036854775807b") })
	assert.Equal(t, f.self.Health.Limit(), f.self.Health.Aggravated)

	f.run(t, "+heal 9223372036854775807a")
	assert.Equal(t, 0, f.self.Health.Total())
	assert.GreaterOrEqual(t, f.self.Health.Bashing, 0)
	assert.Equal(t, "Invalid damage input. Use a positive number followed by b, l, or a (e.g., 3l, 2b, 4a).",
		f.run(t, "+hurt 9223372036854775808l"))
}

func TestRoll_WoundPenalty(t *testing.T) {
	f := newFixture(t, ruleset.Mortal, func(o *command.Options) { o.WoundPenalty = true })
	f.run(t, "+hurt 3l")

	out := f.run(t, "+roll 3")
	assert.Equal(t, "Roll> You roll 3 - Wounds (1) vs 6 => (2) Successes (6 6)", out)
}

func TestHurt_SelfAndLog(t *testing.T) {
	f := newFixture(t, ruleset.Mortal)
	out := f.run(t, "+hurt 3l")
	assert.Equal(t, "HURT> Anna takes 3 lethal.\nHURT> [X][X][X][ ][ ][ ][ ] Status: Hurt (-1)", out)

	entries := f.logs.FilterMessage("health changed").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "Anna", ctx["character"])
	assert.Equal(t, int64(3), ctx["amount"])
	assert.Equal(t, "Healthy", ctx["from"])
	assert.Equal(t, "Hurt", ctx["to"])
}

func TestHeal_SpillsToLowerClasses(t *testing.T) {
	f := newFixture(t, ruleset.Mortal)
	f.run(t, "+hurt 2b")
	f.run(t, "+hurt 1l")

	out := f.run(t, "+heal 2l")
	assert.Equal(t, "HEAL> Anna heals 2 lethal.\nHEAL> [/][ ][ ][ ][ ][ ][ ] Status: Bruised", out)
	assert.Equal(t, 1, f.self.Health.Bashing)
	assert.Zero(t, f.self.Health.Lethal)
}

func TestHurt_Target(t *testing.T) {
	f := newFixture(t, ruleset.Mortal)
	out := f.run(t, "+hurt bob=2b")
	assert.Contains(t, out, "Bob takes 2 bashing.")
	assert.Equal(t, 2, f.other.Health.Bashing)
	assert.Zero(t, f.self.Health.Total())

	assert.Equal(t, "Character 'Zed' not found.", f.run(t, "+hurt Zed=1b"))
}

func TestHurt_InvalidInput(t *testing.T) {
	f := newFixture(t, ruleset.Mortal)
	for _, in := range []string{"3x", "0l", "l", "-2b", "twob"} {
		t.Run(in, func(t *testing.T) {
			out := f.run(t, "+hurt "+in)
			assert.Equal(t, "Invalid damage input. Use a positive number followed by b, l, or a (e.g., 3l, 2b, 4a).", out)
		})
	}
	assert.Contains(t, f.run(t, "+heal x"), "Invalid healing input.")
	assert.Zero(t, f.self.Health.Total())
}

func TestHurt_DeadIgnoresBashing(t *testing.T) {
	f := newFixture(t, ruleset.Mortal)
	out := f.run(t, "+hurt 8a")
	assert.Contains(t, out, "Status: Dead")

	assert.Equal(t, "Anna is already dead and cannot take more bashing or lethal damage.", f.run(t, "+hurt 1b"))
	assert.Equal(t, 8, f.self.Health.Aggravated)
}

func TestSheet(t *testing.T) {
	f := newFixture(t, ruleset.Mortal)
	assert.Contains(t, f.run(t, "+sheet"), "Anna")
	assert.Contains(t, f.run(t, "+sheet bob"), "Bob")
	assert.Equal(t, "Character 'Nobody' not found.", f.run(t, "+sheet Nobody"))
}

func TestExecute_TrailingNewlinesTrimmed(t *testing.T) {
	f := newFixture(t, ruleset.Mortal)
	out, err := f.d.Execute(f.self, "+sheet")
	require.NoError(t, err)
	assert.False(t, strings.HasSuffix(out, "\n"))
}
