package shell_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/soma-satoro/dies/internal/game/character"
	"github.com/soma-satoro/dies/internal/game/command"
	"github.com/soma-satoro/dies/internal/game/dice"
	"github.com/soma-satoro/dies/internal/game/ruleset"
	"github.com/soma-satoro/dies/internal/render"
	"github.com/soma-satoro/dies/internal/shell"
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

type recordingSaver struct {
	mu    sync.Mutex
	saved []string
	err   error
}

func (r *recordingSaver) Save(_ context.Context, c *character.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, c.Name)
	return r.err
}

func mortal(t *testing.T, name string) *character.Character {
	t.Helper()
	sp, err := ruleset.NewRegistry().Splat(ruleset.Mortal)
	require.NoError(t, err)
	c, err := character.Build(name, sp, nil)
	require.NoError(t, err)
	return c
}

func newShell(t *testing.T, input string, saver shell.Saver, logger *zap.Logger) (*shell.Shell, *bytes.Buffer, *character.Character, *character.Character) {
	t.Helper()
	self := mortal(t, "Anna")
	bob := mortal(t, "Bob")
	roster := shell.NewRoster(bob)
	d := command.NewDispatcher(command.Options{
		Roller: dice.NewLoggedRoller(&fixedSource{faces: []int{7}}, zap.NewNop()),
		Roster: roster,
	})
	out := &bytes.Buffer{}
	opts := shell.Options{
		Dispatcher: d,
		Self:       self,
		Roster:     roster,
		In:         strings.NewReader(input),
		Out:        out,
		Logger:     logger,
	}
	if saver != nil {
		opts.Saver = saver
	}
	return shell.New(opts), out, self, bob
}

func TestShell_RunsUntilQuit(t *testing.T) {
	s, out, self, bob := newShell(t, "+hurt 2l\n+hurt bob=1b\nquit\n+hurt 5l\n", nil, nil)
	require.NoError(t, s.Start(context.Background()))

	text := render.StripANSI(out.String())
	assert.Contains(t, text, "HURT> Anna takes 2 lethal.")
	assert.Contains(t, text, "HURT> Bob takes 1 bashing.")
	assert.True(t, strings.HasSuffix(text, "Goodbye.\n"))
	assert.Equal(t, 2, self.Health.Lethal, "lines after quit are not run")
	assert.Equal(t, 1, bob.Health.Bashing)
}

func TestShell_EOFEndsCleanly(t *testing.T) {
	s, out, _, _ := newShell(t, "+roll 2 vs 6", nil, nil)
	require.NoError(t, s.Start(context.Background()))
	assert.Contains(t, render.StripANSI(out.String()), "(2) Successes (7 7)")
}

func TestShell_PromptPrecedesEveryLine(t *testing.T) {
	self := mortal(t, "Anna")
	out := &bytes.Buffer{}
	s := shell.New(shell.Options{
		Dispatcher: command.NewDispatcher(command.Options{Roller: dice.NewLoggedRoller(&fixedSource{faces: []int{7}}, zap.NewNop())}),
		Self:       self,
		In:         strings.NewReader("\n\n"),
		Out:        out,
		Prompt:     "> ",
	})
	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, "> > > ", out.String())
}

func TestShell_SavesSelfAndRosterAfterEachCommand(t *testing.T) {
	saver := &recordingSaver{}
	s, _, _, _ := newShell(t, "+hurt 1b\n+sheet\n", saver, nil)
	require.NoError(t, s.Start(context.Background()))
	assert.ElementsMatch(t, []string{"Anna", "Bob", "Anna", "Bob"}, saver.saved)
}

func TestShell_SaveFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	saver := &recordingSaver{err: errors.New("db down")}
	s, out, _, _ := newShell(t, "+hurt 1b\n", saver, zap.New(core))
	require.NoError(t, s.Start(context.Background()))
	assert.Contains(t, render.StripANSI(out.String()), "Anna takes 1 bashing.")
	assert.NotEmpty(t, logs.FilterMessage("saving character").All())
}

func TestShell_StopUnblocksRead(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	s := shell.New(shell.Options{
		Dispatcher: command.NewDispatcher(command.Options{Roller: dice.NewLoggedRoller(dice.NewSeededSource(1), zap.NewNop())}),
		Self:       mortal(t, "Anna"),
		In:         r,
		Out:        io.Discard,
	})
	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()
	s.Stop()
	s.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("shell did not stop")
	}
}

func TestShell_ContextCancel(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	s := shell.New(shell.Options{
		Dispatcher: command.NewDispatcher(command.Options{Roller: dice.NewLoggedRoller(dice.NewSeededSource(1), zap.NewNop())}),
		Self:       mortal(t, "Anna"),
		In:         r,
		Out:        io.Discard,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Start(ctx), context.Canceled)
}

func TestNew_Preconditions(t *testing.T) {
	assert.Panics(t, func() { shell.New(shell.Options{}) })
}

func TestRoster_FindIgnoresCase(t *testing.T) {
	r := shell.NewRoster(mortal(t, "Bob"))
	c, ok := r.Find(" BOB ")
	require.True(t, ok)
	assert.Equal(t, "Bob", c.Name)
	_, ok = r.Find("Zed")
	assert.False(t, ok)
	assert.Panics(t, func() { r.Add(nil) })
}
