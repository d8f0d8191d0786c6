package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/soma-satoro/dies/internal/game/character"
	"github.com/soma-satoro/dies/internal/game/dice"
	"github.com/soma-satoro/dies/internal/game/ruleset"
	"github.com/soma-satoro/dies/internal/game/stat"
	"github.com/soma-satoro/dies/internal/render"
)

// ErrQuit is returned by Execute when the player asked to leave.
var ErrQuit = errors.New("command: quit")

// Roster finds other characters by name for commands that can target them.
type Roster interface {
	Find(name string) (*character.Character, bool)
}

// Context carries all inputs a handler needs.
type Context struct {
	Self   *character.Character
	Cmd    *Command
	Parsed ParseResult
}

// handlerFunc is the signature for all dispatch functions. A *replyError is
// shown to the player; any other error is a dispatcher failure.
type handlerFunc func(d *Dispatcher, ctx *Context) (string, error)

// Handlers returns the map from Handler constant to dispatch function.
// Exported so tests can verify every builtin command is wired.
func Handlers() map[string]handlerFunc {
	return handlerMap
}

// handlerMap is the single source of truth for command dispatch.
// To add a new command: add a Handler constant to commands.go AND add an entry here.
var handlerMap = map[string]handlerFunc{
	HandlerRoll:  handleRoll,
	HandlerHurt:  handleHurt,
	HandlerHeal:  handleHeal,
	HandlerStats: handleStats,
	HandlerSpend: handleSpend,
	HandlerGain:  handleGain,
	HandlerPump:  handlePump,
	HandlerSheet: handleSheet,
	HandlerHelp:  handleHelp,
	HandlerQuit:  handleQuit,
}

// replyError is a message for the player rather than a failure.
type replyError struct {
	msg string
}

func (e *replyError) Error() string { return e.msg }

func reply(format string, args ...any) error {
	return &replyError{msg: fmt.Sprintf(format, args...)}
}

func usage(cmd *Command) error {
	return reply("Usage: %s %s", cmd.Name, cmd.Usage)
}

// Options configures a Dispatcher. Only Roller is required.
type Options struct {
	Registry          *Registry
	Definitions       *stat.Registry
	Splats            *ruleset.Registry
	Roller            *dice.Roller
	Resolver          stat.Resolver
	Logger            *zap.Logger
	Roster            Roster
	Boosts            *BoostQueue
	DefaultDifficulty int
	// WoundPenalty subtracts the roller's current wound penalty from every pool.
	WoundPenalty bool
	Now          func() time.Time
}

// Dispatcher resolves command lines and runs them against a character.
//
// A Dispatcher is not safe for concurrent use; callers serialise per character.
type Dispatcher struct {
	registry     *Registry
	defs         *stat.Registry
	splats       *ruleset.Registry
	roller       *dice.Roller
	resolver     stat.Resolver
	logger       *zap.Logger
	roster       Roster
	boosts       *BoostQueue
	difficulty   int
	woundPenalty bool
	now          func() time.Time
}

// NewDispatcher builds a Dispatcher, filling unset options with defaults:
// the builtin registry, empty definition and splat registries, a no-op
// logger, DefaultMatchThreshold and dice.DefaultDifficulty.
//
// Precondition: opts.Roller must be non-nil.
// Postcondition: Returns a ready Dispatcher.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.Roller == nil {
		panic("command.NewDispatcher: precondition violated: Roller must be non-nil")
	}
	d := &Dispatcher{
		registry:     opts.Registry,
		defs:         opts.Definitions,
		splats:       opts.Splats,
		roller:       opts.Roller,
		resolver:     opts.Resolver,
		logger:       opts.Logger,
		roster:       opts.Roster,
		boosts:       opts.Boosts,
		difficulty:   opts.DefaultDifficulty,
		woundPenalty: opts.WoundPenalty,
		now:          opts.Now,
	}
	if d.registry == nil {
		d.registry = DefaultRegistry()
	}
	if d.defs == nil {
		d.defs, _ = stat.NewRegistry()
	}
	if d.splats == nil {
		d.splats = ruleset.NewRegistry()
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.resolver.Threshold == 0 {
		d.resolver = stat.NewResolver(stat.DefaultMatchThreshold)
	}
	if d.difficulty == 0 {
		d.difficulty = dice.DefaultDifficulty
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// Execute runs one command line for self and returns the text to show.
// Expired pump boosts are reverted first and their notices prepended.
//
// Precondition: self must be non-nil.
// Postcondition: err is ErrQuit when the player asked to leave, another
// non-nil error only on internal failure; player mistakes come back as
// red text with a nil error.
func (d *Dispatcher) Execute(self *character.Character, line string) (string, error) {
	if self == nil {
		panic("command.Dispatcher.Execute: precondition violated: self must be non-nil")
	}
	var notices []string
	if d.boosts != nil {
		notices = d.boosts.RevertDue(d.now())
	}
	out, err := d.execute(self, line)
	if len(notices) > 0 {
		out = strings.Join(append(notices, out), "\n")
	}
	return strings.TrimRight(out, "\n"), err
}

func (d *Dispatcher) execute(self *character.Character, line string) (string, error) {
	parsed := Parse(line)
	if parsed.Command == "" {
		return "", nil
	}
	cmd, ok := d.registry.Resolve(parsed.Command)
	if !ok {
		return render.Colorf(render.Red, "Unknown command: %s. Type 'help' for available commands.", parsed.Command), nil
	}
	h, ok := handlerMap[cmd.Handler]
	if !ok {
		return "", fmt.Errorf("command %q: no handler %q", cmd.Name, cmd.Handler)
	}
	out, err := h(d, &Context{Self: self, Cmd: cmd, Parsed: parsed})
	var re *replyError
	if errors.As(err, &re) {
		return render.Colorize(render.Red, re.msg), nil
	}
	return out, err
}

// target returns self for an empty name or "me", else the named character.
func (d *Dispatcher) target(self *character.Character, name string) (*character.Character, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "me") || strings.EqualFold(name, self.Name) {
		return self, nil
	}
	if d.roster != nil {
		if c, ok := d.roster.Find(name); ok {
			return c, nil
		}
	}
	return nil, reply("Character '%s' not found.", name)
}

func handleHelp(d *Dispatcher, _ *Context) (string, error) {
	return d.registry.Help(character.SheetWidth), nil
}

func handleQuit(_ *Dispatcher, _ *Context) (string, error) {
	return "Goodbye.", ErrQuit
}

func handleSheet(d *Dispatcher, ctx *Context) (string, error) {
	c, err := d.target(ctx.Self, ctx.Parsed.RawArgs)
	if err != nil {
		return "", err
	}
	return c.Sheet(), nil
}

func green(format string, args ...any) string {
	return render.Colorf(render.Green, format, args...)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
