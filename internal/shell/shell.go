// Package shell runs the line-oriented command loop over a dispatcher: one
// command per input line, its output written back, and touched characters
// saved after every command.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/soma-satoro/dies/internal/game/character"
	"github.com/soma-satoro/dies/internal/game/command"
)

// Saver persists a character after it changed.
type Saver interface {
	Save(ctx context.Context, c *character.Character) error
}

// Options configures a Shell. Dispatcher, Self, In and Out are required.
type Options struct {
	Dispatcher *command.Dispatcher
	Self       *character.Character
	Roster     *Roster
	Saver      Saver
	In         io.Reader
	Out        io.Writer
	Logger     *zap.Logger
	Prompt     string
}

// Shell is a server.Service reading commands from In until quit or EOF.
type Shell struct {
	d      *command.Dispatcher
	self   *character.Character
	roster *Roster
	saver  Saver
	in     io.Reader
	out    io.Writer
	logger *zap.Logger
	prompt string

	stopOnce sync.Once
	stop     chan struct{}
}

// New builds a Shell.
//
// Precondition: opts.Dispatcher, opts.Self, opts.In and opts.Out must be non-nil.
func New(opts Options) *Shell {
	if opts.Dispatcher == nil || opts.Self == nil || opts.In == nil || opts.Out == nil {
		panic("shell.New: precondition violated: Dispatcher, Self, In and Out must be non-nil")
	}
	s := &Shell{
		d:      opts.Dispatcher,
		self:   opts.Self,
		roster: opts.Roster,
		saver:  opts.Saver,
		in:     opts.In,
		out:    opts.Out,
		logger: opts.Logger,
		prompt: opts.Prompt,
		stop:   make(chan struct{}),
	}
	if s.roster == nil {
		s.roster = NewRoster()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Start reads and executes lines until quit, EOF, Stop or ctx cancellation.
// A Shell runs once.
//
// Postcondition: Returns nil on quit, EOF or Stop; ctx.Err() on cancellation;
// otherwise the first read, write or dispatch failure.
func (s *Shell) Start(ctx context.Context) error {
	defer s.Stop()
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(s.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		if err := s.write(s.prompt); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case err := <-readErr:
			return err
		case line := <-lines:
			done, err := s.handle(ctx, line)
			if err != nil || done {
				return err
			}
		}
	}
}

// Stop makes Start return. Safe to call more than once.
func (s *Shell) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Shell) handle(ctx context.Context, line string) (bool, error) {
	out, err := s.d.Execute(s.self, line)
	quit := errors.Is(err, command.ErrQuit)
	if err != nil && !quit {
		s.logger.Error("command failed", zap.String("line", line), zap.Error(err))
		return false, fmt.Errorf("executing %q: %w", line, err)
	}
	if out != "" {
		if err := s.write(out + "\n"); err != nil {
			return false, err
		}
	}
	s.save(ctx)
	return quit, nil
}

// save persists self and every roster character. Failures are logged.
func (s *Shell) save(ctx context.Context) {
	if s.saver == nil {
		return
	}
	chars := []*character.Character{s.self}
	for _, c := range s.roster.All() {
		if c != s.self {
			chars = append(chars, c)
		}
	}
	for _, c := range chars {
		if err := s.saver.Save(ctx, c); err != nil {
			s.logger.Warn("saving character", zap.String("character", c.Name), zap.Error(err))
		}
	}
}

func (s *Shell) write(text string) error {
	if text == "" {
		return nil
	}
	if _, err := io.WriteString(s.out, text); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
