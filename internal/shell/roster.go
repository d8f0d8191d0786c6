package shell

import (
	"strings"
	"sync"

	"github.com/soma-satoro/dies/internal/game/character"
)

// Roster is the set of characters commands can target by name.
//
// Roster is safe for concurrent use.
type Roster struct {
	mu    sync.RWMutex
	chars map[string]*character.Character
}

// NewRoster returns a roster holding chars.
func NewRoster(chars ...*character.Character) *Roster {
	r := &Roster{chars: make(map[string]*character.Character, len(chars))}
	for _, c := range chars {
		r.Add(c)
	}
	return r
}

// Add registers c under its name, replacing any character with the same name.
//
// Precondition: c must be non-nil.
func (r *Roster) Add(c *character.Character) {
	if c == nil {
		panic("shell.Roster.Add: precondition violated: c must be non-nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chars[strings.ToLower(c.Name)] = c
}

// Find returns the character named name, compared case-insensitively.
func (r *Roster) Find(name string) (*character.Character, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.chars[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// All returns every character in the roster.
func (r *Roster) All() []*character.Character {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*character.Character, 0, len(r.chars))
	for _, c := range r.chars {
		out = append(out, c)
	}
	return out
}
