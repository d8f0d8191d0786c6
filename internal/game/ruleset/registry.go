package ruleset

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownSplat is returned when a splat ID or name is not registered.
var ErrUnknownSplat = errors.New("ruleset: unknown splat")

// Mortal is the splat ID used when a character has none.
const Mortal = "mortal"

// Registry provides lookup of splat templates by ID or display name.
type Registry struct {
	splats map[string]*Splat
}

// NewRegistry returns a Registry holding splats.
//
// Precondition: every splat must be non-nil with a non-empty ID.
// Postcondition: Returns a non-nil *Registry; later duplicates of an ID win.
func NewRegistry(splats ...*Splat) *Registry {
	r := &Registry{splats: make(map[string]*Splat)}
	for _, s := range splats {
		r.Register(s)
	}
	return r
}

// Register adds s to the registry.
//
// Precondition: s must be non-nil with a non-empty ID.
// Postcondition: s is retrievable via Splat using its ID or Name, in any case;
// if called multiple times with the same ID, the last call wins.
func (r *Registry) Register(s *Splat) {
	if s == nil {
		panic("ruleset.Registry.Register: precondition violated: splat must be non-nil")
	}
	if s.ID == "" {
		panic("ruleset.Registry.Register: precondition violated: splat ID must be non-empty")
	}
	r.splats[strings.ToLower(s.ID)] = s
}

// Splat returns the splat whose ID or Name equals name, case-insensitively.
// An empty name selects Mortal; if no mortal template is registered a bare
// one with default health levels is returned.
//
// Postcondition: Returns a non-nil *Splat, or an error wrapping ErrUnknownSplat.
func (r *Registry) Splat(name string) (*Splat, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = Mortal
	}
	if s, ok := r.splats[key]; ok {
		return s, nil
	}
	for _, s := range r.splats {
		if strings.EqualFold(s.Name, key) {
			return s, nil
		}
	}
	if key == Mortal {
		return &Splat{ID: Mortal, Name: "Mortal"}, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownSplat)
}

// IDs returns every registered splat ID, sorted.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.splats))
	for id := range r.splats {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
