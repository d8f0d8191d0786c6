package stat

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is the static reference data for one stat, loaded from YAML.
//
// Invariant: (Name, Category, Type) identifies a definition.
type Definition struct {
	Name        string   `yaml:"name"`
	Category    Category `yaml:"category"`
	Type        string   `yaml:"type"`
	Kind        Kind     `yaml:"kind"`
	Values      []Value  `yaml:"values,omitempty"`
	Instanced   bool     `yaml:"instanced,omitempty"`
	Default     *Value   `yaml:"default,omitempty"`
	Splat       string   `yaml:"splat,omitempty"`
	GameLine    string   `yaml:"game_line,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

// Key returns the block key for this definition and an optional instance.
func (d *Definition) Key(instance string) Key {
	return Key{Category: d.Category, Type: d.Type, Name: InstanceName(d.Name, instance)}
}

// Zero returns the value an unset stat of this definition reads as: Default
// when present, else 0 or "" by Kind.
func (d *Definition) Zero() Value {
	if d.Default != nil {
		return *d.Default
	}
	return Zero(d.Kind)
}

// Allows reports whether v is a legal value. An empty Values list is unconstrained.
func (d *Definition) Allows(v Value) bool {
	if len(d.Values) == 0 {
		return true
	}
	return slices.ContainsFunc(d.Values, v.Equal)
}

// Validate checks the definition's structural constraints.
//
// Postcondition: Returns nil, or an error describing every violation.
func (d *Definition) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !slices.Contains(Categories, d.Category) {
		errs = append(errs, fmt.Errorf("unknown category %q", d.Category))
	}
	if !IsKnownType(d.Type) {
		errs = append(errs, fmt.Errorf("unknown type %q", d.Type))
	}
	for _, v := range d.Values {
		if v.Kind() != d.Kind {
			errs = append(errs, fmt.Errorf("value %q is not a %s", v.String(), d.Kind))
		}
	}
	if d.Default != nil && d.Default.Kind() != d.Kind {
		errs = append(errs, fmt.Errorf("default %q is not a %s", d.Default.String(), d.Kind))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("stat %q: %w", d.Name, err)
	}
	return nil
}

// Registry holds every known Definition.
type Registry struct {
	defs   []*Definition
	byKey  map[Key]*Definition
	byName map[string][]*Definition
}

// NewRegistry builds a Registry from defs.
//
// Precondition: each def must be non-nil.
// Postcondition: Returns an error if any def fails Validate or two defs share an identity.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	r := &Registry{
		byKey:  make(map[Key]*Definition),
		byName: make(map[string][]*Definition),
	}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds def to the registry.
//
// Precondition: def must be non-nil.
// Postcondition: def is retrievable by Lookup and ByName, or an error is returned
// and the registry is unchanged.
func (r *Registry) Register(def *Definition) error {
	if def == nil {
		panic("stat.Registry.Register: precondition violated: def must be non-nil")
	}
	if err := def.Validate(); err != nil {
		return err
	}
	k := def.Key("")
	if _, dup := r.byKey[k]; dup {
		return fmt.Errorf("stat %q: duplicate definition for %s", def.Name, k)
	}
	r.defs = append(r.defs, def)
	r.byKey[k] = def
	lower := strings.ToLower(def.Name)
	r.byName[lower] = append(r.byName[lower], def)
	return nil
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int { return len(r.defs) }

// All returns the definitions in registration order.
func (r *Registry) All() []*Definition {
	return slices.Clone(r.defs)
}

// Lookup returns the definition for k. Instanced keys such as
// "Status(Ventrue)" resolve to their base definition.
func (r *Registry) Lookup(k Key) (*Definition, bool) {
	if d, ok := r.byKey[k]; ok {
		return d, true
	}
	base, inst := SplitInstance(k.Name)
	if inst == "" {
		return nil, false
	}
	d, ok := r.byKey[Key{k.Category, k.Type, base}]
	if !ok || !d.Instanced {
		return nil, false
	}
	return d, true
}

// ByName returns every definition whose name equals name case-insensitively.
func (r *Registry) ByName(name string) []*Definition {
	return slices.Clone(r.byName[strings.ToLower(strings.TrimSpace(name))])
}

// Search returns every definition whose name contains substr case-insensitively.
func (r *Registry) Search(substr string) []*Definition {
	s := strings.ToLower(strings.TrimSpace(substr))
	var out []*Definition
	for _, d := range r.defs {
		if strings.Contains(strings.ToLower(d.Name), s) {
			out = append(out, d)
		}
	}
	return out
}

// Names returns the distinct definition names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for _, defs := range r.byName {
		out = append(out, defs[0].Name)
	}
	sort.Strings(out)
	return out
}

// Find resolves a player-typed stat name to exactly one definition for mutation.
// qualifier, when non-empty, must match the definition's category or type
// (e.g. "Strength/physical"). Exact name matches win over substring matches.
//
// Postcondition: Returns one definition, or an error wrapping ErrUnknownStat
// or ErrAmbiguousStat.
func (r *Registry) Find(name, qualifier string) (*Definition, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("empty stat name: %w", ErrUnknownStat)
	}
	filter := func(defs []*Definition) []*Definition {
		if qualifier == "" {
			return defs
		}
		q := strings.ToLower(strings.TrimSpace(qualifier))
		var out []*Definition
		for _, d := range defs {
			if string(d.Category) == q || d.Type == q {
				out = append(out, d)
			}
		}
		return out
	}
	matches := filter(r.ByName(name))
	if len(matches) == 0 {
		matches = filter(r.Search(name))
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no stats matching %q: %w", name, ErrUnknownStat)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, d := range matches {
			names[i] = d.Key("").String()
		}
		return nil, fmt.Errorf("multiple stats matching %q (%s): %w",
			name, strings.Join(names, ", "), ErrAmbiguousStat)
	}
}

// LoadDirectory reads every *.yaml file in dir, each holding a list of
// definitions, and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error naming the first file
// that fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading stat dir %q: %w", dir, err)
	}
	reg, _ := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !(strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		defs, err := DecodeDefinitions(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		for _, d := range defs {
			if err := reg.Register(d); err != nil {
				return nil, fmt.Errorf("loading %q: %w", path, err)
			}
		}
	}
	return reg, nil
}

// DecodeDefinitions parses a YAML list of definitions, rejecting unknown fields.
func DecodeDefinitions(data []byte) ([]*Definition, error) {
	var defs []*Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	for i, d := range defs {
		if d == nil {
			return nil, fmt.Errorf("entry %d: empty definition", i)
		}
	}
	return defs, nil
}
