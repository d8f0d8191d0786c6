// Package ruleset loads splat templates: the per-game-line defaults (pools,
// identity fields, health levels) applied when a character takes a splat.
package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/soma-satoro/dies/internal/game/stat"
)

// Seed is one stat written to both perm and temp when a splat is applied.
type Seed struct {
	Category string     `yaml:"category"`
	Type     string     `yaml:"type"`
	Name     string     `yaml:"name"`
	Value    stat.Value `yaml:"value"`
}

// Key returns the stat key the seed writes.
func (s Seed) Key() stat.Key {
	return stat.Key{Category: stat.Category(s.Category), Type: s.Type, Name: s.Name}
}

// Splat defines the template for one supernatural type.
//
// Precondition: ID and Name must be non-empty after loading.
type Splat struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Undead       bool   `yaml:"undead"`
	HealthLevels int    `yaml:"health_levels"`
	Seeds        []Seed `yaml:"seeds"`
}

// Pools returns the names of the spendable pools a character of this splat
// has: Willpower plus every seeded pools/dual stat, sorted.
//
// Postcondition: Always contains "Willpower".
func (s *Splat) Pools() []string {
	out := []string{stat.WillpowerKey.Name}
	for _, seed := range s.Seeds {
		if seed.Key().Category == stat.Pools && seed.Type == "dual" && !slices.Contains(out, seed.Name) {
			out = append(out, seed.Name)
		}
	}
	slices.Sort(out)
	return out
}

// Validate reports every problem with the template.
//
// Postcondition: Returns nil, or the joined list of violations.
func (s *Splat) Validate() error {
	var errs []error
	if s.ID == "" {
		errs = append(errs, errors.New("id must be non-empty"))
	}
	if s.Name == "" {
		errs = append(errs, errors.New("name must be non-empty"))
	}
	if s.HealthLevels < 0 {
		errs = append(errs, fmt.Errorf("health_levels %d must not be negative", s.HealthLevels))
	}
	for i, seed := range s.Seeds {
		if seed.Name == "" {
			errs = append(errs, fmt.Errorf("seed %d: name must be non-empty", i))
		}
		if _, err := stat.ParseCategory(seed.Category); err != nil {
			errs = append(errs, fmt.Errorf("seed %d: %w", i, err))
		}
		if !stat.IsKnownType(seed.Type) {
			errs = append(errs, fmt.Errorf("seed %d: unknown type %q", i, seed.Type))
		}
	}
	return errors.Join(errs...)
}

// LoadSplats reads all .yaml files in dir and parses each as a Splat.
// Unknown fields are rejected so typos in content fail loudly.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed and validated splats (may be empty slice)
// or a non-nil error naming the offending file.
func LoadSplats(dir string) ([]*Splat, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	splats := make([]*Splat, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		s, err := DecodeSplat(data)
		if err != nil {
			return nil, fmt.Errorf("parsing splat file %s: %w", path, err)
		}
		splats = append(splats, s)
	}
	return splats, nil
}

// DecodeSplat parses and validates a single splat document.
func DecodeSplat(data []byte) (*Splat, error) {
	var s Splat
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	s.ID = strings.ToLower(strings.TrimSpace(s.ID))
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
