// Package stat is the per-character stat store: definitions loaded from YAML,
// nested perm/temp values keyed by category, type and name, tolerant name
// resolution, and derived-value recomputation.
package stat

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Sentinel errors returned by the stat store.
var (
	ErrNotANumber         = errors.New("stat: not a valid number")
	ErrIllegalValue       = errors.New("stat: value not allowed")
	ErrNoMatch            = errors.New("stat: no match")
	ErrAmbiguousMatch     = errors.New("stat: ambiguous match")
	ErrAmbiguousStat      = errors.New("stat: ambiguous stat definition")
	ErrUnknownStat        = errors.New("stat: unknown stat")
	ErrInstanceRequired   = errors.New("stat: instance required")
	ErrInstanceNotAllowed = errors.New("stat: stat does not support instances")
	ErrInvalidAmount      = errors.New("stat: amount must be positive")
	ErrInsufficientPool   = errors.New("stat: insufficient pool")
	ErrUnknownPool        = errors.New("stat: unknown pool")
)

// Category is the top level of the stat hierarchy.
type Category string

// Known categories.
const (
	Attributes         Category = "attributes"
	Abilities          Category = "abilities"
	SecondaryAbilities Category = "secondary_abilities"
	Advantages         Category = "advantages"
	Backgrounds        Category = "backgrounds"
	Powers             Category = "powers"
	Merits             Category = "merits"
	Flaws              Category = "flaws"
	Traits             Category = "traits"
	Identity           Category = "identity"
	Archetype          Category = "archetype"
	Virtues            Category = "virtues"
	Legacy             Category = "legacy"
	Pools              Category = "pools"
	Other              Category = "other"
)

// Categories lists every category in sheet order.
var Categories = []Category{
	Attributes, Abilities, SecondaryAbilities, Advantages, Backgrounds,
	Powers, Merits, Flaws, Traits, Identity, Archetype, Virtues, Legacy,
	Pools, Other,
}

// ParseCategory returns the Category named s, case-insensitively.
//
// Postcondition: Returns an error wrapping ErrUnknownStat when s names no category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Categories, c) {
		return c, nil
	}
	return "", fmt.Errorf("category %q: %w", s, ErrUnknownStat)
}

// Types lists the known stat subtypes.
var Types = []string{
	"attribute", "ability", "secondary_ability", "advantage", "background",
	"lineage", "discipline", "gift", "sphere", "rote", "art", "splat", "edge",
	"realm", "path", "enlightenment", "power", "other", "virtue", "vice",
	"merit", "flaw", "trait", "skill", "knowledge", "talent",
	"secondary_knowledge", "secondary_talent", "secondary_skill", "specialty",
	"physical", "social", "mental", "personal", "supernatural", "moral",
	"temporary", "dual", "renown", "arete", "banality", "glamour", "essence",
	"quintessence", "paradox", "kith", "seeming", "house", "seelie-legacy",
	"unseelie-legacy",
}

// IsKnownType reports whether t is one of Types.
func IsKnownType(t string) bool {
	return slices.Contains(Types, t)
}

// Key addresses one leaf of a character's stat block.
// Instanced stats carry their instance in Name, e.g. "Status(Ventrue)".
type Key struct {
	Category Category
	Type     string
	Name     string
}

// String returns "category/type/name".
func (k Key) String() string {
	return string(k.Category) + "/" + k.Type + "/" + k.Name
}

// Well-known keys read and written by the derived-stat machinery.
var (
	WillpowerKey     = Key{Pools, "dual", "Willpower"}
	RoadKey          = Key{Pools, "moral", "Road"}
	BloodKey         = Key{Pools, "dual", "Blood"}
	EnlightenmentKey = Key{Identity, "personal", "Enlightenment"}
	SplatKey         = Key{Other, "splat", "Splat"}
)

// IsDual reports whether a stat at k keeps perm and temp in step on explicit
// sets: everything in pools plus any "dual" type.
func (k Key) IsDual() bool {
	return k.Category == Pools || k.Type == "dual"
}

// InstanceName formats an instanced stat name, e.g. InstanceName("Status", "Ventrue").
func InstanceName(base, instance string) string {
	if instance == "" {
		return base
	}
	return base + "(" + instance + ")"
}

// SplitInstance splits "Status(Ventrue)" into ("Status", "Ventrue").
// Names without a trailing parenthesised instance return (name, "").
func SplitInstance(name string) (base, instance string) {
	open := strings.IndexByte(name, '(')
	if open < 0 || !strings.HasSuffix(name, ")") {
		return name, ""
	}
	return strings.TrimSpace(name[:open]), name[open+1 : len(name)-1]
}
