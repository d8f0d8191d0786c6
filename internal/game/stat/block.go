package stat

import (
	"encoding/json"
	"slices"
	"sort"
	"strings"
)

// Entry is the stored perm/temp pair for one stat.
type Entry struct {
	Perm Value `json:"perm"`
	Temp Value `json:"temp"`
}

// Effective returns Temp when it is non-zero, else Perm. Dice pools read
// stats through Effective so that a boosted or drained temp value wins.
func (e Entry) Effective() Value {
	if !e.Temp.IsZero() {
		return e.Temp
	}
	return e.Perm
}

// Definitions supplies the reference data a Block falls back to for unset stats.
// *Registry implements it.
type Definitions interface {
	Lookup(k Key) (*Definition, bool)
}

// Block is one character's stat values: category → type → name → Entry.
//
// Every Set, SetBoth and Remove runs the registered Derivers through a single
// notification path, so derived stats such as Willpower never drift from
// their inputs. A Block is not safe for concurrent use; callers serialise
// access per character.
type Block struct {
	data     map[Category]map[string]map[string]Entry
	defs     Definitions
	derivers []Deriver
}

// NewBlock returns an empty Block.
//
// Precondition: defs may be nil, in which case unset stats have no fallback.
// Postcondition: Returns a non-nil Block with the given derivers registered in order.
func NewBlock(defs Definitions, derivers ...Deriver) *Block {
	return &Block{
		data:     make(map[Category]map[string]map[string]Entry),
		defs:     defs,
		derivers: slices.Clone(derivers),
	}
}

// AddDeriver registers d after the existing derivers.
//
// Precondition: d must be non-nil.
func (b *Block) AddDeriver(d Deriver) {
	if d == nil {
		panic("stat.Block.AddDeriver: precondition violated: d must be non-nil")
	}
	b.derivers = append(b.derivers, d)
}

// SetDefinitions replaces the definition source used for unset-stat fallbacks.
func (b *Block) SetDefinitions(defs Definitions) { b.defs = defs }

// Lookup returns the stored entry for k, without any definition fallback.
func (b *Block) Lookup(k Key) (Entry, bool) {
	e, ok := b.data[k.Category][k.Type][k.Name]
	return e, ok
}

// Get returns the temp or perm value stored at k. An unset stat with a
// definition reads as the definition's default, else 0 or "" by kind.
//
// Postcondition: ok is false only when k is unset and has no definition.
func (b *Block) Get(k Key, temp bool) (Value, bool) {
	if e, ok := b.Lookup(k); ok {
		if temp {
			return e.Temp, true
		}
		return e.Perm, true
	}
	if b.defs != nil {
		if d, ok := b.defs.Lookup(k); ok {
			return d.Zero(), true
		}
	}
	return Value{}, false
}

// Int returns the numeric perm or temp value at k, or 0 when unset or textual.
func (b *Block) Int(k Key, temp bool) int {
	v, _ := b.Get(k, temp)
	n, _ := v.Int()
	return n
}

// Set writes one side of the stat at k. A stat created by Set starts with both
// perm and temp at the zero of v's kind; only the requested side is then
// written. Set never mirrors perm into temp; use SetBoth for that.
//
// Postcondition: Get(k, temp) == v, barring a deriver that writes k itself.
func (b *Block) Set(k Key, v Value, temp bool) {
	b.setSide(k, v, temp)
	b.notify(k)
}

// SetBoth writes v to both perm and temp. It is the explicit dual-write used
// for pools, "dual" stats and derived values.
//
// Postcondition: Get(k, false) == Get(k, true) == v, barring a deriver that writes k.
func (b *Block) SetBoth(k Key, v Value) {
	b.put(k, Entry{Perm: v, Temp: v})
	b.notify(k)
}

// Remove deletes the stat at k and prunes empty parents. Removing an absent
// stat is a no-op.
func (b *Block) Remove(k Key) {
	if !b.delete(k) {
		return
	}
	b.notify(k)
}

// Reset clears every stat. Derivers are not run.
func (b *Block) Reset() {
	b.data = make(map[Category]map[string]map[string]Entry)
}

// Recompute runs every deriver unconditionally, e.g. after loading a block
// from storage.
func (b *Block) Recompute() {
	for _, d := range b.derivers {
		b.apply(d.Derive(b))
	}
}

// Len returns the number of stored stats.
func (b *Block) Len() int {
	n := 0
	for _, types := range b.data {
		for _, names := range types {
			n += len(names)
		}
	}
	return n
}

// Keys returns every stored key, ordered by category (sheet order), type and name.
func (b *Block) Keys() []Key {
	var keys []Key
	for c, types := range b.data {
		for t, names := range types {
			for n := range names {
				keys = append(keys, Key{c, t, n})
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := slices.Index(Categories, keys[i].Category), slices.Index(Categories, keys[j].Category)
		if ci != cj {
			return ci < cj
		}
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}

// Entries returns a copy of the stats stored under category c and type t.
func (b *Block) Entries(c Category, t string) map[string]Entry {
	src := b.data[c][t]
	out := make(map[string]Entry, len(src))
	for n, e := range src {
		out[n] = e
	}
	return out
}

// Names returns the distinct stored stat names, sorted. It is the candidate
// list for Resolve.
func (b *Block) Names() []string {
	seen := make(map[string]bool)
	var out []string
	for _, k := range b.Keys() {
		if !seen[k.Name] {
			seen[k.Name] = true
			out = append(out, k.Name)
		}
	}
	sort.Strings(out)
	return out
}

// KeysNamed returns the stored keys whose name equals name case-insensitively.
func (b *Block) KeysNamed(name string) []Key {
	var out []Key
	for _, k := range b.Keys() {
		if strings.EqualFold(k.Name, name) {
			out = append(out, k)
		}
	}
	return out
}

// MarshalJSON encodes the block as nested objects:
// {"attributes":{"physical":{"Strength":{"perm":3,"temp":3}}}}.
func (b *Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.data)
}

// UnmarshalJSON replaces the block's contents. Derivers are not run; call
// Recompute when derived values should be refreshed.
func (b *Block) UnmarshalJSON(data []byte) error {
	m := make(map[Category]map[string]map[string]Entry)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	b.data = m
	return nil
}

func (b *Block) setSide(k Key, v Value, temp bool) {
	e, ok := b.Lookup(k)
	if !ok {
		e = Entry{Perm: Zero(v.Kind()), Temp: Zero(v.Kind())}
	}
	if temp {
		e.Temp = v
	} else {
		e.Perm = v
	}
	b.put(k, e)
}

func (b *Block) put(k Key, e Entry) {
	if b.data == nil {
		b.data = make(map[Category]map[string]map[string]Entry)
	}
	types, ok := b.data[k.Category]
	if !ok {
		types = make(map[string]map[string]Entry)
		b.data[k.Category] = types
	}
	names, ok := types[k.Type]
	if !ok {
		names = make(map[string]Entry)
		types[k.Type] = names
	}
	names[k.Name] = e
}

func (b *Block) delete(k Key) bool {
	names, ok := b.data[k.Category][k.Type]
	if !ok {
		return false
	}
	if _, ok := names[k.Name]; !ok {
		return false
	}
	delete(names, k.Name)
	if len(names) == 0 {
		delete(b.data[k.Category], k.Type)
		if len(b.data[k.Category]) == 0 {
			delete(b.data, k.Category)
		}
	}
	return true
}

// notify is the single change-notification path. Derivers run in
// registration order; a deriver fires when the original key or any key
// written by an earlier deriver is one of its inputs. Deriver writes do not
// re-enter notify.
func (b *Block) notify(changed Key) {
	touched := []Key{changed}
	for _, d := range b.derivers {
		if !slices.ContainsFunc(touched, d.Triggered) {
			continue
		}
		changes := d.Derive(b)
		b.apply(changes)
		for _, c := range changes {
			touched = append(touched, c.Key)
		}
	}
}

func (b *Block) apply(changes []Change) {
	for _, c := range changes {
		switch c.Op {
		case WritePerm:
			b.setSide(c.Key, c.Value, false)
		case WriteBoth:
			b.put(c.Key, Entry{Perm: c.Value, Temp: c.Value})
		case ClearType:
			delete(b.data[c.Key.Category], c.Key.Type)
			if len(b.data[c.Key.Category]) == 0 {
				delete(b.data, c.Key.Category)
			}
		}
	}
}
