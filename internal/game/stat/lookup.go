package stat

import "fmt"

// EffectiveInt resolves a player-typed name against the stats stored in b and
// returns the canonical name with its effective (temp-else-perm) number.
// It has the shape dice.Lookup expects.
//
// Postcondition: err wraps ErrNoMatch, ErrAmbiguousMatch or ErrNotANumber on failure.
func EffectiveInt(b *Block, r Resolver, name string) (string, int, error) {
	resolved, err := r.Resolve(name, b.Names())
	if err != nil {
		return "", 0, err
	}
	keys := b.KeysNamed(resolved)
	if len(keys) != 1 {
		matches := make([]string, len(keys))
		for i, k := range keys {
			matches[i] = k.String()
		}
		return "", 0, &AmbiguousError{Partial: name, Matches: matches}
	}
	e, _ := b.Lookup(keys[0])
	n, ok := e.Effective().Int()
	if !ok {
		return resolved, 0, fmt.Errorf("%s: %w", resolved, ErrNotANumber)
	}
	return resolved, n, nil
}
