package stat

import (
	"errors"
	"fmt"
	"slices"
)

// PoolKey returns the key of a spendable pool such as Blood or Willpower.
func PoolKey(name string) Key {
	return Key{Category: Pools, Type: "dual", Name: name}
}

// PoolNames returns the names of the spendable pools stored in b.
func PoolNames(b *Block) []string {
	entries := b.Entries(Pools, "dual")
	out := make([]string, 0, len(entries))
	for n := range entries {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// ResolvePool maps a player-typed pool name ("will", "blood") onto a stored pool.
//
// Postcondition: Returns the canonical pool name or an error wrapping
// ErrUnknownPool or ErrAmbiguousMatch.
func ResolvePool(b *Block, r Resolver, name string) (string, error) {
	pool, err := r.Resolve(name, PoolNames(b))
	if err != nil {
		if errors.Is(err, ErrAmbiguousMatch) {
			return "", err
		}
		return "", fmt.Errorf("pool %q: %w", name, ErrUnknownPool)
	}
	return pool, nil
}

// Spend lowers the temp value of pool by n.
//
// Precondition: pool is a canonical pool name, e.g. from ResolvePool.
// Postcondition: On success returns the new temp value. On error the block is
// unchanged: ErrInvalidAmount when n <= 0, ErrUnknownPool when the pool is not
// stored, ErrInsufficientPool when n exceeds the current temp value.
func Spend(b *Block, pool string, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("spend %d %s: %w", n, pool, ErrInvalidAmount)
	}
	k := PoolKey(pool)
	e, ok := b.Lookup(k)
	if !ok {
		return 0, fmt.Errorf("spend %s: %w", pool, ErrUnknownPool)
	}
	cur, _ := e.Temp.Int()
	if n > cur {
		return cur, fmt.Errorf("spend %d %s with %d: %w", n, pool, cur, ErrInsufficientPool)
	}
	b.Set(k, Int(cur-n), true)
	return cur - n, nil
}

// Gain raises the temp value of pool by n, capped at the pool's perm value
// when perm is positive.
//
// Postcondition: On success returns the new temp value, which may have risen
// by less than n. On error the block is unchanged.
func Gain(b *Block, pool string, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("gain %d %s: %w", n, pool, ErrInvalidAmount)
	}
	k := PoolKey(pool)
	e, ok := b.Lookup(k)
	if !ok {
		return 0, fmt.Errorf("gain %s: %w", pool, ErrUnknownPool)
	}
	cur, _ := e.Temp.Int()
	next := cur + n
	if perm, _ := e.Perm.Int(); perm > 0 && next > perm {
		next = max(perm, cur)
	}
	b.Set(k, Int(next), true)
	return next, nil
}
