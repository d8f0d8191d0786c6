package stat

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultMatchThreshold is the minimum similarity a fuzzy match must reach.
const DefaultMatchThreshold = 0.6

// AmbiguousError reports a partial name that matched several candidates
// equally well. It unwraps to ErrAmbiguousMatch.
type AmbiguousError struct {
	Partial string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("stat: %q is ambiguous: %s", e.Partial, strings.Join(e.Matches, ", "))
}

// Unwrap returns ErrAmbiguousMatch.
func (e *AmbiguousError) Unwrap() error { return ErrAmbiguousMatch }

// Resolver maps abbreviated or misspelt stat names onto a candidate list.
type Resolver struct {
	// Threshold is the minimum Similarity for the fuzzy tier, in (0, 1].
	Threshold float64
}

// NewResolver returns a Resolver with the given threshold; a non-positive
// threshold selects DefaultMatchThreshold.
func NewResolver(threshold float64) Resolver {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultMatchThreshold
	}
	return Resolver{Threshold: threshold}
}

// Resolve resolves partial against candidates with DefaultMatchThreshold.
func Resolve(partial string, candidates []string) (string, error) {
	return NewResolver(DefaultMatchThreshold).Resolve(partial, candidates)
}

// Resolve returns the single candidate partial refers to. Tiers are tried in
// order and the first tier with any match decides:
//
//  1. exact, case-insensitive
//  2. candidates starting with partial
//  3. candidates containing partial
//  4. Similarity >= Threshold, best score only
//
// Postcondition: Returns a candidate, or an error wrapping ErrNoMatch when no
// tier matches, or an *AmbiguousError when the deciding tier holds several
// equally good candidates. A guess is never made under ambiguity.
func (r Resolver) Resolve(partial string, candidates []string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(partial))
	if p == "" {
		return "", fmt.Errorf("empty stat name: %w", ErrNoMatch)
	}
	uniq := dedupe(candidates)

	tiers := []func(c string) bool{
		func(c string) bool { return c == p },
		func(c string) bool { return strings.HasPrefix(c, p) },
		func(c string) bool { return strings.Contains(c, p) },
	}
	for _, match := range tiers {
		var hits []string
		for _, c := range uniq {
			if match(strings.ToLower(c)) {
				hits = append(hits, c)
			}
		}
		if out, done, err := decide(partial, hits); done {
			return out, err
		}
	}

	threshold := r.Threshold
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	best := -1.0
	var hits []string
	for _, c := range uniq {
		s := Similarity(p, strings.ToLower(c))
		switch {
		case s < threshold:
		case s > best:
			best = s
			hits = []string{c}
		case s == best:
			hits = append(hits, c)
		}
	}
	if out, done, err := decide(partial, hits); done {
		return out, err
	}
	return "", fmt.Errorf("stat %q: %w", partial, ErrNoMatch)
}

func decide(partial string, hits []string) (string, bool, error) {
	switch len(hits) {
	case 0:
		return "", false, nil
	case 1:
		return hits[0], true, nil
	default:
		return "", true, &AmbiguousError{Partial: partial, Matches: hits}
	}
}

// dedupe drops exact duplicates while keeping first-seen order.
func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// Similarity returns 1 - levenshtein(a, b)/max(len(a), len(b)) measured in
// runes. Two empty strings are identical.
//
// Postcondition: result is in [0, 1]; 1 iff a == b.
func Similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}
