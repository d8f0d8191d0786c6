package dice

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Lookup resolves a stat name typed by a player to its canonical name and
// effective numeric value. A non-nil error means the term contributes 0.
type Lookup func(name string) (resolved string, value int, err error)

// ComposedTerm records how one term of a PoolExpr contributed to the pool.
type ComposedTerm struct {
	Term
	Resolved string // canonical stat name, or the literal as text
	Value    int    // signed contribution
}

// Composition is a PoolExpr evaluated against a character's stats.
type Composition struct {
	Size       int
	Difficulty int
	Terms      []ComposedTerm
	Warnings   []string
}

// Describe returns the pool formula with resolved names, e.g. "Strength + Brawl + 2".
func (c Composition) Describe() string {
	var b strings.Builder
	for i, t := range c.Terms {
		switch {
		case i == 0 && t.Sign < 0:
			b.WriteString("-")
		case i > 0 && t.Sign < 0:
			b.WriteString(" - ")
		case i > 0:
			b.WriteString(" + ")
		}
		b.WriteString(t.Resolved)
	}
	return b.String()
}

// Compose sums the terms of expr. Literal terms contribute their value; named
// terms are resolved through lookup.
//
// Precondition: lookup must be non-nil.
// Postcondition: result.Size equals the sum of every ComposedTerm.Value,
// saturating at the int bounds instead of wrapping. Each failed lookup adds
// exactly one warning and contributes 0.
func Compose(expr PoolExpr, lookup Lookup) Composition {
	if lookup == nil {
		panic("dice: Compose precondition violated: lookup must be non-nil")
	}
	c := Composition{Difficulty: expr.Difficulty}
	for _, t := range expr.Terms {
		ct := ComposedTerm{Term: t}
		if t.IsLiteral() {
			ct.Resolved = fmt.Sprintf("%d", t.Literal)
			ct.Value = t.Sign * t.Literal
		} else {
			resolved, v, err := lookup(t.Name)
			if err != nil {
				ct.Resolved = cases.Title(language.English).String(t.Name)
				c.Warnings = append(c.Warnings,
					fmt.Sprintf("Stat '%s' not found or has no value. Treating as 0.", ct.Resolved))
			} else {
				ct.Resolved = resolved
				ct.Value = t.Sign * v
			}
		}
		c.Size = AddSaturating(c.Size, ct.Value)
		c.Terms = append(c.Terms, ct)
	}
	return c
}

// AddSaturating returns a+b clamped to [math.MinInt, math.MaxInt].
func AddSaturating(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}
