package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrEmptyPool indicates a pool expression with no terms.
var ErrEmptyPool = errors.New("dice: empty pool expression")

// Term is one signed component of a pool expression: a stat name or a literal.
type Term struct {
	Sign    int    // +1 or -1
	Name    string // stat name as typed; empty for literals
	Literal int    // literal value when Name is empty
}

// IsLiteral reports whether the term is a number rather than a stat name.
func (t Term) IsLiteral() bool { return t.Name == "" }

// PoolExpr is a parsed "+roll" expression such as "stre+dex+3-2 vs 7".
type PoolExpr struct {
	Raw        string
	Terms      []Term
	Difficulty int
	// Explicit is set when the expression carried its own "vs" clause.
	Explicit bool
}

// ParsePool parses a pool expression.
// Supported forms: "dex+brawl", "strength + 3 - 1", "wits+alertness vs 8".
// A missing "vs" clause yields DefaultDifficulty.
//
// Precondition: none; empty input returns ErrEmptyPool.
// Postcondition: On success len(result.Terms) >= 1 and each Term.Sign is +1 or -1.
// The difficulty is not range-checked here; RollPool rejects it.
func ParsePool(expr string) (PoolExpr, error) {
	raw := expr
	s := strings.TrimSpace(expr)
	if s == "" {
		return PoolExpr{}, ErrEmptyPool
	}

	difficulty := DefaultDifficulty
	explicit := false
	if idx := lastVs(s); idx >= 0 {
		diffStr := strings.TrimSpace(s[idx+len(" vs "):])
		d, err := strconv.Atoi(diffStr)
		if err != nil {
			return PoolExpr{}, fmt.Errorf("dice: invalid difficulty %q in %q: %w", diffStr, raw, err)
		}
		difficulty = d
		explicit = true
		s = strings.TrimSpace(s[:idx])
	}

	terms, err := parseTerms(s)
	if err != nil {
		return PoolExpr{}, fmt.Errorf("dice: parsing %q: %w", raw, err)
	}
	if len(terms) == 0 {
		return PoolExpr{}, ErrEmptyPool
	}
	return PoolExpr{Raw: raw, Terms: terms, Difficulty: difficulty, Explicit: explicit}, nil
}

// lastVs returns the index of the final " vs " separator, case-insensitively, or -1.
func lastVs(s string) int {
	return strings.LastIndex(strings.ToLower(s), " vs ")
}

func parseTerms(s string) ([]Term, error) {
	var terms []Term
	sign := 1
	var cur strings.Builder
	pending := false

	flush := func() error {
		word := strings.TrimSpace(cur.String())
		cur.Reset()
		if word == "" {
			if pending {
				return fmt.Errorf("dangling operator")
			}
			return nil
		}
		t := Term{Sign: sign}
		if n, err := strconv.Atoi(word); err == nil {
			if n < 0 {
				return fmt.Errorf("negative literal %q", word)
			}
			if n > MaxPool {
				return fmt.Errorf("literal %d exceeds %d", n, MaxPool)
			}
			t.Literal = n
		} else {
			for _, r := range word {
				if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' && r != '_' && r != '\'' && r != '(' && r != ')' {
					return fmt.Errorf("invalid character %q in %q", r, word)
				}
			}
			t.Name = word
		}
		terms = append(terms, t)
		return nil
	}

	for _, r := range s {
		switch r {
		case '+', '-':
			if strings.TrimSpace(cur.String()) == "" && len(terms) > 0 {
				return nil, fmt.Errorf("consecutive operators")
			}
			if err := flush(); err != nil {
				return nil, err
			}
			sign = 1
			if r == '-' {
				sign = -1
			}
			pending = true
		default:
			cur.WriteRune(r)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return terms, nil
}
