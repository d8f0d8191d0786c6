package stat

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseValue coerces externally supplied input for the stat def describes.
// For numeric stats a leading '+' or '-' adjusts current by the amount
// instead of replacing it. Text values are matched case-insensitively against
// def.Values and returned in their canonical spelling.
//
// Precondition: def must be non-nil.
// Postcondition: Returns a value of def.Kind that def.Allows, or an error
// wrapping ErrNotANumber or ErrIllegalValue.
func ParseValue(def *Definition, raw string, current Value) (Value, error) {
	if def == nil {
		panic("stat.ParseValue: precondition violated: def must be non-nil")
	}
	s := strings.TrimSpace(raw)

	var v Value
	switch def.Kind {
	case Number:
		n, err := strconv.Atoi(s)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %q: %w", def.Name, raw, ErrNotANumber)
		}
		if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
			cur, _ := current.Int()
			if (n > 0 && cur > math.MaxInt-n) || (n < 0 && cur < math.MinInt-n) {
				return Value{}, fmt.Errorf("%s: %q overflows %d: %w", def.Name, raw, cur, ErrIllegalValue)
			}
			n += cur
		}
		v = Int(n)
	default:
		v = Str(s)
		for _, allowed := range def.Values {
			if allowed.Equal(v) {
				v = allowed
				break
			}
		}
	}

	if !def.Allows(v) {
		allowed := make([]string, len(def.Values))
		for i, a := range def.Values {
			allowed[i] = a.String()
		}
		return Value{}, fmt.Errorf("%s: %q not in [%s]: %w",
			def.Name, v.String(), strings.Join(allowed, ", "), ErrIllegalValue)
	}
	return v, nil
}
