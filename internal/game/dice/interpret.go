package dice

import (
	"fmt"
	"sort"
	"strings"

	"github.com/soma-satoro/dies/internal/render"
)

// Mark classifies a single die for display.
type Mark int

const (
	// Plain is a die that neither succeeded nor rolled a 1.
	Plain Mark = iota
	// Hit is a die at or above the difficulty.
	Hit
	// One is a die showing 1.
	One
)

// DieMark pairs a die value with its classification.
type DieMark struct {
	Value int
	Mark  Mark
}

// Interpretation is the pure classification of a PoolResult.
type Interpretation struct {
	Outcome    Outcome
	Net        int       // successes minus ones; may be negative
	Difficulty int
	Dice       []DieMark // sorted highest first
}

// Displayed returns the success count shown to players. Negative nets are
// only shown on a botch; a plain failure shows 0.
func (i Interpretation) Displayed() int {
	if i.Net < 0 && i.Outcome != Botch {
		return 0
	}
	return i.Net
}

// Label returns "Botch!", "Success" or "Successes".
func (i Interpretation) Label() string {
	switch {
	case i.Outcome == Botch:
		return "Botch!"
	case i.Displayed() == 1:
		return "Success"
	default:
		return "Successes"
	}
}

// Interpret classifies r without mutating it.
//
// Postcondition: len(result.Dice) == len(r.Rolls); result.Net == r.Net();
// result.Outcome == r.Outcome(). Pure: equal inputs give equal outputs.
func Interpret(r PoolResult) Interpretation {
	dice := make([]DieMark, len(r.Rolls))
	for i, v := range r.Rolls {
		m := Plain
		switch {
		case v == 1:
			m = One
		case v >= r.Difficulty:
			m = Hit
		}
		dice[i] = DieMark{Value: v, Mark: m}
	}
	sort.SliceStable(dice, func(a, b int) bool { return dice[a].Value > dice[b].Value })
	return Interpretation{
		Outcome:    r.Outcome(),
		Net:        r.Net(),
		Difficulty: r.Difficulty,
		Dice:       dice,
	}
}

// Render formats an Interpretation as a coloured line:
//
//	"(3) Successes (9 8 7 6 5 4 3 1)"
//
// Successes are green, ones red and other dice yellow. A botch shows its
// negative count in red.
func Render(i Interpretation) string {
	var b strings.Builder

	n := i.Displayed()
	countColor := render.Yellow
	switch {
	case n > 0:
		countColor = render.Green
	case n < 0:
		countColor = render.Red
	}
	b.WriteString("(")
	b.WriteString(render.Colorize(countColor, fmt.Sprintf("%d", n)))
	b.WriteString(") ")
	if i.Outcome == Botch {
		b.WriteString(render.Colorize(render.Red, i.Label()))
	} else {
		b.WriteString(render.Colorize(render.Yellow, i.Label()))
	}

	b.WriteString(" (")
	for idx, d := range i.Dice {
		if idx > 0 {
			b.WriteString(" ")
		}
		color := render.Yellow
		switch d.Mark {
		case One:
			color = render.Red
		case Hit:
			color = render.Green
		}
		b.WriteString(render.Colorize(color, fmt.Sprintf("%d", d.Value)))
	}
	b.WriteString(")")
	return b.String()
}
