package health

import (
	"fmt"
	"strings"

	"github.com/soma-satoro/dies/internal/render"
)

// Box markers.
const (
	AggBox     = "[*]"
	LethalBox  = "[X]"
	BashingBox = "[/]"
	EmptyBox   = "[ ]"
)

func aggBox() string     { return render.Colorize(render.Bold+render.Red, AggBox) }
func lethalBox() string  { return render.Colorize(render.Red, LethalBox) }
func bashingBox() string { return render.Colorize(render.Yellow, BashingBox) }
func emptyBox() string   { return render.Colorize(render.Green, EmptyBox) }

// boxes returns n markers filled most-severe first.
func (t *Track) boxes(n int) []string {
	out := make([]string, n)
	for i := range out {
		switch {
		case i < t.Aggravated:
			out[i] = aggBox()
		case i < t.Aggravated+t.Lethal:
			out[i] = lethalBox()
		case i < t.Total():
			out[i] = bashingBox()
		default:
			out[i] = emptyBox()
		}
	}
	return out
}

// Strip renders the track as one line of boxes, most severe first:
// "[*][X][/][ ][ ][ ][ ]". Terminal boxes appear only once filled.
func (t *Track) Strip() string {
	return strings.Join(t.boxes(max(t.HealthLevels, t.Total())), "")
}

// ladderRow is one rung of the stacked display.
type ladderRow struct {
	label Level
	// penalty is the dice modifier shown beside the rung.
	penalty int
}

var baseLadder = []Level{Bruised, Hurt, Injured, Wounded, Mauled, Crippled, Incapacitated}

// ladder returns the rungs for this track: extra Bruised rungs above seven
// health levels, the most severe rungs below seven, then the terminal rungs.
func (t *Track) ladder() []ladderRow {
	var labels []Level
	hl := max(t.HealthLevels, 0)
	if extra := hl - len(baseLadder); extra > 0 {
		for i := 0; i < extra; i++ {
			labels = append(labels, Bruised)
		}
		labels = append(labels, baseLadder...)
	} else {
		labels = append(labels, baseLadder[len(baseLadder)-hl:]...)
	}
	if t.Undead {
		labels = append(labels, Torpor, FinalDeath)
	} else {
		labels = append(labels, Dead)
	}
	rows := make([]ladderRow, len(labels))
	for i, l := range labels {
		rows[i] = ladderRow{label: l, penalty: l.Penalty()}
	}
	return rows
}

// Stacked renders one line per health level, e.g. "Hurt            [/]  (-1)".
// Filled rungs show their label in white and their penalty in red.
func (t *Track) Stacked() []string {
	rows := t.ladder()
	marks := t.boxes(len(rows))
	out := make([]string, len(rows))
	for i, r := range rows {
		label := string(r.label)
		pen := ""
		if r.penalty != 0 {
			pen = fmt.Sprintf("(%d)", r.penalty)
		}
		if i < t.Total() {
			label = render.Colorize(render.White, label)
			if pen != "" {
				pen = render.Colorize(render.Red, pen)
			}
		}
		out[i] = strings.TrimRight(fmt.Sprintf("%s %s %s", render.PadRight(label, 15), marks[i], pen), " ")
	}
	return out
}

// Status renders the current injury level coloured by severity with its
// penalty, e.g. "Wounded (-2)".
func (t *Track) Status() string {
	l := t.level()
	color := render.Bold + render.Green
	switch l {
	case Bruised, Hurt, Injured:
		color = render.Yellow
	case Wounded, Mauled, Crippled:
		color = render.Red
	case Incapacitated, Dead, Torpor, FinalDeath:
		color = render.Bold + render.Red
	}
	text := string(l)
	if p := l.Penalty(); p != 0 {
		text = fmt.Sprintf("%s (%d)", text, p)
	}
	return render.Colorize(color, text)
}
