package character

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/soma-satoro/dies/internal/game/stat"
	"github.com/soma-satoro/dies/internal/render"
)

// SheetWidth is the column width of a rendered sheet.
const SheetWidth = 78

const (
	sheetColumns = 3
	cellWidth    = 24
)

// Sheet renders the character's stats grouped by category, followed by the
// stacked health ladder and current status.
//
// Postcondition: Returns a newline-terminated, ANSI-coloured string.
func (c *Character) Sheet() string {
	title := cases.Title(language.English)
	var b strings.Builder
	b.WriteString(render.Header(c.Name, SheetWidth))
	b.WriteString("\n")

	var (
		current stat.Category
		cells   []string
	)
	flush := func() {
		if len(cells) == 0 {
			return
		}
		heading := title.String(strings.ReplaceAll(string(current), "_", " "))
		b.WriteString(render.Header(render.Colorize(render.BrightYellow, heading), SheetWidth))
		b.WriteString("\n")
		b.WriteString(render.Columns(cells, sheetColumns, cellWidth+2))
		cells = cells[:0]
	}
	for _, k := range c.Stats.Keys() {
		if k.Category != current {
			flush()
			current = k.Category
		}
		e, _ := c.Stats.Lookup(k)
		cells = append(cells, render.DotLeader(k.Name, cellValue(k, e), cellWidth))
	}
	flush()

	b.WriteString(render.Header(render.Colorize(render.BrightYellow, "Health"), SheetWidth))
	b.WriteString("\n")
	for _, line := range c.Health.Stacked() {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("Status: ")
	b.WriteString(c.Health.Status())
	b.WriteString("\n")
	return b.String()
}

// cellValue shows perm, with temp in parentheses when the two differ. An
// empty temp side means "unset" except for pools, where 0 is a real value.
func cellValue(k stat.Key, e stat.Entry) string {
	if e.Temp.Equal(e.Perm) || (e.Temp.IsZero() && k.Category != stat.Pools) {
		return e.Perm.String()
	}
	return e.Perm.String() + "(" + e.Temp.String() + ")"
}
