package stat

import (
	"sort"
	"strings"
)

// Virtue names.
const (
	Conscience  = "Conscience"
	Conviction  = "Conviction"
	SelfControl = "Self-Control"
	Instinct    = "Instinct"
	Courage     = "Courage"
)

// DefaultPath is the path of enlightenment assumed when none is set.
const DefaultPath = "Humanity"

// pathVirtues maps each path of enlightenment to the two virtues that sum to its rating.
// Courage is common to every path.
var pathVirtues = map[string][2]string{
	"Humanity":                  {Conscience, SelfControl},
	"Night":                     {Conviction, Instinct},
	"Metamorphosis":             {Conviction, Instinct},
	"Beast":                     {Conviction, Instinct},
	"Harmony":                   {Conscience, Instinct},
	"Evil Revelations":          {Conviction, SelfControl},
	"Self-Focus":                {Conviction, Instinct},
	"Scorched Heart":            {Conviction, SelfControl},
	"Entelechy":                 {Conviction, SelfControl},
	"Sharia El-Sama":            {Conscience, SelfControl},
	"Asakku":                    {Conviction, Instinct},
	"Death and the Soul":        {Conviction, SelfControl},
	"Honorable Accord":          {Conscience, SelfControl},
	"Feral Heart":               {Conviction, Instinct},
	"Orion":                     {Conviction, Instinct},
	"Power and the Inner Voice": {Conviction, Instinct},
	"Lilith":                    {Conviction, Instinct},
	"Caine":                     {Conviction, Instinct},
	"Cathari":                   {Conviction, Instinct},
	"Redemption":                {Conscience, SelfControl},
	"Bones":                     {Conviction, SelfControl},
	"Typhon":                    {Conviction, SelfControl},
	"Paradox":                   {Conviction, SelfControl},
	"Blood":                     {Conviction, SelfControl},
	"Hive":                      {Conviction, Instinct},
}

// PathVirtues returns the canonical path name and its two rating virtues,
// matching name case-insensitively.
func PathVirtues(name string) (path string, virtues [2]string, ok bool) {
	for p, v := range pathVirtues {
		if strings.EqualFold(p, strings.TrimSpace(name)) {
			return p, v, true
		}
	}
	return "", [2]string{}, false
}

// Paths returns every known path name, sorted.
func Paths() []string {
	out := make([]string, 0, len(pathVirtues))
	for p := range pathVirtues {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
