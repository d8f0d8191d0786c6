// Package render holds the ANSI styling and column helpers shared by the
// dice, health and sheet displays.
package render

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ANSI escape codes used by the game's displays.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed    = "\033[91m"
	BrightYellow = "\033[93m"
	BrightWhite  = "\033[97m"
)

// Colorize wraps text with the given ANSI color code and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns text wrapped with the color code and Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf wraps a formatted string with the given ANSI color code.
func Colorf(color, format string, args ...any) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

// StripANSI removes all ANSI escape sequences from a string.
//
// Postcondition: Returns text with all \033[...m sequences removed.
func StripANSI(s string) string {
	result := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j + 1
				continue
			}
		}
		result = append(result, s[i])
		i++
	}
	return string(result)
}

// Width returns the printable width of s, ignoring ANSI sequences.
func Width(s string) int {
	return utf8.RuneCountInString(StripANSI(s))
}

// PadRight pads s with spaces to width printable columns. Longer strings are
// returned unchanged.
//
// Postcondition: Width(result) == max(Width(s), width).
func PadRight(s string, width int) string {
	if n := Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// DotLeader joins label and value with dots so the pair fills width columns,
// as in "Strength.......3". At least one dot is always written.
func DotLeader(label, value string, width int) string {
	dots := width - Width(label) - Width(value)
	if dots < 1 {
		dots = 1
	}
	return label + strings.Repeat(".", dots) + value
}

// Header centres title in a rule of '=' characters width columns wide.
func Header(title string, width int) string {
	t := " " + title + " "
	fill := width - Width(t)
	if fill < 2 {
		return "=" + t + "="
	}
	left := fill / 2
	return strings.Repeat("=", left) + t + strings.Repeat("=", fill-left)
}

// Columns lays cells out row-major in n columns of colWidth each.
//
// Precondition: n >= 1.
func Columns(cells []string, n, colWidth int) string {
	if n < 1 {
		panic("render: Columns precondition violated: n must be >= 1")
	}
	var b strings.Builder
	for i, c := range cells {
		last := i%n == n-1 || i == len(cells)-1
		if last {
			b.WriteString(c)
			b.WriteString("\n")
		} else {
			b.WriteString(PadRight(c, colWidth))
		}
	}
	return b.String()
}
