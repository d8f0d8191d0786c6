package command

import "strings"

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input without switches, lowercased.
	Command string
	// Switches are the lowercased "/switch" suffixes of the command word,
	// e.g. ["temp"] for "+stats/temp".
	Switches []string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the raw text after the command (preserving spacing for
	// pool expressions and reasons).
	RawArgs string
}

// HasSwitch reports whether s was given as a switch, case-insensitively.
func (p ParseResult) HasSwitch(s string) bool {
	for _, sw := range p.Switches {
		if sw == strings.ToLower(s) {
			return true
		}
	}
	return false
}

// Parse splits a text line into a command, its switches and arguments.
//
// Precondition: none.
// Postcondition: Returns a ParseResult. If line is empty, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	parts := strings.Split(strings.ToLower(word), "/")
	result := ParseResult{Command: parts[0], RawArgs: rest}
	for _, sw := range parts[1:] {
		if sw != "" {
			result.Switches = append(result.Switches, sw)
		}
	}
	if rest != "" {
		result.Args = strings.Fields(rest)
	}
	return result
}
