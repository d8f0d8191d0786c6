package importer

import "github.com/soma-satoro/dies/internal/game/stat"

// Batch is the common intermediate format produced by all Source
// implementations: the definitions that converted cleanly plus a warning for
// every entry that was skipped.
type Batch struct {
	Definitions []*stat.Definition
	Warnings    []string
}

// Source loads stat definitions from a format-specific dump.
//
// Precondition: path must name a readable file in the source's format.
// Postcondition: returns a Batch, or a non-nil error when the file as a whole
// cannot be read or parsed. Bad individual entries become warnings.
type Source interface {
	Load(path string) (*Batch, error)
}
