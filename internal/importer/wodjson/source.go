package wodjson

import (
	"fmt"
	"os"

	"github.com/soma-satoro/dies/internal/importer"
)

var _ importer.Source = (*JSONSource)(nil)

// JSONSource implements importer.Source for a single JSON stat dump file.
type JSONSource struct{}

// NewSource constructs a JSONSource.
func NewSource() *JSONSource { return &JSONSource{} }

// Load reads the dump at path. Entries that fail Convert are reported as
// warnings with their position in the file.
//
// Precondition: path must be a readable file.
// Postcondition: returns a Batch or a non-nil error.
func (s *JSONSource) Load(path string) (*importer.Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	stats, err := ParseStats(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	b := &importer.Batch{}
	for i, st := range stats {
		d, err := Convert(st)
		if err != nil {
			b.Warnings = append(b.Warnings, fmt.Sprintf("entry %d: %v", i, err))
			continue
		}
		b.Definitions = append(b.Definitions, d)
	}
	return b, nil
}
