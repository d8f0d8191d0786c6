package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/soma-satoro/dies/internal/game/stat"
)

// Importer orchestrates stat import from a Source to an output directory.
type Importer struct {
	source Source
	logger *zap.Logger
}

// New constructs an Importer backed by the given Source.
//
// Precondition: source and logger must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(source Source, logger *zap.Logger) *Importer {
	if source == nil || logger == nil {
		panic("importer.New: precondition violated: source and logger must be non-nil")
	}
	return &Importer{source: source, logger: logger}
}

// Report summarises one Run.
type Report struct {
	Files    []string
	Imported int
	Skipped  int
}

// Run loads definitions from sourcePath, drops duplicates, and writes one
// YAML file per category to outputDir, named <category>.yaml. Every file is
// decoded and registered again before it is written.
//
// Precondition: outputDir must exist or be creatable.
// Postcondition: the files in Report.Files are loadable by stat.LoadDirectory,
// or an error is returned.
func (imp *Importer) Run(sourcePath, outputDir string) (Report, error) {
	overall := time.Now()

	batch, err := imp.source.Load(sourcePath)
	if err != nil {
		return Report{}, fmt.Errorf("loading source: %w", err)
	}
	rep := Report{Skipped: len(batch.Warnings)}
	for _, w := range batch.Warnings {
		imp.logger.Warn("skipping stat", zap.String("reason", w))
	}

	seen, _ := stat.NewRegistry()
	byCategory := make(map[stat.Category][]*stat.Definition)
	for _, d := range batch.Definitions {
		if err := seen.Register(d); err != nil {
			imp.logger.Warn("skipping stat", zap.String("reason", err.Error()))
			rep.Skipped++
			continue
		}
		byCategory[d.Category] = append(byCategory[d.Category], d)
		rep.Imported++
	}
	imp.logger.Info("loaded stats",
		zap.String("source", sourcePath),
		zap.Int("imported", rep.Imported),
		zap.Int("skipped", rep.Skipped),
	)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return Report{}, fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}

	cats := make([]stat.Category, 0, len(byCategory))
	for c := range byCategory {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	for _, c := range cats {
		defs := byCategory[c]
		sort.SliceStable(defs, func(i, j int) bool {
			if defs[i].Type != defs[j].Type {
				return defs[i].Type < defs[j].Type
			}
			return defs[i].Name < defs[j].Name
		})
		data, err := yaml.Marshal(defs)
		if err != nil {
			return Report{}, fmt.Errorf("serialising %s: %w", c, err)
		}

		// Validate output is loadable before writing.
		if err := validate(data); err != nil {
			return Report{}, fmt.Errorf("%s failed validation: %w", c, err)
		}

		outPath := filepath.Join(outputDir, NameToID(string(c))+".yaml")
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return Report{}, fmt.Errorf("writing %s to %s: %w", c, outPath, err)
		}
		rep.Files = append(rep.Files, outPath)
		imp.logger.Info("wrote stats", zap.String("path", outPath), zap.Int("count", len(defs)))
	}

	imp.logger.Info("import complete", zap.Duration("elapsed", time.Since(overall)))
	return rep, nil
}

func validate(data []byte) error {
	defs, err := stat.DecodeDefinitions(data)
	if err != nil {
		return err
	}
	_, err = stat.NewRegistry(defs...)
	return err
}
