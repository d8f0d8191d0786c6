package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/soma-satoro/dies/internal/config"
	"github.com/soma-satoro/dies/internal/importer"
	"github.com/soma-satoro/dies/internal/importer/wodjson"
	"github.com/soma-satoro/dies/internal/observability"
)

func main() {
	format := flag.String("format", "json", "source format: json")
	source := flag.String("source", "", "path to source stat dump")
	outputDir := flag.String("output", "", "path to output stat directory")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	if *source == "" || *outputDir == "" {
		fmt.Fprintln(os.Stderr, "usage: import-stats [-format json] -source <file> -output <dir>")
		os.Exit(1)
	}

	var src importer.Source
	switch *format {
	case "json":
		src = wodjson.NewSource()
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q (supported: json)\n", *format)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(config.LoggingConfig{Level: *logLevel, Format: "console"}, "import-stats")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	rep, err := importer.New(src, logger).Run(*source, *outputDir)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
	fmt.Printf("imported %d stat(s) into %d file(s), skipped %d\n", rep.Imported, len(rep.Files), rep.Skipped)
}
