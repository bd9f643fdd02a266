package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/methview/methview/internal/pipeline"
	"github.com/methview/methview/internal/workspace"
)

func runRender(args []string) int {
	fs := flag.NewFlagSet("render", flag.ExitOnError)

	var (
		wsPath    string
		outPrefix string
		format    string
		width     float64
		verbose   bool
	)

	fs.StringVar(&wsPath, "workspace", "", "Workspace DuckDB file saved by plot --save (required)")
	fs.StringVar(&outPrefix, "out", "", "Output path prefix (default: the saved gene symbol)")
	fs.StringVar(&format, "format", viper.GetString("format"), "Figure format: png, pdf, or svg")
	fs.Float64Var(&width, "width", viper.GetFloat64("width"), "Figure width in inches")
	fs.BoolVar(&verbose, "verbose", false, "Verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Re-render the figures of a saved workspace snapshot.

Everything needed for rendering is read from the snapshot; no manifest and
no network access is required.

Usage:
  methview render [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  methview render --workspace hoxd1.duckdb
  methview render --workspace hoxd1.duckdb --out figures/hoxd1 --format svg
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if wsPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --workspace is required\n\n")
		fs.Usage()
		return ExitUsage
	}
	switch format {
	case "png", "pdf", "svg":
	default:
		fmt.Fprintf(os.Stderr, "Error: unsupported format %q (want png, pdf, or svg)\n", format)
		return ExitUsage
	}

	store, err := workspace.Open(wsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Hint: Check that the workspace path is correct\n")
		}
		return ExitError
	}
	defer store.Close()

	ws, err := store.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Hint: Workspaces are written by: methview plot --save %s\n", wsPath)
		return ExitError
	}

	fmt.Fprintf(os.Stderr, "Loaded workspace: %s on %s (%s)\n", ws.Gene, ws.Window.String(), ws.Genome)

	if outPrefix == "" {
		outPrefix = ws.Gene
	}

	logger := newLogger(verbose)
	defer logger.Sync()

	regionPath, promoterPath, err := pipeline.RenderFigures(ws, outPrefix, format, width, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	fmt.Printf("Wrote %s\n", regionPath)
	fmt.Printf("Wrote %s\n", promoterPath)

	return ExitSuccess
}
