package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/methview/methview/internal/manifest"
)

func runConvert(args []string) int {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)

	var (
		inputPath  string
		outputPath string
	)

	fs.StringVar(&inputPath, "input", "", "Input manifest CSV file (.csv or .csv.gz)")
	fs.StringVar(&inputPath, "i", "", "Input manifest CSV file (shorthand)")
	fs.StringVar(&outputPath, "output", "", "Output DuckDB file path")
	fs.StringVar(&outputPath, "o", "", "Output DuckDB file path (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Convert an Illumina manifest CSV to a DuckDB database.

The raw manifest is a large CSV that takes a while to parse. Converting it
once makes every later plot start fast.

Usage:
  methview convert [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  methview convert --input humanmethylation450_15017482_v1-2.csv --output manifest.duckdb
  methview convert -i manifest.csv.gz -o manifest.duckdb
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if inputPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --input is required\n\n")
		fs.Usage()
		return ExitUsage
	}
	if outputPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --output is required\n\n")
		fs.Usage()
		return ExitUsage
	}

	if filepath.Ext(outputPath) != ".duckdb" && filepath.Ext(outputPath) != ".db" {
		outputPath = outputPath + ".duckdb"
	}

	// Replace any existing output.
	if _, err := os.Stat(outputPath); err == nil {
		if err := os.Remove(outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error removing existing file: %v\n", err)
			return ExitError
		}
	}

	fmt.Printf("Parsing manifest %s...\n", inputPath)
	table := manifest.NewTable()
	if err := manifest.NewCSVLoader(inputPath).Load(table); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Hint: Check that the file path is correct\n")
		}
		return ExitError
	}
	fmt.Printf("Parsed %d probes on %d chromosomes\n", table.Count(), len(table.Chromosomes()))

	store, err := manifest.OpenDuckDB(outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	defer store.Close()

	if err := store.CreateSchema(); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating schema: %v\n", err)
		return ExitError
	}

	fmt.Printf("Writing %s...\n", outputPath)
	if err := store.ImportTable(table); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	count, err := store.ProbeCount()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	fmt.Printf("\nConversion complete: %d probes in %s\n", count, outputPath)
	return ExitSuccess
}
