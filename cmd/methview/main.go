// Package main provides the methview command-line tool.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Parse()

	if showVersion {
		fmt.Printf("methview version %s (%s) built %s\n", version, commit, date)
		return ExitSuccess
	}

	initConfig()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return ExitUsage
	}

	switch args[0] {
	case "plot":
		return runPlot(args[1:])
	case "render":
		return runRender(args[1:])
	case "download":
		return runDownload(args[1:])
	case "convert":
		return runConvert(args[1:])
	case "config":
		cmd := newConfigCmd()
		cmd.SetArgs(args[1:])
		if err := cmd.Execute(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		return ExitSuccess
	case "help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printUsage()
		return ExitUsage
	}
}

// initConfig loads ~/.methview.yaml and sets the built-in defaults.
// Flag values override config values override these defaults.
func initConfig() {
	viper.SetDefault("genome", "hg19")
	viper.SetDefault("array", "450k")
	viper.SetDefault("pad", 5000)
	viper.SetDefault("snp_track", "snp151Common")
	viper.SetDefault("format", "png")
	viper.SetDefault("width", 12.0)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	viper.SetConfigFile(filepath.Join(home, ".methview.yaml"))
	// Missing config file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `methview - methylation array region viewer

Usage:
  methview [options] <command> [arguments]

Commands:
  plot        Plot the methylation figure for a gene
  render      Re-render a saved workspace snapshot
  download    Download the Illumina array manifest
  convert     Convert a manifest CSV to a DuckDB database
  config      Show, get, or set configuration values
  help        Show this help message

Global Options:
  --version   Show version information

Examples:
  # Download the 450k manifest (one-time setup)
  methview download --array 450k

  # Plot HOXD1 with a beta matrix
  methview plot --gene HOXD1 --betas betas.tsv

  # Plot to PDF with a workspace snapshot
  methview plot --gene HOXD1 --betas betas.tsv --format pdf --save hoxd1.duckdb

  # Re-render a saved workspace without network access
  methview render --workspace hoxd1.duckdb --out hoxd1

For more information on a command, use:
  methview <command> --help
`)
}
