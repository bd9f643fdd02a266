package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/methview/methview/internal/beta"
	"github.com/methview/methview/internal/genome"
	"github.com/methview/methview/internal/manifest"
	"github.com/methview/methview/internal/pipeline"
	"github.com/methview/methview/internal/tracks"
	"github.com/methview/methview/internal/workspace"
)

func runPlot(args []string) int {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)

	cfg := pipeline.DefaultConfig()
	cfg.Genome = viper.GetString("genome")
	cfg.Array = viper.GetString("array")
	cfg.Pad = viper.GetInt64("pad")
	cfg.SNPTrack = viper.GetString("snp_track")
	cfg.Format = viper.GetString("format")
	cfg.FigureWidth = viper.GetFloat64("width")

	var verbose bool
	fs.StringVar(&cfg.Gene, "gene", "", "Target gene symbol (required)")
	fs.StringVar(&cfg.BetasPath, "betas", "", "Beta matrix TSV file (required)")
	fs.StringVar(&cfg.Genome, "genome", cfg.Genome, "UCSC genome build")
	fs.StringVar(&cfg.Array, "array", cfg.Array, "Array flavor: 450k or epic")
	fs.Int64Var(&cfg.Pad, "pad", cfg.Pad, "Bases added on each side of the gene span")
	fs.StringVar(&cfg.SNPTrack, "snp-track", cfg.SNPTrack, "UCSC common-SNP table")
	fs.StringVar(&cfg.ManifestPath, "manifest", "", "Manifest CSV or DuckDB file (default: auto-detect)")
	fs.StringVar(&cfg.OutPrefix, "out", "", "Output path prefix (default: the gene symbol)")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "Figure format: png, pdf, or svg")
	fs.StringVar(&cfg.SavePath, "save", "", "Save a workspace snapshot to this DuckDB path")
	fs.BoolVar(&cfg.QC, "qc", false, "Also render the beta density QC plot")
	fs.BoolVar(&cfg.BED, "bed", false, "Also export the feature tracks as BED")
	fs.BoolVar(&cfg.TSV, "tsv", false, "Also export the joined measurements as TSV")
	fs.Float64Var(&cfg.FigureWidth, "width", cfg.FigureWidth, "Figure width in inches")
	fs.BoolVar(&verbose, "verbose", false, "Verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Plot the methylation figure for a gene.

Selects the gene's CpG probes from the array manifest, fetches gene-model,
CpG-island, SNP, and cytoband tracks from UCSC, joins the beta matrix onto
genomic coordinates, and renders two figures: the full gene region and a
promoter close-up.

Usage:
  methview plot [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  methview plot --gene HOXD1 --betas betas.tsv
  methview plot --gene MLH1 --betas betas.tsv --genome hg19 --pad 2000
  methview plot --gene HOXD1 --betas betas.tsv --format pdf --qc --save hoxd1.duckdb
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		fs.Usage()
		return ExitUsage
	}
	if cfg.OutPrefix == "" {
		cfg.OutPrefix = cfg.Gene
	}

	logger := newLogger(verbose)
	defer logger.Sync()

	table, ret := loadManifestTable(&cfg)
	if ret != ExitSuccess {
		return ret
	}

	p := pipeline.New(cfg, table)
	p.SetLogger(logger)

	ws, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		switch {
		case errors.Is(err, manifest.ErrNoProbes):
			fmt.Fprintf(os.Stderr, "Hint: No probe annotation mentions %q. Check the gene symbol and the --array flavor\n", cfg.Gene)
		case errors.Is(err, genome.ErrNoGeneModels):
			fmt.Fprintf(os.Stderr, "Hint: UCSC knows no %s transcript for %q on this build. Check --genome\n", cfg.Gene, cfg.Genome)
		}
		return ExitError
	}

	regionPath, promoterPath, err := pipeline.RenderFigures(ws, cfg.OutPrefix, cfg.Format, cfg.FigureWidth, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	fmt.Printf("Wrote %s\n", regionPath)
	fmt.Printf("Wrote %s\n", promoterPath)

	if cfg.QC {
		qcPath := cfg.OutPrefix + ".qc.png"
		if err := p.RenderQC(qcPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		fmt.Printf("Wrote %s\n", qcPath)
	}
	if cfg.BED {
		bedPath := cfg.OutPrefix + ".bed"
		if err := writeBED(ws, bedPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		fmt.Printf("Wrote %s\n", bedPath)
	}
	if cfg.TSV {
		tsvPath := cfg.OutPrefix + ".tsv"
		if err := writeTSV(ws, tsvPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		fmt.Printf("Wrote %s\n", tsvPath)
	}

	if cfg.SavePath != "" {
		store, err := workspace.Open(cfg.SavePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		defer store.Close()
		if err := store.Save(ws); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving workspace: %v\n", err)
			return ExitError
		}
		fmt.Printf("Saved workspace %s\n", cfg.SavePath)
	}

	return ExitSuccess
}

// loadManifestTable loads the probe annotation from a DuckDB database or a
// manifest CSV, auto-detecting the default location when no path is given.
func loadManifestTable(cfg *pipeline.Config) (*manifest.Table, int) {
	path := cfg.ManifestPath
	if path == "" {
		found, ok := FindManifestFile(cfg.Array)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: No %s manifest found in %s\n", cfg.Array, DefaultManifestDir(cfg.Array))
			fmt.Fprintf(os.Stderr, "Hint: Download it with: methview download --array %s\n", cfg.Array)
			return nil, ExitError
		}
		path = found
		cfg.ManifestPath = found
	}

	fmt.Fprintf(os.Stderr, "Using manifest %s\n", path)

	table := manifest.NewTable()
	if manifest.IsDuckDB(path) {
		store, err := manifest.OpenDuckDB(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return nil, ExitError
		}
		defer store.Close()
		if err := store.Load(table); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading manifest database: %v\n", err)
			return nil, ExitError
		}
	} else {
		if err := manifest.NewCSVLoader(path).Load(table); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing manifest: %v\n", err)
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(os.Stderr, "Hint: Check that the file path is correct\n")
			}
			return nil, ExitError
		}
	}

	fmt.Fprintf(os.Stderr, "Loaded %d probes\n", table.Count())
	return table, ExitSuccess
}

// writeBED exports the window's feature tracks in BED format.
func writeBED(ws *workspace.Workspace, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := tracks.NewBEDWriter(f, ws.Chrom())
	for _, t := range []*tracks.Features{
		tracks.NewIslandTrack(ws.Islands, ws.Window),
		tracks.NewSNPTrack(ws.SNPs, ws.Window),
		tracks.NewProbeTrack(ws.Probes, ws.Window),
	} {
		if err := bw.WriteTrack(t); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// writeTSV exports the joined measurements as a TSV table.
func writeTSV(ws *workspace.Workspace, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// WriteAll writes the header and flushes itself.
	return beta.NewTSVWriter(f).WriteAll(ws.Set)
}

// newLogger builds the CLI logger: quiet by default, development style
// with --verbose.
func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
