package pipeline

import (
	"fmt"

	"github.com/methview/methview/internal/ucsc"
)

// Config carries every knob of one plot run. Flag values override config
// file values override the defaults below.
type Config struct {
	Gene     string // target gene symbol
	Genome   string // UCSC genome build, e.g. hg19
	Array    string // manifest flavor: 450k or epic
	Pad      int64  // bases added on each side of the gene span
	SNPTrack string // UCSC SNP table, e.g. snp151Common
	Workers  int    // parallel track fetches

	ManifestPath string // manifest CSV or DuckDB path
	BetasPath    string // beta matrix TSV path

	OutPrefix string // figure path prefix
	Format    string // png, pdf, or svg
	SavePath  string // optional workspace snapshot path
	QC        bool   // also render the beta density QC plot
	BED       bool   // also export feature tracks as BED
	TSV       bool   // also export the joined measurements as TSV

	FigureWidth float64 // figure width in inches
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Genome:      "hg19",
		Array:       "450k",
		Pad:         5000,
		SNPTrack:    ucsc.TrackSNPs,
		Workers:     4,
		OutPrefix:   "methview",
		Format:      "png",
		FigureWidth: 12,
	}
}

// Validate checks the config for a plot run.
func (c *Config) Validate() error {
	if c.Gene == "" {
		return fmt.Errorf("no gene given (--gene)")
	}
	if c.BetasPath == "" {
		return fmt.Errorf("no beta matrix given (--betas)")
	}
	if c.Pad < 0 {
		return fmt.Errorf("negative pad %d", c.Pad)
	}
	switch c.Format {
	case "png", "pdf", "svg":
	default:
		return fmt.Errorf("unsupported format %q (want png, pdf, or svg)", c.Format)
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return nil
}
