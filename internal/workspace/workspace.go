// Package workspace snapshots a fully assembled figure dataset into a
// DuckDB file, so a figure can be re-rendered without refetching remote
// tracks or reparsing the annotation.
package workspace

import (
	"github.com/methview/methview/internal/beta"
	"github.com/methview/methview/internal/genome"
	"github.com/methview/methview/internal/manifest"
	"github.com/methview/methview/internal/ucsc"
)

// Workspace holds everything needed to draw the figures for one gene:
// the resolved windows, the selected probes, the fetched remote tracks,
// and the joined measurements.
type Workspace struct {
	Gene     string
	Genome   string
	Array    string
	SNPTrack string

	Window   genome.Region
	Promoter genome.Region

	Probes    []*manifest.Probe
	Genes     []*ucsc.GeneModel
	Islands   []*ucsc.CpGIsland
	SNPs      []*ucsc.SNP
	CytoBands []*ucsc.CytoBand

	Set *beta.JoinedSet
}

// Chrom returns the chromosome of the visualized window.
func (ws *Workspace) Chrom() string {
	return ws.Window.Chrom
}
