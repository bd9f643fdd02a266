package tracks

import (
	"sort"

	"github.com/methview/methview/internal/beta"
	"github.com/methview/methview/internal/genome"
	"github.com/methview/methview/internal/manifest"
	"github.com/methview/methview/internal/ucsc"
)

// Ideogram is the chromosome band track. Bands cover the whole chromosome;
// the renderer highlights the visualized window on top.
type Ideogram struct {
	Chrom string
	Bands []*ucsc.CytoBand
}

func (t *Ideogram) Name() string { return genome.UCSCChrom(t.Chrom) }
func (t *Ideogram) Style() Style { return Style{Stacking: StackDense} }

// Axis is the genomic coordinate scale track.
type Axis struct {
	Label string
}

func (t *Axis) Name() string { return t.Label }
func (t *Axis) Style() Style { return Style{Stacking: StackDense} }

// GeneRegion is the gene-model track: one transcript per row with
// exon/intron structure and strand.
type GeneRegion struct {
	Symbol string
	Genes  []*ucsc.GeneModel
	style  Style
}

func (t *GeneRegion) Name() string { return t.Symbol }
func (t *GeneRegion) Style() Style { return t.style }

// Feature is one generic interval on a feature track.
type Feature struct {
	Label string
	Start int64
	End   int64
}

// Features is an interval track (CpG islands, SNPs, probe positions).
type Features struct {
	name  string
	Items []Feature
	style Style
}

func (t *Features) Name() string { return t.name }
func (t *Features) Style() Style { return t.style }

// DataPoint is one positioned value on a data track.
type DataPoint struct {
	Pos    int64
	Value  float64
	Sample string
}

// Data is the methylation beta-value track: per-sample points plus a
// per-probe mean profile, with a fixed [0, 1] value axis.
type Data struct {
	name   string
	Points []DataPoint
	Means  []beta.ProbeSummary
	style  Style
}

func (t *Data) Name() string { return t.name }
func (t *Data) Style() Style { return t.style }

// NewIdeogram builds the ideogram track from cytoband records.
func NewIdeogram(chrom string, bands []*ucsc.CytoBand) *Ideogram {
	return &Ideogram{Chrom: chrom, Bands: bands}
}

// NewAxis builds the coordinate axis track.
func NewAxis(r genome.Region) *Axis {
	return &Axis{Label: r.String()}
}

// NewGeneRegion builds the gene-model track from fetched transcripts,
// keeping only those overlapping the window.
func NewGeneRegion(symbol string, genes []*ucsc.GeneModel, win genome.Region) *GeneRegion {
	var kept []*ucsc.GeneModel
	for _, g := range genes {
		if win.Overlaps(g.TxStart, g.TxEnd) {
			kept = append(kept, g)
		}
	}
	return &GeneRegion{
		Symbol: symbol,
		Genes:  kept,
		style:  Style{Fill: ColorGene, Line: ColorIntron, Stacking: StackFull},
	}
}

// NewIslandTrack builds the CpG-island feature track clipped to the window.
func NewIslandTrack(islands []*ucsc.CpGIsland, win genome.Region) *Features {
	t := &Features{
		name:  "CpG Islands",
		style: Style{Fill: ColorIsland, Stacking: StackDense},
	}
	for _, isl := range islands {
		if win.Overlaps(isl.Start, isl.End) {
			t.Items = append(t.Items, Feature{Label: isl.Name, Start: isl.Start, End: isl.End})
		}
	}
	return t
}

// NewSNPTrack builds the common-SNP feature track clipped to the window.
// SNP tracks are the largest feature set, so the clip goes through an
// interval index instead of a scan.
func NewSNPTrack(snps []*ucsc.SNP, win genome.Region) *Features {
	t := &Features{
		name:  "Common SNPs",
		style: Style{Fill: ColorSNP, Stacking: StackDense},
	}

	intervals := make([]genome.Interval, len(snps))
	for i, snp := range snps {
		intervals[i] = genome.Interval{Start: snp.Start, End: snp.End, ID: i}
	}
	idx := genome.BuildIntervalIndex(intervals)

	ids := idx.Overlapping(win.Start, win.End)
	sort.Ints(ids)
	for _, id := range ids {
		snp := snps[id]
		t.Items = append(t.Items, Feature{Label: snp.Name, Start: snp.Start, End: snp.End})
	}
	return t
}

// NewProbeTrack builds the CpG probe position track from the selected
// probe subset clipped to the window.
func NewProbeTrack(probes []*manifest.Probe, win genome.Region) *Features {
	t := &Features{
		name:  "CpG Probes",
		style: Style{Fill: ColorProbe, Stacking: StackDense},
	}
	for _, p := range probes {
		if win.Contains(p.Pos) {
			t.Items = append(t.Items, Feature{Label: p.ID, Start: p.Pos, End: p.Pos})
		}
	}
	return t
}

// NewDataTrack builds the methylation beta track from the joined
// measurement set restricted to the window.
func NewDataTrack(set *beta.JoinedSet, win genome.Region) *Data {
	t := &Data{
		name:  "Methylation (beta)",
		style: Style{Fill: ColorBeta, Stacking: StackDense},
	}
	for _, m := range set.InRegion(win) {
		t.Points = append(t.Points, DataPoint{Pos: m.Pos, Value: m.Beta, Sample: m.Sample})
	}
	for _, s := range set.Summaries() {
		if win.Contains(s.Pos) {
			t.Means = append(t.Means, s)
		}
	}
	return t
}
