package tracks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/methview/methview/internal/genome"
	"github.com/methview/methview/internal/manifest"
	"github.com/methview/methview/internal/ucsc"
)

var testWindow = genome.Region{Chrom: "2", Start: 177048307, End: 177060463}

func TestNewGeneRegion_ClipsToWindow(t *testing.T) {
	genes := []*ucsc.GeneModel{
		{Name: "NM_014620", Symbol: "HOXD1", Chrom: "2", TxStart: 177053307, TxEnd: 177055754},
		{Name: "NM_000000", Symbol: "FAR", Chrom: "2", TxStart: 190000000, TxEnd: 190010000},
	}

	track := NewGeneRegion("HOXD1", genes, testWindow)
	require.Len(t, track.Genes, 1)
	assert.Equal(t, "NM_014620", track.Genes[0].Name)
	assert.Equal(t, "HOXD1", track.Name())
	assert.Equal(t, StackFull, track.Style().Stacking)
}

func TestNewIslandTrack(t *testing.T) {
	islands := []*ucsc.CpGIsland{
		{Name: "CpG: 41", Chrom: "2", Start: 177053307, End: 177053800},
		{Name: "CpG: 10", Chrom: "2", Start: 1000, End: 2000},
	}

	track := NewIslandTrack(islands, testWindow)
	require.Len(t, track.Items, 1)
	assert.Equal(t, "CpG: 41", track.Items[0].Label)
	assert.Equal(t, "CpG Islands", track.Name())
}

func TestNewSNPTrack_BoundaryOverlap(t *testing.T) {
	snps := []*ucsc.SNP{
		{Name: "rs_in", Chrom: "2", Start: 177048307, End: 177048307},
		{Name: "rs_out", Chrom: "2", Start: 177048306, End: 177048306},
	}

	track := NewSNPTrack(snps, testWindow)
	require.Len(t, track.Items, 1)
	assert.Equal(t, "rs_in", track.Items[0].Label)
}

func TestNewProbeTrack(t *testing.T) {
	probes := []*manifest.Probe{
		{ID: "cg04713019", Chrom: "2", Pos: 177053796},
		{ID: "cg_far", Chrom: "2", Pos: 200000000},
	}

	track := NewProbeTrack(probes, testWindow)
	require.Len(t, track.Items, 1)
	assert.Equal(t, "cg04713019", track.Items[0].Label)
	// Probes are point features.
	assert.Equal(t, track.Items[0].Start, track.Items[0].End)
}

func TestNewIdeogramAndAxis(t *testing.T) {
	bands := []*ucsc.CytoBand{
		{Name: "q31.1", Chrom: "2", Start: 170100001, End: 180000000, Stain: "gpos50"},
	}
	ideo := NewIdeogram("2", bands)
	assert.Equal(t, "chr2", ideo.Name())

	axis := NewAxis(testWindow)
	assert.Equal(t, "chr2:177048307-177060463", axis.Name())
}

func TestBEDWriter(t *testing.T) {
	track := &Features{
		name: "CpG Islands",
		Items: []Feature{
			{Label: "CpG: 41", Start: 177053307, End: 177053800},
		},
	}

	var sb strings.Builder
	bw := NewBEDWriter(&sb, "2")
	require.NoError(t, bw.WriteTrack(track))
	require.NoError(t, bw.Flush())

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `track name="CpG Islands"`, lines[0])
	// BED is 0-based half-open.
	assert.Equal(t, "chr2\t177053306\t177053800\tCpG: 41", lines[1])
}
