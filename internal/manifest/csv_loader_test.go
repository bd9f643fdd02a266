package manifest

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifestFixture = `Illumina, Inc.
[Heading]
Descriptor File Name,HumanMethylation450_15017482_v1-2.csv
Assay Format,Infinium HD
[Assay]
IlmnID,Name,AddressA_ID,AlleleA_ProbeSeq,Infinium_Design_Type,Genome_Build,CHR,MAPINFO,Strand,UCSC_RefGene_Name,UCSC_RefGene_Accession,UCSC_RefGene_Group,UCSC_CpG_Islands_Name,Relation_to_UCSC_CpG_Island
cg04713019,cg04713019,14782418,AACC,II,37,2,177053796,F,HOXD1,NM_024501,TSS200,chr2:177053307-177053800,Island
cg10353423,cg10353423,63642461,TTAA,I,37,2,177052849,R,HOXD1;HOXD1,NM_024501;NM_024501,TSS1500;TSS1500,chr2:177053307-177053800,N_Shore
cg27651452,cg27651452,44684391,GGCC,II,37,2,177054980,F,HOXD1,NM_024501,Body,,
cg00050873,cg00050873,32735311,ACAA,I,37,Y,9363356,R,TSPY4;FAM197Y2,NM_001164471;NR_001553,Body;TSS1500,chrY:9363680-9363943,N_Shore
badrow,badrow,1,ACGT,II,37,2,notanumber,F,GENE,NM_1,Body,,
[Controls]
22711390,NEGATIVE,Red,AVG
`

func TestCSVLoader_Parse(t *testing.T) {
	tbl := NewTable()
	loader := &CSVLoader{}
	require.NoError(t, loader.parse(strings.NewReader(manifestFixture), tbl))

	// Malformed MAPINFO row is skipped, control rows are never reached.
	assert.Equal(t, 4, tbl.Count())
	assert.Equal(t, []string{"2", "Y"}, tbl.Chromosomes())

	p := tbl.Get("cg04713019")
	require.NotNil(t, p)
	assert.Equal(t, "2", p.Chrom)
	assert.Equal(t, int64(177053796), p.Pos)
	assert.Equal(t, int8(1), p.Strand)
	assert.Equal(t, []string{"HOXD1"}, p.Genes)
	assert.Equal(t, []string{"TSS200"}, p.Groups)
	assert.Equal(t, "chr2:177053307-177053800", p.Island)
	assert.Equal(t, "Island", p.Relation)

	// Repeated gene names collapse to one entry.
	p = tbl.Get("cg10353423")
	require.NotNil(t, p)
	assert.Equal(t, []string{"HOXD1"}, p.Genes)
	assert.Equal(t, int8(-1), p.Strand)
	assert.Len(t, p.Groups, 2)

	// Probes on a chromosome come back position-sorted.
	chr2 := tbl.ByChrom("2")
	require.Len(t, chr2, 3)
	assert.Equal(t, "cg10353423", chr2[0].ID)
	assert.Equal(t, "cg27651452", chr2[2].ID)
}

func TestCSVLoader_MissingFile(t *testing.T) {
	// The wrapped open error must stay matchable so callers can hint at a
	// bad path.
	err := NewCSVLoader(filepath.Join(t.TempDir(), "nope.csv")).Load(NewTable())
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCSVLoader_MissingAssaySection(t *testing.T) {
	tbl := NewTable()
	loader := &CSVLoader{}
	err := loader.parse(strings.NewReader("just,some,csv\n1,2,3\n"), tbl)
	assert.Error(t, err)
}

func TestTable_SelectGene(t *testing.T) {
	tbl := NewTable()
	loader := &CSVLoader{}
	require.NoError(t, loader.parse(strings.NewReader(manifestFixture), tbl))

	t.Run("case-insensitive substring match", func(t *testing.T) {
		probes, err := tbl.SelectGene("hoxd1")
		require.NoError(t, err)
		require.Len(t, probes, 3)
		for _, p := range probes {
			assert.True(t, p.MatchesGene("HOXD1"))
		}
		// Strict subset of the full table.
		assert.Less(t, len(probes), tbl.Count())
	})

	t.Run("substring hits multi-gene probes", func(t *testing.T) {
		probes, err := tbl.SelectGene("FAM197Y2")
		require.NoError(t, err)
		require.Len(t, probes, 1)
		assert.Equal(t, "cg00050873", probes[0].ID)
	})

	t.Run("zero matches is an explicit error", func(t *testing.T) {
		_, err := tbl.SelectGene("NOSUCHGENE")
		assert.ErrorIs(t, err, ErrNoProbes)
	})

	t.Run("empty query rejected", func(t *testing.T) {
		_, err := tbl.SelectGene("")
		assert.Error(t, err)
	})
}

func TestProbeChrom(t *testing.T) {
	tbl := NewTable()
	loader := &CSVLoader{}
	require.NoError(t, loader.parse(strings.NewReader(manifestFixture), tbl))

	probes, err := tbl.SelectGene("HOXD1")
	require.NoError(t, err)

	chrom, err := ProbeChrom(probes)
	require.NoError(t, err)
	assert.Equal(t, "2", chrom)

	_, err = ProbeChrom(nil)
	assert.ErrorIs(t, err, ErrNoProbes)

	mixed := []*Probe{{ID: "a", Chrom: "2"}, {ID: "b", Chrom: "3"}}
	_, err = ProbeChrom(mixed)
	assert.Error(t, err)
}

func TestTable_InRegion(t *testing.T) {
	tbl := NewTable()
	loader := &CSVLoader{}
	require.NoError(t, loader.parse(strings.NewReader(manifestFixture), tbl))

	probes := tbl.InRegion(regionFor(t, "2", 177053000, 177054000))
	require.Len(t, probes, 1)
	assert.Equal(t, "cg04713019", probes[0].ID)

	probes = tbl.InRegion(regionFor(t, "2", 1, 300000000))
	assert.Len(t, probes, 3)

	probes = tbl.InRegion(regionFor(t, "22", 1, 300000000))
	assert.Empty(t, probes)
}
