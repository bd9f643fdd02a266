package ucsc

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/methview/methview/internal/genome"
)

// trackServer serves canned getData/track payloads keyed by track name.
func trackServer(t *testing.T, payloads map[string]string) *Session {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		track := r.URL.Query().Get("track")
		payload, ok := payloads[track]
		if !ok {
			http.Error(w, fmt.Sprintf("unknown track %q", track), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"genome":"hg19","track":%q,%q:%s}`, track, track, payload)
	}))
	t.Cleanup(srv.Close)

	s := NewSession("hg19")
	s.SetBaseURL(srv.URL)
	return s
}

const hoxd1GenePayload = `[
	{"name":"NM_014620","name2":"HOXD1","chrom":"chr2","strand":"+",
	 "txStart":177053306,"txEnd":177055754,"cdsStart":177053396,"cdsEnd":177055463,
	 "exonStarts":"177053306,177054859,","exonEnds":"177053800,177055754,"}
]`

func TestFetchGenes(t *testing.T) {
	s := trackServer(t, map[string]string{
		TrackGenes: `[
			{"name":"NM_014620","name2":"HOXD1","chrom":"chr2","strand":"+",
			 "txStart":177053306,"txEnd":177055754,"cdsStart":177053396,"cdsEnd":177055463,
			 "exonStarts":"177053306,177054859,","exonEnds":"177053800,177055754,"},
			{"name":"NM_000000","name2":"OTHER","chrom":"chr2","strand":"-",
			 "txStart":177100000,"txEnd":177110000,"cdsStart":177100500,"cdsEnd":177109000,
			 "exonStarts":"177100000,","exonEnds":"177110000,"}
		]`,
	})

	win := genome.Region{Chrom: "2", Start: 177000000, End: 177200000}

	t.Run("symbol filter and coordinate conversion", func(t *testing.T) {
		genes, err := s.FetchGenes(win, "hoxd1")
		require.NoError(t, err)
		require.Len(t, genes, 1)

		g := genes[0]
		assert.Equal(t, "NM_014620", g.Name)
		assert.Equal(t, "HOXD1", g.Symbol)
		assert.Equal(t, "2", g.Chrom)
		assert.Equal(t, int8(1), g.Strand)
		// 0-based half-open converts to 1-based inclusive.
		assert.Equal(t, int64(177053307), g.TxStart)
		assert.Equal(t, int64(177055754), g.TxEnd)
		assert.Equal(t, int64(177053397), g.CdsStart)
		assert.Equal(t, int64(177055463), g.CdsEnd)
		assert.Equal(t, []int64{177053307, 177054860}, g.ExonStarts)
		assert.Equal(t, []int64{177053800, 177055754}, g.ExonEnds)
	})

	t.Run("empty symbol returns everything", func(t *testing.T) {
		genes, err := s.FetchGenes(win, "")
		require.NoError(t, err)
		assert.Len(t, genes, 2)
	})
}

func TestFetchIslands(t *testing.T) {
	s := trackServer(t, map[string]string{
		TrackIslands: `[
			{"name":"CpG: 41","chrom":"chr2","chromStart":177053306,"chromEnd":177053800,
			 "cpgNum":41,"perCpg":16.6,"obsExp":0.85}
		]`,
	})

	islands, err := s.FetchIslands(genome.Region{Chrom: "2", Start: 177000000, End: 177200000})
	require.NoError(t, err)
	require.Len(t, islands, 1)
	assert.Equal(t, int64(177053307), islands[0].Start)
	assert.Equal(t, int64(177053800), islands[0].End)
	assert.Equal(t, 41, islands[0].CpGNum)
}

func TestFetchSNPs(t *testing.T) {
	s := trackServer(t, map[string]string{
		"snp151Common": `[
			{"name":"rs12345","chrom":"chr2","chromStart":177053500,"chromEnd":177053501,
			 "strand":"+","class":"snp","observed":"A/G"}
		]`,
	})

	snps, err := s.FetchSNPs(genome.Region{Chrom: "2", Start: 177000000, End: 177200000}, "")
	require.NoError(t, err)
	require.Len(t, snps, 1)
	assert.Equal(t, "rs12345", snps[0].Name)
	assert.Equal(t, int64(177053501), snps[0].Start)
	assert.Equal(t, "A/G", snps[0].Observed)
}

func TestFetchSNPs_ZeroWidthInsertion(t *testing.T) {
	// Insertions have chromStart == chromEnd; the record must decode to a
	// one-base interval, not an inverted one, so window clipping keeps it.
	s := trackServer(t, map[string]string{
		"snp151Common": `[
			{"name":"rs777","chrom":"chr2","chromStart":177054000,"chromEnd":177054000,
			 "strand":"+","class":"insertion","observed":"-/AT"}
		]`,
	})

	win := genome.Region{Chrom: "2", Start: 177000000, End: 177200000}
	snps, err := s.FetchSNPs(win, "")
	require.NoError(t, err)
	require.Len(t, snps, 1)

	snp := snps[0]
	assert.Equal(t, "rs777", snp.Name)
	assert.Equal(t, int64(177054001), snp.Start)
	assert.Equal(t, snp.Start, snp.End)
	assert.True(t, win.Overlaps(snp.Start, snp.End))
}

func TestFetchCytoBands_ChromKeyedPayload(t *testing.T) {
	// Whole-chromosome queries return the chrom-keyed object shape.
	s := trackServer(t, map[string]string{
		TrackCytoBand: `{"chr2":[
			{"name":"p25.3","chrom":"chr2","chromStart":0,"chromEnd":4400000,"gieStain":"gneg"},
			{"name":"q31.1","chrom":"chr2","chromStart":170100000,"chromEnd":180000000,"gieStain":"gpos50"}
		]}`,
	})

	bands, err := s.FetchCytoBands("2")
	require.NoError(t, err)
	require.Len(t, bands, 2)
	assert.Equal(t, "p25.3", bands[0].Name)
	assert.Equal(t, int64(1), bands[0].Start)
	assert.Equal(t, "gpos50", bands[1].Stain)
}

func TestFetchAll(t *testing.T) {
	s := trackServer(t, map[string]string{
		TrackGenes:    hoxd1GenePayload,
		TrackIslands:  `[]`,
		"snp151Common": `[{"name":"rs1","chrom":"chr2","chromStart":177054000,"chromEnd":177054001,"strand":"+","class":"snp","observed":"C/T"}]`,
		TrackCytoBand: `{"chr2":[{"name":"q31.1","chrom":"chr2","chromStart":170100000,"chromEnd":180000000,"gieStain":"gpos50"}]}`,
	})

	win := genome.Region{Chrom: "2", Start: 177000000, End: 177200000}
	set, err := s.FetchAll(win, "HOXD1", "", 0)
	require.NoError(t, err)

	require.Len(t, set.Genes, 1)
	assert.Empty(t, set.Islands)
	require.Len(t, set.SNPs, 1)
	require.Len(t, set.CytoBands, 1)

	spans := set.Spans()
	require.Len(t, spans, 1)
	assert.Equal(t, int64(177053307), spans[0].TxStart)
}

func TestFetchAll_ErrorPropagates(t *testing.T) {
	// Missing SNP track payload makes the fetch 404; no retry, error surfaces.
	s := trackServer(t, map[string]string{
		TrackGenes:    hoxd1GenePayload,
		TrackIslands:  `[]`,
		TrackCytoBand: `{"chr2":[]}`,
	})

	win := genome.Region{Chrom: "2", Start: 177000000, End: 177200000}
	_, err := s.FetchAll(win, "HOXD1", "", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snps")
}

func TestParseCommaList(t *testing.T) {
	tests := []struct {
		input    string
		expected []int64
	}{
		{"100,200,300,", []int64{100, 200, 300}},
		{"100,200,300", []int64{100, 200, 300}},
		{"", []int64{}},
		{",", []int64{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseCommaList(tt.input), "parseCommaList(%q)", tt.input)
	}
}
