package pipeline

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/methview/methview/internal/genome"
	"github.com/methview/methview/internal/manifest"
)

// ucscStub serves canned track payloads keyed by the track query param.
func ucscStub(t *testing.T) *httptest.Server {
	t.Helper()

	payloads := map[string]string{
		"refGene": `[{
			"name": "NM_014620", "name2": "HOXD1", "chrom": "chr2", "strand": "+",
			"txStart": 177053306, "txEnd": 177055754,
			"cdsStart": 177053396, "cdsEnd": 177055463,
			"exonStarts": "177053306,177054599,", "exonEnds": "177053500,177055754,"
		}]`,
		"cpgIslandExt": `[{
			"name": "CpG: 41", "chrom": "chr2",
			"chromStart": 177053306, "chromEnd": 177053800,
			"cpgNum": 41, "perCpg": 18.5, "obsExp": 0.86
		}]`,
		"snp151Common": `[{
			"name": "rs12345", "chrom": "chr2",
			"chromStart": 177053999, "chromEnd": 177054000,
			"strand": "+", "class": "snp", "observed": "A/G"
		}]`,
		"cytoBandIdeo": `{"chr2": [
			{"name": "p25.3", "chrom": "chr2", "chromStart": 0, "chromEnd": 4400000, "gieStain": "gneg"},
			{"name": "q31.1", "chrom": "chr2", "chromStart": 170100000, "chromEnd": 180000000, "gieStain": "gpos50"}
		]}`,
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		track := r.URL.Query().Get("track")
		payload, ok := payloads[track]
		if !ok {
			http.Error(w, fmt.Sprintf("unknown track %q", track), http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"genome": %q, "track": %q, %q: %s}`,
			r.URL.Query().Get("genome"), track, track, payload)
	}))
}

func probeTable() *manifest.Table {
	t := manifest.NewTable()
	t.Add(&manifest.Probe{ID: "cg04713019", Chrom: "2", Pos: 177053796, Strand: 1,
		Genes: []string{"HOXD1"}, Groups: []string{"TSS200"}})
	t.Add(&manifest.Probe{ID: "cg10353423", Chrom: "2", Pos: 177052849, Strand: 1,
		Genes: []string{"HOXD1"}, Groups: []string{"TSS1500"}})
	t.Add(&manifest.Probe{ID: "cg27651452", Chrom: "2", Pos: 177054980, Strand: -1,
		Genes: []string{"HOXD1"}, Groups: []string{"Body"}})
	t.Add(&manifest.Probe{ID: "cg00000001", Chrom: "Y", Pos: 1000, Strand: 1,
		Genes: []string{"SRY"}})
	t.Sort()
	return t
}

func writeBetas(t *testing.T) string {
	t.Helper()
	tsv := strings.Join([]string{
		"Probe_ID\tnormal_01\ttumor_01",
		"cg04713019\t0.12\t0.81",
		"cg10353423\t0.92\tNA",
		"cg27651452\t0.33\t0.64",
		"cg99999999\t0.50\t0.50",
	}, "\n") + "\n"

	path := filepath.Join(t.TempDir(), "betas.tsv")
	require.NoError(t, os.WriteFile(path, []byte(tsv), 0644))
	return path
}

func testPipeline(t *testing.T, server *httptest.Server) *Pipeline {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Gene = "HOXD1"
	cfg.BetasPath = writeBetas(t)
	require.NoError(t, cfg.Validate())

	p := New(cfg, probeTable())
	p.Session().SetBaseURL(server.URL)
	return p
}

func TestPipeline_Run(t *testing.T) {
	server := ucscStub(t)
	defer server.Close()

	ws, err := testPipeline(t, server).Run()
	require.NoError(t, err)

	assert.Equal(t, "HOXD1", ws.Gene)
	assert.Equal(t, "hg19", ws.Genome)
	assert.Equal(t, "2", ws.Chrom())

	// Window: [min(txStart) - pad, max(cdsEnd) + pad].
	assert.Equal(t, genome.Region{Chrom: "2", Start: 177048307, End: 177060463}, ws.Window)
	// Promoter: plus-strand TSS +/- pad.
	assert.Equal(t, genome.Region{Chrom: "2", Start: 177048307, End: 177058307}, ws.Promoter)

	require.Len(t, ws.Genes, 1)
	assert.Equal(t, int64(177053307), ws.Genes[0].TxStart)
	assert.Len(t, ws.Islands, 1)
	assert.Len(t, ws.SNPs, 1)
	assert.Len(t, ws.CytoBands, 2)
	assert.Len(t, ws.Probes, 3)

	require.NotNil(t, ws.Set)
	// One matrix row has no annotation; one cell is NA.
	assert.Equal(t, 1, ws.Set.Dropped)
	assert.Len(t, ws.Set.Measurements, 5)
	for _, m := range ws.Set.Measurements {
		assert.NotZero(t, m.Pos, "measurement %s without coordinate", m.ProbeID)
	}
}

func TestPipeline_RunIsIdempotent(t *testing.T) {
	server := ucscStub(t)
	defer server.Close()

	p := testPipeline(t, server)
	first, err := p.Run()
	require.NoError(t, err)
	second, err := p.Run()
	require.NoError(t, err)

	assert.Equal(t, first.Window, second.Window)
	assert.Equal(t, first.Promoter, second.Promoter)
	assert.Equal(t, first.Set.Measurements, second.Set.Measurements)
}

func TestPipeline_UnknownGene(t *testing.T) {
	server := ucscStub(t)
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Gene = "NOSUCHGENE"
	cfg.BetasPath = writeBetas(t)

	p := New(cfg, probeTable())
	p.Session().SetBaseURL(server.URL)

	_, err := p.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrNoProbes)
}

func TestPipeline_NoGeneModels(t *testing.T) {
	// The service knows no transcripts matching the symbol.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		track := r.URL.Query().Get("track")
		fmt.Fprintf(w, `{"track": %q, %q: []}`, track, track)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Gene = "HOXD1"
	cfg.BetasPath = writeBetas(t)

	p := New(cfg, probeTable())
	p.Session().SetBaseURL(server.URL)

	_, err := p.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, genome.ErrNoGeneModels)
}

func TestPipeline_FetchErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service down", http.StatusBadGateway)
	}))
	defer server.Close()

	p := testPipeline(t, server)
	_, err := p.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestPipeline_RenderFigures(t *testing.T) {
	server := ucscStub(t)
	defer server.Close()

	p := testPipeline(t, server)
	ws, err := p.Run()
	require.NoError(t, err)

	prefix := filepath.Join(t.TempDir(), "hoxd1")
	regionPath, promoterPath, err := RenderFigures(ws, prefix, "png", 10, nil)
	require.NoError(t, err)
	assert.Equal(t, prefix+".region.png", regionPath)
	assert.Equal(t, prefix+".promoter.png", promoterPath)

	for _, path := range []string{regionPath, promoterPath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestPipeline_RenderQC(t *testing.T) {
	server := ucscStub(t)
	defer server.Close()

	p := testPipeline(t, server)

	// Before Run there is no matrix.
	require.Error(t, p.RenderQC("qc.png"))

	_, err := p.Run()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "qc.png")
	require.NoError(t, p.RenderQC(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "missing gene", mutate: func(c *Config) { c.Gene = "" }, wantErr: "no gene"},
		{name: "missing betas", mutate: func(c *Config) { c.BetasPath = "" }, wantErr: "no beta matrix"},
		{name: "negative pad", mutate: func(c *Config) { c.Pad = -1 }, wantErr: "negative pad"},
		{name: "bad format", mutate: func(c *Config) { c.Format = "bmp" }, wantErr: "unsupported format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Gene = "HOXD1"
			cfg.BetasPath = "betas.tsv"
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTracks_Order(t *testing.T) {
	server := ucscStub(t)
	defer server.Close()

	ws, err := testPipeline(t, server).Run()
	require.NoError(t, err)

	ts := Tracks(ws, ws.Window)
	require.Len(t, ts, 7)
	assert.Equal(t, "chr2", ts[0].Name())
	assert.Equal(t, ws.Window.String(), ts[1].Name())
	assert.Equal(t, "HOXD1", ts[2].Name())
	assert.Equal(t, "CpG Islands", ts[3].Name())
	assert.Equal(t, "Common SNPs", ts[4].Name())
	assert.Equal(t, "CpG Probes", ts[5].Name())
	assert.Equal(t, "Methylation (beta)", ts[6].Name())
}
