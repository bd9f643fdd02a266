package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/methview/methview/internal/beta"
	"github.com/methview/methview/internal/genome"
	"github.com/methview/methview/internal/workspace"
)

func TestWriteTSV(t *testing.T) {
	ws := &workspace.Workspace{
		Gene:   "HOXD1",
		Window: genome.Region{Chrom: "2", Start: 177048307, End: 177060463},
		Set: &beta.JoinedSet{
			Chrom:   "2",
			Samples: []string{"s1", "s2"},
			Measurements: []beta.Measurement{
				{ProbeID: "cg00000001", Chrom: "2", Pos: 177053400, Sample: "s1", Beta: 0.8123},
				{ProbeID: "cg00000001", Chrom: "2", Pos: 177053400, Sample: "s2", Beta: 0.4456},
				{ProbeID: "cg00000002", Chrom: "2", Pos: 177055100, Sample: "s1", Beta: 0.1},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "out.tsv")
	require.NoError(t, writeTSV(ws, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 4)

	// Exactly one header line, at the top.
	assert.Equal(t, 1, strings.Count(string(data), "#Probe_ID"))
	assert.Equal(t, "#Probe_ID\tChromosome\tPosition\tSample\tBeta", lines[0])
	assert.Equal(t, "cg00000001\t2\t177053400\ts1\t0.8123", lines[1])
	assert.Equal(t, "cg00000002\t2\t177055100\ts1\t0.1000", lines[3])
}
