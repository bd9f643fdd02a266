// Package manifest loads Illumina methylation-array probe annotation and
// selects the probe subset belonging to a target gene.
package manifest

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/methview/methview/internal/genome"
)

// ErrNoProbes is returned when a gene query matches zero probes. The empty
// match is reported explicitly rather than letting downstream window
// computation operate on an empty set.
var ErrNoProbes = errors.New("no probes matched gene")

// Probe is one CpG probe annotation record from the array manifest.
// Records are immutable after load.
type Probe struct {
	ID         string   // e.g. "cg18478105"
	Chrom      string   // bare chromosome name, no "chr" prefix
	Pos        int64    // 1-based genomic position (MAPINFO)
	Strand     int8     // +1 or -1
	Genes      []string // associated gene symbols, deduplicated
	Groups     []string // genomic context per gene: TSS1500, TSS200, 5'UTR, 1stExon, Body, 3'UTR
	Accessions []string // RefSeq transcript accessions
	Island     string   // UCSC CpG island name, if any
	Relation   string   // relation to island: Island, N_Shore, S_Shore, N_Shelf, S_Shelf
}

// MatchesGene reports whether any of the probe's gene symbols contains the
// query as a case-insensitive substring.
func (p *Probe) MatchesGene(query string) bool {
	q := strings.ToUpper(query)
	for _, g := range p.Genes {
		if strings.Contains(strings.ToUpper(g), q) {
			return true
		}
	}
	return false
}

// Table is the in-memory probe annotation index: by ID and by chromosome
// (position-sorted). Built once by a loader and read-only afterwards.
type Table struct {
	byID    map[string]*Probe
	byChrom map[string][]*Probe
}

// NewTable creates an empty probe table.
func NewTable() *Table {
	return &Table{
		byID:    make(map[string]*Probe),
		byChrom: make(map[string][]*Probe),
	}
}

// Add inserts a probe into the table. The per-chromosome position order is
// restored lazily by Sort after bulk load.
func (t *Table) Add(p *Probe) {
	if p.ID == "" {
		return
	}
	t.byID[p.ID] = p
	t.byChrom[p.Chrom] = append(t.byChrom[p.Chrom], p)
}

// Sort restores per-chromosome position order. Loaders call this once after
// the last Add.
func (t *Table) Sort() {
	for _, probes := range t.byChrom {
		sort.Slice(probes, func(i, j int) bool {
			return probes[i].Pos < probes[j].Pos
		})
	}
}

// Get returns the probe with the given ID, or nil.
func (t *Table) Get(id string) *Probe {
	return t.byID[id]
}

// Count returns the number of probes in the table.
func (t *Table) Count() int {
	return len(t.byID)
}

// Chromosomes returns a sorted list of chromosomes present in the table.
func (t *Table) Chromosomes() []string {
	chroms := make([]string, 0, len(t.byChrom))
	for c := range t.byChrom {
		chroms = append(chroms, c)
	}
	sort.Strings(chroms)
	return chroms
}

// ByChrom returns the position-sorted probes on a chromosome.
func (t *Table) ByChrom(chrom string) []*Probe {
	return t.byChrom[genome.NormalizeChrom(chrom)]
}

// InRegion returns the probes on the region's chromosome whose position
// falls inside the window.
func (t *Table) InRegion(r genome.Region) []*Probe {
	probes := t.ByChrom(r.Chrom)

	lo := sort.Search(len(probes), func(i int) bool { return probes[i].Pos >= r.Start })
	hi := sort.Search(len(probes), func(i int) bool { return probes[i].Pos > r.End })

	return probes[lo:hi]
}

// SelectGene returns the probes whose gene-name field contains the query
// string (case-insensitive substring match). The result is position-sorted
// per chromosome within the returned slice. A zero-probe match is ErrNoProbes.
func (t *Table) SelectGene(query string) ([]*Probe, error) {
	if query == "" {
		return nil, fmt.Errorf("empty gene query")
	}

	var matched []*Probe
	for _, chrom := range t.Chromosomes() {
		for _, p := range t.byChrom[chrom] {
			if p.MatchesGene(query) {
				matched = append(matched, p)
			}
		}
	}

	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoProbes, query)
	}
	return matched, nil
}

// ProbeChrom returns the single chromosome shared by a probe subset, or an
// error if the subset is empty or spans multiple chromosomes (a gene query
// matching paralogs on different chromosomes needs a narrower query).
func ProbeChrom(probes []*Probe) (string, error) {
	if len(probes) == 0 {
		return "", ErrNoProbes
	}
	chrom := probes[0].Chrom
	for _, p := range probes[1:] {
		if p.Chrom != chrom {
			return "", fmt.Errorf("probes span multiple chromosomes: %s and %s", chrom, p.Chrom)
		}
	}
	return chrom, nil
}
