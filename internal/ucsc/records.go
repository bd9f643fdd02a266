package ucsc

import (
	"strconv"
	"strings"

	"github.com/methview/methview/internal/genome"
)

// GeneModel is one refGene transcript record. Coordinates are converted to
// 1-based inclusive at decode; exon lists are parallel slices.
type GeneModel struct {
	Name       string // transcript accession, e.g. NM_014620
	Symbol     string // gene symbol (name2)
	Chrom      string
	Strand     int8
	TxStart    int64
	TxEnd      int64
	CdsStart   int64
	CdsEnd     int64
	ExonStarts []int64
	ExonEnds   []int64
}

// Span returns the transcript's coordinates for window derivation.
func (g *GeneModel) Span() genome.GeneSpan {
	return genome.GeneSpan{
		Chrom:    g.Chrom,
		TxStart:  g.TxStart,
		TxEnd:    g.TxEnd,
		CdsStart: g.CdsStart,
		CdsEnd:   g.CdsEnd,
		Strand:   g.Strand,
	}
}

// restGeneModel is the raw genePred JSON shape returned by the service.
type restGeneModel struct {
	Name       string `json:"name"`
	Name2      string `json:"name2"`
	Chrom      string `json:"chrom"`
	Strand     string `json:"strand"`
	TxStart    int64  `json:"txStart"`
	TxEnd      int64  `json:"txEnd"`
	CdsStart   int64  `json:"cdsStart"`
	CdsEnd     int64  `json:"cdsEnd"`
	ExonStarts string `json:"exonStarts"`
	ExonEnds   string `json:"exonEnds"`
}

func (r *restGeneModel) toGeneModel() *GeneModel {
	if r.Name == "" {
		return nil
	}
	starts := parseCommaList(r.ExonStarts)
	for i := range starts {
		starts[i]++ // 0-based half-open to 1-based inclusive
	}
	return &GeneModel{
		Name:       r.Name,
		Symbol:     r.Name2,
		Chrom:      genome.NormalizeChrom(r.Chrom),
		Strand:     parseStrand(r.Strand),
		TxStart:    r.TxStart + 1,
		TxEnd:      r.TxEnd,
		CdsStart:   r.CdsStart + 1,
		CdsEnd:     r.CdsEnd,
		ExonStarts: starts,
		ExonEnds:   parseCommaList(r.ExonEnds),
	}
}

// CpGIsland is one cpgIslandExt record.
type CpGIsland struct {
	Name   string
	Chrom  string
	Start  int64
	End    int64
	CpGNum int
	PerCpG float64
	ObsExp float64
}

type restCpGIsland struct {
	Name       string  `json:"name"`
	Chrom      string  `json:"chrom"`
	ChromStart int64   `json:"chromStart"`
	ChromEnd   int64   `json:"chromEnd"`
	CpGNum     int     `json:"cpgNum"`
	PerCpG     float64 `json:"perCpg"`
	ObsExp     float64 `json:"obsExp"`
}

func (r *restCpGIsland) toCpGIsland() *CpGIsland {
	return &CpGIsland{
		Name:   r.Name,
		Chrom:  genome.NormalizeChrom(r.Chrom),
		Start:  r.ChromStart + 1,
		End:    r.ChromEnd,
		CpGNum: r.CpGNum,
		PerCpG: r.PerCpG,
		ObsExp: r.ObsExp,
	}
}

// SNP is one common-SNP record (snpNNNCommon tables).
type SNP struct {
	Name     string // rs identifier
	Chrom    string
	Start    int64
	End      int64
	Strand   int8
	Class    string // snp, insertion, deletion, ...
	Observed string // e.g. "A/G"
}

type restSNP struct {
	Name       string `json:"name"`
	Chrom      string `json:"chrom"`
	ChromStart int64  `json:"chromStart"`
	ChromEnd   int64  `json:"chromEnd"`
	Strand     string `json:"strand"`
	Class      string `json:"class"`
	Observed   string `json:"observed"`
}

func (r *restSNP) toSNP() *SNP {
	// Insertions are zero-width (chromStart == chromEnd); keep them as a
	// one-base interval at the insertion point.
	end := r.ChromEnd
	if end < r.ChromStart+1 {
		end = r.ChromStart + 1
	}
	return &SNP{
		Name:     r.Name,
		Chrom:    genome.NormalizeChrom(r.Chrom),
		Start:    r.ChromStart + 1,
		End:      end,
		Strand:   parseStrand(r.Strand),
		Class:    r.Class,
		Observed: r.Observed,
	}
}

// CytoBand is one cytoBandIdeo record, used for the ideogram track.
type CytoBand struct {
	Name  string // band name, e.g. "q31.1"
	Chrom string
	Start int64
	End   int64
	Stain string // Giemsa stain: gneg, gpos25..gpos100, acen, gvar, stalk
}

type restCytoBand struct {
	Name       string `json:"name"`
	Chrom      string `json:"chrom"`
	ChromStart int64  `json:"chromStart"`
	ChromEnd   int64  `json:"chromEnd"`
	GieStain   string `json:"gieStain"`
}

func (r *restCytoBand) toCytoBand() *CytoBand {
	return &CytoBand{
		Name:  r.Name,
		Chrom: genome.NormalizeChrom(r.Chrom),
		Start: r.ChromStart + 1,
		End:   r.ChromEnd,
		Stain: r.GieStain,
	}
}

// parseStrand converts a strand string to int8.
func parseStrand(s string) int8 {
	if s == "-" {
		return -1
	}
	return 1
}

// parseCommaList parses UCSC's comma-separated coordinate lists, which
// carry a trailing comma ("100,200,300,").
func parseCommaList(s string) []int64 {
	parts := strings.Split(strings.TrimSuffix(s, ","), ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
