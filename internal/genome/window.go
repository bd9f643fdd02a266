package genome

import (
	"errors"
	"fmt"
)

// ErrNoGeneModels is returned when a coordinate window is requested for an
// empty gene-model set. min/max over an empty set is undefined, so the
// condition is reported instead of producing an invalid window.
var ErrNoGeneModels = errors.New("no gene models matched")

// GeneSpan carries the coordinates of a single transcript needed for
// window derivation. Strand is +1 or -1.
type GeneSpan struct {
	Chrom    string
	TxStart  int64
	TxEnd    int64
	CdsStart int64
	CdsEnd   int64
	Strand   int8
}

// WindowFromSpans derives the visualization window for a set of transcripts:
// [min(txStart) - pad, max(cdsEnd) + pad], clamped at position 1.
// All spans must share one chromosome; mixed chromosomes are an error.
func WindowFromSpans(spans []GeneSpan, pad int64) (Region, error) {
	if len(spans) == 0 {
		return Region{}, ErrNoGeneModels
	}

	chrom := spans[0].Chrom
	minTx := spans[0].TxStart
	maxCds := spans[0].CdsEnd
	for _, s := range spans[1:] {
		if s.Chrom != chrom {
			return Region{}, fmt.Errorf("gene models span multiple chromosomes: %s and %s", chrom, s.Chrom)
		}
		if s.TxStart < minTx {
			minTx = s.TxStart
		}
		if s.CdsEnd > maxCds {
			maxCds = s.CdsEnd
		}
	}

	start := minTx - pad
	if start < 1 {
		start = 1
	}

	return Region{Chrom: chrom, Start: start, End: maxCds + pad}, nil
}

// PromoterWindow derives the promoter-proximal close-up window: TSS +/- pad,
// where the TSS is strand-aware (min txStart on the plus strand, max txEnd
// on the minus strand). When strands are mixed the majority strand wins.
func PromoterWindow(spans []GeneSpan, pad int64) (Region, error) {
	if len(spans) == 0 {
		return Region{}, ErrNoGeneModels
	}

	var plus, minus int
	for _, s := range spans {
		if s.Strand < 0 {
			minus++
		} else {
			plus++
		}
	}

	chrom := spans[0].Chrom
	var tss int64
	if minus > plus {
		for _, s := range spans {
			if s.TxEnd > tss {
				tss = s.TxEnd
			}
		}
	} else {
		tss = spans[0].TxStart
		for _, s := range spans[1:] {
			if s.TxStart < tss {
				tss = s.TxStart
			}
		}
	}

	start := tss - pad
	if start < 1 {
		start = 1
	}

	return Region{Chrom: chrom, Start: start, End: tss + pad}, nil
}
