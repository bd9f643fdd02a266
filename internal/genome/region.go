// Package genome provides genomic coordinate types shared across the pipeline.
// All coordinates are 1-based inclusive; conversion from UCSC's 0-based
// half-open convention happens at the service decode boundary, not here.
package genome

import (
	"fmt"
	"strings"
)

// Region is a genomic coordinate window: chromosome plus a 1-based
// inclusive [Start, End] range. Regions are derived once and never
// mutated after computation.
type Region struct {
	Chrom string
	Start int64
	End   int64
}

// Width returns the number of bases covered by the region.
func (r Region) Width() int64 {
	return r.End - r.Start + 1
}

// Mid returns the midpoint position of the region.
func (r Region) Mid() int64 {
	return r.Start + (r.End-r.Start)/2
}

// Contains reports whether pos falls within the region.
func (r Region) Contains(pos int64) bool {
	return pos >= r.Start && pos <= r.End
}

// Overlaps reports whether the [start, end] range intersects the region.
func (r Region) Overlaps(start, end int64) bool {
	return start <= r.End && end >= r.Start
}

// String formats the region in genome-browser notation, e.g. "chr2:100-200".
func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", UCSCChrom(r.Chrom), r.Start, r.End)
}

// UCSCChrom returns the chromosome name with the "chr" prefix the UCSC
// browser service expects.
func UCSCChrom(chrom string) string {
	if strings.HasPrefix(chrom, "chr") {
		return chrom
	}
	return "chr" + chrom
}

// NormalizeChrom removes the "chr" prefix so chromosome names compare
// consistently between the Illumina manifest ("2") and UCSC tracks ("chr2").
func NormalizeChrom(chrom string) string {
	if strings.HasPrefix(chrom, "chr") {
		return chrom[3:]
	}
	return chrom
}
