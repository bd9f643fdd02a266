package tracks

import (
	"bufio"
	"fmt"
	"io"

	"github.com/methview/methview/internal/genome"
)

// BEDWriter writes feature tracks in BED format for use in external
// genome browsers. Output coordinates follow BED's 0-based half-open
// convention.
type BEDWriter struct {
	w     *bufio.Writer
	chrom string
}

// NewBEDWriter creates a BED writer for features on one chromosome.
func NewBEDWriter(w io.Writer, chrom string) *BEDWriter {
	return &BEDWriter{
		w:     bufio.NewWriter(w),
		chrom: genome.UCSCChrom(chrom),
	}
}

// WriteTrack writes a track header line followed by every feature.
func (bw *BEDWriter) WriteTrack(t *Features) error {
	if _, err := fmt.Fprintf(bw.w, "track name=%q\n", t.Name()); err != nil {
		return err
	}
	for _, f := range t.Items {
		// 1-based inclusive back to 0-based half-open.
		if _, err := fmt.Fprintf(bw.w, "%s\t%d\t%d\t%s\n", bw.chrom, f.Start-1, f.End, f.Label); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (bw *BEDWriter) Flush() error {
	return bw.w.Flush()
}
