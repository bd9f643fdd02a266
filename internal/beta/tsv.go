package beta

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TSVWriter writes a joined measurement set in tab-delimited format.
type TSVWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTSVWriter creates a tab-delimited writer for joined measurements.
func NewTSVWriter(w io.Writer) *TSVWriter {
	return &TSVWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Probe_ID",
			"Chromosome",
			"Position",
			"Sample",
			"Beta",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TSVWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single measurement row.
func (tw *TSVWriter) Write(m Measurement) error {
	values := []string{
		m.ProbeID,
		m.Chrom,
		fmt.Sprintf("%d", m.Pos),
		m.Sample,
		fmt.Sprintf("%.4f", m.Beta),
	}
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes the header and every measurement in the set, then flushes.
func (tw *TSVWriter) WriteAll(s *JoinedSet) error {
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, m := range s.Measurements {
		if err := tw.Write(m); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TSVWriter) Flush() error {
	return tw.w.Flush()
}
