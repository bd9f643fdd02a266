// Package beta loads sample-by-probe methylation beta-value matrices and
// joins them onto genomic coordinates via the probe annotation table.
package beta

import (
	"fmt"
	"math"
	"os"

	"github.com/go-gota/gota/dataframe"
)

// Matrix is a probe-ID-keyed beta-value matrix. Rows are probes, columns
// are samples. Values are fractions in [0, 1]; NaN marks a missing call.
type Matrix struct {
	Samples []string
	rows    map[string][]float64
}

// LoadMatrix reads a beta matrix from a TSV file. The first column holds
// probe IDs; every remaining column is one sample. Values outside [0, 1]
// are a load-time error; non-numeric cells become NaN and are dropped at
// join time.
func LoadMatrix(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open beta matrix: %w", err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.WithDelimiter('\t'),
		dataframe.HasHeader(true),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read beta matrix: %w", df.Err)
	}

	return FromDataFrame(df)
}

// FromDataFrame builds a Matrix from a parsed dataframe whose first column
// is the probe ID.
func FromDataFrame(df dataframe.DataFrame) (*Matrix, error) {
	names := df.Names()
	if len(names) < 2 {
		return nil, fmt.Errorf("beta matrix needs a probe ID column and at least one sample column")
	}

	m := &Matrix{
		Samples: names[1:],
		rows:    make(map[string][]float64, df.Nrow()),
	}

	idCol := df.Col(names[0])
	for i := 0; i < df.Nrow(); i++ {
		id := idCol.Elem(i).String()
		if id == "" {
			continue
		}

		values := make([]float64, len(m.Samples))
		for j := range m.Samples {
			v := df.Elem(i, j+1).Float()
			if !math.IsNaN(v) && (v < 0 || v > 1) {
				return nil, fmt.Errorf("beta value out of range for probe %s sample %s: %g", id, m.Samples[j], v)
			}
			values[j] = v
		}
		m.rows[id] = values
	}

	return m, nil
}

// ProbeCount returns the number of probe rows in the matrix.
func (m *Matrix) ProbeCount() int {
	return len(m.rows)
}

// Values returns the per-sample beta values for a probe, or nil if the
// probe is not in the matrix.
func (m *Matrix) Values(probeID string) []float64 {
	return m.rows[probeID]
}

// SampleColumn returns every beta value of one sample across all probes.
// NaN entries are kept; callers decide how to treat missing calls.
func (m *Matrix) SampleColumn(sample string) []float64 {
	col := -1
	for i, s := range m.Samples {
		if s == sample {
			col = i
			break
		}
	}
	if col < 0 {
		return nil
	}

	values := make([]float64, 0, len(m.rows))
	for _, row := range m.rows {
		values = append(values, row[col])
	}
	return values
}
