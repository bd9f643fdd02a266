package beta

import (
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/methview/methview/internal/genome"
	"github.com/methview/methview/internal/manifest"
)

// Measurement is one coordinate-tagged probe x sample beta value.
type Measurement struct {
	ProbeID string
	Chrom   string
	Pos     int64
	Sample  string
	Beta    float64
}

// ProbeSummary aggregates the per-sample values of one probe.
type ProbeSummary struct {
	ProbeID string
	Pos     int64
	Mean    float64
	StdDev  float64
	N       int
}

// JoinedSet is the coordinate-indexed measurement set produced by the
// inner join of a beta matrix against a probe annotation subset. Rows
// are position-sorted; every row has a coordinate by construction.
type JoinedSet struct {
	Chrom        string
	Samples      []string
	Measurements []Measurement
	Dropped      int // matrix rows without a matching annotated probe
}

// Joiner performs the matrix-to-coordinate join.
type Joiner struct {
	logger *zap.Logger
}

// NewJoiner creates a joiner. The logger defaults to a nop logger.
func NewJoiner() *Joiner {
	return &Joiner{logger: zap.NewNop()}
}

// SetLogger sets the logger for join diagnostics.
func (j *Joiner) SetLogger(l *zap.Logger) {
	j.logger = l
}

// Join inner-joins the matrix onto the probe subset, keeping only probes on
// chrom. Matrix rows without a matching probe record and NaN cells are
// dropped; the drop count is recorded and logged, not an error.
func (j *Joiner) Join(m *Matrix, probes []*manifest.Probe, chrom string) *JoinedSet {
	chrom = genome.NormalizeChrom(chrom)

	byID := make(map[string]*manifest.Probe, len(probes))
	for _, p := range probes {
		if p.Chrom == chrom {
			byID[p.ID] = p
		}
	}

	set := &JoinedSet{
		Chrom:   chrom,
		Samples: m.Samples,
	}

	matched := make(map[string]bool, len(byID))
	for id := range m.rows {
		p, ok := byID[id]
		if !ok {
			set.Dropped++
			continue
		}
		matched[id] = true
		for si, beta := range m.rows[id] {
			if math.IsNaN(beta) {
				continue
			}
			set.Measurements = append(set.Measurements, Measurement{
				ProbeID: id,
				Chrom:   p.Chrom,
				Pos:     p.Pos,
				Sample:  m.Samples[si],
				Beta:    beta,
			})
		}
	}

	sort.Slice(set.Measurements, func(a, b int) bool {
		ma, mb := set.Measurements[a], set.Measurements[b]
		if ma.Pos != mb.Pos {
			return ma.Pos < mb.Pos
		}
		return ma.Sample < mb.Sample
	})

	if set.Dropped > 0 {
		j.logger.Debug("dropped matrix rows without probe annotation",
			zap.Int("dropped", set.Dropped),
			zap.Int("matched", len(matched)),
			zap.String("chrom", chrom))
	}
	j.logger.Info("joined beta matrix",
		zap.Int("measurements", len(set.Measurements)),
		zap.Int("probes", len(matched)),
		zap.Int("samples", len(m.Samples)))

	return set
}

// InRegion returns the measurements falling inside the window. The set is
// position-sorted, so this is a binary-searched sub-slice.
func (s *JoinedSet) InRegion(r genome.Region) []Measurement {
	if genome.NormalizeChrom(r.Chrom) != s.Chrom {
		return nil
	}
	lo := sort.Search(len(s.Measurements), func(i int) bool { return s.Measurements[i].Pos >= r.Start })
	hi := sort.Search(len(s.Measurements), func(i int) bool { return s.Measurements[i].Pos > r.End })
	return s.Measurements[lo:hi]
}

// Summaries returns per-probe mean and standard deviation, position-sorted.
func (s *JoinedSet) Summaries() []ProbeSummary {
	byProbe := make(map[string][]float64)
	pos := make(map[string]int64)
	for _, m := range s.Measurements {
		byProbe[m.ProbeID] = append(byProbe[m.ProbeID], m.Beta)
		pos[m.ProbeID] = m.Pos
	}

	summaries := make([]ProbeSummary, 0, len(byProbe))
	for id, values := range byProbe {
		mean, sd := stat.MeanStdDev(values, nil)
		if len(values) < 2 {
			sd = 0
		}
		summaries = append(summaries, ProbeSummary{
			ProbeID: id,
			Pos:     pos[id],
			Mean:    mean,
			StdDev:  sd,
			N:       len(values),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Pos < summaries[j].Pos
	})
	return summaries
}

// SampleValues returns the position-value series of one sample, position-sorted.
func (s *JoinedSet) SampleValues(sample string) (positions []int64, betas []float64) {
	for _, m := range s.Measurements {
		if m.Sample == sample {
			positions = append(positions, m.Pos)
			betas = append(betas, m.Beta)
		}
	}
	return positions, betas
}
