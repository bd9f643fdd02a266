// Package qcplot renders quality-control plots for beta-value matrices.
// The density plot shows one smoothed beta distribution per sample,
// which makes failed arrays and unnormalized batches easy to spot.
package qcplot

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/stat"

	"github.com/methview/methview/internal/beta"
)

// gridPoints is the number of evaluation points per density curve.
const gridPoints = 200

// DensityPlot draws one kernel density curve of beta values per sample.
type DensityPlot struct {
	Title  string
	Width  int
	Height int
}

// NewDensityPlot creates a density plot with the default figure size.
func NewDensityPlot(title string) *DensityPlot {
	return &DensityPlot{Title: title, Width: 900, Height: 500}
}

// Render draws the per-sample density curves as a PNG.
func (dp *DensityPlot) Render(m *beta.Matrix, w io.Writer) error {
	if len(m.Samples) == 0 {
		return fmt.Errorf("no samples in matrix")
	}

	var series []chart.Series
	for _, sample := range m.Samples {
		values := sampleColumn(m, sample)
		if len(values) < 2 {
			continue
		}
		xs, ys := densityCurve(values)
		series = append(series, chart.ContinuousSeries{
			Name:    sample,
			XValues: xs,
			YValues: ys,
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("no sample has enough beta values for a density curve")
	}

	ch := chart.Chart{
		Title:      dp.Title,
		Width:      dp.Width,
		Height:     dp.Height,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "beta",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		YAxis:  chart.YAxis{Name: "density"},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

// RenderFile draws the density plot into a PNG file.
func (dp *DensityPlot) RenderFile(m *beta.Matrix, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating QC plot %s: %w", path, err)
	}
	if err := dp.Render(m, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// sampleColumn collects the finite beta values of one sample.
func sampleColumn(m *beta.Matrix, sample string) []float64 {
	var values []float64
	for _, v := range m.SampleColumn(sample) {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	return values
}

// densityCurve evaluates a gaussian kernel density estimate of the
// values on a fixed grid over [0, 1].
func densityCurve(values []float64) (xs, ys []float64) {
	h := silvermanBandwidth(values)

	xs = make([]float64, gridPoints)
	ys = make([]float64, gridPoints)
	norm := 1 / (float64(len(values)) * h * math.Sqrt(2*math.Pi))
	for i := range xs {
		x := float64(i) / (gridPoints - 1)
		xs[i] = x
		var sum float64
		for _, v := range values {
			z := (x - v) / h
			sum += math.Exp(-0.5 * z * z)
		}
		ys[i] = sum * norm
	}
	return xs, ys
}

// silvermanBandwidth is Silverman's rule-of-thumb kernel bandwidth,
// floored so degenerate inputs still produce a drawable curve.
func silvermanBandwidth(values []float64) float64 {
	_, sd := stat.MeanStdDev(values, nil)

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	iqr := stat.Quantile(0.75, stat.Empirical, sorted, nil) - stat.Quantile(0.25, stat.Empirical, sorted, nil)

	spread := sd
	if alt := iqr / 1.34; alt > 0 && alt < spread {
		spread = alt
	}
	h := 0.9 * spread * math.Pow(float64(len(values)), -0.2)
	if h <= 0 || math.IsNaN(h) {
		h = 0.05
	}
	return h
}
