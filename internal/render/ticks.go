package render

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
)

// genomicTicks labels the coordinate axis with round genomic positions.
// Steps are chosen from the 1/2/5 ladder so windows of any width get
// readable labels.
type genomicTicks struct{}

func (genomicTicks) Ticks(min, max float64) []plot.Tick {
	if max <= min {
		return nil
	}

	const wantTicks = 5

	step := niceStep((max - min) / wantTicks)
	start := math.Ceil(min/step) * step

	var ticks []plot.Tick
	for v := start; v <= max; v += step {
		ticks = append(ticks, plot.Tick{
			Value: v,
			Label: formatPosition(int64(v)),
		})
		// Unlabeled minor tick between majors.
		if half := v + step/2; half <= max {
			ticks = append(ticks, plot.Tick{Value: half})
		}
	}
	return ticks
}

// niceStep rounds a raw step up to the nearest 1, 2, or 5 times a power of ten.
func niceStep(raw float64) float64 {
	if raw <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch {
	case raw/mag <= 1:
		return mag
	case raw/mag <= 2:
		return 2 * mag
	case raw/mag <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

// formatPosition renders a genomic position with thousands separators.
func formatPosition(pos int64) string {
	if pos < 0 {
		return fmt.Sprintf("%d", pos)
	}
	s := fmt.Sprintf("%d", pos)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
