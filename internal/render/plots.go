package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/methview/methview/internal/genome"
	"github.com/methview/methview/internal/tracks"
)

// buildPlot constructs the sub-plot for one track.
func buildPlot(t tracks.Track, win genome.Region) (*plot.Plot, error) {
	switch tr := t.(type) {
	case *tracks.Ideogram:
		return ideogramPlot(tr, win)
	case *tracks.Axis:
		return axisPlot(tr, win)
	case *tracks.GeneRegion:
		return genePlot(tr, win)
	case *tracks.Features:
		return featuresPlot(tr, win)
	case *tracks.Data:
		return dataPlot(tr, win)
	default:
		return nil, fmt.Errorf("unknown track type %T", t)
	}
}

// newTrackPlot creates a plot spanning the window with a small title.
func newTrackPlot(name string, win genome.Region) *plot.Plot {
	p := plot.New()
	p.Title.Text = name
	p.Title.TextStyle.Font.Size = vg.Points(9)
	p.Title.Padding = vg.Points(1)
	p.X.Min = float64(win.Start)
	p.X.Max = float64(win.End)
	p.HideAxes()
	return p
}

// hline adds one horizontal segment at height y.
func hline(p *plot.Plot, x0, x1 int64, y float64, c color.Color, width vg.Length) error {
	l, err := plotter.NewLine(plotter.XYs{
		{X: float64(x0), Y: y},
		{X: float64(x1), Y: y},
	})
	if err != nil {
		return err
	}
	l.Color = c
	l.Width = width
	p.Add(l)
	return nil
}

// segment adds one free line segment.
func segment(p *plot.Plot, x0, y0, x1, y1 float64, c color.Color, width vg.Length) error {
	l, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y0}, {X: x1, Y: y1}})
	if err != nil {
		return err
	}
	l.Color = c
	l.Width = width
	p.Add(l)
	return nil
}

// ideogramPlot draws the whole-chromosome band pattern with the viewed
// window outlined on top.
func ideogramPlot(t *tracks.Ideogram, win genome.Region) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = t.Name()
	p.Title.TextStyle.Font.Size = vg.Points(9)
	p.Title.Padding = vg.Points(1)
	p.HideAxes()
	p.Y.Min = 0
	p.Y.Max = 1

	var chromEnd int64 = 1
	for _, b := range t.Bands {
		if b.End > chromEnd {
			chromEnd = b.End
		}
	}
	p.X.Min = 1
	p.X.Max = float64(chromEnd)

	for _, b := range t.Bands {
		if err := hline(p, b.Start, b.End, 0.5, stainColor(b.Stain), vg.Points(14)); err != nil {
			return nil, err
		}
	}

	// Window marker: a tall outline so narrow windows stay visible.
	box, err := plotter.NewLine(plotter.XYs{
		{X: float64(win.Start), Y: 0.05},
		{X: float64(win.End), Y: 0.05},
		{X: float64(win.End), Y: 0.95},
		{X: float64(win.Start), Y: 0.95},
		{X: float64(win.Start), Y: 0.05},
	})
	if err != nil {
		return nil, err
	}
	box.Color = tracks.ColorPointer
	box.Width = vg.Points(1.5)
	p.Add(box)
	return p, nil
}

// stainColor maps a Giemsa stain class to its conventional gray level.
func stainColor(stain string) color.Color {
	switch stain {
	case "gneg":
		return color.RGBA{R: 245, G: 245, B: 245, A: 255}
	case "gpos25":
		return color.RGBA{R: 190, G: 190, B: 190, A: 255}
	case "gpos50":
		return color.RGBA{R: 130, G: 130, B: 130, A: 255}
	case "gpos75":
		return color.RGBA{R: 80, G: 80, B: 80, A: 255}
	case "gpos100":
		return color.RGBA{A: 255}
	case "acen":
		return color.RGBA{R: 160, G: 30, B: 30, A: 255}
	case "gvar":
		return color.RGBA{R: 210, G: 210, B: 230, A: 255}
	case "stalk":
		return color.RGBA{R: 100, G: 100, B: 140, A: 255}
	default:
		return color.RGBA{R: 225, G: 225, B: 225, A: 255}
	}
}

// axisPlot draws the genomic coordinate scale for the window.
func axisPlot(t *tracks.Axis, win genome.Region) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = t.Name()
	p.Title.TextStyle.Font.Size = vg.Points(9)
	p.Title.Padding = vg.Points(1)
	p.X.Min = float64(win.Start)
	p.X.Max = float64(win.End)
	p.X.Tick.Marker = genomicTicks{}
	p.X.Tick.Label.Font.Size = vg.Points(8)
	p.HideY()
	p.Y.Min = 0
	p.Y.Max = 1
	return p, nil
}

// genePlot draws one transcript per row: intron backbone, exon boxes,
// thicker coding segments, and strand chevrons along the backbone.
func genePlot(t *tracks.GeneRegion, win genome.Region) (*plot.Plot, error) {
	p := newTrackPlot(t.Name(), win)
	p.Y.Min = -0.5
	p.Y.Max = float64(len(t.Genes)) - 0.5
	if len(t.Genes) == 0 {
		p.Y.Max = 0.5
		return p, nil
	}

	style := t.Style()
	labels := plotter.XYLabels{}
	for row, g := range t.Genes {
		y := float64(row)

		if err := hline(p, g.TxStart, g.TxEnd, y, style.Line, vg.Points(1)); err != nil {
			return nil, err
		}
		if err := strandChevrons(p, g.TxStart, g.TxEnd, y, g.Strand, win, style.Line); err != nil {
			return nil, err
		}

		for i := range g.ExonStarts {
			exStart, exEnd := g.ExonStarts[i], g.ExonEnds[i]
			if err := hline(p, exStart, exEnd, y, style.Fill, vg.Points(7)); err != nil {
				return nil, err
			}
			// Coding portion of the exon drawn thicker.
			cdsStart, cdsEnd := maxInt64(exStart, g.CdsStart), minInt64(exEnd, g.CdsEnd)
			if cdsStart <= cdsEnd {
				if err := hline(p, cdsStart, cdsEnd, y, style.Fill, vg.Points(12)); err != nil {
					return nil, err
				}
			}
		}

		labels.XYs = append(labels.XYs, plotter.XY{X: float64(g.TxStart), Y: y + 0.25})
		labels.Labels = append(labels.Labels, g.Name)
	}

	lab, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, err
	}
	for i := range lab.TextStyle {
		lab.TextStyle[i].Font.Size = vg.Points(8)
	}
	p.Add(lab)
	return p, nil
}

// strandChevrons draws direction arrows spaced across the transcript.
func strandChevrons(p *plot.Plot, txStart, txEnd int64, y float64, strand int8, win genome.Region, c color.Color) error {
	step := float64(win.Width()) / 30
	if step <= 0 {
		return nil
	}
	half := step / 5
	const dy = 0.12

	for x := float64(txStart) + step; x < float64(txEnd)-step/2; x += step {
		x0, x1 := x-half, x
		if strand < 0 {
			x0, x1 = x, x-half
		}
		if err := segment(p, x0, y+dy, x1, y, c, vg.Points(1)); err != nil {
			return err
		}
		if err := segment(p, x0, y-dy, x1, y, c, vg.Points(1)); err != nil {
			return err
		}
	}
	return nil
}

// featuresPlot draws an interval track on a single row. Point features
// become box glyphs; interval features become thick segments.
func featuresPlot(t *tracks.Features, win genome.Region) (*plot.Plot, error) {
	p := newTrackPlot(t.Name(), win)
	p.Y.Min = 0
	p.Y.Max = 1

	style := t.Style()
	points := plotter.XYs{}
	for _, f := range t.Items {
		if f.Start == f.End {
			points = append(points, plotter.XY{X: float64(f.Start), Y: 0.5})
			continue
		}
		if err := hline(p, f.Start, f.End, 0.5, style.Fill, vg.Points(9)); err != nil {
			return nil, err
		}
	}

	if len(points) > 0 {
		sc, err := plotter.NewScatter(points)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Shape = draw.BoxGlyph{}
		sc.GlyphStyle.Color = style.Fill
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
	}
	return p, nil
}

// dataPlot draws per-sample beta values as scatters plus the per-probe
// mean profile, on a fixed [0, 1] value axis.
func dataPlot(t *tracks.Data, win genome.Region) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = t.Name()
	p.Title.TextStyle.Font.Size = vg.Points(9)
	p.Title.Padding = vg.Points(1)
	p.X.Min = float64(win.Start)
	p.X.Max = float64(win.End)
	p.HideX()
	p.Y.Min = 0
	p.Y.Max = 1
	p.Y.Label.Text = "beta"
	p.Y.Label.TextStyle.Font.Size = vg.Points(8)
	p.Y.Tick.Label.Font.Size = vg.Points(8)

	bySample := map[string]plotter.XYs{}
	var order []string
	for _, pt := range t.Points {
		if _, ok := bySample[pt.Sample]; !ok {
			order = append(order, pt.Sample)
		}
		bySample[pt.Sample] = append(bySample[pt.Sample], plotter.XY{X: float64(pt.Pos), Y: pt.Value})
	}

	for i, sample := range order {
		sc, err := plotter.NewScatter(bySample[sample])
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Radius = vg.Points(2)
		p.Add(sc)
		p.Legend.Add(sample, sc)
	}

	if len(t.Means) > 1 {
		means := make(plotter.XYs, len(t.Means))
		for i, s := range t.Means {
			means[i] = plotter.XY{X: float64(s.Pos), Y: s.Mean}
		}
		line, err := plotter.NewLine(means)
		if err != nil {
			return nil, err
		}
		line.Color = t.Style().Fill
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add("mean", line)
	}

	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.TextStyle.Font.Size = vg.Points(8)
	return p, nil
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
