// Package render turns track models into genome-browser style figures.
// Each track becomes its own sub-plot; the sub-plots share the window's
// coordinate range and are tiled vertically onto one canvas.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/methview/methview/internal/genome"
	"github.com/methview/methview/internal/tracks"
)

// Renderer draws a stack of tracks for one genomic window.
type Renderer struct {
	width  vg.Length
	logger *zap.Logger
}

// NewRenderer creates a renderer producing figures of the given width.
func NewRenderer(width vg.Length) *Renderer {
	if width <= 0 {
		width = 12 * vg.Inch
	}
	return &Renderer{
		width:  width,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger used for render diagnostics.
func (r *Renderer) SetLogger(logger *zap.Logger) {
	r.logger = logger
}

// trackHeight returns the canvas height of one track's sub-plot.
func trackHeight(t tracks.Track) vg.Length {
	switch tr := t.(type) {
	case *tracks.Ideogram:
		return 0.6 * vg.Inch
	case *tracks.Axis:
		return 0.5 * vg.Inch
	case *tracks.GeneRegion:
		h := vg.Length(len(tr.Genes)) * 0.3 * vg.Inch
		if h < 0.7*vg.Inch {
			h = 0.7 * vg.Inch
		}
		return h
	case *tracks.Data:
		return 2 * vg.Inch
	default:
		return 0.45 * vg.Inch
	}
}

// Render draws the tracks for the window and writes the figure to path.
// The output format follows the file extension: .png, .pdf, or .svg.
func (r *Renderer) Render(ts []tracks.Track, win genome.Region, path string) error {
	if len(ts) == 0 {
		return fmt.Errorf("no tracks to render")
	}

	height := vg.Length(0)
	for _, t := range ts {
		height += trackHeight(t)
	}

	plots := make([]*plot.Plot, len(ts))
	for i, t := range ts {
		p, err := buildPlot(t, win)
		if err != nil {
			return fmt.Errorf("building %s track: %w", t.Name(), err)
		}
		plots[i] = p
	}

	write, dc, err := newCanvas(path, r.width, height)
	if err != nil {
		return err
	}

	// Tile top to bottom.
	y := dc.Max.Y
	for i, t := range ts {
		h := trackHeight(t)
		sub := draw.Canvas{
			Canvas: dc.Canvas,
			Rectangle: vg.Rectangle{
				Min: vg.Point{X: dc.Min.X, Y: y - h},
				Max: vg.Point{X: dc.Max.X, Y: y},
			},
		}
		plots[i].Draw(sub)
		y -= h
	}

	if err := write(); err != nil {
		return fmt.Errorf("writing figure %s: %w", path, err)
	}
	r.logger.Debug("rendered figure",
		zap.String("path", path),
		zap.String("window", win.String()),
		zap.Int("tracks", len(ts)))
	return nil
}

// newCanvas creates a drawing canvas for the format implied by the path
// extension and returns a function that writes the finished canvas out.
func newCanvas(path string, w, h vg.Length) (func() error, draw.Canvas, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png", "":
		c := vgimg.NewWith(vgimg.UseWH(w, h))
		return writeOut(path, vgimg.PngCanvas{Canvas: c}), draw.New(c), nil
	case ".pdf":
		c := vgpdf.New(w, h)
		return writeOut(path, c), draw.New(c), nil
	case ".svg":
		c := vgsvg.New(w, h)
		return writeOut(path, c), draw.New(c), nil
	default:
		return nil, draw.Canvas{}, fmt.Errorf("unsupported figure format %q (want .png, .pdf, or .svg)", ext)
	}
}

type writerTo interface {
	WriteTo(w io.Writer) (int64, error)
}

func writeOut(path string, c writerTo) func() error {
	return func() error {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if _, err := c.WriteTo(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}
