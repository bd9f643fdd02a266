// Package pipeline runs the five plot stages in order: probe selection,
// gene location, remote track fetch, measurement join, and rendering.
// All state passes explicitly between stages; rendering is the only
// side-effecting stage.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/methview/methview/internal/beta"
	"github.com/methview/methview/internal/genome"
	"github.com/methview/methview/internal/manifest"
	"github.com/methview/methview/internal/qcplot"
	"github.com/methview/methview/internal/render"
	"github.com/methview/methview/internal/tracks"
	"github.com/methview/methview/internal/ucsc"
	"github.com/methview/methview/internal/workspace"
)

// Pipeline assembles a workspace for one gene from the probe annotation,
// the UCSC service, and a beta matrix.
type Pipeline struct {
	cfg     Config
	table   *manifest.Table
	session *ucsc.Session
	joiner  *beta.Joiner
	matrix  *beta.Matrix
	logger  *zap.Logger
}

// New creates a pipeline over a loaded probe table.
func New(cfg Config, table *manifest.Table) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		table:   table,
		session: ucsc.NewSession(cfg.Genome),
		joiner:  beta.NewJoiner(),
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger used across all stages.
func (p *Pipeline) SetLogger(logger *zap.Logger) {
	p.logger = logger
	p.joiner.SetLogger(logger)
}

// Session returns the UCSC session, e.g. to point it at a test server.
func (p *Pipeline) Session() *ucsc.Session {
	return p.session
}

// Matrix returns the beta matrix loaded by Run, or nil before Run.
func (p *Pipeline) Matrix() *beta.Matrix {
	return p.matrix
}

// Run executes the data stages and returns the assembled workspace.
// Identical inputs and identical remote payloads produce an identical
// workspace; no global state is touched.
func (p *Pipeline) Run() (*workspace.Workspace, error) {
	matrix, err := beta.LoadMatrix(p.cfg.BetasPath)
	if err != nil {
		return nil, fmt.Errorf("loading beta matrix: %w", err)
	}
	p.matrix = matrix
	p.logger.Info("loaded beta matrix",
		zap.Int("probes", matrix.ProbeCount()),
		zap.Int("samples", len(matrix.Samples)))

	probes, err := p.table.SelectGene(p.cfg.Gene)
	if err != nil {
		return nil, fmt.Errorf("selecting probes: %w", err)
	}
	chrom, err := manifest.ProbeChrom(probes)
	if err != nil {
		return nil, fmt.Errorf("resolving probe chromosome: %w", err)
	}
	p.logger.Info("selected probes",
		zap.String("gene", p.cfg.Gene),
		zap.Int("probes", len(probes)),
		zap.String("chrom", chrom))

	// Locate the gene on its chromosome before narrowing to a window.
	located, err := p.session.FetchGenes(genome.Region{Chrom: chrom}, p.cfg.Gene)
	if err != nil {
		return nil, fmt.Errorf("locating gene %s: %w", p.cfg.Gene, err)
	}
	if len(located) == 0 {
		return nil, fmt.Errorf("locating gene %s on chr%s: %w", p.cfg.Gene, chrom, genome.ErrNoGeneModels)
	}

	spans := make([]genome.GeneSpan, len(located))
	for i, g := range located {
		spans[i] = g.Span()
	}
	window, err := genome.WindowFromSpans(spans, p.cfg.Pad)
	if err != nil {
		return nil, fmt.Errorf("deriving window: %w", err)
	}
	promoter, err := genome.PromoterWindow(spans, p.cfg.Pad)
	if err != nil {
		return nil, fmt.Errorf("deriving promoter window: %w", err)
	}
	p.logger.Info("derived windows",
		zap.String("window", window.String()),
		zap.String("promoter", promoter.String()),
		zap.Int("transcripts", len(located)))

	set, err := p.session.FetchAll(window, p.cfg.Gene, p.cfg.SNPTrack, p.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("fetching tracks: %w", err)
	}
	genes := set.Genes
	if len(genes) == 0 {
		genes = located
	}
	p.logger.Info("fetched tracks",
		zap.Int("genes", len(genes)),
		zap.Int("islands", len(set.Islands)),
		zap.Int("snps", len(set.SNPs)),
		zap.Int("cytobands", len(set.CytoBands)))

	joined := p.joiner.Join(matrix, probes, chrom)

	return &workspace.Workspace{
		Gene:      p.cfg.Gene,
		Genome:    p.cfg.Genome,
		Array:     p.cfg.Array,
		SNPTrack:  p.cfg.SNPTrack,
		Window:    window,
		Promoter:  promoter,
		Probes:    probes,
		Genes:     genes,
		Islands:   set.Islands,
		SNPs:      set.SNPs,
		CytoBands: set.CytoBands,
		Set:       joined,
	}, nil
}

// RenderQC renders the beta density QC plot of the loaded matrix.
func (p *Pipeline) RenderQC(path string) error {
	if p.matrix == nil {
		return fmt.Errorf("no beta matrix loaded")
	}
	dp := qcplot.NewDensityPlot(fmt.Sprintf("beta distribution (%s)", p.cfg.Gene))
	return dp.RenderFile(p.matrix, path)
}

// Tracks builds the figure track stack of a workspace for one window.
func Tracks(ws *workspace.Workspace, win genome.Region) []tracks.Track {
	return []tracks.Track{
		tracks.NewIdeogram(ws.Chrom(), ws.CytoBands),
		tracks.NewAxis(win),
		tracks.NewGeneRegion(ws.Gene, ws.Genes, win),
		tracks.NewIslandTrack(ws.Islands, win),
		tracks.NewSNPTrack(ws.SNPs, win),
		tracks.NewProbeTrack(ws.Probes, win),
		tracks.NewDataTrack(ws.Set, win),
	}
}

// RenderFigures renders the wide region view and the promoter close-up,
// returning the two output paths.
func RenderFigures(ws *workspace.Workspace, prefix, format string, widthInches float64, logger *zap.Logger) (regionPath, promoterPath string, err error) {
	r := render.NewRenderer(vg.Length(widthInches) * vg.Inch)
	if logger != nil {
		r.SetLogger(logger)
	}

	regionPath = fmt.Sprintf("%s.region.%s", prefix, format)
	if err := r.Render(Tracks(ws, ws.Window), ws.Window, regionPath); err != nil {
		return "", "", fmt.Errorf("rendering region figure: %w", err)
	}

	promoterPath = fmt.Sprintf("%s.promoter.%s", prefix, format)
	if err := r.Render(Tracks(ws, ws.Promoter), ws.Promoter, promoterPath); err != nil {
		return "", "", fmt.Errorf("rendering promoter figure: %w", err)
	}
	return regionPath, promoterPath, nil
}
