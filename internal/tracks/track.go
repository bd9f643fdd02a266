// Package tracks models the horizontal layers of a genome-browser style
// figure: ideogram, axis, gene model, feature rows, and data rows. Tracks
// carry data plus a visual style; rendering lives in internal/render.
package tracks

import "image/color"

// Stacking controls how features within one track are laid out vertically.
type Stacking string

const (
	// StackDense draws all features on a single row.
	StackDense Stacking = "dense"
	// StackSquish packs overlapping features onto minimal extra rows.
	StackSquish Stacking = "squish"
	// StackFull gives every feature its own row.
	StackFull Stacking = "full"
)

// Style holds the visual parameters of one track.
type Style struct {
	Fill     color.RGBA
	Line     color.RGBA
	Stacking Stacking
}

// Track is one renderable layer. Concrete types expose their data; the
// renderer switches on them.
type Track interface {
	// Name is the row label drawn in the title column.
	Name() string
	// Style returns the track's visual parameters.
	Style() Style
}

// Default track colors, chosen to match the usual genome-browser palette.
var (
	ColorGene    = color.RGBA{R: 255, G: 190, B: 78, A: 255}
	ColorIntron  = color.RGBA{R: 166, G: 166, B: 166, A: 255}
	ColorIsland  = color.RGBA{R: 64, G: 160, B: 64, A: 255}
	ColorSNP     = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	ColorProbe   = color.RGBA{R: 178, G: 34, B: 34, A: 255}
	ColorBeta    = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	ColorPointer = color.RGBA{R: 200, G: 0, B: 0, A: 255}
)
