// Package layout implements the composition engine: pure geometric and
// compositing logic that turns one decoded photo into one canvas-sized
// composite. It never touches the filesystem.
//
// Two strategies exist, chosen by orientation:
//
//   - landscape (width >= height, squares included): fill-crop — uniform
//     scale to cover the canvas, then a centered crop to the exact size.
//     Edge content loss is accepted; there is never a letterbox.
//   - portrait: blurred-backdrop composite — a blurred fill-crop of the
//     source covers the canvas, and the unblurred source is scaled to fit
//     entirely within the canvas and pasted centered on top.
package layout

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/backmassage/frameprep/internal/config"
)

// Engine produces canvas-sized composites. Canvas size and processing knobs
// are fixed for the lifetime of a pipeline run.
type Engine struct {
	Width      int
	Height     int
	BlurRadius float64
	Filter     imaging.ResampleFilter
}

// NewEngine builds an Engine from the runtime configuration.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		Width:      cfg.ScreenWidth,
		Height:     cfg.ScreenHeight,
		BlurRadius: float64(cfg.BlurRadius),
		Filter:     filterFor(cfg.Resampling),
	}
}

// filterFor maps the config enum to an imaging resample filter.
func filterFor(r config.Resampling) imaging.ResampleFilter {
	switch r {
	case config.ResampleBilinear:
		return imaging.Linear
	case config.ResampleBicubic:
		return imaging.CatmullRom
	default:
		return imaging.Lanczos
	}
}

// IsLandscape reports whether img is landscape-oriented. Squares count as
// landscape; this is the sole branch point between the two strategies.
func IsLandscape(img image.Image) bool {
	b := img.Bounds()
	return b.Dx() >= b.Dy()
}

// IsLandscapeSize is the dimension-only form of [IsLandscape], for callers
// that have a header probe but no decoded image.
func IsLandscapeSize(width, height int) bool {
	return width >= height
}

// Compose classifies img and applies the matching strategy. The result is
// always exactly Width x Height.
func (e *Engine) Compose(img image.Image) *image.NRGBA {
	if IsLandscape(img) {
		return e.FillCrop(img)
	}
	return e.BlurredBackdrop(img)
}

// FillCrop scales img uniformly so the canvas is fully covered, then crops
// symmetrically (centered) to the exact canvas size.
func (e *Engine) FillCrop(img image.Image) *image.NRGBA {
	return imaging.Fill(img, e.Width, e.Height, imaging.Center, e.Filter)
}

// BlurredBackdrop builds the portrait composite: a blurred fill-crop of the
// source as full-bleed background, with the unblurred source scaled to fit
// within the canvas and pasted centered on top. The foreground keeps its
// full content; the backdrop guarantees zero uncovered canvas area.
func (e *Engine) BlurredBackdrop(img image.Image) *image.NRGBA {
	backdrop := imaging.Fill(imaging.Blur(img, e.BlurRadius), e.Width, e.Height, imaging.Center, e.Filter)

	b := img.Bounds()
	fgW, fgH := FitWithin(b.Dx(), b.Dy(), e.Width, e.Height)
	fg := imaging.Resize(img, fgW, fgH, e.Filter)

	// Integer division floors for nonnegative margins.
	x := (e.Width - fgW) / 2
	y := (e.Height - fgH) / 2
	return imaging.Paste(backdrop, fg, image.Pt(x, y))
}

// FitWithin scales (srcW, srcH) to fit inside (boundW, boundH) preserving
// aspect ratio: first scale to match the bound height; if that width would
// overflow, scale to match the bound width instead. One axis always matches
// the bound exactly and neither ever exceeds it.
func FitWithin(srcW, srcH, boundW, boundH int) (int, int) {
	scale := float64(boundH) / float64(srcH)
	w := int(float64(srcW) * scale)
	h := boundH
	if w > boundW {
		scale = float64(boundW) / float64(srcW)
		w = boundW
		h = int(float64(srcH) * scale)
	}
	return w, h
}
