// Package boxfit grows a field's declared box until it is expected to
// contain its text at the user-specified font size.
//
// The font size is never reduced; only the box expands. Growth is anchored
// according to the field's horizontal alignment so that, for example, a
// right-aligned field keeps its right edge fixed while the box grows
// leftward. Vertical growth is always centered.
package boxfit

import (
	"math"

	"github.com/lmoreno/stampgen"
	"github.com/lmoreno/stampgen/geom"
	"github.com/lmoreno/stampgen/metrics"
)

// Default tuning constants. These are empirical values, exposed as options
// rather than hard-coded, and the defaults are deliberately generous:
// glyph-width variance is higher at large sizes and the consequence of an
// undersized box (text silently dropped) is worse than a visually larger
// one.
const (
	DefaultPadXFloor      = 20.0 // minimum horizontal padding in points
	DefaultPadYFloor      = 15.0 // minimum vertical padding in points
	DefaultPadXFraction   = 0.5  // horizontal padding as a fraction of the font size
	DefaultPadYFraction   = 0.4  // vertical padding as a fraction of the font size
	DefaultLargeFontMin   = 50.0 // font sizes above this get the safety multiplier
	DefaultLargeFontScale = 1.3  // safety multiplier applied to both dimensions

	// Floor dimensions for the last-resort retry box.
	MassiveMinWidth  = 600.0
	MassiveMinHeight = 200.0
)

// Resolver computes expanded field boxes from text metric estimates.
type Resolver struct {
	est            *metrics.Estimator
	padXFloor      float64
	padYFloor      float64
	padXFraction   float64
	padYFraction   float64
	largeFontMin   float64
	largeFontScale float64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPadding sets the padding floors and font-size fractions. The padding
// applied is max(floor, fraction*fontSize) per axis.
func WithPadding(xFloor, yFloor, xFraction, yFraction float64) Option {
	return func(r *Resolver) {
		r.padXFloor = xFloor
		r.padYFloor = yFloor
		r.padXFraction = xFraction
		r.padYFraction = yFraction
	}
}

// WithLargeFontSafety sets the font size above which the safety multiplier
// applies, and the multiplier itself. A scale of 1 disables the margin.
func WithLargeFontSafety(minSize, scale float64) Option {
	return func(r *Resolver) {
		r.largeFontMin = minSize
		r.largeFontScale = scale
	}
}

// New creates a Resolver backed by the given estimator. A nil estimator
// uses the default one.
func New(est *metrics.Estimator, opts ...Option) *Resolver {
	if est == nil {
		est = metrics.NewEstimator()
	}
	r := &Resolver{
		est:            est,
		padXFloor:      DefaultPadXFloor,
		padYFloor:      DefaultPadYFloor,
		padXFraction:   DefaultPadXFraction,
		padYFraction:   DefaultPadYFraction,
		largeFontMin:   DefaultLargeFontMin,
		largeFontScale: DefaultLargeFontScale,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a box at least as large as the field's declared box and,
// per the estimator, large enough to contain text at the field's font size.
// The result is integer-rounded, with the position shifted so that growth
// respects the field's alignment: right-aligned boxes keep their right edge,
// centered boxes grow symmetrically, left-aligned boxes grow rightward.
// Vertical growth is always centered.
func (r *Resolver) Resolve(f *stampgen.Field, text string) geom.Rect {
	size := float64(f.FontSize)
	estW, estH := r.est.Estimate(text, size)

	padX := math.Max(r.padXFloor, size*r.padXFraction)
	padY := math.Max(r.padYFloor, size*r.padYFraction)

	newW := math.Max(f.Width, estW+padX)
	newH := math.Max(f.Height, estH+padY)

	if size > r.largeFontMin {
		newW *= r.largeFontScale
		newH *= r.largeFontScale
	}

	// Round dimensions up before computing the shifts so alignment anchors
	// hold exactly for integer-valued declared boxes.
	newW = math.Ceil(newW)
	newH = math.Ceil(newH)

	x := f.X
	if dw := newW - f.Width; dw > 0 {
		switch f.Align {
		case stampgen.AlignRight:
			x -= dw
		case stampgen.AlignCenter:
			x -= dw / 2
		}
	}
	y := f.Y
	if dh := newH - f.Height; dh > 0 {
		y -= dh / 2
	}

	return geom.Rect{X: math.Round(x), Y: math.Round(y), Width: newW, Height: newH}
}

// Massive returns the last-resort retry box for a resolved box the engine
// still reports as too small: three times the current size with generous
// floors, anchored at the same top-left corner.
func Massive(box geom.Rect) geom.Rect {
	return geom.Rect{
		X:      box.X,
		Y:      box.Y,
		Width:  math.Max(box.Width*3, MassiveMinWidth),
		Height: math.Max(box.Height*3, MassiveMinHeight),
	}
}
