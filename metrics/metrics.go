// Package metrics approximates the rendered size of a text string without
// access to a font-shaping engine.
//
// The estimate is documented as an approximation and is deliberately
// conservative: it over-estimates rather than under-estimates, because an
// undersized box silently drops text while an oversized one only wastes page
// space. The average glyph width is modeled as a font-size-proportional
// factor that rises slightly with the size, since large fonts render
// proportionally wider glyphs on average.
package metrics

import "unicode/utf8"

// Default estimation factors, empirical values carried over from field use.
const (
	DefaultBaseWidthFactor = 0.60  // average glyph width at small sizes, as a fraction of the font size
	DefaultMaxWidthFactor  = 0.75  // cap on the glyph width factor
	DefaultWidthFactorRise = 500.0 // divisor: factor grows by fontSize/rise
	DefaultLineHeight      = 1.5   // line height as a multiple of the font size, generous to absorb descenders
)

// Estimator approximates text dimensions for a given font size.
type Estimator struct {
	baseFactor float64
	maxFactor  float64
	factorRise float64
	lineHeight float64
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithWidthFactors sets the base and maximum average-glyph-width factors.
func WithWidthFactors(base, max float64) Option {
	return func(e *Estimator) {
		e.baseFactor = base
		e.maxFactor = max
	}
}

// WithLineHeight sets the line height multiplier.
func WithLineHeight(multiple float64) Option {
	return func(e *Estimator) {
		e.lineHeight = multiple
	}
}

// NewEstimator creates an Estimator with the default factors unless
// overridden by options.
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{
		baseFactor: DefaultBaseWidthFactor,
		maxFactor:  DefaultMaxWidthFactor,
		factorRise: DefaultWidthFactorRise,
		lineHeight: DefaultLineHeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate returns the approximate width and height, in points, of text
// rendered on a single line at the given font size in points.
func (e *Estimator) Estimate(text string, fontSize float64) (width, height float64) {
	factor := e.baseFactor + fontSize/e.factorRise
	if factor > e.maxFactor {
		factor = e.maxFactor
	}
	n := float64(utf8.RuneCountInString(text))
	return n * fontSize * factor, fontSize * e.lineHeight
}
