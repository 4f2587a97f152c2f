// Package geom defines the coordinate model shared by the template editor
// and the generation pipeline.
//
// All geometry is expressed in PDF points anchored at the top-left corner of
// the page, with Y increasing downward. This is the only unit system that is
// ever persisted; an editor working at some zoom level converts to and from
// its own pixel space with ToDisplay and ToActual and must never store the
// scaled values.
package geom

import "math"

// Point represents a 2D point in PDF points, top-left anchored.
type Point struct {
	X, Y float64
}

// Rect represents an axis-aligned rectangle in PDF points. X and Y locate
// the top-left corner.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// NewRect creates a rectangle from a top-left corner and a size.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Right returns the right edge X coordinate.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the bottom edge Y coordinate.
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// Center returns the center point.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains checks if a point is inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() &&
		p.Y >= r.Y && p.Y <= r.Bottom()
}

// Within reports whether r lies entirely inside page. It is used to flag
// fields that would render partly or fully outside the visible page.
func (r Rect) Within(page Rect) bool {
	return r.X >= page.X && r.Y >= page.Y &&
		r.Right() <= page.Right() && r.Bottom() <= page.Bottom()
}

// Round returns the rectangle with all components rounded to the nearest
// integer point.
func (r Rect) Round() Rect {
	return Rect{
		X:      math.Round(r.X),
		Y:      math.Round(r.Y),
		Width:  math.Round(r.Width),
		Height: math.Round(r.Height),
	}
}

// ToDisplay converts a point from PDF-point space to display space at the
// given zoom scale. The scale belongs to the view and is supplied per call;
// it is never stored alongside the geometry.
func ToDisplay(p Point, scale float64) Point {
	return Point{X: p.X * scale, Y: p.Y * scale}
}

// ToActual converts a point from display space back to PDF-point space.
// It is the exact inverse of ToDisplay: for any scale > 0,
// ToActual(ToDisplay(p, s), s) == p up to floating-point rounding, and
// within one point even when the display coordinates have been rounded to
// whole pixels at scale >= 1.
func ToActual(p Point, scale float64) Point {
	return Point{X: p.X / scale, Y: p.Y / scale}
}

// RectToDisplay converts a rectangle to display space at the given scale.
func RectToDisplay(r Rect, scale float64) Rect {
	return Rect{X: r.X * scale, Y: r.Y * scale, Width: r.Width * scale, Height: r.Height * scale}
}

// RectToActual converts a rectangle from display space back to PDF points.
func RectToActual(r Rect, scale float64) Rect {
	return Rect{X: r.X / scale, Y: r.Y / scale, Width: r.Width / scale, Height: r.Height / scale}
}
