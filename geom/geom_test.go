package geom

import (
	"math"
	"testing"
)

func TestToDisplayToActualRoundTrip(t *testing.T) {
	scales := []float64{0.25, 0.5, 1, 1.5, 2, 3, 4.75}
	points := []Point{
		{0, 0},
		{50, 50},
		{200, 200},
		{595, 842},
		{1, 1},
		{123, 456},
	}

	for _, s := range scales {
		for _, p := range points {
			got := ToActual(ToDisplay(p, s), s)
			if math.Abs(got.X-p.X) > 1 || math.Abs(got.Y-p.Y) > 1 {
				t.Errorf("round trip at scale %g: got %+v, want %+v", s, got, p)
			}
		}
	}
}

func TestRoundTripWithRoundedDisplayCoords(t *testing.T) {
	// An editor snaps display coordinates to whole pixels; the recovered
	// actual point must still be within one point at zoom >= 1.
	scales := []float64{1, 1.5, 2, 3}
	points := []Point{{50, 50}, {123, 456}, {595, 842}}

	for _, s := range scales {
		for _, p := range points {
			d := ToDisplay(p, s)
			snapped := Point{math.Round(d.X), math.Round(d.Y)}
			got := ToActual(snapped, s)
			if math.Abs(got.X-p.X) > 1 || math.Abs(got.Y-p.Y) > 1 {
				t.Errorf("snapped round trip at scale %g: got %+v, want %+v", s, got, p)
			}
		}
	}
}

func TestRectWithin(t *testing.T) {
	page := NewRect(0, 0, 600, 800)

	tests := []struct {
		name string
		rect Rect
		want bool
	}{
		{"fully inside", NewRect(50, 50, 150, 30), true},
		{"touching edges", NewRect(0, 0, 600, 800), true},
		{"past right edge", NewRect(500, 50, 150, 30), false},
		{"past bottom edge", NewRect(50, 790, 150, 30), false},
		{"negative origin", NewRect(-10, 50, 150, 30), false},
		{"fully outside", NewRect(700, 900, 50, 50), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.Within(page); got != tt.want {
				t.Errorf("Within() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectEdges(t *testing.T) {
	r := NewRect(10, 20, 100, 50)
	if r.Right() != 110 {
		t.Errorf("Right() = %v, want 110", r.Right())
	}
	if r.Bottom() != 70 {
		t.Errorf("Bottom() = %v, want 70", r.Bottom())
	}
	if c := r.Center(); c.X != 60 || c.Y != 45 {
		t.Errorf("Center() = %+v, want {60 45}", c)
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 100, 100)
	if !r.Contains(Point{50, 50}) {
		t.Error("expected center point to be contained")
	}
	if !r.Contains(Point{10, 10}) {
		t.Error("expected corner point to be contained")
	}
	if r.Contains(Point{5, 50}) {
		t.Error("did not expect outside point to be contained")
	}
}

func TestRectRound(t *testing.T) {
	r := Rect{X: 10.4, Y: 19.6, Width: 100.5, Height: 49.4}
	got := r.Round()
	want := Rect{X: 10, Y: 20, Width: 101, Height: 49}
	if got != want {
		t.Errorf("Round() = %+v, want %+v", got, want)
	}
}

func TestRectScaleRoundTrip(t *testing.T) {
	r := NewRect(50, 50, 150, 30)
	got := RectToActual(RectToDisplay(r, 2), 2)
	if got != r {
		t.Errorf("rect round trip = %+v, want %+v", got, r)
	}
}
