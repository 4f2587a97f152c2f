// Package stampgen implements the template model for a PDF batch-generation
// engine: named data nodes, visual field placements bound to them, and the
// data rows that drive one output page per row.
//
// A Template owns the page geometry of the source PDF (first page, in PDF
// points), a set of uniquely named data nodes, and the fields placed on top
// of the page. Many fields may be bound to the same data node. All field
// geometry is stored in PDF points anchored at the page's top-left corner;
// editor zoom factors are converted with the geom package and are never
// persisted.
package stampgen

import (
	"fmt"
	"strings"

	"github.com/lmoreno/stampgen/geom"
)

// Minimum field box dimensions in points. Resize operations clamp to these
// and loaded configurations are normalized to them.
const (
	MinFieldWidth  = 50
	MinFieldHeight = 20
)

// Default properties for a newly placed field.
const (
	DefaultFieldX      = 200
	DefaultFieldY      = 200
	DefaultFieldWidth  = 180
	DefaultFieldHeight = 36
	DefaultFontFamily  = "Arial"
	DefaultFontSize    = 16
)

// Align specifies the horizontal alignment of text within a field box.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// normalizeAlign maps unknown or empty alignment values to AlignLeft.
func normalizeAlign(a Align) Align {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
		return a
	}
	return AlignLeft
}

// Color is an RGB color. It serializes as a "#rrggbb" hex string, which is
// the form stored in template configuration documents.
type Color struct {
	R, G, B int
}

// Black is the default field text color.
var Black = Color{0, 0, 0}

// Hex returns the color as a "#rrggbb" string.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor parses a "#rrggbb" or "rrggbb" hex string.
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("stampgen: invalid color %q", s)
	}
	var c Color
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return Color{}, fmt.Errorf("stampgen: invalid color %q", s)
	}
	return c, nil
}

// MarshalJSON implements json.Marshaler, emitting the hex form.
func (c Color) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.Hex() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler, accepting the hex form.
func (c *Color) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Field is one visual placement of a data node on the template page.
//
// Position and size are in PDF points, top-left anchored. The identifier is
// opaque, assigned at creation and stable across saves.
type Field struct {
	ID         string  `json:"id"`
	DataNode   string  `json:"data_node"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	FontFamily string  `json:"font_family"`
	FontSize   int     `json:"font_size"`
	Color      Color   `json:"color"`
	Bold       bool    `json:"bold"`
	Italic     bool    `json:"italic"`
	Underline  bool    `json:"underline"`
	Align      Align   `json:"align"`
}

// Box returns the field's declared box as a rectangle.
func (f *Field) Box() geom.Rect {
	return geom.Rect{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height}
}

// MoveTo sets the field's top-left position.
func (f *Field) MoveTo(x, y float64) {
	f.X = x
	f.Y = y
}

// Resize sets the field's box size, clamped to the minimum dimensions.
func (f *Field) Resize(width, height float64) {
	if width < MinFieldWidth {
		width = MinFieldWidth
	}
	if height < MinFieldHeight {
		height = MinFieldHeight
	}
	f.Width = width
	f.Height = height
}

// Style returns the gofpdf-style font style string for the field's flags:
// "" (regular), "B", "I", "U" and combinations.
func (f *Field) Style() string {
	var s string
	if f.Bold {
		s += "B"
	}
	if f.Italic {
		s += "I"
	}
	if f.Underline {
		s += "U"
	}
	return s
}

// normalize clamps a loaded field to the model invariants.
func (f *Field) normalize() {
	if f.Width < MinFieldWidth {
		f.Width = MinFieldWidth
	}
	if f.Height < MinFieldHeight {
		f.Height = MinFieldHeight
	}
	if f.FontFamily == "" {
		f.FontFamily = DefaultFontFamily
	}
	if f.FontSize <= 0 {
		f.FontSize = DefaultFontSize
	}
	f.Align = normalizeAlign(f.Align)
}

// DataRow maps data node names to the string values for one output page.
type DataRow map[string]string

// Placement joins a field with its resolved text for one row. HasValue is
// false when the row has no entry, or an empty one, for the field's data
// node; such placements are skipped during generation.
type Placement struct {
	Field    *Field
	Text     string
	HasValue bool
}

// BoundsWarning flags a field whose box extends outside the page. The field
// is still rendered; the warning lets callers tell the user that content may
// fall outside the visible page.
type BoundsWarning struct {
	FieldID  string
	DataNode string
	Box      geom.Rect
}

// Template aggregates the page geometry of the source PDF, the data nodes,
// and the placed fields for one project.
type Template struct {
	pageWidth  float64
	pageHeight float64
	nodes      []string
	fields     []*Field
}

// NewTemplate creates an empty template for a page of the given size in
// PDF points.
func NewTemplate(pageWidth, pageHeight float64) *Template {
	return &Template{pageWidth: pageWidth, pageHeight: pageHeight}
}

// PageWidth returns the template page width in points.
func (t *Template) PageWidth() float64 { return t.pageWidth }

// PageHeight returns the template page height in points.
func (t *Template) PageHeight() float64 { return t.pageHeight }

// PageRect returns the page bounds as a rectangle at the origin.
func (t *Template) PageRect() geom.Rect {
	return geom.Rect{Width: t.pageWidth, Height: t.pageHeight}
}

// DataNodes returns the data node names in creation order.
func (t *Template) DataNodes() []string {
	out := make([]string, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Fields returns the placed fields in creation order.
func (t *Template) Fields() []*Field {
	out := make([]*Field, len(t.fields))
	copy(out, t.fields)
	return out
}
