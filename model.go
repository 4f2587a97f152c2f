package stampgen

import (
	"fmt"
	"time"
)

// AddDataNode registers a new named data node. Names are case-sensitive and
// must be unique within the template.
func (t *Template) AddDataNode(name string) error {
	if name == "" {
		return newOpError("AddDataNode", ErrEmptyName)
	}
	if t.hasNode(name) {
		return newOpError("AddDataNode", fmt.Errorf("%q: %w", name, ErrDuplicateName))
	}
	t.nodes = append(t.nodes, name)
	return nil
}

// AddFieldInstance places a new field bound to the named data node, with
// default geometry and style, and returns it.
func (t *Template) AddFieldInstance(dataNode string) (*Field, error) {
	if !t.hasNode(dataNode) {
		return nil, newOpError("AddFieldInstance", fmt.Errorf("%q: %w", dataNode, ErrUnknownNode))
	}
	f := &Field{
		ID:         t.newFieldID(),
		DataNode:   dataNode,
		X:          DefaultFieldX,
		Y:          DefaultFieldY,
		Width:      DefaultFieldWidth,
		Height:     DefaultFieldHeight,
		FontFamily: DefaultFontFamily,
		FontSize:   DefaultFontSize,
		Color:      Black,
		Align:      AlignLeft,
	}
	t.fields = append(t.fields, f)
	return f, nil
}

// DeleteDataNode removes the data node and cascades deletion to every field
// bound to it. It returns the number of fields removed.
func (t *Template) DeleteDataNode(name string) (int, error) {
	if !t.hasNode(name) {
		return 0, newOpError("DeleteDataNode", fmt.Errorf("%q: %w", name, ErrUnknownNode))
	}
	for i, n := range t.nodes {
		if n == name {
			t.nodes = append(t.nodes[:i], t.nodes[i+1:]...)
			break
		}
	}
	kept := t.fields[:0]
	removed := 0
	for _, f := range t.fields {
		if f.DataNode == name {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	t.fields = kept
	return removed, nil
}

// DeleteField removes exactly one field by its identifier.
func (t *Template) DeleteField(id string) error {
	for i, f := range t.fields {
		if f.ID == id {
			t.fields = append(t.fields[:i], t.fields[i+1:]...)
			return nil
		}
	}
	return newOpError("DeleteField", fmt.Errorf("%q: %w", id, ErrUnknownField))
}

// FieldByID returns the field with the given identifier.
func (t *Template) FieldByID(id string) (*Field, bool) {
	for _, f := range t.fields {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

// FieldsForRow joins each field to its value in the row, in field creation
// order. A placement whose row value is absent or empty has HasValue false
// and is skipped by the generation pipeline; this is deliberate, since many
// templates have optional fields.
func (t *Template) FieldsForRow(row DataRow) []Placement {
	out := make([]Placement, 0, len(t.fields))
	for _, f := range t.fields {
		value, ok := row[f.DataNode]
		out = append(out, Placement{
			Field:    f,
			Text:     value,
			HasValue: ok && value != "",
		})
	}
	return out
}

// CheckBounds returns a warning for every field whose declared box extends
// outside the page. Out-of-bounds fields are flagged, never rejected, so the
// caller can warn that content may render outside the visible page.
func (t *Template) CheckBounds() []BoundsWarning {
	page := t.PageRect()
	var warnings []BoundsWarning
	for _, f := range t.fields {
		if !f.Box().Within(page) {
			warnings = append(warnings, BoundsWarning{
				FieldID:  f.ID,
				DataNode: f.DataNode,
				Box:      f.Box(),
			})
		}
	}
	return warnings
}

func (t *Template) hasNode(name string) bool {
	for _, n := range t.nodes {
		if n == name {
			return true
		}
	}
	return false
}

func (t *Template) hasFieldID(id string) bool {
	for _, f := range t.fields {
		if f.ID == id {
			return true
		}
	}
	return false
}

// newFieldID generates an opaque millisecond-timestamp identifier, bumping
// it until unique so that fields added within the same millisecond do not
// collide.
func (t *Template) newFieldID() string {
	ms := time.Now().UnixMilli()
	id := fmt.Sprintf("f_%d", ms)
	for t.hasFieldID(id) {
		ms++
		id = fmt.Sprintf("f_%d", ms)
	}
	return id
}
