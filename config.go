package stampgen

import (
	"encoding/json"
	"fmt"
)

// templateConfig is the persisted form of a Template. It mirrors the
// project configuration document layout: a flat node name list plus the
// field array, with page geometry in points.
type templateConfig struct {
	PageWidth  float64  `json:"page_width"`
	PageHeight float64  `json:"page_height"`
	DataNodes  []string `json:"data_nodes"`
	Fields     []*Field `json:"fields"`
}

// MarshalJSON implements json.Marshaler for persistence through the
// document store.
func (t *Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(templateConfig{
		PageWidth:  t.pageWidth,
		PageHeight: t.pageHeight,
		DataNodes:  t.nodes,
		Fields:     t.fields,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Loaded templates are validated
// at construction: duplicate node names and fields bound to unknown nodes
// are rejected, and field geometry is clamped to the minimum box size.
func (t *Template) UnmarshalJSON(data []byte) error {
	var cfg templateConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("stampgen: parsing template config: %w", err)
	}
	seen := make(map[string]bool, len(cfg.DataNodes))
	for _, n := range cfg.DataNodes {
		if n == "" {
			return fmt.Errorf("stampgen: template config: %w", ErrEmptyName)
		}
		if seen[n] {
			return fmt.Errorf("stampgen: template config: node %q: %w", n, ErrDuplicateName)
		}
		seen[n] = true
	}
	for _, f := range cfg.Fields {
		if !seen[f.DataNode] {
			return fmt.Errorf("stampgen: template config: field %s: node %q: %w", f.ID, f.DataNode, ErrUnknownNode)
		}
		f.normalize()
	}
	t.pageWidth = cfg.PageWidth
	t.pageHeight = cfg.PageHeight
	t.nodes = cfg.DataNodes
	t.fields = cfg.Fields
	return nil
}
