// Package meshinfo builds JSON-friendly summaries of PLY files: the
// declared schema as parsed from the header, and per-property value
// statistics gathered in a single read pass.
package meshinfo

import (
	"fmt"
	"os"

	"github.com/samcharles93/plykit/pkg/ply"
)

// PropertyInfo describes one declared property.
type PropertyInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	List       bool   `json:"list,omitempty"`
	LengthType string `json:"length_type,omitempty"`
}

// ElementInfo describes one declared element and its properties.
type ElementInfo struct {
	Name       string         `json:"name"`
	Count      int64          `json:"count"`
	Properties []PropertyInfo `json:"properties"`
}

// Info is the schema summary of a single PLY file.
type Info struct {
	Path     string        `json:"path,omitempty"`
	Size     int64         `json:"size_bytes,omitempty"`
	Format   string        `json:"format"`
	Comments []string      `json:"comments,omitempty"`
	ObjInfo  []string      `json:"obj_info,omitempty"`
	Elements []ElementInfo `json:"elements"`
}

// FromSchema flattens a parsed schema into its summary form.
func FromSchema(s *ply.Schema) Info {
	info := Info{
		Format:   s.Mode.String(),
		Comments: s.Comments,
		ObjInfo:  s.ObjInfo,
		Elements: make([]ElementInfo, 0, len(s.Elements)),
	}
	for i := range s.Elements {
		e := &s.Elements[i]
		ei := ElementInfo{
			Name:       e.Name,
			Count:      e.Count,
			Properties: make([]PropertyInfo, 0, len(e.Properties)),
		}
		for _, p := range e.Properties {
			pi := PropertyInfo{Name: p.Name, Type: p.Kind.String()}
			if p.List {
				pi.List = true
				pi.LengthType = p.LengthKind.String()
			}
			ei.Properties = append(ei.Properties, pi)
		}
		info.Elements = append(info.Elements, ei)
	}
	return info
}

// Load parses only the header of the file at path.
func Load(path string) (Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("stat %s: %w", path, err)
	}
	quiet := func(error) {}
	r, err := ply.Open(path, quiet)
	if err != nil {
		return Info{}, err
	}
	defer func() { _ = r.Close() }()
	if err := r.ParseHeader(); err != nil {
		return Info{}, err
	}
	info := FromSchema(r.Schema())
	info.Path = path
	info.Size = st.Size()
	return info, nil
}
