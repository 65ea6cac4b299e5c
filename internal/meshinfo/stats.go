package meshinfo

import (
	"math"

	"github.com/samcharles93/plykit/pkg/ply"
)

// PropertyStats aggregates the values seen for one property across all
// instances. For a list property the entries are aggregated and the
// length distribution is reported separately.
type PropertyStats struct {
	Name   string  `json:"name"`
	Values int64   `json:"values"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`

	MinLength int64 `json:"min_length,omitempty"`
	MaxLength int64 `json:"max_length,omitempty"`
}

// ElementStats groups the property statistics of one element.
type ElementStats struct {
	Name       string          `json:"name"`
	Instances  int64           `json:"instances"`
	Properties []PropertyStats `json:"properties"`
}

// Stats is the full statistics report for one PLY file.
type Stats struct {
	Path     string         `json:"path,omitempty"`
	Format   string         `json:"format"`
	Elements []ElementStats `json:"elements"`
}

type propAccum struct {
	stats   *PropertyStats
	sum     float64
	lengths int64
}

func (a *propAccum) add(v float64) {
	s := a.stats
	if s.Values == 0 {
		s.Min, s.Max = v, v
	} else {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Values++
	a.sum += v
}

func (a *propAccum) addLength(n int64) {
	s := a.stats
	if a.lengths == 0 {
		s.MinLength, s.MaxLength = n, n
	} else {
		if n < s.MinLength {
			s.MinLength = n
		}
		if n > s.MaxLength {
			s.MaxLength = n
		}
	}
	a.lengths++
}

func accumulate(args *ply.Args) bool {
	acc := args.UserData.(*propAccum)
	if args.ValueIndex == -1 {
		acc.addLength(args.Length)
		return true
	}
	acc.add(args.Value)
	return true
}

// CollectStats drives one full read pass over the file at path using
// the memory-mapped open path when available.
func CollectStats(path string) (Stats, error) {
	quiet := func(error) {}
	r, err := ply.OpenMapped(path, quiet)
	if err != nil {
		return Stats{}, err
	}
	defer func() { _ = r.Close() }()
	if err := r.ParseHeader(); err != nil {
		return Stats{}, err
	}

	s := r.Schema()
	out := Stats{
		Path:     path,
		Format:   s.Mode.String(),
		Elements: make([]ElementStats, len(s.Elements)),
	}
	var accums []*propAccum
	for ei := range s.Elements {
		e := &s.Elements[ei]
		es := &out.Elements[ei]
		es.Name = e.Name
		es.Instances = e.Count
		es.Properties = make([]PropertyStats, len(e.Properties))
		for pi := range e.Properties {
			p := &e.Properties[pi]
			es.Properties[pi] = PropertyStats{Name: p.Name}
			acc := &propAccum{stats: &es.Properties[pi]}
			accums = append(accums, acc)
			r.SetCallback(e.Name, p.Name, accumulate, acc, 0)
		}
	}
	if err := r.Read(); err != nil {
		return Stats{}, err
	}
	for _, acc := range accums {
		if acc.stats.Values > 0 {
			acc.stats.Mean = acc.sum / float64(acc.stats.Values)
		}
	}
	return out, nil
}
