// Package ply reads and writes polygon files in the PLY format: a text
// header declaring elements and their typed properties, followed by the
// property values in ascii, binary little-endian, or binary big-endian
// storage.
//
// Reading is callback driven. Parse the header, register a callback per
// (element, property) pair of interest, then make a single Read pass:
//
//	r, err := ply.Open("mesh.ply", nil)
//	if err != nil { ... }
//	defer r.Close()
//	if err := r.ParseHeader(); err != nil { ... }
//	n := r.SetCallback("vertex", "x", func(a *ply.Args) bool {
//		xs = append(xs, a.Value)
//		return true
//	}, nil, 0)
//	_ = n // declared vertex count
//	if err := r.Read(); err != nil { ... }
//
// Writing mirrors the declaration order. Declare the schema, emit the
// header, then push one value per declared slot; list properties take
// their length first, then that many entries:
//
//	w, err := ply.Create("mesh.ply", ply.StorageLittleEndian, nil)
//	if err != nil { ... }
//	_ = w.AddElement("vertex", 3)
//	_ = w.AddProperty("x", ply.KindFloat32)
//	_ = w.WriteHeader()
//	for _, x := range xs {
//		_ = w.Write(x)
//	}
//	if err := w.Close(); err != nil { ... }
//
// All values cross the API as float64; storage kinds narrower than that
// widen losslessly on read and are clamped or rounded on write.
package ply
