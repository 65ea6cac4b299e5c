package ply

import "fmt"

// Transcode streams every value of src into dst, re-encoding under
// dst's storage mode. src must have a parsed header and an unread body;
// dst must be freshly created. The schema, comments, and obj_info lines
// carry over verbatim.
func Transcode(src *Reader, dst *Writer) error {
	s := src.Schema()
	if s == nil {
		return fmt.Errorf("%w: transcode requires a parsed header", ErrInvalidState)
	}
	for _, c := range s.Comments {
		if err := dst.AddComment(c); err != nil {
			return err
		}
	}
	for _, o := range s.ObjInfo {
		if err := dst.AddObjInfo(o); err != nil {
			return err
		}
	}
	var writeErr error
	pump := func(args *Args) bool {
		if err := dst.Write(args.Value); err != nil {
			writeErr = err
			return false
		}
		return true
	}
	for ei := range s.Elements {
		e := &s.Elements[ei]
		if err := dst.AddElement(e.Name, e.Count); err != nil {
			return err
		}
		for pi := range e.Properties {
			p := &e.Properties[pi]
			if p.List {
				if err := dst.AddListProperty(p.Name, p.LengthKind, p.Kind); err != nil {
					return err
				}
			} else {
				if err := dst.AddProperty(p.Name, p.Kind); err != nil {
					return err
				}
			}
			src.SetCallback(e.Name, p.Name, pump, nil, 0)
		}
	}
	if err := dst.WriteHeader(); err != nil {
		return err
	}
	if err := src.Read(); err != nil {
		if writeErr != nil {
			return writeErr
		}
		return err
	}
	return nil
}
