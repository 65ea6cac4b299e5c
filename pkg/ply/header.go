package ply

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	headerMagic   = "ply"
	headerVersion = "1.0"
	headerEnd     = "end_header"
)

// parseHeader tokenizes the text preamble and populates a schema. The
// first line fixes the end-of-line convention: `ply` followed by CRLF
// makes the whole header CRLF, otherwise LF. Mixing the two is
// rejected.
func parseHeader(rb *readBuffer) (*Schema, error) {
	line, crlf, err := rb.readLine()
	if err != nil {
		return nil, err
	}
	if line != headerMagic {
		return nil, fmt.Errorf("%w: missing %q magic", ErrUnknownKeyword, headerMagic)
	}

	nextLine := func() (string, error) {
		l, c, err := rb.readLine()
		if err != nil {
			return "", err
		}
		if c != crlf {
			return "", ErrBadLineTerminator
		}
		return l, nil
	}

	line, err = nextLine()
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != "format" {
		return nil, fmt.Errorf("%w: expected format line, got %q", ErrUnknownKeyword, line)
	}
	if fields[2] != headerVersion {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, fields[2])
	}
	s := &Schema{}
	switch fields[1] {
	case "ascii":
		s.Mode = StorageASCII
	case "binary_little_endian":
		s.Mode = StorageLittleEndian
	case "binary_big_endian":
		s.Mode = StorageBigEndian
	case "binary":
		s.Mode = hostStorageMode()
	default:
		return nil, fmt.Errorf("%w: format %q", ErrUnknownKeyword, fields[1])
	}

	closeElement := func() error {
		if n := len(s.Elements); n > 0 && len(s.Elements[n-1].Properties) == 0 {
			return fmt.Errorf("%w: element %q has no properties", ErrSchema, s.Elements[n-1].Name)
		}
		return nil
	}

	for {
		line, err = nextLine()
		if err != nil {
			return nil, err
		}
		fields = strings.Fields(line)
		if len(fields) == 0 {
			return nil, fmt.Errorf("%w: empty header line", ErrUnknownKeyword)
		}
		switch fields[0] {
		case "comment":
			s.AddComment(lineTail(line, "comment"))
		case "obj_info":
			s.AddObjInfo(lineTail(line, "obj_info"))
		case "element":
			if err := closeElement(); err != nil {
				return nil, err
			}
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: malformed element line %q", ErrSchema, line)
			}
			count, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: element count %q", ErrBadInteger, fields[2])
			}
			if err := s.AddElement(fields[1], count); err != nil {
				return nil, err
			}
		case "property":
			if len(s.Elements) == 0 {
				return nil, fmt.Errorf("%w: %q", ErrOrphanProperty, line)
			}
			p, err := parsePropertyLine(fields)
			if err != nil {
				return nil, err
			}
			if err := s.AddProperty(p); err != nil {
				return nil, err
			}
		case headerEnd:
			if err := closeElement(); err != nil {
				return nil, err
			}
			return s, nil
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownKeyword, fields[0])
		}
	}
}

func parsePropertyLine(fields []string) (Property, error) {
	if len(fields) == 3 && fields[1] != "list" {
		k, err := ResolveType(fields[1])
		if err != nil {
			return Property{}, err
		}
		return Property{Name: fields[2], Kind: k}, nil
	}
	if len(fields) == 5 && fields[1] == "list" {
		lk, err := ResolveType(fields[2])
		if err != nil {
			return Property{}, err
		}
		vk, err := ResolveType(fields[3])
		if err != nil {
			return Property{}, err
		}
		return Property{Name: fields[4], List: true, Kind: vk, LengthKind: lk}, nil
	}
	return Property{}, fmt.Errorf("%w: malformed property line %q", ErrSchema, strings.Join(fields, " "))
}

// lineTail returns the text after the keyword and its single following
// separator, preserving any interior whitespace of the free-form text.
func lineTail(line, keyword string) string {
	i := strings.Index(line, keyword)
	tail := line[i+len(keyword):]
	if len(tail) > 0 && (tail[0] == ' ' || tail[0] == '\t') {
		tail = tail[1:]
	}
	return tail
}

// emitHeader serializes the schema as the output preamble. Comments and
// obj_info lines are emitted as two grouped blocks after the format
// line regardless of where they sat in a source file.
func emitHeader(wb *writeBuffer, s *Schema) error {
	for i := range s.Elements {
		if len(s.Elements[i].Properties) == 0 {
			return fmt.Errorf("%w: element %q has no properties", ErrSchema, s.Elements[i].Name)
		}
	}
	put := func(line string) error {
		if err := wb.putWord(line); err != nil {
			return err
		}
		return wb.putEOL()
	}
	if err := put(headerMagic); err != nil {
		return err
	}
	if err := put("format " + s.Mode.String() + " " + headerVersion); err != nil {
		return err
	}
	for _, c := range s.Comments {
		if err := put("comment " + c); err != nil {
			return err
		}
	}
	for _, o := range s.ObjInfo {
		if err := put("obj_info " + o); err != nil {
			return err
		}
	}
	for i := range s.Elements {
		e := &s.Elements[i]
		if err := put(fmt.Sprintf("element %s %d", e.Name, e.Count)); err != nil {
			return err
		}
		for _, p := range e.Properties {
			var line string
			if p.List {
				line = fmt.Sprintf("property list %s %s %s", p.LengthKind, p.Kind, p.Name)
			} else {
				line = fmt.Sprintf("property %s %s", p.Kind, p.Name)
			}
			if err := put(line); err != nil {
				return err
			}
		}
	}
	return put(headerEnd)
}
