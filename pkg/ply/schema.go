package ply

import (
	"encoding/binary"
	"fmt"
)

// StorageMode is the on-disk encoding of a PLY body.
type StorageMode uint8

const (
	// StorageDefault resolves to the host's native endianness at create
	// time.
	StorageDefault StorageMode = iota
	StorageASCII
	StorageLittleEndian
	StorageBigEndian
)

func (m StorageMode) String() string {
	switch m {
	case StorageASCII:
		return "ascii"
	case StorageLittleEndian:
		return "binary_little_endian"
	case StorageBigEndian:
		return "binary_big_endian"
	case StorageDefault:
		return "default"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseStorageMode resolves a create-time mode token.
func ParseStorageMode(token string) (StorageMode, error) {
	switch token {
	case "ascii":
		return StorageASCII, nil
	case "little-endian", "binary_little_endian":
		return StorageLittleEndian, nil
	case "big-endian", "binary_big_endian":
		return StorageBigEndian, nil
	case "default", "binary":
		return hostStorageMode(), nil
	default:
		return 0, fmt.Errorf("unknown storage mode %q", token)
	}
}

// resolve maps StorageDefault to the host-native binary mode.
func (m StorageMode) resolve() StorageMode {
	if m == StorageDefault {
		return hostStorageMode()
	}
	return m
}

func hostStorageMode() StorageMode {
	if binary.NativeEndian.Uint16([]byte{0x01, 0x00}) == 1 {
		return StorageLittleEndian
	}
	return StorageBigEndian
}

func (m StorageMode) byteOrder() binary.ByteOrder {
	if m == StorageBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Property describes one field of an element: either a scalar of one
// kind or a variable-length list of entries of one kind prefixed by a
// length of another kind.
type Property struct {
	Name       string
	List       bool
	Kind       ScalarKind // value kind (entry kind for lists)
	LengthKind ScalarKind // list length prefix kind; unused for scalars
}

// Element is a named, ordered group of properties with a declared
// instance count.
type Element struct {
	Name       string
	Count      int64
	Properties []Property
}

// Property returns the named property, or nil.
func (e *Element) Property(name string) *Property {
	for i := range e.Properties {
		if e.Properties[i].Name == name {
			return &e.Properties[i]
		}
	}
	return nil
}

// Schema is the in-memory form of a PLY header: the storage mode, the
// declared elements in order, and the free-form comment and obj_info
// blocks. It is append-only while a header is being built or parsed and
// read-only once a read or write pass is driving it.
type Schema struct {
	Mode     StorageMode
	Elements []Element
	Comments []string
	ObjInfo  []string
}

// Element returns the named element, or nil.
func (s *Schema) Element(name string) *Element {
	for i := range s.Elements {
		if s.Elements[i].Name == name {
			return &s.Elements[i]
		}
	}
	return nil
}

// AddElement appends an element declaration.
func (s *Schema) AddElement(name string, count int64) error {
	if name == "" {
		return fmt.Errorf("%w: empty element name", ErrSchema)
	}
	if count < 0 {
		return fmt.Errorf("%w: negative instance count for %q", ErrSchema, name)
	}
	if s.Element(name) != nil {
		return fmt.Errorf("%w: duplicate element %q", ErrSchema, name)
	}
	s.Elements = append(s.Elements, Element{Name: name, Count: count})
	return nil
}

// AddProperty appends a property to the most recently added element.
func (s *Schema) AddProperty(p Property) error {
	if len(s.Elements) == 0 {
		return fmt.Errorf("%w: no element declared", ErrSchema)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: empty property name", ErrSchema)
	}
	e := &s.Elements[len(s.Elements)-1]
	if e.Property(p.Name) != nil {
		return fmt.Errorf("%w: duplicate property %q in element %q", ErrSchema, p.Name, e.Name)
	}
	e.Properties = append(e.Properties, p)
	return nil
}

// AddComment appends a comment line.
func (s *Schema) AddComment(text string) {
	s.Comments = append(s.Comments, text)
}

// AddObjInfo appends an obj_info line.
func (s *Schema) AddObjInfo(text string) {
	s.ObjInfo = append(s.ObjInfo, text)
}
