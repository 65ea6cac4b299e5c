package ply

import (
	"fmt"
	"math"
)

// ScalarKind is one of the eight canonical numeric kinds a PLY property
// can carry on disk.
type ScalarKind uint8

const (
	KindInt8 ScalarKind = iota
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindFloat32
	KindFloat64
)

func (k ScalarKind) String() string {
	switch k {
	case KindInt8:
		return "char"
	case KindUint8:
		return "uchar"
	case KindInt16:
		return "short"
	case KindUint16:
		return "ushort"
	case KindInt32:
		return "int"
	case KindUint32:
		return "uint"
	case KindFloat32:
		return "float"
	case KindFloat64:
		return "double"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Width returns the on-disk byte width of the kind.
func (k ScalarKind) Width() int {
	switch k {
	case KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindFloat64:
		return 8
	default:
		return 0
	}
}

// IsInteger reports whether the kind is one of the six integer kinds.
func (k ScalarKind) IsInteger() bool {
	return k <= KindUint32
}

var typeSpellings = map[string]ScalarKind{
	"char":    KindInt8,
	"int8":    KindInt8,
	"uchar":   KindUint8,
	"uint8":   KindUint8,
	"short":   KindInt16,
	"int16":   KindInt16,
	"ushort":  KindUint16,
	"uint16":  KindUint16,
	"int":     KindInt32,
	"int32":   KindInt32,
	"uint":    KindUint32,
	"uint32":  KindUint32,
	"float":   KindFloat32,
	"float32": KindFloat32,
	"double":  KindFloat64,
	"float64": KindFloat64,
}

// ResolveType maps a header type spelling to its canonical kind.
// The spelling "list" is a property flavor marker, not a kind, and is
// rejected here like any other non-scalar token.
func ResolveType(spelling string) (ScalarKind, error) {
	k, ok := typeSpellings[spelling]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, spelling)
	}
	return k, nil
}

func (k ScalarKind) rangeLimits() (lo, hi int64) {
	switch k {
	case KindInt8:
		return math.MinInt8, math.MaxInt8
	case KindUint8:
		return 0, math.MaxUint8
	case KindInt16:
		return math.MinInt16, math.MaxInt16
	case KindUint16:
		return 0, math.MaxUint16
	case KindInt32:
		return math.MinInt32, math.MaxInt32
	case KindUint32:
		return 0, math.MaxUint32
	default:
		return 0, 0
	}
}

// clampToKind truncates toward zero and clamps v into the integer kind's
// range. Float kinds pass through unchanged; the encode step performs
// the IEEE rounding. NaN clamps to zero for integer kinds.
func clampToKind(v float64, k ScalarKind) float64 {
	if !k.IsInteger() {
		return v
	}
	if math.IsNaN(v) {
		return 0
	}
	v = math.Trunc(v)
	lo, hi := k.rangeLimits()
	if v < float64(lo) {
		return float64(lo)
	}
	if v > float64(hi) {
		return float64(hi)
	}
	return v
}
