package ply

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// decodeBinaryValue reads exactly Width(kind) bytes in the file's byte
// order and widens the value into a float64. Integer kinds up to 32
// bits and both float kinds widen losslessly (u32 and i32 fit in the
// 53-bit mantissa).
func decodeBinaryValue(rb *readBuffer, order binary.ByteOrder, k ScalarKind) (float64, error) {
	b, err := rb.getBytes(k.Width())
	if err != nil {
		return 0, err
	}
	switch k {
	case KindInt8:
		return float64(int8(b[0])), nil
	case KindUint8:
		return float64(b[0]), nil
	case KindInt16:
		return float64(int16(order.Uint16(b))), nil
	case KindUint16:
		return float64(order.Uint16(b)), nil
	case KindInt32:
		return float64(int32(order.Uint32(b))), nil
	case KindUint32:
		return float64(order.Uint32(b)), nil
	case KindFloat32:
		return float64(math.Float32frombits(order.Uint32(b))), nil
	case KindFloat64:
		return math.Float64frombits(order.Uint64(b)), nil
	default:
		return 0, fmt.Errorf("%w: kind %d", ErrUnknownType, uint8(k))
	}
}

// encodeBinaryValue writes v as the kind in the file's byte order,
// truncating and clamping integer kinds and rounding float kinds to
// nearest representable.
func encodeBinaryValue(wb *writeBuffer, order binary.ByteOrder, k ScalarKind, v float64) error {
	var buf [8]byte
	c := clampToKind(v, k)
	switch k {
	case KindInt8:
		buf[0] = byte(int8(c))
	case KindUint8:
		buf[0] = byte(uint8(c))
	case KindInt16:
		order.PutUint16(buf[:2], uint16(int16(c)))
	case KindUint16:
		order.PutUint16(buf[:2], uint16(c))
	case KindInt32:
		order.PutUint32(buf[:4], uint32(int32(c)))
	case KindUint32:
		order.PutUint32(buf[:4], uint32(c))
	case KindFloat32:
		order.PutUint32(buf[:4], math.Float32bits(float32(v)))
	case KindFloat64:
		order.PutUint64(buf[:8], math.Float64bits(v))
	default:
		return fmt.Errorf("%w: kind %d", ErrUnknownType, uint8(k))
	}
	return wb.putBytes(buf[:k.Width()])
}

// decodeTextValue reads one whitespace-delimited token and parses it as
// the kind. strconv is locale-independent, so text parses identically
// regardless of the process locale.
func decodeTextValue(rb *readBuffer, k ScalarKind) (float64, error) {
	word, err := rb.readWord()
	if err != nil {
		return 0, err
	}
	if k.IsInteger() {
		n, err := strconv.ParseInt(word, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadInteger, word)
		}
		lo, hi := k.rangeLimits()
		if n < lo || n > hi {
			return 0, fmt.Errorf("%w: %d out of range for %s", ErrBadInteger, n, k)
		}
		return float64(n), nil
	}
	f, err := strconv.ParseFloat(word, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadFloat, word)
	}
	return f, nil
}

// formatTextValue renders v as the kind's text form: standard decimal
// for integers, the minimal round-trippable representation for floats.
func formatTextValue(k ScalarKind, v float64) string {
	if k.IsInteger() {
		return strconv.FormatInt(int64(clampToKind(v, k)), 10)
	}
	if k == KindFloat32 {
		return strconv.FormatFloat(float64(float32(v)), 'g', -1, 32)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
