package ply

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

// ErrorHook receives every failure raised on a handle, in addition to
// the error returned by the failing call. A nil hook logs to stderr.
type ErrorHook func(err error)

func defaultErrorHook(err error) {
	slog.Error("ply failure", "err", err)
}

type handleState uint8

const (
	stateHeader handleState = iota
	stateReady
	stateWriting
	stateDone
	statePoisoned
	stateClosed
)

// Args is the per-invocation view presented to a read callback: the
// position in the file, the decoded value, and the user context bound
// at registration. It is borrowed from the driver and must not be
// retained past the callback's return.
type Args struct {
	Element  *Element
	Instance int64
	Property *Property

	// Length is the list length, or 1 for scalar properties.
	Length int64
	// ValueIndex is -1 for a list length prefix and 0..Length-1 for
	// list entries; always 0 for scalars.
	ValueIndex int64
	Value      float64

	UserData any
	UserTag  int64
}

// ReadCallback handles one decoded value. Returning false aborts the
// whole read pass.
type ReadCallback func(args *Args) bool

type cbKey struct {
	elem, prop int
}

type callbackEntry struct {
	cb       ReadCallback
	userData any
	userTag  int64
}

// Reader is a PLY file handle opened for reading. The lifecycle is
// strict: ParseHeader, then SetCallback registrations, then a single
// Read pass, then Close.
type Reader struct {
	rb        *readBuffer
	schema    *Schema
	hook      ErrorHook
	callbacks map[cbKey]callbackEntry
	state     handleState
	closer    io.Closer
	mapped    []byte
}

// NewReader binds a read handle to an arbitrary byte source.
func NewReader(r io.Reader, hook ErrorHook) *Reader {
	if hook == nil {
		hook = defaultErrorHook
	}
	return &Reader{
		rb:        newReadBuffer(r),
		hook:      hook,
		callbacks: make(map[cbKey]callbackEntry),
	}
}

// Open opens a PLY file for reading.
func Open(path string, hook ErrorHook) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if hook == nil {
			hook = defaultErrorHook
		}
		err = fmt.Errorf("%w: %v", ErrIO, err)
		hook(err)
		return nil, err
	}
	r := NewReader(f, hook)
	r.closer = f
	return r, nil
}

// OpenMapped maps the file read-only and reads from the mapping,
// falling back to Open if mmap is unavailable. The mapping is released
// at Close.
func OpenMapped(path string, hook ErrorHook) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return Open(path, hook)
	}
	st, err := f.Stat()
	if err != nil || st.Size() == 0 {
		_ = f.Close()
		return Open(path, hook)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(st.Size()), unix.PROT_READ, unix.MAP_SHARED)
	_ = f.Close()
	if err != nil {
		return Open(path, hook)
	}
	r := NewReader(bytes.NewReader(data), hook)
	r.mapped = data
	return r, nil
}

// OpenMemory binds a read handle to an in-memory PLY image. The buffer
// is borrowed for the handle's lifetime.
func OpenMemory(data []byte, hook ErrorHook) *Reader {
	return NewReader(bytes.NewReader(data), hook)
}

func (r *Reader) fail(err error) error {
	if r.state != stateClosed {
		r.state = statePoisoned
	}
	r.hook(err)
	return err
}

// ParseHeader reads and parses the text preamble. It must be called
// exactly once, before any callback registration.
func (r *Reader) ParseHeader() error {
	if r.state != stateHeader {
		return r.fail(fmt.Errorf("%w: header already parsed", ErrInvalidState))
	}
	s, err := parseHeader(r.rb)
	if err != nil {
		return r.fail(fmt.Errorf("parse header: %w", err))
	}
	r.schema = s
	r.state = stateReady
	return nil
}

// Schema returns the parsed schema, or nil before ParseHeader.
func (r *Reader) Schema() *Schema {
	return r.schema
}

// SetCallback registers cb for the named (element, property) pair and
// returns the element's declared instance count. Unknown pairs return 0
// without raising. Re-registration replaces the previous callback.
// Resolution to schema indices happens here, so the read loop is a
// single table lookup per property.
func (r *Reader) SetCallback(element, property string, cb ReadCallback, userData any, userTag int64) int64 {
	if r.state != stateReady || cb == nil {
		return 0
	}
	for ei := range r.schema.Elements {
		e := &r.schema.Elements[ei]
		if e.Name != element {
			continue
		}
		for pi := range e.Properties {
			if e.Properties[pi].Name == property {
				r.callbacks[cbKey{ei, pi}] = callbackEntry{cb: cb, userData: userData, userTag: userTag}
				return e.Count
			}
		}
		return 0
	}
	return 0
}

// Read drives the whole body through the registered callbacks: elements
// in declared order, instances in order, properties in order, list
// entries after their length prefix. It may be called once per handle.
func (r *Reader) Read() error {
	if r.state != stateReady {
		return r.fail(fmt.Errorf("%w: read requires a parsed header and an unread body", ErrInvalidState))
	}
	mode := r.schema.Mode
	order := mode.byteOrder()
	ascii := mode == StorageASCII

	decode := func(k ScalarKind) (float64, error) {
		if ascii {
			return decodeTextValue(r.rb, k)
		}
		return decodeBinaryValue(r.rb, order, k)
	}

	args := &Args{}
	for ei := range r.schema.Elements {
		e := &r.schema.Elements[ei]
		for inst := int64(0); inst < e.Count; inst++ {
			for pi := range e.Properties {
				p := &e.Properties[pi]
				entry, hasCB := r.callbacks[cbKey{ei, pi}]
				dispatch := func(length, valueIndex int64, value float64) bool {
					if !hasCB {
						return true
					}
					*args = Args{
						Element:    e,
						Instance:   inst,
						Property:   p,
						Length:     length,
						ValueIndex: valueIndex,
						Value:      value,
						UserData:   entry.userData,
						UserTag:    entry.userTag,
					}
					return entry.cb(args)
				}

				if !p.List {
					v, err := decode(p.Kind)
					if err != nil {
						return r.fail(fmt.Errorf("element %s instance %d property %s: %w", e.Name, inst, p.Name, err))
					}
					if !dispatch(1, 0, v) {
						return r.fail(ErrAborted)
					}
					continue
				}

				lv, err := decode(p.LengthKind)
				if err != nil {
					return r.fail(fmt.Errorf("element %s instance %d list %s length: %w", e.Name, inst, p.Name, err))
				}
				length := int64(lv)
				if length < 0 {
					return r.fail(fmt.Errorf("%w: negative list length %d for %s.%s", ErrBadInteger, length, e.Name, p.Name))
				}
				if !dispatch(length, -1, float64(length)) {
					return r.fail(ErrAborted)
				}
				for i := int64(0); i < length; i++ {
					v, err := decode(p.Kind)
					if err != nil {
						return r.fail(fmt.Errorf("element %s instance %d list %s entry %d: %w", e.Name, inst, p.Name, i, err))
					}
					if !dispatch(length, i, v) {
						return r.fail(ErrAborted)
					}
				}
			}
		}
	}
	// Bytes past the last declared instance are ignored.
	r.state = stateDone
	return nil
}

// Close releases the handle's resources. It must be called exactly
// once; the underlying source is closed or unmapped even when a prior
// operation failed.
func (r *Reader) Close() error {
	if r.state == stateClosed {
		return r.fail(fmt.Errorf("%w: handle already closed", ErrInvalidState))
	}
	r.state = stateClosed
	if r.mapped != nil {
		data := r.mapped
		r.mapped = nil
		if err := unix.Munmap(data); err != nil {
			return r.fail(fmt.Errorf("%w: %v", ErrIO, err))
		}
	}
	if r.closer != nil {
		c := r.closer
		r.closer = nil
		if err := c.Close(); err != nil {
			return r.fail(fmt.Errorf("%w: %v", ErrIO, err))
		}
	}
	return nil
}
