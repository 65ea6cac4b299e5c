package ply

import (
	"fmt"
	"io"
	"math"
	"os"
)

// memorySink writes into a caller-provided buffer of fixed capacity.
type memorySink struct {
	buf []byte
	off int
}

func (m *memorySink) Write(p []byte) (int, error) {
	n := copy(m.buf[m.off:], p)
	m.off += n
	if n < len(p) {
		return n, fmt.Errorf("memory sink full at %d bytes", len(m.buf))
	}
	return n, nil
}

// Writer is a PLY file handle opened for writing. The lifecycle is
// strict: schema additions, then WriteHeader, then one Write call per
// declared value in declaration order, then Close.
type Writer struct {
	wb     *writeBuffer
	schema *Schema
	hook   ErrorHook
	state  handleState
	closer io.Closer

	// cursor through the declared schema
	ei          int
	pi          int
	inst        int64
	inEntries   bool
	listLeft    int64
	atLineStart bool
}

// NewWriter binds a write handle to an arbitrary byte sink. A mode of
// StorageDefault resolves to the host's native endianness.
func NewWriter(w io.Writer, mode StorageMode, hook ErrorHook) *Writer {
	if hook == nil {
		hook = defaultErrorHook
	}
	return &Writer{
		wb:     newWriteBuffer(w),
		schema: &Schema{Mode: mode.resolve()},
		hook:   hook,
	}
}

// Create creates a PLY file for writing, truncating any existing file.
func Create(path string, mode StorageMode, hook ErrorHook) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		if hook == nil {
			hook = defaultErrorHook
		}
		err = fmt.Errorf("%w: %v", ErrIO, err)
		hook(err)
		return nil, err
	}
	w := NewWriter(f, mode, hook)
	w.closer = f
	return w, nil
}

// CreateMemory creates a PLY file in the caller's buffer. The buffer is
// borrowed for the handle's lifetime; writes past its capacity fail
// with an i/o error. The final image size is available from
// WrittenSize after Close.
func CreateMemory(buf []byte, mode StorageMode, hook ErrorHook) *Writer {
	return NewWriter(&memorySink{buf: buf}, mode, hook)
}

func (w *Writer) fail(err error) error {
	if w.state != stateClosed {
		w.state = statePoisoned
	}
	w.hook(err)
	return err
}

// Schema returns the schema being built (or driven).
func (w *Writer) Schema() *Schema {
	return w.schema
}

func (w *Writer) building() error {
	switch w.state {
	case stateHeader:
		return nil
	case stateWriting:
		return ErrSchemaLocked
	default:
		return ErrInvalidState
	}
}

// AddElement declares the next element and makes it current for
// property additions.
func (w *Writer) AddElement(name string, count int64) error {
	if err := w.building(); err != nil {
		return w.fail(fmt.Errorf("add element %q: %w", name, err))
	}
	if err := w.schema.AddElement(name, count); err != nil {
		return w.fail(err)
	}
	return nil
}

// AddProperty declares a scalar property on the current element.
func (w *Writer) AddProperty(name string, kind ScalarKind) error {
	if err := w.building(); err != nil {
		return w.fail(fmt.Errorf("add property %q: %w", name, err))
	}
	if err := w.schema.AddProperty(Property{Name: name, Kind: kind}); err != nil {
		return w.fail(err)
	}
	return nil
}

// AddListProperty declares a list property on the current element. The
// length kind must be an integer kind.
func (w *Writer) AddListProperty(name string, lengthKind, valueKind ScalarKind) error {
	if err := w.building(); err != nil {
		return w.fail(fmt.Errorf("add list property %q: %w", name, err))
	}
	if !lengthKind.IsInteger() {
		return w.fail(fmt.Errorf("%w: list length kind %s is not an integer kind", ErrSchema, lengthKind))
	}
	if err := w.schema.AddProperty(Property{Name: name, List: true, Kind: valueKind, LengthKind: lengthKind}); err != nil {
		return w.fail(err)
	}
	return nil
}

// AddComment records a comment line for the header.
func (w *Writer) AddComment(text string) error {
	if err := w.building(); err != nil {
		return w.fail(fmt.Errorf("add comment: %w", err))
	}
	w.schema.AddComment(text)
	return nil
}

// AddObjInfo records an obj_info line for the header.
func (w *Writer) AddObjInfo(text string) error {
	if err := w.building(); err != nil {
		return w.fail(fmt.Errorf("add obj_info: %w", err))
	}
	w.schema.AddObjInfo(text)
	return nil
}

// WriteHeader emits the preamble and locks the schema. Values are
// accepted only after the header is on the wire.
func (w *Writer) WriteHeader() error {
	if err := w.building(); err != nil {
		return w.fail(fmt.Errorf("write header: %w", err))
	}
	if err := emitHeader(w.wb, w.schema); err != nil {
		return w.fail(fmt.Errorf("write header: %w", err))
	}
	w.state = stateWriting
	w.atLineStart = true
	w.skipEmptyElements()
	return nil
}

func (w *Writer) skipEmptyElements() {
	for w.ei < len(w.schema.Elements) && w.schema.Elements[w.ei].Count == 0 {
		w.ei++
	}
}

// advance moves the cursor past the just-completed property, wrapping
// through instances and elements.
func (w *Writer) advance() error {
	e := &w.schema.Elements[w.ei]
	w.pi++
	if w.pi < len(e.Properties) {
		return nil
	}
	w.pi = 0
	if w.schema.Mode == StorageASCII {
		if err := w.wb.putEOL(); err != nil {
			return err
		}
	}
	w.atLineStart = true
	w.inst++
	if w.inst < e.Count {
		return nil
	}
	w.inst = 0
	w.ei++
	w.skipEmptyElements()
	return nil
}

func (w *Writer) encode(kind ScalarKind, v float64) error {
	if w.schema.Mode == StorageASCII {
		if !w.atLineStart {
			if err := w.wb.putWord(" "); err != nil {
				return err
			}
		}
		w.atLineStart = false
		return w.wb.putWord(formatTextValue(kind, v))
	}
	return encodeBinaryValue(w.wb, w.schema.Mode.byteOrder(), kind, v)
}

// Write appends the next value in declaration order. For a list
// property the first value is the length, rounded to a non-negative
// integer, followed by that many entries.
func (w *Writer) Write(value float64) error {
	if w.state != stateWriting {
		return w.fail(fmt.Errorf("%w: write before header emission", ErrInvalidState))
	}
	if w.ei >= len(w.schema.Elements) {
		return w.fail(fmt.Errorf("%w", ErrTooManyValues))
	}
	e := &w.schema.Elements[w.ei]
	p := &e.Properties[w.pi]

	if p.List && !w.inEntries {
		if math.IsNaN(value) || value < 0 {
			return w.fail(fmt.Errorf("%w: list length %v for %s.%s", ErrBadInteger, value, e.Name, p.Name))
		}
		length := int64(math.Round(value))
		if err := w.encode(p.LengthKind, float64(length)); err != nil {
			return w.fail(fmt.Errorf("write %s.%s length: %w", e.Name, p.Name, err))
		}
		if length == 0 {
			if err := w.advance(); err != nil {
				return w.fail(err)
			}
			return nil
		}
		w.inEntries = true
		w.listLeft = length
		return nil
	}

	if err := w.encode(p.Kind, value); err != nil {
		return w.fail(fmt.Errorf("write %s.%s: %w", e.Name, p.Name, err))
	}
	if p.List {
		w.listLeft--
		if w.listLeft > 0 {
			return nil
		}
		w.inEntries = false
	}
	if err := w.advance(); err != nil {
		return w.fail(err)
	}
	return nil
}

// WrittenSize reports the number of bytes produced so far; after Close
// it is the final size of the written image.
func (w *Writer) WrittenSize() int64 {
	return w.wb.n
}

// Close flushes buffered output and releases the sink. Closing before
// every declared value has been written reports ErrUnderrun, but the
// sink is flushed and released regardless.
func (w *Writer) Close() error {
	if w.state == stateClosed {
		return w.fail(fmt.Errorf("%w: handle already closed", ErrInvalidState))
	}
	var underrun error
	if w.state == stateWriting && w.ei < len(w.schema.Elements) {
		underrun = fmt.Errorf("%w: stopped at element %s", ErrUnderrun, w.schema.Elements[w.ei].Name)
		w.hook(underrun)
	}
	w.state = stateClosed
	flushErr := w.wb.flush()
	if w.closer != nil {
		c := w.closer
		w.closer = nil
		if err := c.Close(); err != nil && flushErr == nil {
			flushErr = fmt.Errorf("%w: %v", ErrIO, err)
		}
	}
	if flushErr != nil {
		w.hook(flushErr)
		return flushErr
	}
	return underrun
}
