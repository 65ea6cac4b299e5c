package ply

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// readBuffer is a fill-on-demand window over the underlying source.
// Both the header tokenizer and the binary body reads pull from the
// same buffer, so no bytes are lost at the header/body boundary.
type readBuffer struct {
	r   *bufio.Reader
	off int64
}

func newReadBuffer(rd io.Reader) *readBuffer {
	return &readBuffer{r: bufio.NewReader(rd)}
}

func (b *readBuffer) wrapErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %v", ErrIO, err)
}

func (b *readBuffer) getByte() (byte, error) {
	c, err := b.r.ReadByte()
	if err != nil {
		return 0, b.wrapErr(err)
	}
	b.off++
	return c, nil
}

func (b *readBuffer) peekByte() (byte, error) {
	p, err := b.r.Peek(1)
	if err != nil {
		return 0, b.wrapErr(err)
	}
	return p[0], nil
}

// getBytes reads exactly n bytes.
func (b *readBuffer) getBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(b.r, buf); err != nil {
		return nil, b.wrapErr(err)
	}
	b.off += int64(n)
	return buf, nil
}

// readLine consumes the remainder of the current line excluding the
// terminator and reports whether the line ended in CRLF.
func (b *readBuffer) readLine() (line string, crlf bool, err error) {
	s, err := b.r.ReadString('\n')
	if err != nil {
		return "", false, b.wrapErr(err)
	}
	b.off += int64(len(s))
	s = s[:len(s)-1]
	if n := len(s); n > 0 && s[n-1] == '\r' {
		return s[:n-1], true, nil
	}
	return s, false, nil
}

// readWord skips whitespace, including intra-record newlines, then
// returns the maximal run of non-whitespace bytes.
func (b *readBuffer) readWord() (string, error) {
	for {
		c, err := b.getByte()
		if err != nil {
			return "", err
		}
		if !isSpace(c) {
			word := []byte{c}
			for {
				c, err := b.peekByte()
				if err != nil {
					if errors.Is(err, ErrUnexpectedEOF) {
						// A word terminated by end of input is complete.
						return string(word), nil
					}
					return "", err
				}
				if isSpace(c) {
					return string(word), nil
				}
				_, _ = b.getByte()
				word = append(word, c)
			}
		}
	}
}

// writeBuffer is a flush-on-full window over the underlying sink.
type writeBuffer struct {
	w *bufio.Writer
	n int64
}

func newWriteBuffer(wr io.Writer) *writeBuffer {
	return &writeBuffer{w: bufio.NewWriter(wr)}
}

func (b *writeBuffer) putBytes(p []byte) error {
	n, err := b.w.Write(p)
	b.n += int64(n)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func (b *writeBuffer) putWord(s string) error {
	n, err := b.w.WriteString(s)
	b.n += int64(n)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// putEOL emits LF unconditionally; CRLF input files are normalised on
// rewrite.
func (b *writeBuffer) putEOL() error {
	if err := b.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	b.n++
	return nil
}

func (b *writeBuffer) flush() error {
	if err := b.w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}
