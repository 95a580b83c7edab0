// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package cursor reads little- and big-endian fields at a moving offset
// of an [io.ReaderAt].
//
// A read that cannot be satisfied panics with a *ShortError.
// Archive decoders let that panic travel up to their package boundary
// and recover it there, the same way they treat any other format violation.
package cursor

import (
	"encoding/binary"
	"fmt"
	"io"
)

const windowSize = 4096

type Cursor struct {
	r    io.ReaderAt
	size int64 // -1 if unknown
	pos  int64

	win    []byte // a copy of r starting at winOff
	winOff int64
	block  [windowSize]byte
}

// New returns a Cursor positioned at off.
// A negative size means the length of r is not known in advance.
func New(r io.ReaderAt, size int64, off int64) *Cursor {
	return &Cursor{r: r, size: size, pos: off}
}

type ShortError struct {
	Off  int64
	Want int64
	Err  error
}

func (e *ShortError) Error() string {
	return fmt.Sprintf("short read of %d bytes at offset %#x: %v", e.Want, e.Off, e.Err)
}

func (e *ShortError) Unwrap() error { return e.Err }

func (c *Cursor) Pos() int64 { return c.pos }

func (c *Cursor) Seek(off int64) {
	if off < 0 || (c.size >= 0 && off > c.size) {
		panic(&ShortError{Off: off, Want: 0, Err: io.ErrUnexpectedEOF})
	}
	c.pos = off
}

func (c *Cursor) Skip(n int64) {
	if n < 0 {
		panic(&ShortError{Off: c.pos, Want: n, Err: io.ErrUnexpectedEOF})
	}
	c.Seek(c.pos + n)
}

// take returns the next n bytes, which alias the window
// and are only valid until the next call.
func (c *Cursor) take(n int) []byte {
	if n < 0 {
		panic(&ShortError{Off: c.pos, Want: int64(n), Err: io.ErrUnexpectedEOF})
	}
	end := c.pos + int64(n)
	if c.pos >= c.winOff && end <= c.winOff+int64(len(c.win)) {
		p := c.win[c.pos-c.winOff:][:n]
		c.pos = end
		return p
	}

	if n > len(c.block) {
		p := make([]byte, n)
		c.fill(p, n)
		return p
	}

	got, err := c.r.ReadAt(c.block[:], c.pos)
	c.win, c.winOff = c.block[:got], c.pos
	if got < n {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		panic(&ShortError{Off: c.pos, Want: int64(n), Err: err})
	}
	p := c.win[:n]
	c.pos = end
	return p
}

func (c *Cursor) fill(p []byte, n int) {
	got, err := c.r.ReadAt(p, c.pos)
	if got < n {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		panic(&ShortError{Off: c.pos, Want: int64(n), Err: err})
	}
	c.pos += int64(n)
}

// Bytes returns a fresh copy of the next n bytes.
func (c *Cursor) Bytes(n int) []byte {
	return append([]byte(nil), c.take(n)...)
}

func (c *Cursor) U8() uint8     { return c.take(1)[0] }
func (c *Cursor) U16() uint16   { return binary.LittleEndian.Uint16(c.take(2)) }
func (c *Cursor) I16() int16    { return int16(c.U16()) }
func (c *Cursor) U32() uint32   { return binary.LittleEndian.Uint32(c.take(4)) }
func (c *Cursor) U32BE() uint32 { return binary.BigEndian.Uint32(c.take(4)) }

// CString reads up to and including a NUL byte, which is not returned.
func (c *Cursor) CString() []byte {
	var s []byte
	for {
		b := c.U8()
		if b == 0 {
			return s
		}
		s = append(s, b)
	}
}
