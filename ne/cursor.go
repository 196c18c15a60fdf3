// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

package ne

import (
	"fmt"
	"io"

	"golang.org/x/exp/constraints"
)

// cursor is a sequential little-endian reader over one open executable.
// Its position is shared, ordered state: each parsing step either
// continues from where the previous step stopped or repositions with
// seek. Every read is checked against the file bound; a read past it
// sets a sticky error so that table scanners can consume whole records
// and inspect Err once per record instead of after every field.
type cursor struct {
	r    io.ReaderAt
	size int64
	pos  int64
	err  error
	buf  [4]byte
}

func newCursor(r io.ReaderAt, size int64) *cursor {
	return &cursor{r: r, size: size}
}

// seek repositions the cursor at an absolute file offset and clears any
// pending read failure; the step that hit the failure has already
// observed it through Err.
func (c *cursor) seek(off int64) {
	c.pos = off
	c.err = nil
}

func (c *cursor) skip(n int64) {
	c.pos += n
}

// Err returns the first bounds or I/O failure since the last seek.
func (c *cursor) Err() error {
	return c.err
}

func (c *cursor) next(n int) []byte {
	if c.err != nil {
		return nil
	}
	if !fits(c.pos, int64(n), c.size) {
		c.err = fmt.Errorf("%w: %d bytes at 0x%x", ErrTruncated, n, c.pos)
		return nil
	}
	if _, err := c.r.ReadAt(c.buf[:n], c.pos); err != nil {
		c.err = fmt.Errorf("reading %d bytes at 0x%x: %w", n, c.pos, err)
		return nil
	}
	c.pos += int64(n)
	return c.buf[:n]
}

func (c *cursor) u8() uint8 {
	b := c.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (c *cursor) u16() uint16 {
	b := c.next(2)
	if b == nil {
		return 0
	}
	return uint16(b[0]) | uint16(b[1])<<8
}

func (c *cursor) u32() uint32 {
	b := c.next(4)
	if b == nil {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// bytes reads n raw bytes, used for name text. It returns a zero-length
// slice once the cursor has failed.
func (c *cursor) bytes(n int) []byte {
	if c.err != nil || n == 0 {
		return nil
	}
	if !fits(c.pos, int64(n), c.size) {
		c.err = fmt.Errorf("%w: %d bytes at 0x%x", ErrTruncated, n, c.pos)
		return nil
	}
	b := make([]byte, n)
	if _, err := c.r.ReadAt(b, c.pos); err != nil {
		c.err = fmt.Errorf("reading %d bytes at 0x%x: %w", n, c.pos, err)
		return nil
	}
	c.pos += int64(n)
	return b
}

// fits reports whether n bytes starting at off lie inside a file of the
// given size. Offsets arrive as u16 and u32 header fields as well as
// computed int64 positions; the constraint saves the conversion noise
// at every call site.
func fits[O constraints.Integer](off O, n, size int64) bool {
	o := int64(off)
	return o >= 0 && n >= 0 && o <= size && size-o >= n
}

// addOffset computes base+off for an offset field read from the file,
// clamping at zero rather than wrapping when the sum would be negative.
func addOffset[O constraints.Integer](base int64, off O) int64 {
	if s := base + int64(off); s >= 0 {
		return s
	}
	return 0
}
