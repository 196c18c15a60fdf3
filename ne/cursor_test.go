// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

package ne

import (
	"bytes"
	"errors"
	"testing"
)

func TestCursorReads(t *testing.T) {
	b := []byte{0x01, 0x34, 0x12, 0x78, 0x56, 0x34, 0x12, 0xff}
	c := newCursor(bytes.NewReader(b), int64(len(b)))
	if got := c.u8(); got != 0x01 {
		t.Errorf("u8 = %#x, want 0x01", got)
	}
	if got := c.u16(); got != 0x1234 {
		t.Errorf("u16 = %#x, want 0x1234", got)
	}
	if got := c.u32(); got != 0x12345678 {
		t.Errorf("u32 = %#x, want 0x12345678", got)
	}
	if err := c.Err(); err != nil {
		t.Fatalf("Err = %v", err)
	}

	// One byte remains; a two-byte read fails and the failure sticks.
	if c.u16(); !errors.Is(c.Err(), ErrTruncated) {
		t.Fatalf("Err = %v, want ErrTruncated", c.Err())
	}
	if got := c.u8(); got != 0 || c.Err() == nil {
		t.Error("read succeeded after a sticky failure")
	}

	// seek clears the failure.
	c.seek(7)
	if got := c.u8(); got != 0xff || c.Err() != nil {
		t.Errorf("u8 after seek = %#x, %v", got, c.Err())
	}
}

func TestCursorBytes(t *testing.T) {
	b := []byte("NAMETAIL")
	c := newCursor(bytes.NewReader(b), int64(len(b)))
	if got := string(c.bytes(4)); got != "NAME" {
		t.Errorf("bytes(4) = %q, want NAME", got)
	}
	if c.bytes(100); !errors.Is(c.Err(), ErrTruncated) {
		t.Errorf("Err = %v, want ErrTruncated", c.Err())
	}
}

func TestFits(t *testing.T) {
	tests := []struct {
		off, n, size int64
		want         bool
	}{
		{0, 10, 10, true},
		{5, 5, 10, true},
		{5, 6, 10, false},
		{10, 1, 10, false},
		{-1, 1, 10, false},
		{0, -1, 10, false},
	}
	for _, tt := range tests {
		if got := fits(tt.off, tt.n, tt.size); got != tt.want {
			t.Errorf("fits(%d, %d, %d) = %v, want %v", tt.off, tt.n, tt.size, got, tt.want)
		}
	}
}
