// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

package ne

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func TestHeaderLayout(t *testing.T) {
	if got := binary.Size(Header{}); got != headerSize {
		t.Fatalf("binary.Size(Header) = %d, want %d", got, headerSize)
	}
}

func TestReadHeaderBadMagic(t *testing.T) {
	img := buildImage(t)
	img[0], img[1] = 'M', 'Z'
	opts, _ := testOptions(t)
	c := newCursor(bytes.NewReader(img), int64(len(img)))
	if _, err := readHeader(c, 0, opts); !errors.Is(err, ErrInvalidModule) {
		t.Fatalf("readHeader = %v, want ErrInvalidModule", err)
	}
}

func TestReadHeaderTooShort(t *testing.T) {
	img := buildImage(t)[:32]
	opts, _ := testOptions(t)
	c := newCursor(bytes.NewReader(img), int64(len(img)))
	if _, err := readHeader(c, 0, opts); !errors.Is(err, ErrTruncated) {
		t.Fatalf("readHeader = %v, want ErrTruncated", err)
	}
}

func TestReadHeaderReservedByte(t *testing.T) {
	img := buildImage(t)
	img[0x0f] = 0x42
	opts, diag := testOptions(t)
	c := newCursor(bytes.NewReader(img), int64(len(img)))
	hdr, err := readHeader(c, 0, opts)
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if hdr.Reserved != 0x42 {
		t.Errorf("Reserved = %#x, want 0x42", hdr.Reserved)
	}
	// A warning, not an error.
	if !strings.Contains(diag.String(), "0x42") {
		t.Errorf("no reserved-byte warning in:\n%s", diag.String())
	}
}

func TestTargetOSString(t *testing.T) {
	tests := []struct {
		os   TargetOS
		want string
	}{
		{OSUnknown, "unknown"},
		{OSOS2, "OS/2"},
		{OSWin16, "Windows (16-bit)"},
		{OSDOS4, "European Dos 4.x"},
		{OSWin386, "Windows 386 (32-bit)"},
		{OSBoss, "BOSS"},
	}
	for _, tt := range tests {
		if got := tt.os.String(); got != tt.want {
			t.Errorf("TargetOS(%d).String() = %q, want %q", tt.os, got, tt.want)
		}
	}
}
