// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

package ne

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic is the "NE" signature, as a little-endian word.
const Magic = 0x454e

// headerSize is the fixed portion of the NE header. Table offsets are
// relative to its first byte.
const headerSize = 64

// TargetOS identifies the operating system an NE module was linked for.
type TargetOS uint8

//go:generate go run golang.org/x/tools/cmd/stringer -type=TargetOS -linecomment

const (
	OSUnknown TargetOS = iota // unknown
	OSOS2                     // OS/2
	OSWin16                   // Windows (16-bit)
	OSDOS4                    // European Dos 4.x
	OSWin386                  // Windows 386 (32-bit)
	OSBoss                    // BOSS
)

// Header is the fixed NE header in on-disk order. All multi-byte fields
// are little-endian. Table offsets are relative to the header start
// except NonResTab, which is an absolute file offset.
type Header struct {
	Magic        uint16   // 00 "NE"
	LinkerVer    uint8    // 02 linker major version
	LinkerRev    uint8    // 03 linker minor version
	EntryTab     uint16   // 04 entry table offset
	EntryTabLen  uint16   // 06 entry table length in bytes
	CRC          uint32   // 08 file checksum
	Flags        uint16   // 0c module flags
	AutoData     uint8    // 0e automatic data segment
	Reserved     uint8    // 0f expected to be zero
	Heap         uint16   // 10 initial local heap size
	Stack        uint16   // 12 initial stack size
	IP           uint16   // 14 entry point offset
	CS           uint16   // 16 entry point segment
	SP           uint16   // 18 initial stack pointer
	SS           uint16   // 1a initial stack segment
	SegCount     uint16   // 1c number of segments
	ModCount     uint16   // 1e number of module references
	NonResTabLen uint16   // 20 non-resident name table length
	SegTab       uint16   // 22 segment table offset
	ResourceTab  uint16   // 24 resource table offset
	ResidentTab  uint16   // 26 resident name table offset
	ModTab       uint16   // 28 module reference table offset
	ImportTab    uint16   // 2a imported name table offset
	NonResTab    uint32   // 2c non-resident name table offset (absolute)
	MovableCount uint16   // 30 number of movable entry points
	Align        uint16   // 32 logical sector alignment shift
	ResCount     uint16   // 34 number of resource segments
	TargetOS     TargetOS // 36 target operating system
	OtherFlags   uint8    // 37 OS/2 flags
	RetThunks    uint16   // 38 offset of return thunks
	SegRefThunks uint16   // 3a offset of segment reference thunks
	SwapArea     uint16   // 3c minimum code swap area size
	ExpVerMinor  uint8    // 3e expected Windows version, minor
	ExpVerMajor  uint8    // 3f expected Windows version, major
}

func readHeader(c *cursor, offset int64, opts *Options) (*Header, error) {
	if !fits(offset, headerSize, c.size) {
		return nil, fmt.Errorf("%w: NE header at 0x%x", ErrTruncated, offset)
	}
	var hdr Header
	sr := io.NewSectionReader(c.r, offset, headerSize)
	if err := binary.Read(sr, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("reading NE header at 0x%x: %w", offset, err)
	}
	if hdr.Magic != Magic {
		return nil, fmt.Errorf("%w: bad signature 0x%04x at 0x%x", ErrInvalidModule, hdr.Magic, offset)
	}
	if hdr.Reserved != 0 {
		opts.warnf("reserved header byte at 0x0f is 0x%02x.", hdr.Reserved)
	}
	return &hdr, nil
}
