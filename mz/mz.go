// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package mz reads the DOS (MZ) header that fronts every 16-bit
// Windows executable. It exists to find the extended header and to
// dump plain DOS programs; everything interesting about NE modules
// lives in package ne.
package mz

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Magic is the "MZ" signature, as a little-endian word.
const Magic = 0x5a4d

// ErrNotMZ is returned when the file does not start with the MZ
// signature.
var ErrNotMZ = errors.New("not an MZ executable")

// headerSize is the mandatory part of the DOS header. The extended
// header offset at newHeaderOff lies beyond it and only exists in
// relocated (post-DOS-2.0) executables.
const (
	headerSize   = 28
	newHeaderOff = 0x3c
)

// Header is the classic DOS header in on-disk order, little-endian.
type Header struct {
	Magic        uint16 // 00 "MZ"
	LastPageSize uint16 // 02 bytes used in the last 512-byte page
	Pages        uint16 // 04 file size in 512-byte pages
	RelocCount   uint16 // 06 relocation entries
	HeaderParas  uint16 // 08 header size in 16-byte paragraphs
	MinAlloc     uint16 // 0a minimum extra paragraphs
	MaxAlloc     uint16 // 0c maximum extra paragraphs
	SS           uint16 // 0e initial SS, relative to the load segment
	SP           uint16 // 10 initial SP
	Checksum     uint16 // 12
	IP           uint16 // 14 initial IP
	CS           uint16 // 16 initial CS, relative to the load segment
	RelocTab     uint16 // 18 relocation table offset
	Overlay      uint16 // 1a overlay number
}

// ReadHeader parses the DOS header at the start of r.
func ReadHeader(r io.ReaderAt) (*Header, error) {
	var hdr Header
	sr := io.NewSectionReader(r, 0, headerSize)
	if err := binary.Read(sr, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("reading MZ header: %w", err)
	}
	if hdr.Magic != Magic {
		return nil, fmt.Errorf("%w: signature 0x%04x", ErrNotMZ, hdr.Magic)
	}
	return &hdr, nil
}

// NewHeaderOffset returns the file offset of the extended (NE or PE)
// header, read from the word at 0x3c. Plain DOS executables have no
// meaningful value there; an offset inside the DOS header itself is
// rejected so callers fall back to a DOS dump.
func NewHeaderOffset(r io.ReaderAt) (int64, error) {
	if _, err := ReadHeader(r); err != nil {
		return 0, err
	}
	var b [4]byte
	if _, err := r.ReadAt(b[:], newHeaderOff); err != nil {
		return 0, fmt.Errorf("reading extended header offset: %w", err)
	}
	off := int64(binary.LittleEndian.Uint32(b[:]))
	if off < headerSize {
		return 0, fmt.Errorf("bad extended header offset 0x%x", off)
	}
	return off, nil
}

// Size returns the file size recorded in the header, in bytes.
func (h *Header) Size() uint32 {
	if h.Pages == 0 {
		return 0
	}
	size := uint32(h.Pages) * 512
	if h.LastPageSize != 0 {
		size -= 512 - uint32(h.LastPageSize)
	}
	return size
}

// Dump prints the header fields in the classic layout.
func (h *Header) Dump(w io.Writer) {
	fmt.Fprintf(w, "Module type: MZ (DOS executable)\n")
	fmt.Fprintf(w, "File size: %d bytes\n", h.Size())
	fmt.Fprintf(w, "Header size: %d bytes\n", uint32(h.HeaderParas)*16)
	fmt.Fprintf(w, "Relocations: %d (table at 0x%04x)\n", h.RelocCount, h.RelocTab)
	fmt.Fprintf(w, "Allocation: %d-%d paragraphs\n", h.MinAlloc, h.MaxAlloc)
	fmt.Fprintf(w, "Program entry point: %d:%04x\n", h.CS, h.IP)
	fmt.Fprintf(w, "Initial stack location: %d:%04x\n", h.SS, h.SP)
	fmt.Fprintf(w, "Checksum: %04x\n", h.Checksum)
	fmt.Fprintf(w, "Overlay number: %d\n", h.Overlay)
}
