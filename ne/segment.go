// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

package ne

// Segment flag bits.
const (
	SegData      = 0x0001 // data segment; code when clear
	SegMovable   = 0x0010
	SegPreload   = 0x0040
	SegHasRelocs = 0x0100 // relocation records follow the segment data
	SegDiscard   = 0x1000
)

// Relocation target kinds, in the low bits of Reloc.RType.
const (
	RelocInternal   = 0
	RelocImportOrd  = 1
	RelocImportName = 2
	RelocOSFixup    = 3
)

// RelocAdditive marks a relocation whose value is added to the word at
// the source offset instead of replacing it and chaining.
const RelocAdditive = 0x04

// Reloc is one 8-byte relocation record from a segment's fixup table.
// The meaning of the two target words depends on the kind: internal
// references carry segment and offset (or 0xff and an entry ordinal
// for movable targets), import-by-ordinal a module index and ordinal,
// import-by-name a module index and an offset into the imported-name
// blob, OS fixups a fixup type.
type Reloc struct {
	AType   uint8  // shape of the patched address (byte, segment, far pointer...)
	RType   uint8
	Offset  uint16 // source offset within the segment
	Target1 uint16
	Target2 uint16
}

// Segment is one record of the segment table, with its file location
// resolved and its relocations loaded.
type Segment struct {
	Start    uint32 // file offset of the data, 0 when the segment has none
	Length   uint32 // data length in bytes
	Flags    uint16
	MinAlloc uint32 // bytes to allocate, up to 0x10000
	Relocs   []Reloc
}

// readSegments parses the segment table and, for segments that carry
// them, the relocation block sitting right after each segment's data.
// A table or block running past the file fails softly: what was read
// so far is kept and a warning names the damage.
func readSegments(c *cursor, start int64, hdr *Header, opts *Options) []Segment {
	shift := hdr.Align
	if shift == 0 {
		shift = 9 // zero means the default 512-byte sectors
	}
	segs := make([]Segment, hdr.SegCount)
	c.seek(start)
	for i := range segs {
		sector := c.u16()
		length := c.u16()
		flags := c.u16()
		minAlloc := c.u16()
		if err := c.Err(); err != nil {
			opts.warnf("segment table: %v.", err)
			return segs[:i]
		}
		s := &segs[i]
		s.Flags = flags
		if sector != 0 {
			s.Start = uint32(sector) << shift
			s.Length = uint32(length)
			if length == 0 {
				s.Length = 0x10000
			}
		}
		s.MinAlloc = uint32(minAlloc)
		if minAlloc == 0 {
			s.MinAlloc = 0x10000
		}
	}
	for i := range segs {
		s := &segs[i]
		if s.Flags&SegHasRelocs == 0 || s.Start == 0 {
			continue
		}
		c.seek(int64(s.Start) + int64(s.Length))
		count := int(c.u16())
		relocs := make([]Reloc, 0, count)
		for j := 0; j < count; j++ {
			r := Reloc{
				AType:   c.u8(),
				RType:   c.u8(),
				Offset:  c.u16(),
				Target1: c.u16(),
				Target2: c.u16(),
			}
			if err := c.Err(); err != nil {
				opts.warnf("segment %d relocations: %v.", i+1, err)
				break
			}
			relocs = append(relocs, r)
		}
		s.Relocs = relocs
	}
	return segs
}
