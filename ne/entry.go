// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

package ne

import "fmt"

// Entry table records come in bundles: a count byte, then a segment
// indicator byte for the whole bundle. Indicator 0x00 is a bundle of
// unused ordinals with no records at all, 0xff is a bundle of movable
// entries with six-byte records, and anything else is a bundle of fixed
// entries with three-byte records belonging to that segment.
const (
	bundleUnused  = 0x00
	bundleMovable = 0xff
)

// movableSignature is the "int 3fh" loader thunk that every movable
// entry record carries between its flag byte and its address.
const movableSignature = 0x3fcd

// SegAbsolute in Entry.Segment marks an entry whose Offset is a literal
// constant rather than an address in a segment.
const SegAbsolute = 0xfe

// Entry is one entry-point ordinal. Ordinal n lives at Entries[n-1].
// A zero Segment means the ordinal is an unused placeholder.
type Entry struct {
	Flags   uint8
	Segment uint8
	Offset  uint16
	Name    string // attached from the name tables, "" when unnamed
}

// readEntryTable scans the bundled entry table at the absolute offset
// start. The table is walked twice: once to size the ordinal space,
// once to fill it, so that placeholder bundles cost nothing but their
// two header bytes.
func readEntryTable(c *cursor, start int64, opts *Options) ([]Entry, error) {
	count := 0
	c.seek(start)
	for {
		length := int(c.u8())
		if length == 0 || c.Err() != nil {
			break
		}
		index := c.u8()
		count += length
		if index != bundleUnused {
			if index == bundleMovable {
				c.skip(int64(length) * 6)
			} else {
				c.skip(int64(length) * 3)
			}
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	// Ordinals are 16-bit and 1-based.
	if count > 0xffff {
		return nil, fmt.Errorf("%w: entry table declares %d ordinals", ErrInvalidModule, count)
	}

	entries := make([]Entry, count)
	ord := 0
	c.seek(start)
	for {
		length := int(c.u8())
		if length == 0 || c.Err() != nil {
			break
		}
		index := c.u8()
		for i := 0; i < length; i++ {
			switch index {
			case bundleUnused:
				// Placeholder ordinal, all fields stay zero.
			case bundleMovable:
				entries[ord].Flags = c.u8()
				w := c.u16()
				if w != movableSignature && c.Err() == nil {
					opts.warnf("entry %d has interrupt bytes %02x %02x (expected cd 3f).",
						ord+1, w&0xff, w>>8)
				}
				entries[ord].Segment = c.u8()
				entries[ord].Offset = c.u16()
			default:
				entries[ord].Flags = c.u8()
				entries[ord].Offset = c.u16()
				entries[ord].Segment = index
			}
			ord++
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
