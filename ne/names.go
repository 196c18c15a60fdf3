// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

package ne

import "github.com/exeutils/dumpne/demangle"

// readNameTable parses a resident or non-resident name table at the
// absolute offset start and returns the first record, which names the
// module (resident) or describes it (non-resident). The first record's
// ordinal field is reserved and skipped. Every following record
// attaches a name to an entry ordinal; a record naming an ordinal the
// entry table does not have is reported and dropped.
func readNameTable(c *cursor, start int64, entries []Entry, opts *Options) (string, error) {
	c.seek(start)
	length := int(c.u8())
	first := string(c.bytes(length))
	c.skip(2)
	if err := c.Err(); err != nil {
		return "", err
	}
	for {
		length = int(c.u8())
		if length == 0 || c.Err() != nil {
			break
		}
		name := string(c.bytes(length))
		ordinal := c.u16()
		if c.Err() != nil {
			break
		}
		if opts != nil && opts.Demangle && demangle.Mangled(name) {
			name = demangle.Demangle(name, opts.warnf)
		}
		if ordinal == 0 || int(ordinal) > len(entries) {
			opts.warnf("name table entry %q names ordinal %d outside the entry table (%d ordinals).",
				name, ordinal, len(entries))
			continue
		}
		entries[ordinal-1].Name = name
	}
	return first, c.Err()
}
