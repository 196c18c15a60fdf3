// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

package ne

// The resource table starts with an alignment shift for the offsets
// and lengths inside it, then one block per resource type, then the
// string names both levels refer to. An id word with the high bit set
// is an integer; otherwise it is the table-relative offset of a
// length-prefixed name.

const resIDInt = 0x8000

// ResourceType groups the resources of one type.
type ResourceType struct {
	ID        uint16 // numeric type, when the table used one
	Name      string // string type otherwise
	Resources []Resource
}

// Resource is one named or numbered resource with its file location.
type Resource struct {
	ID     uint16
	Name   string
	Start  uint32 // file offset
	Length uint32 // length in bytes
	Flags  uint16
}

func readResourceTable(c *cursor, start int64, opts *Options) ([]ResourceType, error) {
	c.seek(start)
	shift := c.u16()
	var types []ResourceType
	for {
		typeID := c.u16()
		if typeID == 0 || c.Err() != nil {
			break
		}
		count := int(c.u16())
		c.skip(4) // reserved for the loader
		var rt ResourceType
		if typeID&resIDInt != 0 {
			rt.ID = typeID &^ resIDInt
		} else {
			rt.Name = resourceName(c, start, typeID)
		}
		for i := 0; i < count; i++ {
			off := c.u16()
			length := c.u16()
			flags := c.u16()
			id := c.u16()
			c.skip(4) // handle and usage, reserved for the loader
			if c.Err() != nil {
				break
			}
			res := Resource{
				Start:  uint32(off) << shift,
				Length: uint32(length) << shift,
				Flags:  flags,
			}
			if id&resIDInt != 0 {
				res.ID = id &^ resIDInt
			} else {
				res.Name = resourceName(c, start, id)
			}
			rt.Resources = append(rt.Resources, res)
		}
		types = append(types, rt)
	}
	return types, c.Err()
}

// resourceName reads the length-prefixed string at off bytes past the
// table start. The names live after the type blocks, so the read goes
// around the cursor to leave its position on the records.
func resourceName(c *cursor, tableStart int64, off uint16) string {
	pos := tableStart + int64(off)
	if !fits(pos, 1, c.size) {
		return ""
	}
	var lb [1]byte
	if _, err := c.r.ReadAt(lb[:], pos); err != nil {
		return ""
	}
	n := int64(lb[0])
	if n == 0 || !fits(pos+1, n, c.size) {
		return ""
	}
	b := make([]byte, n)
	if _, err := c.r.ReadAt(b, pos+1); err != nil {
		return ""
	}
	return string(b)
}
