// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

package ne

import (
	"fmt"
	"io"
	"strings"
)

// FlagsString renders the module flags word. Every bit is accounted
// for: reserved combinations and undefined bits come out as explicit
// "(unknown ...)" fragments instead of being dropped.
func FlagsString(flags uint16) string {
	var frags []string
	switch flags & 0x0003 {
	case 0:
		frags = append(frags, "no DGROUP")
	case 1:
		frags = append(frags, "single DGROUP")
	case 2:
		frags = append(frags, "multiple DGROUPs")
	case 3:
		frags = append(frags, "(unknown DGROUP type 3)")
	}
	if flags&0x0004 != 0 {
		frags = append(frags, "global initialization")
	}
	if flags&0x0008 != 0 {
		frags = append(frags, "protected mode only")
	}
	if flags&0x0010 != 0 {
		frags = append(frags, "8086")
	}
	if flags&0x0020 != 0 {
		frags = append(frags, "80286")
	}
	if flags&0x0040 != 0 {
		frags = append(frags, "80386")
	}
	if flags&0x0080 != 0 {
		frags = append(frags, "80x87")
	}
	switch flags & 0x0700 {
	case 0x0100:
		frags = append(frags, "fullscreen")
	case 0x0200:
		frags = append(frags, "console")
	case 0x0300:
		frags = append(frags, "GUI")
	case 0:
		frags = append(frags, "(no subsystem)")
	default:
		frags = append(frags, fmt.Sprintf("(unknown application type %d)", (flags&0x0700)>>8))
	}
	if flags&0x0800 != 0 {
		frags = append(frags, "self-loading")
	}
	if flags&0x1000 != 0 {
		frags = append(frags, "(unknown flag 0x1000)")
	}
	if flags&0x2000 != 0 {
		frags = append(frags, "contains linker errors")
	}
	if flags&0x4000 != 0 {
		frags = append(frags, "non-conforming program")
	}
	if flags&0x8000 != 0 {
		frags = append(frags, "library")
	}
	return strings.Join(frags, ", ")
}

// OS2FlagsString renders the second flags byte. Empty when no flag is
// set.
func OS2FlagsString(flags uint8) string {
	var frags []string
	if flags&0x01 != 0 {
		frags = append(frags, "long filename support")
	}
	if flags&0x02 != 0 {
		frags = append(frags, "2.x protected mode")
	}
	if flags&0x04 != 0 {
		frags = append(frags, "2.x proportional fonts")
	}
	if flags&0x08 != 0 {
		frags = append(frags, "fast-load area")
	}
	if flags&0xf0 != 0 {
		frags = append(frags, fmt.Sprintf("(unknown flags 0x%04x)", flags&0xf0))
	}
	return strings.Join(frags, ", ")
}

// DumpHeader prints the header fields.
func (m *Module) DumpHeader(w io.Writer) {
	h := &m.Header
	fmt.Fprintf(w, "Linker version: %d.%d\n", h.LinkerVer, h.LinkerRev)
	fmt.Fprintf(w, "Checksum: %08x\n", h.CRC)
	fmt.Fprintf(w, "Flags: 0x%04x (%s)\n", h.Flags, FlagsString(h.Flags))
	fmt.Fprintf(w, "Automatic data segment: %d\n", h.AutoData)
	fmt.Fprintf(w, "Heap size: %d bytes\n", h.Heap)
	fmt.Fprintf(w, "Stack size: %d bytes\n", h.Stack)
	fmt.Fprintf(w, "Program entry point: %d:%04x\n", h.CS, h.IP)
	fmt.Fprintf(w, "Initial stack location: %d:%04x\n", h.SS, h.SP)
	if h.TargetOS <= OSBoss {
		fmt.Fprintf(w, "Target OS: %s\n", h.TargetOS)
	} else {
		fmt.Fprintf(w, "Target OS: (unknown value %d)\n", uint8(h.TargetOS))
	}
	if s := OS2FlagsString(h.OtherFlags); s != "" {
		fmt.Fprintf(w, "OS/2 flags: 0x%04x (%s)\n", h.OtherFlags, s)
	} else {
		fmt.Fprintf(w, "OS/2 flags: 0x0000\n")
	}
	fmt.Fprintf(w, "Swap area: %d\n", h.SwapArea)
	fmt.Fprintf(w, "Expected Windows version: %d.%d\n", h.ExpVerMajor, h.ExpVerMinor)
	fmt.Fprintln(w)
}

// DumpExports prints the entry table, one line per exported ordinal.
// Absolute entries show a bare value where segmented entries show
// segment:offset; unused placeholder ordinals are not listed.
func (m *Module) DumpExports(w io.Writer) {
	fmt.Fprintln(w, "Exports:")
	for i := range m.Entries {
		e := &m.Entries[i]
		name := e.Name
		if name == "" {
			name = "<no name>"
		}
		switch {
		case e.Segment == SegAbsolute:
			fmt.Fprintf(w, "\t%5d\t   %04x\t%s\n", i+1, e.Offset, name)
		case e.Segment != 0:
			fmt.Fprintf(w, "\t%5d\t%2d:%04x\t%s\n", i+1, e.Segment, e.Offset, name)
		}
	}
	fmt.Fprintln(w)
}

// DumpImports prints the imported module names, one per line.
func (m *Module) DumpImports(w io.Writer) {
	fmt.Fprintln(w, "Imported modules:")
	for i := range m.Imports {
		fmt.Fprintf(w, "\t%s\n", m.Imports[i].Name)
	}
	fmt.Fprintln(w)
}

// DumpResources prints the resource table grouped by type.
func (m *Module) DumpResources(w io.Writer) {
	if len(m.Resources) == 0 {
		fmt.Fprintln(w, "No resource table")
		return
	}
	fmt.Fprintln(w, "Resources:")
	for ti := range m.Resources {
		rt := &m.Resources[ti]
		if rt.Name != "" {
			fmt.Fprintf(w, "\t%s:\n", rt.Name)
		} else {
			fmt.Fprintf(w, "\ttype %d:\n", rt.ID)
		}
		for ri := range rt.Resources {
			r := &rt.Resources[ri]
			if r.Name != "" {
				fmt.Fprintf(w, "\t\t%s\t(offset 0x%06x, length %d, flags 0x%04x)\n",
					r.Name, r.Start, r.Length, r.Flags)
			} else {
				fmt.Fprintf(w, "\t\t%d\t(offset 0x%06x, length %d, flags 0x%04x)\n",
					r.ID, r.Start, r.Length, r.Flags)
			}
		}
	}
	fmt.Fprintln(w)
}
