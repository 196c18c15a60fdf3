// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package disasm prints the segments of an NE module as a 16-bit
// linear-sweep listing. Instruction decoding is delegated to
// golang.org/x/arch; there is no flow analysis. Relocated positions
// are annotated with the import or internal target they resolve to,
// which is where the specfile names loaded by package ne show up.
package disasm

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/arch/x86/x86asm"

	"github.com/exeutils/dumpne/ne"
)

// Syntax selects the assembler dialect of the listing.
type Syntax int

const (
	Intel Syntax = iota // MASM-style, the default
	GNU                 // AT&T-style
)

// ParseSyntax maps the -M option names onto a Syntax.
func ParseSyntax(name string) (Syntax, error) {
	switch name {
	case "att", "gas":
		return GNU, nil
	case "intel", "masm", "nasm":
		return Intel, nil
	}
	return Intel, fmt.Errorf("unrecognized disassembly option %q", name)
}

// Options control the listing format.
type Options struct {
	Syntax        Syntax
	HideAddresses bool // omit the per-instruction offset column
	HideRaw       bool // omit the raw instruction bytes
}

// Segments writes a listing of every segment. Code segments are
// decoded instruction by instruction; data segments get their header
// line only. Requires the module to have been read with LoadSegments.
func Segments(w io.Writer, m *ne.Module, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	for i := range m.Segments {
		s := &m.Segments[i]
		kind := "code"
		if s.Flags&ne.SegData != 0 {
			kind = "data"
		}
		fmt.Fprintf(w, "Segment %d: %s (start 0x%x, length 0x%x, flags 0x%04x)\n",
			i+1, kind, s.Start, s.Length, s.Flags)
		if kind == "data" {
			continue
		}
		data, err := m.SegmentData(i + 1)
		if err != nil {
			return fmt.Errorf("segment %d: %w", i+1, err)
		}
		if data == nil {
			continue
		}
		listSegment(w, m, s, data, opts)
		fmt.Fprintln(w)
	}
	return nil
}

func listSegment(w io.Writer, m *ne.Module, s *ne.Segment, data []byte, opts *Options) {
	relocs := relocsByOffset(s)
	pc := 0
	for pc < len(data) {
		inst, err := x86asm.Decode(data[pc:], 16)
		size := inst.Len
		var text string
		if err != nil || size == 0 {
			size = 1
			text = fmt.Sprintf("db 0x%02x", data[pc])
		} else {
			switch opts.Syntax {
			case GNU:
				text = x86asm.GNUSyntax(inst, uint64(pc), nil)
			default:
				text = x86asm.IntelSyntax(inst, uint64(pc), nil)
			}
		}
		if !opts.HideAddresses {
			fmt.Fprintf(w, "\t%04x:", pc)
		}
		if !opts.HideRaw {
			fmt.Fprintf(w, "\t%-21s", rawBytes(data[pc:pc+size]))
		} else {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprintf(w, "\t%s", text)
		if note := noteFor(m, relocs, pc, size); note != "" {
			fmt.Fprintf(w, "\t; %s", note)
		}
		fmt.Fprintln(w)
		pc += size
	}
}

func rawBytes(b []byte) string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", c)
	}
	return sb.String()
}

func relocsByOffset(s *ne.Segment) map[uint16]ne.Reloc {
	if len(s.Relocs) == 0 {
		return nil
	}
	byOff := make(map[uint16]ne.Reloc, len(s.Relocs))
	for _, r := range s.Relocs {
		byOff[r.Offset] = r
	}
	return byOff
}

// noteFor resolves any relocation whose source offset falls inside the
// instruction at [pc, pc+size).
func noteFor(m *ne.Module, relocs map[uint16]ne.Reloc, pc, size int) string {
	for off := pc; off < pc+size; off++ {
		if r, ok := relocs[uint16(off)]; ok {
			return target(m, r)
		}
	}
	return ""
}

func target(m *ne.Module, r ne.Reloc) string {
	switch r.RType &^ RelocFlagMask {
	case ne.RelocInternal:
		if r.Target1 == 0xff {
			return fmt.Sprintf("entry %d", r.Target2)
		}
		return fmt.Sprintf("%d:%04x", r.Target1, r.Target2)
	case ne.RelocImportOrd:
		mod := importModule(m, r.Target1)
		if mod == nil {
			return fmt.Sprintf("module %d ordinal %d", r.Target1, r.Target2)
		}
		if name := mod.ExportName(r.Target2); name != "" {
			return mod.Name + "." + name
		}
		return fmt.Sprintf("%s.%d", mod.Name, r.Target2)
	case ne.RelocImportName:
		mod := importModule(m, r.Target1)
		name, ok := m.ImportNameAt(r.Target2)
		if mod == nil || !ok {
			return fmt.Sprintf("module %d name 0x%x", r.Target1, r.Target2)
		}
		return mod.Name + "." + name
	case ne.RelocOSFixup:
		return fmt.Sprintf("OS fixup %d", r.Target1)
	}
	return ""
}

// RelocFlagMask covers the additive bit and the other non-kind bits of
// RType.
const RelocFlagMask = 0xfc

// importModule returns the 1-based referenced module, nil when the
// index is out of range.
func importModule(m *ne.Module, index uint16) *ne.ImportModule {
	if index < 1 || int(index) > len(m.Imports) {
		return nil
	}
	return &m.Imports[index-1]
}
