// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package ne parses NE ("New Executable") binaries, the segmented
// 16-bit format used by Windows 1.x through 3.x, OS/2 1.x, and a few
// DOS extenders. It reads the fixed header and the tables hanging off
// it (entry points, resident and non-resident names, imported modules,
// segments with their relocations, resources) into a Module that the
// dump routines and the disassembler consume.
//
// Offsets inside an NE file come in two flavors and mixing them up is
// the classic NE bug: most table offsets are relative to the NE header,
// but the non-resident name table offset is absolute. The parser keeps
// the distinction; callers only ever see absolute file offsets.
package ne

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/exeutils/dumpne/mz"
)

var (
	// ErrInvalidModule is returned when the bytes at the claimed NE
	// offset do not form an NE module.
	ErrInvalidModule = errors.New("not a valid NE module")
	// ErrTruncated is returned when a header or table runs past the
	// end of the file.
	ErrTruncated = errors.New("file too short")
)

// Options control the optional parsing stages. The zero value parses
// the header and every name table but leaves C++ names mangled, import
// ordinals unresolved, and segment data untouched.
type Options struct {
	// Demangle decodes C++ declarations from any exported or imported
	// name that begins with '?'.
	Demangle bool

	// ResolveImports loads ordinal-to-name specfiles for each imported
	// module so relocations can name their targets.
	ResolveImports bool

	// LoadSegments reads the segment table and per-segment relocation
	// records. Only the disassembler needs them.
	LoadSegments bool

	// SpecDir is an extra directory searched for specfiles after the
	// current directory. "spec" when empty.
	SpecDir string

	// Diag receives warnings about structural damage: offsets outside
	// the file, ordinals outside the entry table, names that fail to
	// decode. Defaults to stderr.
	Diag *log.Logger
}

var defaultDiag = log.New(os.Stderr, "", 0)

func (o *Options) diag() *log.Logger {
	if o != nil && o.Diag != nil {
		return o.Diag
	}
	return defaultDiag
}

func (o *Options) warnf(format string, args ...any) {
	o.diag().Printf("Warning: "+format, args...)
}

func (o *Options) notef(format string, args ...any) {
	o.diag().Printf("Note: "+format, args...)
}

func (o *Options) specDir() string {
	if o != nil && o.SpecDir != "" {
		return o.SpecDir
	}
	return "spec"
}

// Module is one parsed NE executable. Entries, names, imports, and
// segments all hold indexes into each other, so the struct is built as
// a unit by Read and stays read-only afterwards.
type Module struct {
	Header      Header
	Name        string // module name, first resident name table record
	Description string // first non-resident name table record
	Entries     []Entry
	Imports     []ImportModule
	Segments    []Segment
	Resources   []ResourceType

	r           io.ReaderAt
	size        int64
	offset      int64 // file offset of the NE header
	importNames []byte
	closer      io.Closer
}

// Read parses an NE module from r. offset is the file offset of the NE
// header, normally the e_lfanew field of the containing MZ header; the
// signature there is verified again. Only a missing or foreign header
// is fatal: damaged tables are reported through opts.Diag and the
// affected fields are left empty.
func Read(r io.ReaderAt, size, offset int64, opts *Options) (*Module, error) {
	if opts == nil {
		opts = &Options{}
	}
	c := newCursor(r, size)

	hdr, err := readHeader(c, offset, opts)
	if err != nil {
		return nil, err
	}
	m := &Module{
		Header: *hdr,
		r:      r,
		size:   size,
		offset: offset,
	}

	if hdr.EntryTab != 0 {
		m.Entries, err = readEntryTable(c, addOffset(offset, hdr.EntryTab), opts)
		if err != nil {
			opts.warnf("entry table: %v.", err)
		}
	} else {
		opts.warnf("module has no entry table.")
	}

	if hdr.ResidentTab != 0 {
		m.Name, err = readNameTable(c, addOffset(offset, hdr.ResidentTab), m.Entries, opts)
		if err != nil {
			opts.warnf("resident name table: %v.", err)
		}
	} else {
		opts.warnf("module has no resident name table.")
	}

	// The non-resident name table offset is absolute, not NE-relative.
	if hdr.NonResTab != 0 && hdr.NonResTabLen != 0 {
		m.Description, err = readNameTable(c, int64(hdr.NonResTab), m.Entries, opts)
		if err != nil {
			opts.warnf("non-resident name table: %v.", err)
		}
	}

	m.importNames, err = readImportNames(c, addOffset(offset, hdr.ImportTab), addOffset(offset, hdr.EntryTab))
	if err != nil {
		opts.warnf("imported name table: %v.", err)
	}
	if hdr.ModCount > 0 {
		m.Imports = readImportModules(c, addOffset(offset, hdr.ModTab), int(hdr.ModCount), m.importNames, opts)
	}

	if opts.LoadSegments && hdr.SegCount > 0 {
		m.Segments = readSegments(c, addOffset(offset, hdr.SegTab), hdr, opts)
	}
	if hdr.ResourceTab != 0 && hdr.ResourceTab != hdr.ResidentTab {
		m.Resources, err = readResourceTable(c, addOffset(offset, hdr.ResourceTab), opts)
		if err != nil {
			opts.warnf("resource table: %v.", err)
		}
	}

	return m, nil
}

// Open parses the named file. The file stays open so that segment data
// can be read on demand; the caller owns the Module and must Close it.
func Open(name string, opts *Options) (*Module, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	offset, err := mz.NewHeaderOffset(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrInvalidModule, err)
	}
	m, err := Read(f, fi.Size(), offset, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	m.closer = f
	return m, nil
}

// Close releases the underlying file if the Module owns one.
func (m *Module) Close() error {
	if m.closer == nil {
		return nil
	}
	err := m.closer.Close()
	m.closer = nil
	return err
}

// SegmentData reads the file-backed bytes of the given 1-based segment.
// Segments with no data in the file (sector offset zero) yield nil.
func (m *Module) SegmentData(seg int) ([]byte, error) {
	if seg < 1 || seg > len(m.Segments) {
		return nil, fmt.Errorf("segment %d out of range", seg)
	}
	s := &m.Segments[seg-1]
	if s.Start == 0 || s.Length == 0 {
		return nil, nil
	}
	if !fits(s.Start, int64(s.Length), m.size) {
		return nil, fmt.Errorf("%w: segment %d data at 0x%x", ErrTruncated, seg, s.Start)
	}
	b := make([]byte, s.Length)
	if _, err := m.r.ReadAt(b, int64(s.Start)); err != nil {
		return nil, err
	}
	return b, nil
}

// ImportNameAt returns the length-prefixed name stored at off in the
// imported name blob, as referenced by import-by-name relocations.
func (m *Module) ImportNameAt(off uint16) (string, bool) {
	return nameFromBlob(m.importNames, off)
}
