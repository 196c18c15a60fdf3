// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

package ne

import (
	"bytes"
	"encoding/binary"
	"log"
	"strings"
	"testing"
)

// nameRec encodes one name-table record.
func nameRec(name string, ordinal uint16) []byte {
	b := []byte{byte(len(name))}
	b = append(b, name...)
	return append(b, byte(ordinal), byte(ordinal>>8))
}

// testEntryTable is the entry table shared by the fixtures: two fixed
// entries in segment 1, one unused placeholder, one absolute movable
// entry.
var testEntryTable = []byte{
	2, 1, // bundle of two fixed records in segment 1
	3, 0x10, 0x00,
	3, 0x20, 0x00,
	1, 0x00, // one placeholder ordinal
	1, 0xff, // one movable record
	3, 0xcd, 0x3f, 0xfe, 0x10, 0x00,
	0,
}

// buildImage assembles a standalone NE image: header, module reference
// table, imported names, entry table, resident names, non-resident
// names. The NE header sits at offset 0.
func buildImage(t *testing.T) []byte {
	t.Helper()

	modtab := []byte{0x00, 0x00, 0x07, 0x00}
	blob := []byte{6, 'K', 'E', 'R', 'N', 'E', 'L', 4, 'U', 'S', 'E', 'R'}
	enttab := testEntryTable

	var restab []byte
	restab = append(restab, nameRec("MYMOD", 0)...)
	restab = append(restab, nameRec("FUNCONE", 1)...)
	restab = append(restab, nameRec("ABS", 4)...)
	restab = append(restab, 0)

	var nonres []byte
	nonres = append(nonres, nameRec("Test module", 0)...)
	nonres = append(nonres, nameRec("?Foo@@YAHXZ", 2)...)
	nonres = append(nonres, 0)

	modtabOff := headerSize
	imptabOff := modtabOff + len(modtab)
	enttabOff := imptabOff + len(blob)
	restabOff := enttabOff + len(enttab)
	nonresOff := restabOff + len(restab)

	hdr := Header{
		Magic:        Magic,
		LinkerVer:    5,
		LinkerRev:    1,
		EntryTab:     uint16(enttabOff),
		EntryTabLen:  uint16(len(enttab)),
		Flags:        0x0300,
		ModCount:     2,
		NonResTabLen: uint16(len(nonres)),
		ResidentTab:  uint16(restabOff),
		ModTab:       uint16(modtabOff),
		ImportTab:    uint16(imptabOff),
		NonResTab:    uint32(nonresOff),
		TargetOS:     OSWin16,
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &hdr); err != nil {
		t.Fatal(err)
	}
	buf.Write(modtab)
	buf.Write(blob)
	buf.Write(enttab)
	buf.Write(restab)
	buf.Write(nonres)
	return buf.Bytes()
}

// testOptions returns Options whose diagnostics land in the returned
// buffer.
func testOptions(t *testing.T) (*Options, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return &Options{Diag: log.New(&buf, "", 0)}, &buf
}

func TestReadModule(t *testing.T) {
	img := buildImage(t)
	opts, diag := testOptions(t)
	m, err := Read(bytes.NewReader(img), int64(len(img)), 0, opts)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if m.Name != "MYMOD" {
		t.Errorf("Name = %q, want MYMOD", m.Name)
	}
	if m.Description != "Test module" {
		t.Errorf("Description = %q, want Test module", m.Description)
	}

	want := []Entry{
		{Flags: 3, Segment: 1, Offset: 0x10, Name: "FUNCONE"},
		{Flags: 3, Segment: 1, Offset: 0x20, Name: "?Foo@@YAHXZ"},
		{},
		{Flags: 3, Segment: SegAbsolute, Offset: 0x10, Name: "ABS"},
	}
	if len(m.Entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(m.Entries), len(want))
	}
	for i := range want {
		if m.Entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i+1, m.Entries[i], want[i])
		}
	}

	if len(m.Imports) != 2 || m.Imports[0].Name != "KERNEL" || m.Imports[1].Name != "USER" {
		t.Errorf("imports = %+v, want KERNEL and USER", m.Imports)
	}
	if name, ok := m.ImportNameAt(7); !ok || name != "USER" {
		t.Errorf("ImportNameAt(7) = %q, %v, want USER", name, ok)
	}

	if diag.Len() != 0 {
		t.Errorf("unexpected diagnostics:\n%s", diag.String())
	}
}

func TestReadModuleDemangles(t *testing.T) {
	img := buildImage(t)
	opts, _ := testOptions(t)
	opts.Demangle = true
	m, err := Read(bytes.NewReader(img), int64(len(img)), 0, opts)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got, want := m.Entries[1].Name, "near int Foo(void)"; got != want {
		t.Errorf("entry 2 name = %q, want %q", got, want)
	}
}

func TestReadModuleBadSignature(t *testing.T) {
	img := buildImage(t)
	img[0] = 'P'
	opts, _ := testOptions(t)
	if _, err := Read(bytes.NewReader(img), int64(len(img)), 0, opts); err == nil {
		t.Fatal("Read accepted a bad signature")
	}
}

func TestReadModuleTruncatedTables(t *testing.T) {
	// Cut the file off inside the entry table. The header still parses
	// so Read must succeed, with the damage reported instead.
	img := buildImage(t)
	hdrOnly := img[:headerSize+10]
	opts, diag := testOptions(t)
	m, err := Read(bytes.NewReader(hdrOnly), int64(len(hdrOnly)), 0, opts)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(m.Entries) != 0 {
		t.Errorf("got %d entries from a truncated table", len(m.Entries))
	}
	if !strings.Contains(diag.String(), "entry table") {
		t.Errorf("diagnostics do not mention the entry table:\n%s", diag.String())
	}
}
