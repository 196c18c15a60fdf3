// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

package disasm

import (
	"bytes"
	"encoding/binary"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/exeutils/dumpne/ne"
)

// buildCodeImage assembles an NE image whose single code segment holds
// a couple of real-mode instructions.
func buildCodeImage(t *testing.T) []byte {
	t.Helper()
	code := []byte{
		0xb8, 0x01, 0x00, // mov ax, 1
		0xcd, 0x21, // int 0x21
		0xc3, // ret
	}
	hdr := ne.Header{
		Magic:    ne.Magic,
		SegCount: 1,
		SegTab:   64,
		Align:    7, // sector 1 lands the data at file offset 128
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &hdr); err != nil {
		t.Fatal(err)
	}
	// Segment table: sector 1, data length, code, minalloc.
	binary.Write(&buf, binary.LittleEndian, []uint16{1, uint16(len(code)), 0, uint16(len(code))})
	buf.Write(make([]byte, 128-buf.Len()))
	buf.Write(code)
	return buf.Bytes()
}

func TestSegmentsListing(t *testing.T) {
	img := buildCodeImage(t)
	m, err := ne.Read(bytes.NewReader(img), int64(len(img)), 0, &ne.Options{
		LoadSegments: true,
		Diag:         log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("ne.Read: %v", err)
	}
	if len(m.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(m.Segments))
	}

	var buf bytes.Buffer
	if err := Segments(&buf, m, nil); err != nil {
		t.Fatalf("Segments: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "Segment 1: code") {
		t.Errorf("listing missing segment header:\n%s", got)
	}
	for _, mnemonic := range []string{"mov", "int", "ret"} {
		if !strings.Contains(got, mnemonic) {
			t.Errorf("listing missing %q:\n%s", mnemonic, got)
		}
	}
	// Raw bytes and offsets are shown by default.
	if !strings.Contains(got, "b8 01 00") {
		t.Errorf("listing missing raw bytes:\n%s", got)
	}
	if !strings.Contains(got, "0000:") {
		t.Errorf("listing missing offsets:\n%s", got)
	}
}

func TestParseSyntax(t *testing.T) {
	for name, want := range map[string]Syntax{
		"att": GNU, "gas": GNU,
		"intel": Intel, "masm": Intel, "nasm": Intel,
	} {
		got, err := ParseSyntax(name)
		if err != nil || got != want {
			t.Errorf("ParseSyntax(%q) = %v, %v, want %v", name, got, err, want)
		}
	}
	if _, err := ParseSyntax("z80"); err == nil {
		t.Error("ParseSyntax accepted an unknown dialect")
	}
}

func TestTargetResolution(t *testing.T) {
	m := &ne.Module{Imports: []ne.ImportModule{{
		Name:    "KERNEL",
		Exports: []ne.Export{{Ordinal: 23, Name: "GetVersion"}},
	}}}
	tests := []struct {
		r    ne.Reloc
		want string
	}{
		{ne.Reloc{RType: ne.RelocImportOrd, Target1: 1, Target2: 23}, "KERNEL.GetVersion"},
		{ne.Reloc{RType: ne.RelocImportOrd, Target1: 1, Target2: 99}, "KERNEL.99"},
		{ne.Reloc{RType: ne.RelocImportOrd | ne.RelocAdditive, Target1: 1, Target2: 23}, "KERNEL.GetVersion"},
		{ne.Reloc{RType: ne.RelocImportOrd, Target1: 5, Target2: 1}, "module 5 ordinal 1"},
		{ne.Reloc{RType: ne.RelocInternal, Target1: 2, Target2: 0x10}, "2:0010"},
		{ne.Reloc{RType: ne.RelocInternal, Target1: 0xff, Target2: 3}, "entry 3"},
		{ne.Reloc{RType: ne.RelocOSFixup, Target1: 1}, "OS fixup 1"},
	}
	for _, tt := range tests {
		if got := target(m, tt.r); got != tt.want {
			t.Errorf("target(%+v) = %q, want %q", tt.r, got, tt.want)
		}
	}
}
