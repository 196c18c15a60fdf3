// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command dumpne disassembles and prints information from NE ("New
// Executable") files. Each input file is processed independently: a
// file that cannot be parsed is reported and the remaining files are
// still handled.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/exeutils/dumpne/disasm"
	"github.com/exeutils/dumpne/internal/term"
	"github.com/exeutils/dumpne/mz"
	"github.com/exeutils/dumpne/ne"
)

const version = "1.0"

var (
	dumpHeader    bool
	dumpExports   bool
	dumpImports   bool
	dumpResources bool
	disassemble   bool
	makeSpec      bool
	demangleNames bool
	allHeaders    bool
	syntaxName    string
	hideAddresses bool
	hideRaw       bool
	showVersion   bool
)

func boolFlag(p *bool, usage string, names ...string) {
	for _, name := range names {
		flag.BoolVar(p, name, false, usage)
	}
}

func init() {
	flag.Usage = usage
	boolFlag(&dumpHeader, "print contents of the file header", "f", "file-headers")
	boolFlag(&dumpExports, "print exported functions", "e", "exports")
	boolFlag(&dumpImports, "print imported modules", "i", "imports")
	boolFlag(&dumpResources, "print embedded resources", "a", "resource")
	boolFlag(&disassemble, "print disassembled machine code", "d", "disassemble")
	boolFlag(&makeSpec, "create a specfile from exports", "o", "specfile")
	boolFlag(&demangleNames, "demangle C++ function names", "C", "demangle")
	boolFlag(&allHeaders, "print all headers", "x", "all-headers")
	boolFlag(&showVersion, "print the version number of dumpne", "v", "version")
	flag.BoolVar(&hideAddresses, "no-show-addresses", false, "don't print instruction addresses")
	flag.BoolVar(&hideRaw, "no-show-raw-insn", false, "don't print raw instruction hex code")
	flag.StringVar(&syntaxName, "M", "intel", "disassembly syntax: att, gas, intel, masm, nasm")
	flag.StringVar(&syntaxName, "disassembler-options", "intel", "disassembly syntax: att, gas, intel, masm, nasm")
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "dumpne: tool to disassemble and print information from NE executable files.")
	fmt.Fprintln(out, "Usage: dumpne [options] <file(s)>")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()
	if showVersion {
		fmt.Println("dumpne version " + version)
		return
	}
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	diag := log.New(newDiagWriter(os.Stderr), "", 0)
	status := 0
	for i, name := range flag.Args() {
		if i > 0 {
			fmt.Printf("\n\n")
		}
		if err := dumpFile(name, diag); err != nil {
			diag.Printf("%s: %v", name, err)
			status = 1
		}
	}
	os.Exit(status)
}

// dumpFile sniffs the file format and dispatches. DOS executables with
// no extended header get the MZ dump; PE is recognized but out of
// scope.
func dumpFile(name string, diag *log.Logger) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return err
	}

	fmt.Printf("File: %s\n", name)

	hdr, err := mz.ReadHeader(f)
	if err != nil {
		return fmt.Errorf("file format not recognized: %w", err)
	}
	off, err := mz.NewHeaderOffset(f)
	if err != nil {
		hdr.Dump(os.Stdout)
		return nil
	}
	var magic [2]byte
	if _, err := f.ReadAt(magic[:], off); err != nil {
		hdr.Dump(os.Stdout)
		return nil
	}
	switch {
	case magic[0] == 'N' && magic[1] == 'E':
		return dumpNE(f, fi.Size(), off, diag)
	case magic[0] == 'P' && magic[1] == 'E':
		return fmt.Errorf("PE executables are not supported")
	default:
		hdr.Dump(os.Stdout)
		return nil
	}
}

func dumpNE(f *os.File, size, off int64, diag *log.Logger) error {
	anyMode := dumpHeader || dumpExports || dumpImports || dumpResources ||
		disassemble || makeSpec || allHeaders
	wantHeader := dumpHeader || allHeaders || !anyMode
	wantExports := dumpExports || allHeaders || !anyMode
	wantImports := dumpImports || allHeaders || !anyMode
	wantResources := dumpResources || !anyMode
	wantDisasm := disassemble || !anyMode

	var dopts disasm.Options
	if wantDisasm {
		syn, err := disasm.ParseSyntax(syntaxName)
		if err != nil {
			return err
		}
		dopts = disasm.Options{
			Syntax:        syn,
			HideAddresses: hideAddresses,
			HideRaw:       hideRaw,
		}
	}

	m, err := ne.Read(f, size, off, &ne.Options{
		Demangle:       demangleNames,
		ResolveImports: wantDisasm,
		LoadSegments:   wantDisasm,
		Diag:           diag,
	})
	if err != nil {
		return err
	}

	if makeSpec {
		if err := writeSpecfile(m); err != nil {
			return err
		}
	}

	fmt.Printf("Module type: NE (New Executable)\n")
	fmt.Printf("Module name: %s\n", m.Name)
	fmt.Printf("Module description: %s\n\n", m.Description)

	if wantHeader {
		m.DumpHeader(os.Stdout)
	}
	if wantExports {
		m.DumpExports(os.Stdout)
	}
	if wantImports {
		m.DumpImports(os.Stdout)
	}
	if wantDisasm {
		if err := disasm.Segments(os.Stdout, m, &dopts); err != nil {
			diag.Printf("Warning: %v.", err)
		}
	}
	if wantResources {
		m.DumpResources(os.Stdout)
	}
	return nil
}

func writeSpecfile(m *ne.Module) error {
	f, err := os.Create(ne.SpecName(m.Name))
	if err != nil {
		return err
	}
	if err := m.WriteSpec(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// diagWriter colors the Warning:/Note: prefixes the ne package puts on
// its diagnostics, when stderr is a terminal.
type diagWriter struct {
	w     io.Writer
	color bool
}

func newDiagWriter(f *os.File) io.Writer {
	return &diagWriter{w: f, color: term.Colorable(f)}
}

func (d *diagWriter) Write(p []byte) (int, error) {
	if !d.color {
		return d.w.Write(p)
	}
	s := string(p)
	switch {
	case strings.HasPrefix(s, "Warning:"):
		s = "\x1b[33mWarning:\x1b[0m" + s[len("Warning:"):]
	case strings.HasPrefix(s, "Note:"):
		s = "\x1b[36mNote:\x1b[0m" + s[len("Note:"):]
	}
	if _, err := io.WriteString(d.w, s); err != nil {
		return 0, err
	}
	return len(p), nil
}
