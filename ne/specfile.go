// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

package ne

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/exeutils/dumpne/demangle"
)

// Export is one ordinal-to-name pair from a specfile.
type Export struct {
	Ordinal uint16
	Name    string // "" when the specfile line carried only an ordinal
}

// SpecName returns the specfile name for a module: the first eight
// characters of the module name plus the ".ORD" suffix.
func SpecName(module string) string {
	if len(module) > 8 {
		module = module[:8]
	}
	return module + ".ORD"
}

// loadSpec locates and parses the specfile for the named module,
// searching the working directory and then the spec directory. Missing
// specfiles are expected; the note tells the user how to make one.
func loadSpec(module string, opts *Options) []Export {
	name := SpecName(module)
	f, err := os.Open(name)
	if err != nil {
		f, err = os.Open(filepath.Join(opts.specDir(), name))
		if err != nil {
			opts.notef("couldn't find specfile for module %s; exported names won't be given.", module)
			opts.diag().Printf("      To create a specfile, run `dumpne -o <module.dll>'.")
			return nil
		}
	}
	defer f.Close()
	return parseSpec(f, opts)
}

// parseSpec reads specfile text: '#' and blank lines are comments,
// every other line is a decimal ordinal optionally followed by a tab
// and a name. Lines that fail to parse are skipped, not fatal.
func parseSpec(r io.Reader, opts *Options) []Export {
	var exports []Export
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		ordField, name, hasName := strings.Cut(line, "\t")
		ordinal, err := strconv.ParseUint(strings.TrimSpace(ordField), 10, 16)
		if err != nil {
			opts.diag().Printf("Error reading specfile near line: `%s'", line)
			continue
		}
		if !hasName {
			name = ""
		} else if opts != nil && opts.Demangle && demangle.Mangled(name) {
			name = demangle.Demangle(name, opts.warnf)
		}
		exports = append(exports, Export{Ordinal: uint16(ordinal), Name: name})
	}
	if err := sc.Err(); err != nil {
		opts.warnf("reading specfile: %v.", err)
	}
	return exports
}

// WriteSpec writes the module's entry table as specfile text: a
// generator comment, then one line per ordinal. Named ordinals get a
// tab-separated name, unnamed but real ordinals a bare number, and
// placeholder ordinals (segment 0) nothing at all.
func (m *Module) WriteSpec(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# Generated by dumpne -o\n"); err != nil {
		return err
	}
	for i := range m.Entries {
		e := &m.Entries[i]
		var err error
		if e.Name != "" {
			_, err = fmt.Fprintf(w, "%d\t%s\n", i+1, e.Name)
		} else if e.Segment != 0 {
			_, err = fmt.Fprintf(w, "%d\n", i+1)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
