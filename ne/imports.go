// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

package ne

import "fmt"

// ImportModule is one module named by the module-reference table, with
// any exported names resolved from its specfile.
type ImportModule struct {
	Name    string
	Exports []Export
}

// ExportName returns the resolved name for one of the module's
// ordinals, or "" when the specfile did not supply one.
func (im *ImportModule) ExportName(ordinal uint16) string {
	for i := range im.Exports {
		if im.Exports[i].Ordinal == ordinal {
			return im.Exports[i].Name
		}
	}
	return ""
}

// readImportNames pulls in the imported-name blob, the run of
// length-prefixed names between the imported-name table offset and the
// entry table offset. The format gives the blob no length field of its
// own; the entry table starting right after it is load-bearing.
func readImportNames(c *cursor, start, end int64) ([]byte, error) {
	if end <= start {
		return nil, nil
	}
	if !fits(start, end-start, c.size) {
		return nil, fmt.Errorf("%w: imported names at 0x%x..0x%x", ErrTruncated, start, end)
	}
	c.seek(start)
	blob := c.bytes(int(end - start))
	return blob, c.Err()
}

// nameFromBlob decodes the length-prefixed name at off.
func nameFromBlob(blob []byte, off uint16) (string, bool) {
	if int(off) >= len(blob) {
		return "", false
	}
	body := blob[int(off)+1:]
	n := int(blob[off])
	if n > len(body) {
		return "", false
	}
	return string(body[:n]), true
}

// readImportModules reads the module-reference table: one 2-byte offset
// into the imported-name blob per referenced module. Specfiles are only
// consulted when the caller asked for export-name resolution.
func readImportModules(c *cursor, start int64, count int, blob []byte, opts *Options) []ImportModule {
	c.seek(start)
	mods := make([]ImportModule, 0, count)
	for i := 0; i < count; i++ {
		off := c.u16()
		if err := c.Err(); err != nil {
			opts.warnf("module reference table: %v.", err)
			break
		}
		name, ok := nameFromBlob(blob, off)
		if !ok {
			opts.warnf("module reference %d points at 0x%x, outside the imported name table.", i+1, off)
		}
		mod := ImportModule{Name: name}
		if opts != nil && opts.ResolveImports && name != "" {
			mod.Exports = loadSpec(name, opts)
		}
		mods = append(mods, mod)
	}
	return mods
}
