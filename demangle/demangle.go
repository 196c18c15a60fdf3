// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package demangle decodes the C++ name mangling scheme found in
// 16-bit Windows binaries built by early Microsoft compilers. The
// scheme predates any documented one; the closest published relative
// is the scheme in Agner Fog's calling-convention manual, and the
// rules here were recovered from observed compiler output.
//
// Decoding is best-effort: a name the grammar cannot account for is
// returned unchanged, never rejected.
package demangle

import "strings"

// anchor separates the reversed scope chain from the modifier and type
// encoding.
const anchor = "@@"

// maxTypeDepth caps pointer/reference nesting. Real output nests a
// couple of levels at most; anything deeper is a damaged or hostile
// name.
const maxTypeDepth = 32

// WarnFunc receives diagnostics about constructs the decoder does not
// recognize. It may be nil.
type WarnFunc func(format string, args ...any)

// Mangled reports whether name carries the mangling sentinel.
func Mangled(name string) bool {
	return len(name) > 0 && name[0] == '?'
}

// Demangle decodes a mangled C++ name into a readable declaration.
// Names the grammar does not match come back byte-for-byte unchanged.
func Demangle(name string, warn WarnFunc) string {
	i := strings.Index(name, anchor)
	if i < 0 {
		return name
	}
	d := &decoder{in: name, warn: warn}
	if !d.run(i) {
		return name
	}
	return d.out.String()
}

type decoder struct {
	in   string
	warn WarnFunc
	out  strings.Builder
	deep bool // type recursion blew the depth cap
}

func (d *decoder) warnf(format string, args ...any) {
	if d.warn != nil {
		d.warn(format, args...)
	}
}

// run decodes the whole name. anchorPos is the position of the first
// anchor; the declaration is assembled as modifiers, calling
// convention, return type, qualified name, argument list.
func (d *decoder) run(anchorPos int) bool {
	p := anchorPos + 2
	var prot byte
	n := d.protection(p, &prot, 0)
	if n == 0 {
		return false
	}
	p += n

	// Non-static functions carry one more letter here, always E or F
	// in observed output. Its meaning is unknown; it is consumed and
	// dropped either way.
	if prot >= 'A' && prot <= 'V' && (prot-'A')&2 == 0 {
		if p >= len(d.in) {
			return false
		}
		if c := d.in[p]; c != 'E' && c != 'F' {
			d.warnf("Unknown modifier %c for function %s", c, d.in)
		}
		p++
	}

	// Calling convention. A is cdecl and implicit; the function bodies
	// corroborate it, so nothing is printed.
	if p >= len(d.in) {
		return false
	}
	switch d.in[p] {
	case 'A':
	case 'C':
		d.out.WriteString("__pascal ")
	default:
		d.warnf("Unknown calling convention %c for function %s", d.in[p], d.in)
	}
	p++

	if p >= len(d.in) {
		return false
	}
	n = d.typ(&d.out, p, 0)
	if d.deep {
		return false
	}
	if n == 0 {
		d.warnf("Unknown return type %c for function %s", d.in[p], d.in)
		n = 1
	}
	p += n

	// The declared name and its enclosing scopes precede the anchor in
	// reverse order. Walk backward from the anchor, re-emitting the
	// segments outward-in, until the sentinel is reached.
	start, end := anchorPos, anchorPos
	for {
		start--
		for start >= 0 && d.in[start] != '?' && d.in[start] != '@' {
			start--
		}
		if start < 0 {
			return false
		}
		d.out.WriteString(d.in[start+1 : end])
		if d.in[start] == '?' {
			break
		}
		d.out.WriteString("::")
		end = start
	}

	// Argument list. A lone X is (void); otherwise types repeat up to
	// the closing '@'.
	if p < len(d.in) && d.in[p] == 'X' {
		d.out.WriteString("(void)")
		return true
	}
	var args []string
	for p < len(d.in) && d.in[p] != '@' {
		var sb strings.Builder
		n := d.typ(&sb, p, 0)
		if d.deep {
			return false
		}
		if n == 0 {
			d.warnf("Unknown argument type %c for function %s", d.in[p], d.in)
			n = 1
		}
		args = append(args, strings.TrimSuffix(sb.String(), " "))
		p += n
	}
	d.out.WriteByte('(')
	d.out.WriteString(strings.Join(args, ", "))
	d.out.WriteByte(')')
	return true
}

// protection decodes the modifier letter after the anchor and reports
// how many characters it covered, zero on failure. prot receives the
// effective 'A'..'V' letter when one applies, so that run knows
// whether the E/F marker follows.
func (d *decoder) protection(p int, prot *byte, depth int) int {
	if p >= len(d.in) {
		return 0
	}
	c := d.in[p]
	switch {
	case c >= 'A' && c <= 'V':
		b := c - 'A'
		if b&2 != 0 {
			d.out.WriteString("static ")
		}
		if b&4 != 0 {
			d.out.WriteString("virtual ")
		}
		if b&1 == 0 {
			d.out.WriteString("near ")
		}
		switch b & 24 {
		case 0:
			d.out.WriteString("private ")
		case 8:
			d.out.WriteString("protected ")
		case 16:
			d.out.WriteString("public ")
		}
		*prot = c
		return 1
	case c == 'Y':
		d.out.WriteString("near ")
		return 1
	case c == 'Z':
		// Far, strictly, but exported functions are almost always far
		// and marking them all would be noise.
		return 1
	case c == 'X':
		// Meaning unknown. Observed followed by either a digit or a
		// run of text ending at '@'.
		*prot = 'V'
		if p+1 < len(d.in) && d.in[p+1] >= '0' && d.in[p+1] <= '9' {
			d.out.WriteString("(X")
			d.out.WriteByte(d.in[p+1])
			d.out.WriteString(") ")
			return 2
		}
		at := strings.IndexByte(d.in[p:], '@')
		if at < 0 {
			return 0
		}
		return at + 1
	case c == '_' && p+1 < len(d.in) && d.in[p+1] != '$':
		// Doubled form: another modifier letter follows immediately
		// (often V), then two characters of which the second is
		// usually a digit. One level of nesting only.
		if depth > 0 {
			d.warnf("Unknown modifier %c for function %s", c, d.in)
			return 0
		}
		if d.protection(p+1, prot, depth+1) == 0 {
			return 0
		}
		if p+3 < len(d.in) && d.in[p+3] >= '0' && d.in[p+3] <= '9' {
			d.out.WriteString("(_")
			d.out.WriteByte(d.in[p+2])
			d.out.WriteByte(d.in[p+3])
			d.out.WriteString(") ")
			return 4
		}
		at := strings.IndexByte(d.in[p:], '@')
		if at < 0 {
			return 0
		}
		return at + 1
	default:
		d.warnf("Unknown modifier %c for function %s", c, d.in)
		return 0
	}
}

// intTypes maps the letters C..K onto the built-in integer types.
var intTypes = [...]string{
	"signed char",    // C
	"char",           // D
	"unsigned char",  // E
	"short",          // F
	"unsigned short", // G
	"int",            // H
	"unsigned int",   // I
	"long",           // J
	"unsigned long",  // K
}

// typ decodes one type at p into sb and reports how many characters it
// covered, zero when the letter is not a type.
func (d *decoder) typ(sb *strings.Builder, p, depth int) int {
	if p >= len(d.in) {
		return 0
	}
	c := d.in[p]
	if c >= 'C' && c <= 'K' {
		sb.WriteString(intTypes[c-'C'])
		sb.WriteByte(' ')
		return 1
	}
	switch c {
	case 'A', 'P':
		if p+2 >= len(d.in) {
			return 0
		}
		if depth >= maxTypeDepth {
			d.warnf("Type in %s nests too deeply", d.in)
			d.deep = true
			return 0
		}
		q := d.in[p+1] - 'A'
		if q&1 != 0 {
			sb.WriteString("const ")
		}
		if q&2 != 0 {
			sb.WriteString("volatile ")
		}
		n := d.typ(sb, p+2, depth+1)
		if d.deep {
			return 0
		}
		if q&4 == 0 {
			sb.WriteString("near ")
		}
		if c == 'A' {
			sb.WriteByte('&')
		} else {
			sb.WriteByte('*')
		}
		return n + 2
	case 'M':
		sb.WriteString("float ")
		return 1
	case 'N':
		sb.WriteString("double ")
		return 1
	case 'X':
		sb.WriteString("void ")
		return 1
	case 'U', 'V':
		// A struct (U) or other named type (V); the name runs to the
		// next anchor, or a single '@' when no anchor follows.
		end := strings.Index(d.in[p:], anchor)
		if end < 0 {
			end = strings.IndexByte(d.in[p:], '@')
			if end < 0 {
				return 0
			}
		}
		sb.WriteString(d.in[p+1 : p+end])
		sb.WriteByte(' ')
		return end
	}
	return 0
}
