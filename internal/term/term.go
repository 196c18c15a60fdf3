// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package term answers one question: can diagnostics written to this
// file use ANSI color escapes.
package term

import "os"

// Colorable reports whether f is an interactive terminal able to
// render ANSI escapes, enabling virtual-terminal processing first
// where the platform requires it.
func Colorable(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return colorable(f)
}
