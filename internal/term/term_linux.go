// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

package term

import (
	"os"

	"golang.org/x/sys/unix"
)

func colorable(f *os.File) bool {
	_, err := unix.IoctlGetTermios(int(f.Fd()), unix.TCGETS)
	return err == nil
}
