// Copyright (c) The dumpne Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !linux && !windows

package term

import "os"

func colorable(*os.File) bool { return false }
