// Copyright 2025 The tapdict Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// tapc compiles wordlists into tapdict dictionaries and queries them.
package main

import (
	"os"

	"github.com/bastiangx/tapdict/cmd/tapc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
