// SPDX-License-Identifier: EPL-2.0

// Command dawcore plays, decodes and inspects audio files with the dawcore
// engine.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
