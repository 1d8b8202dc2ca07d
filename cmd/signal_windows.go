//go:build windows

package main

import (
	"ScanDaemon/internal"
	"os"
)

// No user signals on windows; the channel never fires.
func controlSignals() chan os.Signal {
	return make(chan os.Signal, 1)
}

func toControl(os.Signal) (internal.Signal, bool) {
	return 0, false
}
