//go:build !windows

package main

import (
	"ScanDaemon/internal"
	"os"
	"os/signal"
	"syscall"
)

// controlSignals returns a buffered channel receiving SIGUSR1 (restart) and
// SIGUSR2 (stop).
func controlSignals() chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1, syscall.SIGUSR2)
	return ch
}

func toControl(sig os.Signal) (internal.Signal, bool) {
	switch sig {
	case syscall.SIGUSR1:
		return internal.SignalRestart, true
	case syscall.SIGUSR2:
		return internal.SignalStop, true
	}
	return 0, false
}
