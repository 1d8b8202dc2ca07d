//go:build !windows

package internal

import (
	"fmt"
	"os"

	"github.com/sevlyar/go-daemon"
)

// Detach re-executes the current command detached from the controlling
// terminal with stdio on /dev/null. In the parent it returns the child
// process and the caller should exit. In the detached copy Reborn finishes
// the child setup (umask, stdin swap) and Detach returns nil.
//
// The child keeps the parent's working directory so relative paths given on
// the command line resolve the same way when it re-parses them.
func Detach() (*os.Process, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("daemonize: %w", err)
	}
	cntxt := &daemon.Context{
		WorkDir: wd,
		Umask:   detachUmask,
	}
	child, err := cntxt.Reborn()
	if err != nil {
		return nil, fmt.Errorf("daemonize: %w", err)
	}
	return child, nil
}
