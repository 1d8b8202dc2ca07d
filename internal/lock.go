package internal

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/gofrs/flock"
)

var ErrAlreadyRunning = errors.New("another instance is already running")

// PIDLock is an exclusive advisory lock on a file that also records our pid.
type PIDLock struct {
	flock *flock.Flock
	path  string
}

// AcquirePIDLock takes the lock without blocking and writes the pid into it.
// Returns ErrAlreadyRunning when another process holds it.
func AcquirePIDLock(path string) (*PIDLock, error) {
	fl := flock.New(path)
	acquired, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to try lock on %s: %w", path, err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, path)
	}
	pid := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(path, []byte(pid), 0644); err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("failed to write pid to %s: %w", path, err)
	}
	return &PIDLock{flock: fl, path: path}, nil
}

// ProbePIDLock reports ErrAlreadyRunning without keeping the lock. Used to
// fail fast in the foreground before detaching.
func ProbePIDLock(path string) error {
	fl := flock.New(path)
	acquired, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("failed to try lock on %s: %w", path, err)
	}
	if !acquired {
		return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, path)
	}
	return fl.Unlock()
}

// Release removes the pid file and drops the lock.
func (l *PIDLock) Release() error {
	_ = os.Remove(l.path)
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}
