package internal

import "sync/atomic"

// Signal is a control signal broadcast from the supervisor to workers.
type Signal int

const (
	SignalRestart Signal = iota + 1
	SignalStop
)

func (s Signal) String() string {
	switch s {
	case SignalRestart:
		return "restart"
	case SignalStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Notification is a coalescing, race-free "something happened" flag.
// Raise is idempotent. Take clears only what it observed: a Raise that
// lands after the flag was swapped stays pending, and leaves a wake token
// behind for Wait.
type Notification struct {
	set  atomic.Bool
	wake chan struct{}
}

func NewNotification() *Notification {
	return &Notification{wake: make(chan struct{}, 1)}
}

// Raise marks the notification and wakes a waiter. Never blocks.
func (n *Notification) Raise() {
	n.set.Store(true)
	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// Take reports whether the notification was set and clears it.
func (n *Notification) Take() bool {
	// drain first: a concurrent Raise then always leaves flag and token together
	select {
	case <-n.wake:
	default:
	}
	return n.set.Swap(false)
}

// Pending reports the flag without clearing it.
func (n *Notification) Pending() bool { return n.set.Load() }

// Wait returns a channel that receives after Raise. The token may be stale,
// callers confirm with Take or Pending.
func (n *Notification) Wait() <-chan struct{} { return n.wake }
