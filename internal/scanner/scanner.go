package scanner

import (
	"iter"
	"sync/atomic"
	"time"
)

// Request describes a single scan pass.
type Request struct {
	Root     string
	Pattern  string
	Depth    int  // 0 - unlimited
	Archives bool // also match entry names inside archives
	Pass     string
	Skips    *SkipCounters // nil - not counted
}

// SkipCounters count what a walk had to leave out.
type SkipCounters struct {
	Denied    atomic.Int64 // entries failing the access check
	DirErrors atomic.Int64 // directories that could not be opened or read
}

// MatchEvent is emitted once per matching entry per pass.
type MatchEvent struct {
	Path      string
	InnerPath string
	Pattern   string
	Pass      string
	Time      time.Time
}

// Interrupter is polled by the walk before every directory entry.
type Interrupter interface {
	Interrupted() bool
}

// InterruptFunc adapts a plain func to Interrupter.
type InterruptFunc func() bool

func (f InterruptFunc) Interrupted() bool { return f() }

// Never is an Interrupter that is never set.
var Never Interrupter = InterruptFunc(func() bool { return false })

// Scanner is the interface for name scanners.
type Scanner interface {
	Scan(req Request, irq Interrupter) iter.Seq[MatchEvent]
}
