package internal

import (
	"sync/atomic"
	"time"

	"ScanDaemon/internal/scanner"
)

// AppStats atomic counters for one worker, safe to read from any goroutine.
type AppStats struct {
	start       time.Time
	Passes      atomic.Int64
	Interrupted atomic.Int64
	Matches     atomic.Int64
	Skips       scanner.SkipCounters
}

func (s *AppStats) Start() {
	s.start = time.Now()
}

func (s *AppStats) Elapsed() time.Duration {
	return time.Since(s.start)
}
