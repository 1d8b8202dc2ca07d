package internal

import (
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"ScanDaemon/internal/scanner"
)

// fakeScanner emits a fixed set of names per pass. With block set, a pass
// only ends once it is interrupted.
type fakeScanner struct {
	names []string
	block bool
	panic func(pattern string) bool

	mu     sync.Mutex
	passes map[string]*atomic.Int64
}

func newFakeScanner(names ...string) *fakeScanner {
	return &fakeScanner{names: names, passes: make(map[string]*atomic.Int64)}
}

func (f *fakeScanner) counter(pattern string) *atomic.Int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.passes[pattern]
	if !ok {
		c = new(atomic.Int64)
		f.passes[pattern] = c
	}
	return c
}

// Passes returns the number of started passes for a pattern.
func (f *fakeScanner) Passes(pattern string) int64 { return f.counter(pattern).Load() }

func (f *fakeScanner) Scan(req scanner.Request, irq scanner.Interrupter) iter.Seq[scanner.MatchEvent] {
	return func(yield func(scanner.MatchEvent) bool) {
		f.counter(req.Pattern).Add(1)
		if f.panic != nil && f.panic(req.Pattern) {
			panic("scanner exploded")
		}
		for _, n := range f.names {
			if irq.Interrupted() {
				return
			}
			if !yield(scanner.MatchEvent{Path: "/" + n, Pattern: req.Pattern, Pass: req.Pass, Time: time.Now()}) {
				return
			}
		}
		for f.block && !irq.Interrupted() {
			time.Sleep(time.Millisecond)
		}
	}
}
