package internal

import (
	"context"
	"sync/atomic"
	"time"

	"ScanDaemon/internal/scanner"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// WorkerState is the scan/sleep state of a worker.
type WorkerState int32

const (
	StateScanning WorkerState = iota
	StateSleeping
	StateTerminated
)

func (s WorkerState) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateSleeping:
		return "sleeping"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Worker repeatedly scans all roots for one pattern.
//
//	Scanning --pass done--> Sleeping --interval--> Scanning
//	Scanning --stop--> Sleeping
//	Scanning|Sleeping --restart--> Scanning
type Worker struct {
	pattern  string
	roots    []string
	interval time.Duration
	depth    int
	archives bool

	scan scanner.Scanner
	sink func(scanner.MatchEvent)
	log  *logrus.Entry

	stop    *Notification
	restart *Notification
	state   atomic.Int32

	Stats AppStats
}

func NewWorker(pattern string, opts Options, sc scanner.Scanner, log *logrus.Logger) *Worker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	w := &Worker{
		pattern:  pattern,
		roots:    opts.Roots,
		interval: opts.Interval,
		depth:    opts.Depth,
		archives: opts.Archives,
		scan:     sc,
		log:      log.WithField("pattern", pattern),
		stop:     NewNotification(),
		restart:  NewNotification(),
	}
	w.sink = NewMatchSink(log, &w.Stats)
	w.state.Store(int32(StateSleeping))
	return w
}

func (w *Worker) Pattern() string { return w.pattern }

func (w *Worker) State() WorkerState { return WorkerState(w.state.Load()) }

// Signal delivers a control signal. Safe from any goroutine, never blocks.
func (w *Worker) Signal(sig Signal) {
	switch sig {
	case SignalRestart:
		w.restart.Raise()
	case SignalStop:
		w.stop.Raise()
	}
	w.log.WithField("signal", sig).Debug("Signal received")
}

// Run loops until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	defer w.state.Store(int32(StateTerminated))
	w.Stats.Start()

	irq := scanner.InterruptFunc(func() bool {
		return w.stop.Pending() || w.restart.Pending() || ctx.Err() != nil
	})

	timer := time.NewTimer(w.interval)
	timer.Stop()
	defer timer.Stop()

	for ctx.Err() == nil {
		w.stop.Take()
		w.restart.Take()
		w.state.Store(int32(StateScanning))

		pass := uuid.NewString()
		log := w.log.WithField("pass", pass)
		log.Info("Pass started")

		start := time.Now()
		before := w.Stats.Matches.Load()
		deniedBefore := w.Stats.Skips.Denied.Load()
		dirErrBefore := w.Stats.Skips.DirErrors.Load()
		for _, root := range w.roots {
			req := scanner.Request{
				Root:     root,
				Pattern:  w.pattern,
				Depth:    w.depth,
				Archives: w.archives,
				Pass:     pass,
				Skips:    &w.Stats.Skips,
			}
			for ev := range w.scan.Scan(req, irq) {
				w.sink(ev)
			}
			if irq.Interrupted() {
				break
			}
		}
		if ctx.Err() != nil {
			log.Info("Worker shutting down")
			return
		}

		stopped, restarted := w.stop.Take(), w.restart.Take()
		w.Stats.Passes.Add(1)
		fields := logrus.Fields{
			"matches":    w.Stats.Matches.Load() - before,
			"denied":     w.Stats.Skips.Denied.Load() - deniedBefore,
			"dir_errors": w.Stats.Skips.DirErrors.Load() - dirErrBefore,
			"elapsed":    time.Since(start).Round(time.Millisecond),
		}
		if stopped || restarted {
			w.Stats.Interrupted.Add(1)
			log.WithFields(fields).WithField("restart", restarted).Info("Pass interrupted")
		} else {
			log.WithFields(fields).Info("Pass completed")
		}

		if restarted {
			continue
		}

		w.state.Store(int32(StateSleeping))
		log.WithField("interval", w.interval).Debug("Sleeping")
		timer.Reset(w.interval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			log.Debug("Woke up")
		case <-w.restart.Wait():
			timer.Stop()
			log.Debug("Sleep cut short by restart")
		}
	}
}
