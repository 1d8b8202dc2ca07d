package internal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"ScanDaemon/internal/scanner"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

var ErrWorkerStart = errors.New("cannot start worker")

type workerExit struct {
	worker *Worker
	status int
}

// Supervisor owns one Worker per pattern. It relays Restart/Stop to all of
// them and reaps at most one exited worker per tick.
type Supervisor struct {
	opts Options
	scan scanner.Scanner
	log  *logrus.Logger
	pool *ants.Pool

	mu      sync.Mutex
	workers map[string]*Worker

	restart *Notification
	stop    *Notification
	exited  chan workerExit
	wg      sync.WaitGroup
}

func NewSupervisor(opts Options, sc scanner.Scanner, log *logrus.Logger) (*Supervisor, error) {
	if len(opts.Patterns) == 0 {
		return nil, ErrNoPatterns
	}
	if opts.Interval <= 0 {
		return nil, ErrBadInterval
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	// Submit fails instead of blocking. Two slots per pattern: a respawned
	// worker may start before the exited one has returned its slot.
	pool, err := ants.NewPool(2*len(opts.Patterns),
		ants.WithNonblocking(true),
		ants.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("pool: %w", err)
	}
	return &Supervisor{
		opts:    opts,
		scan:    sc,
		log:     log,
		pool:    pool,
		workers: make(map[string]*Worker, len(opts.Patterns)),
		restart: NewNotification(),
		stop:    NewNotification(),
		// one slot per pattern: a pattern never has more than one unreaped exit
		exited: make(chan workerExit, len(opts.Patterns)),
	}, nil
}

// Restart asks every live worker to start a fresh pass. Never blocks.
func (s *Supervisor) Restart() { s.restart.Raise() }

// Stop asks every live worker to abandon its current pass. Never blocks.
func (s *Supervisor) Stop() { s.stop.Raise() }

// Live returns the patterns of workers not yet reaped.
func (s *Supervisor) Live() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.workers))
	for p := range s.workers {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Run starts all workers and runs the tick loop until ctx is cancelled.
// A worker that cannot be started aborts the whole set.
func (s *Supervisor) Run(ctx context.Context) error {
	defer s.pool.Release()

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, p := range s.opts.Patterns {
		if err := s.spawn(wctx, p); err != nil {
			cancel()
			s.wg.Wait()
			s.drain(wctx)
			return fmt.Errorf("%w for pattern %q: %w", ErrWorkerStart, p, err)
		}
	}
	s.log.WithFields(logrus.Fields{
		"workers":  len(s.opts.Patterns),
		"interval": s.opts.Interval,
	}).Info("Supervisor started")

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		s.tick(wctx)
		select {
		case <-ctx.Done():
			cancel()
			s.shutdown(wctx)
			return nil
		case <-ticker.C:
		case <-s.restart.Wait():
		case <-s.stop.Wait():
		}
	}
}

func (s *Supervisor) tick(ctx context.Context) {
	if s.restart.Take() {
		s.log.Info("Forwarding restart to workers")
		s.broadcast(SignalRestart)
	}
	if s.stop.Take() {
		s.log.Info("Forwarding stop to workers")
		s.broadcast(SignalStop)
	}
	select {
	case ex := <-s.exited:
		s.reap(ctx, ex)
	default:
	}
}

func (s *Supervisor) broadcast(sig Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.workers {
		w.Signal(sig)
	}
}

func (s *Supervisor) spawn(ctx context.Context, pattern string) error {
	w := NewWorker(pattern, s.opts, s.scan, s.log)

	s.wg.Add(1)
	err := s.pool.Submit(func() {
		defer s.wg.Done()
		defer func() {
			status := 0
			if r := recover(); r != nil {
				status = 1
				s.log.WithField("pattern", pattern).Errorf("Worker panicked: %v", r)
			}
			s.exited <- workerExit{worker: w, status: status}
		}()
		w.Run(ctx)
	})
	if err != nil {
		s.wg.Done()
		return err
	}

	s.mu.Lock()
	s.workers[pattern] = w
	s.mu.Unlock()
	return nil
}

func (s *Supervisor) reap(ctx context.Context, ex workerExit) {
	w := ex.worker
	s.mu.Lock()
	if s.workers[w.Pattern()] == w {
		delete(s.workers, w.Pattern())
	}
	s.mu.Unlock()

	entry := s.log.WithFields(logrus.Fields{
		"pattern":    w.Pattern(),
		"status":     ex.status,
		"passes":     w.Stats.Passes.Load(),
		"matches":    w.Stats.Matches.Load(),
		"denied":     w.Stats.Skips.Denied.Load(),
		"dir_errors": w.Stats.Skips.DirErrors.Load(),
		"uptime":     w.Stats.Elapsed().Round(time.Second),
	})
	if ex.status != 0 {
		entry.Warn("Worker exited")
	} else {
		entry.Info("Worker exited")
	}

	if !s.opts.Respawn || ctx.Err() != nil {
		return
	}
	if err := s.spawn(ctx, w.Pattern()); err != nil {
		s.log.WithError(err).WithField("pattern", w.Pattern()).Error("Respawn failed")
		return
	}
	s.log.WithField("pattern", w.Pattern()).Info("Worker respawned")
}

// shutdown waits for every worker and logs each exit. ctx is already
// cancelled, so nothing is respawned.
func (s *Supervisor) shutdown(ctx context.Context) {
	s.wg.Wait()
	s.drain(ctx)
	s.log.Info("Supervisor stopped")
}

// drain reaps every queued exit.
func (s *Supervisor) drain(ctx context.Context) {
	for {
		select {
		case ex := <-s.exited:
			s.reap(ctx, ex)
		default:
			return
		}
	}
}
