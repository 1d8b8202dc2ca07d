package internal

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func supervisorOpts(interval time.Duration, patterns ...string) Options {
	return Options{Roots: []string{"/"}, Patterns: patterns, Interval: interval}
}

// runSupervisor starts s in the background and returns a func that cancels
// it and returns the error from Run.
func runSupervisor(t *testing.T, s *Supervisor) (stop func() error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()
	return func() error {
		cancel()
		select {
		case err := <-errc:
			return err
		case <-time.After(waitFor):
			t.Fatal("supervisor did not stop")
			return nil
		}
	}
}

func allPasses(fake *fakeScanner, n int64, patterns ...string) func() bool {
	return func() bool {
		for _, p := range patterns {
			if fake.Passes(p) < n {
				return false
			}
		}
		return true
	}
}

func entriesWith(hook *test.Hook, msg string) []*logrus.Entry {
	var out []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == msg {
			out = append(out, e)
		}
	}
	return out
}

func TestNewSupervisor_Rejects(t *testing.T) {
	logger, _ := test.NewNullLogger()

	_, err := NewSupervisor(supervisorOpts(time.Second), newFakeScanner(), logger)
	assert.ErrorIs(t, err, ErrNoPatterns)

	_, err = NewSupervisor(supervisorOpts(0, "log"), newFakeScanner(), logger)
	assert.ErrorIs(t, err, ErrBadInterval)
}

func TestSupervisor_OneWorkerPerPattern(t *testing.T) {
	logger, hook := test.NewNullLogger()
	fake := newFakeScanner("app.log")
	s, err := NewSupervisor(supervisorOpts(time.Hour, "log", "tmp"), fake, logger)
	require.NoError(t, err)
	stop := runSupervisor(t, s)

	require.Eventually(t, allPasses(fake, 1, "log", "tmp"), waitFor, tick)
	assert.Equal(t, []string{"log", "tmp"}, s.Live())

	require.NoError(t, stop())
	exits := entriesWith(hook, "Worker exited")
	require.Len(t, exits, 2)
	for _, e := range exits {
		assert.Equal(t, 0, e.Data["status"])
		assert.Equal(t, logrus.InfoLevel, e.Level)
		assert.Contains(t, e.Data, "denied")
		assert.Contains(t, e.Data, "dir_errors")
	}
	assert.Empty(t, s.Live())
	assert.Len(t, entriesWith(hook, "Supervisor stopped"), 1)
}

func TestSupervisor_RestartReachesEveryWorker(t *testing.T) {
	logger, hook := test.NewNullLogger()
	fake := newFakeScanner()
	fake.block = true
	patterns := []string{"a", "b", "c"}
	s, err := NewSupervisor(supervisorOpts(time.Hour, patterns...), fake, logger)
	require.NoError(t, err)
	stop := runSupervisor(t, s)
	defer stop()

	require.Eventually(t, allPasses(fake, 1, patterns...), waitFor, tick)
	s.Restart()
	require.Eventually(t, allPasses(fake, 2, patterns...), waitFor, tick)
	assert.NotEmpty(t, entriesWith(hook, "Forwarding restart to workers"))
}

func TestSupervisor_StopReachesEveryWorker(t *testing.T) {
	logger, hook := test.NewNullLogger()
	fake := newFakeScanner()
	fake.block = true
	patterns := []string{"a", "b", "c"}
	s, err := NewSupervisor(supervisorOpts(time.Hour, patterns...), fake, logger)
	require.NoError(t, err)
	stop := runSupervisor(t, s)
	defer stop()

	require.Eventually(t, allPasses(fake, 1, patterns...), waitFor, tick)
	s.Stop()
	require.Eventually(t, func() bool {
		return len(entriesWith(hook, "Pass interrupted")) == len(patterns)
	}, waitFor, tick)

	// stopped workers sleep out the interval instead of rescanning
	assert.Never(t, func() bool {
		for _, p := range patterns {
			if fake.Passes(p) != 1 {
				return true
			}
		}
		return false
	}, 50*time.Millisecond, tick)
}

func TestSupervisor_ReapsPanickedWorker(t *testing.T) {
	logger, hook := test.NewNullLogger()
	fake := newFakeScanner("x")
	fake.panic = func(p string) bool { return p == "boom" }
	s, err := NewSupervisor(supervisorOpts(20*time.Millisecond, "boom", "ok"), fake, logger)
	require.NoError(t, err)
	stop := runSupervisor(t, s)
	defer stop()

	require.Eventually(t, func() bool {
		live := s.Live()
		return len(live) == 1 && live[0] == "ok"
	}, waitFor, tick)

	exits := entriesWith(hook, "Worker exited")
	require.Len(t, exits, 1)
	assert.Equal(t, "boom", exits[0].Data["pattern"])
	assert.Equal(t, 1, exits[0].Data["status"])
	assert.Equal(t, logrus.WarnLevel, exits[0].Level)
	assert.Equal(t, int64(1), fake.Passes("boom"), "no respawn by default")
}

func TestSupervisor_Respawn(t *testing.T) {
	logger, hook := test.NewNullLogger()
	fake := newFakeScanner("x")
	var calls atomic.Int64
	fake.panic = func(p string) bool { return p == "boom" && calls.Add(1) == 1 }
	opts := supervisorOpts(20*time.Millisecond, "boom", "ok")
	opts.Respawn = true
	s, err := NewSupervisor(opts, fake, logger)
	require.NoError(t, err)
	stop := runSupervisor(t, s)

	require.Eventually(t, func() bool {
		return len(entriesWith(hook, "Worker respawned")) == 1 && fake.Passes("boom") >= 2
	}, waitFor, tick)
	assert.Equal(t, []string{"boom", "ok"}, s.Live())

	require.NoError(t, stop())
	assert.Len(t, entriesWith(hook, "Worker respawned"), 1, "nothing respawns during shutdown")
}

func TestSupervisor_StartFailure(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s, err := NewSupervisor(supervisorOpts(time.Hour, "log"), newFakeScanner(), logger)
	require.NoError(t, err)
	s.pool.Release()

	err = s.Run(context.Background())
	require.ErrorIs(t, err, ErrWorkerStart)
	assert.Contains(t, err.Error(), `"log"`)
}

func TestSupervisor_StartFailureReapsStartedWorkers(t *testing.T) {
	logger, hook := test.NewNullLogger()
	fake := newFakeScanner()
	fake.block = true
	s, err := NewSupervisor(supervisorOpts(time.Hour, "a", "b"), fake, logger)
	require.NoError(t, err)
	// room for "a" only; a non-blocking pool rejects "b" right away
	s.pool.Tune(1)

	errc := make(chan error, 1)
	go func() { errc <- s.Run(context.Background()) }()
	select {
	case err = <-errc:
	case <-time.After(waitFor):
		t.Fatal("Submit blocked on a full pool")
	}
	require.ErrorIs(t, err, ErrWorkerStart)
	assert.Contains(t, err.Error(), `"b"`)

	exits := entriesWith(hook, "Worker exited")
	require.Len(t, exits, 1)
	assert.Equal(t, "a", exits[0].Data["pattern"])
	assert.Empty(t, s.Live())
}
