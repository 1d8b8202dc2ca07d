package internal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotification_Coalesces(t *testing.T) {
	n := NewNotification()
	assert.False(t, n.Take())

	n.Raise()
	n.Raise()
	n.Raise()
	assert.True(t, n.Pending())
	assert.True(t, n.Take())
	assert.False(t, n.Pending())
	assert.False(t, n.Take(), "burst must be observed once")

	select {
	case <-n.Wait():
		t.Fatal("Take must drain the wake token")
	default:
	}
}

func TestNotification_RaiseAfterTakeStaysPending(t *testing.T) {
	n := NewNotification()
	n.Raise()
	require.True(t, n.Take())

	n.Raise()
	select {
	case <-n.Wait():
	default:
		t.Fatal("expected wake token")
	}
	assert.True(t, n.Take())
}

func TestNotification_ConcurrentRaiseNeverLost(t *testing.T) {
	n := NewNotification()
	var wg sync.WaitGroup
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.Raise()
		}()
		n.Take()
	}
	wg.Wait()
	// a flag left set by a Raise racing the last Take must come with a token
	if n.Pending() {
		select {
		case <-n.Wait():
		default:
			t.Fatal("pending notification without wake token")
		}
	}
}

func TestSignal_String(t *testing.T) {
	assert.Equal(t, "restart", SignalRestart.String())
	assert.Equal(t, "stop", SignalStop.String())
	assert.Equal(t, "unknown", Signal(0).String())
}
