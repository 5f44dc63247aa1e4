package admission

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultMax(t *testing.T) {
	c := New(0)
	assert.Equal(t, Stats{ActiveCount: 0, MaxCount: DefaultMax, AvailableSlots: DefaultMax}, c.Stats())
}

func TestAcquireRelease_Stats(t *testing.T) {
	c := New(2)
	ctx := context.Background()

	require.NoError(t, c.Acquire(ctx))
	assert.Equal(t, Stats{ActiveCount: 1, MaxCount: 2, AvailableSlots: 1}, c.Stats())

	require.NoError(t, c.Acquire(ctx))
	assert.Equal(t, 0, c.Stats().AvailableSlots)
	assert.False(t, c.TryAcquire())

	c.Release()
	c.Release()
	assert.Equal(t, Stats{ActiveCount: 0, MaxCount: 2, AvailableSlots: 2}, c.Stats())
}

func TestAcquire_BlocksUntilRelease(t *testing.T) {
	c := New(1)
	require.NoError(t, c.Acquire(context.Background()))

	acquired := make(chan struct{})
	go func() {
		if err := c.Acquire(context.Background()); err == nil {
			close(acquired)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire must wait for a free slot")
	case <-time.After(50 * time.Millisecond):
	}

	c.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter was not admitted after Release")
	}
	c.Release()
}

func TestAcquire_ContextCancelled(t *testing.T) {
	c := New(1)
	require.NoError(t, c.Acquire(context.Background()))
	defer c.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, c.Stats().ActiveCount)
}

func TestAcquire_AlreadyCancelled(t *testing.T) {
	c := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Acquire(ctx), context.Canceled)
	assert.Equal(t, 0, c.Stats().ActiveCount)
}

func TestRelease_WithoutAcquirePanics(t *testing.T) {
	c := New(1)
	assert.Panics(t, c.Release)
}

func TestController_NeverExceedsMax(t *testing.T) {
	const limit = 3
	c := New(limit)

	var running, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Acquire(context.Background()); err != nil {
				return
			}
			defer c.Release()

			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(limit))
	assert.Equal(t, 0, c.Stats().ActiveCount)
}
