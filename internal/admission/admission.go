// Package admission bounds how many operations execute at the same time.
//
// Callers Acquire a slot before doing pixel work and Release it when done.
// Waiters are served in arrival order by the runtime's channel queue, so a
// steady stream of requests cannot starve an early waiter. There is no
// limit on how many callers may wait.
package admission

import (
	"context"
	"sync/atomic"
)

// DefaultMax is the slot count used when New is given a non-positive max.
const DefaultMax = 4

// Stats is a snapshot of slot usage.
type Stats struct {
	ActiveCount    int `json:"active_tasks"`
	MaxCount       int `json:"max_concurrent_tasks"`
	AvailableSlots int `json:"available_slots"`
}

// Controller is a counting semaphore. It is safe for concurrent use.
type Controller struct {
	slots  chan struct{}
	active atomic.Int64
}

// New creates a controller with limit slots.
func New(limit int) *Controller {
	if limit <= 0 {
		limit = DefaultMax
	}
	return &Controller{slots: make(chan struct{}, limit)}
}

// Acquire blocks until a slot is free or ctx is done. On success the caller
// owns one slot and must Release it exactly once.
func (c *Controller) Acquire(ctx context.Context) error {
	// Fail fast on an already cancelled context even if a slot is free.
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case c.slots <- struct{}{}:
		c.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot only if one is free right now.
func (c *Controller) TryAcquire() bool {
	select {
	case c.slots <- struct{}{}:
		c.active.Add(1)
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (c *Controller) Release() {
	select {
	case <-c.slots:
		c.active.Add(-1)
	default:
		panic("admission: Release without Acquire")
	}
}

// Stats reports current slot usage.
func (c *Controller) Stats() Stats {
	active := int(c.active.Load())
	limit := cap(c.slots)
	return Stats{
		ActiveCount:    active,
		MaxCount:       limit,
		AvailableSlots: limit - active,
	}
}
