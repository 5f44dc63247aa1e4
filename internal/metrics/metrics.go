// Package metrics keeps process-wide operation counters.
//
// Only raw totals are stored; averages and rates are derived when Stats is
// called. Every ratio with a zero denominator is reported as 0.
package metrics

import (
	"runtime"
	"sync"
	"time"
)

// Stats is a derived snapshot of the counters.
type Stats struct {
	UptimeSeconds       float64 `json:"uptime_seconds"`
	TotalOperations     int64   `json:"total_operations"`
	AverageTimeSeconds  float64 `json:"average_processing_time"`
	AverageMemoryMB     float64 `json:"average_memory_usage_mb"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	ErrorRate           float64 `json:"error_rate"`
	OperationsPerSecond float64 `json:"operations_per_second"`
}

type counters struct {
	operations  int64
	totalTime   float64
	memorySum   float64
	memoryCount int64
	hits        int64
	misses      int64
	errors      int64
	start       time.Time
}

// Monitor accumulates operation counters. It is safe for concurrent use.
type Monitor struct {
	mu  sync.Mutex
	now func() time.Time
	c   counters
}

// New creates a monitor whose uptime starts now.
func New() *Monitor {
	return newWithClock(time.Now)
}

func newWithClock(now func() time.Time) *Monitor {
	m := &Monitor{now: now}
	m.c.start = now()
	return m
}

// RecordOperation adds one finished operation to the totals.
func (m *Monitor) RecordOperation(name string, durationSeconds, memoryDeltaMB float64, cacheHit, errored bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.c.operations++
	m.c.totalTime += durationSeconds
	m.c.memorySum += memoryDeltaMB
	m.c.memoryCount++
	// Errored operations are neither a hit nor a miss.
	switch {
	case errored:
		m.c.errors++
	case cacheHit:
		m.c.hits++
	default:
		m.c.misses++
	}
}

// Stats derives averages and rates from the current totals.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	c := m.c
	now := m.now()
	m.mu.Unlock()

	uptime := now.Sub(c.start).Seconds()
	return Stats{
		UptimeSeconds:       uptime,
		TotalOperations:     c.operations,
		AverageTimeSeconds:  ratio(c.totalTime, float64(c.operations)),
		AverageMemoryMB:     ratio(c.memorySum, float64(c.memoryCount)),
		CacheHitRate:        ratio(float64(c.hits), float64(c.hits+c.misses)),
		ErrorRate:           ratio(float64(c.errors), float64(c.operations)),
		OperationsPerSecond: ratio(float64(c.operations), uptime),
	}
}

// Reset replaces all counters with a fresh set and restarts the uptime
// clock.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.c = counters{start: m.now()}
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

// HeapMB returns the current heap allocation in megabytes. Operations
// sample it before and after running to estimate their memory delta.
func HeapMB() float64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return float64(ms.HeapAlloc) / (1024 * 1024)
}
