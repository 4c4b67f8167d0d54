// Package workers runs the background cadence of the service: a scheduler
// ticking registered workers on their own intervals, and the report
// generation worker that drives the pipeline.
package workers

import (
	"context"
	"sync"
	"time"
)

// Worker is one schedulable background task.
type Worker interface {
	Name() string

	// Run executes a single iteration and returns; the scheduler calls it
	// once per tick.
	Run(ctx context.Context) error

	Interval() time.Duration
	Enabled() bool
}

// StartupRunner lets a worker choose whether to run immediately when the
// scheduler starts instead of waiting one full interval.
type StartupRunner interface {
	RunOnStart() bool
}

// Health is a point-in-time snapshot of a worker's run accounting.
type Health struct {
	LastRun     time.Time
	LastError   error
	RunCount    int64
	ErrorCount  int64
	AvgDuration time.Duration
}

// BaseWorker carries the identity and run accounting shared by all workers.
// Embedders implement Run and call RecordRun or RecordError per iteration.
type BaseWorker struct {
	name     string
	interval time.Duration
	enabled  bool

	mu            sync.RWMutex
	lastRun       time.Time
	lastError     error
	runCount      int64
	errorCount    int64
	totalDuration time.Duration
}

// NewBaseWorker creates the shared worker base.
func NewBaseWorker(name string, interval time.Duration, enabled bool) *BaseWorker {
	return &BaseWorker{
		name:     name,
		interval: interval,
		enabled:  enabled,
	}
}

func (w *BaseWorker) Name() string {
	return w.name
}

func (w *BaseWorker) Interval() time.Duration {
	return w.interval
}

func (w *BaseWorker) Enabled() bool {
	return w.enabled
}

// RecordRun accounts a completed iteration.
func (w *BaseWorker) RecordRun(duration time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastRun = time.Now()
	w.runCount++
	w.totalDuration += duration
	w.lastError = nil
}

// RecordError accounts a failed iteration.
func (w *BaseWorker) RecordError(err error, duration time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastRun = time.Now()
	w.runCount++
	w.errorCount++
	w.totalDuration += duration
	w.lastError = err
}

// Health returns the current run accounting.
func (w *BaseWorker) Health() Health {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var avg time.Duration
	if w.runCount > 0 {
		avg = time.Duration(int64(w.totalDuration) / w.runCount)
	}

	return Health{
		LastRun:     w.lastRun,
		LastError:   w.lastError,
		RunCount:    w.runCount,
		ErrorCount:  w.errorCount,
		AvgDuration: avg,
	}
}
