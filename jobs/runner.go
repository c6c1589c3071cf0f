// Package jobs contains the background loops that keep demand statistics,
// availability snapshots, forecasts and rebalancing plans fresh. Each job
// runs on its own ticker and shares nothing with the others beyond the
// store.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/fleetcap/core/logger"
	"github.com/kilianp07/fleetcap/core/metrics"
)

// Job is one unit of periodic work. Run returns the number of items it
// processed.
type Job interface {
	Name() string
	Run(ctx context.Context) (int, error)
}

type entry struct {
	job      Job
	interval time.Duration
}

// Runner drives a set of jobs, one goroutine per job. A panicking or
// failing iteration is logged and recorded, never fatal to the loop.
type Runner struct {
	warmup  time.Duration
	rec     metrics.JobRecorder
	log     logger.Logger
	entries []entry
}

// NewRunner returns an empty Runner. rec may be nil.
func NewRunner(warmup time.Duration, rec metrics.JobRecorder, log logger.Logger) *Runner {
	return &Runner{warmup: warmup, rec: rec, log: log}
}

// Add registers a job with its tick interval.
func (r *Runner) Add(j Job, interval time.Duration) {
	r.entries = append(r.entries, entry{job: j, interval: interval})
}

// Start runs every registered job until ctx is cancelled, then waits for
// in-flight iterations to finish.
func (r *Runner) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, e := range r.entries {
		wg.Add(1)
		go func(e entry) {
			defer wg.Done()
			r.loop(ctx, e)
		}(e)
	}
	wg.Wait()
}

func (r *Runner) loop(ctx context.Context, e entry) {
	select {
	case <-time.After(r.warmup):
	case <-ctx.Done():
		return
	}
	r.log.Infof("job %s started, interval %s", e.job.Name(), e.interval)
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		r.runOnce(ctx, e.job)
		select {
		case <-ticker.C:
		case <-ctx.Done():
			r.log.Infof("job %s stopped", e.job.Name())
			return
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, j Job) {
	start := time.Now()
	items, err := safeRun(ctx, j)
	elapsed := time.Since(start)
	if err != nil {
		r.log.Errorf("job %s: %v", j.Name(), err)
	} else {
		r.log.Debugf("job %s: %d item(s) in %s", j.Name(), items, elapsed)
	}
	if r.rec != nil {
		if rerr := r.rec.RecordJobRun(metrics.JobRun{
			Job:      j.Name(),
			Success:  err == nil,
			Items:    items,
			Duration: elapsed,
			Time:     start,
		}); rerr != nil {
			r.log.Warnf("job %s: record run: %v", j.Name(), rerr)
		}
	}
}

func safeRun(ctx context.Context, j Job) (items int, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return j.Run(ctx)
}
