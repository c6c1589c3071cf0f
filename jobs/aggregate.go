package jobs

import (
	"context"
	"time"

	"github.com/kilianp07/fleetcap/core/logger"
)

// AggregateStore is the slice of the store the refresh job writes through.
type AggregateStore interface {
	RefreshAggregates(ctx context.Context, from, to time.Time) (int, error)
	PruneAggregates(ctx context.Context, now time.Time) (int64, error)
}

// AggregateJob rebuilds the recent slice of the demand aggregate from raw
// booking events.
type AggregateJob struct {
	store    AggregateStore
	lookback time.Duration
	log      logger.Logger
	now      func() time.Time
}

// NewAggregateJob returns an aggregate refresh job covering the trailing
// lookback window each run.
func NewAggregateJob(store AggregateStore, lookback time.Duration, log logger.Logger) *AggregateJob {
	return &AggregateJob{store: store, lookback: lookback, log: log, now: time.Now}
}

func (j *AggregateJob) Name() string { return "aggregate_refresh" }

// Run refreshes the trailing window and prunes rows past retention. The
// window start is aligned to a half-hour bin so a refresh never splits a
// bin.
func (j *AggregateJob) Run(ctx context.Context) (int, error) {
	now := j.now().UTC()
	from := now.Add(-j.lookback).Truncate(30 * time.Minute)
	n, err := j.store.RefreshAggregates(ctx, from, now)
	if err != nil {
		return 0, err
	}
	if pruned, err := j.store.PruneAggregates(ctx, now); err != nil {
		j.log.Warnf("prune aggregates: %v", err)
	} else if pruned > 0 {
		j.log.Debugf("pruned %d aggregate row(s)", pruned)
	}
	return n, nil
}
