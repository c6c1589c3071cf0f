package store

import (
	"context"
	"fmt"
	"time"
)

// Trailing retention windows per table. Jobs prune their own records each
// iteration.
const (
	SnapshotRetention  = 30 * 24 * time.Hour
	AggregateRetention = 56 * 24 * time.Hour
	ForecastRetention  = 7 * 24 * time.Hour
	PlanRetention      = 14 * 24 * time.Hour
	AdviceRunRetention = 30 * 24 * time.Hour
)

// PruneSnapshots deletes snapshots older than now minus the retention
// window and returns the number of rows removed.
func (s *Store) PruneSnapshots(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("snapshot_time < ?", now.Add(-SnapshotRetention)).
		Delete(&AvailabilitySnapshot{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune snapshots: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PruneAggregates trims the demand aggregate to its rolling window.
func (s *Store) PruneAggregates(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("time_bin < ?", now.Add(-AggregateRetention)).
		Delete(&DemandAggregate{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune aggregates: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PruneForecasts removes stale forecast points.
func (s *Store) PruneForecasts(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("generated_at < ?", now.Add(-ForecastRetention)).
		Delete(&DemandForecast{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune forecasts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PrunePlans ages out old rebalancing plan rows regardless of status.
func (s *Store) PrunePlans(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("plan_date < ?", now.Add(-PlanRetention)).
		Delete(&RebalancingPlan{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune plans: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PruneAdviceRuns ages out old audit records.
func (s *Store) PruneAdviceRuns(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("created_at < ?", now.Add(-AdviceRunRetention)).
		Delete(&AdviceRun{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune advice runs: %w", res.Error)
	}
	return res.RowsAffected, nil
}
