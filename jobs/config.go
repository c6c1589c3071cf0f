package jobs

import "fmt"

// Config holds the scheduling parameters of the background jobs. All
// intervals are seconds.
type Config struct {
	WarmupSeconds            int `json:"warmup_seconds"`
	SnapshotIntervalSeconds  int `json:"snapshot_interval_seconds"`
	AggregateIntervalSeconds int `json:"aggregate_interval_seconds"`
	ForecastIntervalSeconds  int `json:"forecast_interval_seconds"`
	PlanIntervalSeconds      int `json:"plan_interval_seconds"`

	// AggregateLookbackHours bounds how far back each refresh rebuilds the
	// demand aggregate.
	AggregateLookbackHours int `json:"aggregate_lookback_hours"`
	// HistoryWindowDays is the rolling window forecasts and plans read from.
	HistoryWindowDays int `json:"history_window_days"`
}

// SetDefaults applies the stock schedule.
func (c *Config) SetDefaults() {
	if c.WarmupSeconds <= 0 {
		c.WarmupSeconds = 5
	}
	if c.SnapshotIntervalSeconds <= 0 {
		c.SnapshotIntervalSeconds = 30 * 60
	}
	if c.AggregateIntervalSeconds <= 0 {
		c.AggregateIntervalSeconds = 60 * 60
	}
	if c.ForecastIntervalSeconds <= 0 {
		c.ForecastIntervalSeconds = 6 * 60 * 60
	}
	if c.PlanIntervalSeconds <= 0 {
		c.PlanIntervalSeconds = 12 * 60 * 60
	}
	if c.AggregateLookbackHours <= 0 {
		c.AggregateLookbackHours = 2
	}
	if c.HistoryWindowDays <= 0 {
		c.HistoryWindowDays = 56
	}
}

// Validate rejects windows the jobs cannot work with.
func (c Config) Validate() error {
	if c.HistoryWindowDays > 56 {
		return fmt.Errorf("jobs: history_window_days exceeds the %d day aggregate retention", 56)
	}
	return nil
}
