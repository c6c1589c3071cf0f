package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kilianp07/fleetcap/core/availability"
	"github.com/kilianp07/fleetcap/core/model"
	"github.com/kilianp07/fleetcap/core/stats"
)

// Store bundles every repository of the planning subsystem over one GORM
// connection. It satisfies the core read interfaces (history, snapshots,
// fleet counts, pair listing) and the write paths of the scheduled jobs.
type Store struct {
	db *gorm.DB
}

// New wraps an open database handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DemandHistory implements stats.HistoryReader against the demand aggregate.
func (s *Store) DemandHistory(ctx context.Context, f stats.HistoryFilter) ([]stats.DemandSample, error) {
	q := s.db.WithContext(ctx).Model(&DemandAggregate{}).
		Where("time_bin >= ? AND time_bin < ?", f.From, f.To)
	if f.StationID != "" {
		q = q.Where("station_id = ?", f.StationID)
	}
	if f.VehicleTypeID != "" {
		q = q.Where("vehicle_type_id = ?", f.VehicleTypeID)
	}
	var rows []DemandAggregate
	if err := q.Order("time_bin").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("demand history: %w", err)
	}
	samples := make([]stats.DemandSample, len(rows))
	for i, r := range rows {
		samples[i] = stats.DemandSample{
			StationID:     r.StationID,
			VehicleTypeID: r.VehicleTypeID,
			TimeBin:       r.TimeBin,
			Count:         r.DemandCount,
		}
	}
	return samples, nil
}

// ActivePairs implements planner.PairLister: every (station, vehicle type)
// combination with at least one aggregate row in the window.
func (s *Store) ActivePairs(ctx context.Context, from, to time.Time) ([]availability.PairKey, error) {
	var rows []struct {
		StationID     string
		VehicleTypeID string
	}
	err := s.db.WithContext(ctx).Model(&DemandAggregate{}).
		Distinct("station_id", "vehicle_type_id").
		Where("time_bin >= ? AND time_bin < ?", from, to).
		Order("station_id, vehicle_type_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("active pairs: %w", err)
	}
	pairs := make([]availability.PairKey, len(rows))
	for i, r := range rows {
		pairs[i] = availability.PairKey{StationID: r.StationID, VehicleTypeID: r.VehicleTypeID}
	}
	return pairs, nil
}

// CountByState implements availability.FleetCounter over the live fleet
// records.
func (s *Store) CountByState(ctx context.Context, stationID, vehicleTypeID string, state model.VehicleState) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&FleetVehicle{}).
		Where("station_id = ? AND vehicle_type_id = ? AND state = ?", stationID, vehicleTypeID, string(state)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("fleet count: %w", err)
	}
	return int(n), nil
}

// RefreshAggregates rebuilds the demand aggregate from the raw events in
// [from, to). The delete-then-insert pair runs in one transaction so readers
// never observe a partially replaced view.
func (s *Store) RefreshAggregates(ctx context.Context, from, to time.Time) (int, error) {
	var inserted int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("time_bin >= ? AND time_bin < ?", from, to).
			Delete(&DemandAggregate{}).Error; err != nil {
			return fmt.Errorf("clear aggregates: %w", err)
		}
		var events []DemandEvent
		if err := tx.Where("event_time >= ? AND event_time < ?", from, to).
			Find(&events).Error; err != nil {
			return fmt.Errorf("read events: %w", err)
		}
		grouped := make(map[string]*DemandAggregate)
		for _, e := range events {
			bin := e.EventTime.Truncate(30 * time.Minute)
			key := e.StationID + "|" + e.VehicleTypeID + "|" + bin.Format(time.RFC3339)
			if agg, ok := grouped[key]; ok {
				agg.DemandCount += e.Count
				continue
			}
			grouped[key] = &DemandAggregate{
				StationID:     e.StationID,
				VehicleTypeID: e.VehicleTypeID,
				TimeBin:       bin,
				DemandCount:   e.Count,
			}
		}
		for _, agg := range grouped {
			if err := tx.Create(agg).Error; err != nil {
				return fmt.Errorf("insert aggregate: %w", err)
			}
			inserted++
		}
		return nil
	})
	return inserted, err
}
