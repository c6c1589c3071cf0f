package store

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/fleetcap/core/model"
)

// SnapshotsInWindow implements availability.SnapshotSource for one pair.
func (s *Store) SnapshotsInWindow(ctx context.Context, stationID, vehicleTypeID string, from, to time.Time) ([]model.AvailabilitySnapshot, error) {
	var rows []AvailabilitySnapshot
	err := s.db.WithContext(ctx).
		Where("station_id = ? AND vehicle_type_id = ? AND snapshot_time >= ? AND snapshot_time <= ?",
			stationID, vehicleTypeID, from, to).
		Order("snapshot_time").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("snapshots: %w", err)
	}
	return toModelSnapshots(rows), nil
}

// AllSnapshotsInWindow implements the batch form of
// availability.SnapshotSource.
func (s *Store) AllSnapshotsInWindow(ctx context.Context, from, to time.Time) ([]model.AvailabilitySnapshot, error) {
	var rows []AvailabilitySnapshot
	err := s.db.WithContext(ctx).
		Where("snapshot_time >= ? AND snapshot_time <= ?", from, to).
		Order("snapshot_time").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("snapshots: %w", err)
	}
	return toModelSnapshots(rows), nil
}

// InsertSnapshots appends one batch of captures.
func (s *Store) InsertSnapshots(ctx context.Context, snaps []model.AvailabilitySnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	rows := make([]AvailabilitySnapshot, len(snaps))
	for i, m := range snaps {
		rows[i] = AvailabilitySnapshot{
			StationID:        m.StationID,
			VehicleTypeID:    m.VehicleTypeID,
			SnapshotTime:     m.SnapshotTime,
			AvailableCount:   m.AvailableCount,
			ChargingCount:    m.ChargingCount,
			MaintenanceCount: m.MaintenanceCount,
			InUseCount:       m.InUseCount,
			ReservedCount:    m.ReservedCount,
		}
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("insert snapshots: %w", err)
	}
	return nil
}

// CaptureSnapshots counts the live fleet per (station, vehicle type, state)
// and appends one snapshot row per pair, binned to snapTime.
func (s *Store) CaptureSnapshots(ctx context.Context, snapTime time.Time) (int, error) {
	var rows []struct {
		StationID     string
		VehicleTypeID string
		State         string
		N             int
	}
	err := s.db.WithContext(ctx).Model(&FleetVehicle{}).
		Select("station_id, vehicle_type_id, state, count(*) as n").
		Group("station_id, vehicle_type_id, state").
		Find(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("fleet census: %w", err)
	}

	byPair := make(map[availabilityKey]*model.AvailabilitySnapshot)
	var order []availabilityKey
	for _, r := range rows {
		key := availabilityKey{r.StationID, r.VehicleTypeID}
		snap, ok := byPair[key]
		if !ok {
			snap = &model.AvailabilitySnapshot{
				StationID:     r.StationID,
				VehicleTypeID: r.VehicleTypeID,
				SnapshotTime:  snapTime,
			}
			byPair[key] = snap
			order = append(order, key)
		}
		switch model.VehicleState(r.State) {
		case model.VehicleAvailable:
			snap.AvailableCount = r.N
		case model.VehicleCharging:
			snap.ChargingCount = r.N
		case model.VehicleMaintenance:
			snap.MaintenanceCount = r.N
		case model.VehicleInUse:
			snap.InUseCount = r.N
		case model.VehicleReserved:
			snap.ReservedCount = r.N
		}
	}
	snaps := make([]model.AvailabilitySnapshot, 0, len(order))
	for _, key := range order {
		snaps = append(snaps, *byPair[key])
	}
	if err := s.InsertSnapshots(ctx, snaps); err != nil {
		return 0, err
	}
	return len(snaps), nil
}

type availabilityKey struct {
	stationID     string
	vehicleTypeID string
}

func toModelSnapshots(rows []AvailabilitySnapshot) []model.AvailabilitySnapshot {
	out := make([]model.AvailabilitySnapshot, len(rows))
	for i, r := range rows {
		out[i] = model.AvailabilitySnapshot{
			StationID:        r.StationID,
			VehicleTypeID:    r.VehicleTypeID,
			SnapshotTime:     r.SnapshotTime,
			AvailableCount:   r.AvailableCount,
			ChargingCount:    r.ChargingCount,
			MaintenanceCount: r.MaintenanceCount,
			InUseCount:       r.InUseCount,
			ReservedCount:    r.ReservedCount,
		}
	}
	return out
}
