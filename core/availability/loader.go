// Package availability resolves how many units a station can actually serve
// within a 24-hour horizon. Periodic inventory snapshots are the primary
// source; live fleet status counts are the fallback when no snapshot covers
// the window.
package availability

import (
	"context"
	"time"

	"github.com/kilianp07/fleetcap/core/logger"
	"github.com/kilianp07/fleetcap/core/model"
)

// Window is the horizon over which availability is evaluated.
const Window = 24 * time.Hour

// SnapshotSource reads availability snapshots from the store.
type SnapshotSource interface {
	SnapshotsInWindow(ctx context.Context, stationID, vehicleTypeID string, from, to time.Time) ([]model.AvailabilitySnapshot, error)
	AllSnapshotsInWindow(ctx context.Context, from, to time.Time) ([]model.AvailabilitySnapshot, error)
}

// FleetCounter counts live fleet records by state. It reads booking-owned
// data and never mutates it.
type FleetCounter interface {
	CountByState(ctx context.Context, stationID, vehicleTypeID string, state model.VehicleState) (int, error)
}

// PairKey identifies one (station, vehicle type) group in batch results.
type PairKey struct {
	StationID     string
	VehicleTypeID string
}

// Loader resolves current availability per station and vehicle type.
type Loader struct {
	snapshots SnapshotSource
	fleet     FleetCounter
	log       logger.Logger
}

// NewLoader wires a Loader from its two sources.
func NewLoader(snapshots SnapshotSource, fleet FleetCounter, log logger.Logger) *Loader {
	return &Loader{snapshots: snapshots, fleet: fleet, log: log}
}

// PeakAvailable returns the minimum available count observed over the 24
// hours preceding at. The minimum is the worst case within the horizon, not
// the average. With no snapshot in the window the live fleet count is used.
func (l *Loader) PeakAvailable(ctx context.Context, stationID, vehicleTypeID string, at time.Time) (int, error) {
	snaps, err := l.snapshots.SnapshotsInWindow(ctx, stationID, vehicleTypeID, at.Add(-Window), at)
	if err != nil {
		l.log.Warnf("snapshot query failed for %s/%s, falling back to live counts: %v", stationID, vehicleTypeID, err)
		snaps = nil
	}
	if len(snaps) == 0 {
		return l.fleet.CountByState(ctx, stationID, vehicleTypeID, model.VehicleAvailable)
	}
	min := snaps[0].AvailableCount
	for _, s := range snaps[1:] {
		if s.AvailableCount < min {
			min = s.AvailableCount
		}
	}
	return min, nil
}

// BatchPeakAvailable groups every snapshot in the window by station and
// vehicle type and takes the per-group minimum. Pairs without snapshots are
// absent from the result; callers resolve them individually through
// PeakAvailable so the live-count fallback still applies.
func (l *Loader) BatchPeakAvailable(ctx context.Context, at time.Time) (map[PairKey]int, error) {
	snaps, err := l.snapshots.AllSnapshotsInWindow(ctx, at.Add(-Window), at)
	if err != nil {
		return nil, err
	}
	res := make(map[PairKey]int)
	for _, s := range snaps {
		key := PairKey{StationID: s.StationID, VehicleTypeID: s.VehicleTypeID}
		if cur, ok := res[key]; !ok || s.AvailableCount < cur {
			res[key] = s.AvailableCount
		}
	}
	return res, nil
}
