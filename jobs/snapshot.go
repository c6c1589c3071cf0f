package jobs

import (
	"context"
	"time"

	"github.com/kilianp07/fleetcap/core/logger"
)

// SnapshotStore is the slice of the store the snapshot job writes through.
type SnapshotStore interface {
	CaptureSnapshots(ctx context.Context, snapTime time.Time) (int, error)
	PruneSnapshots(ctx context.Context, now time.Time) (int64, error)
}

// SnapshotJob captures the live fleet census into availability snapshots.
// Snapshot times are binned to :00/:30 so they line up with the demand
// aggregation windows.
type SnapshotJob struct {
	store SnapshotStore
	log   logger.Logger
	now   func() time.Time
}

// NewSnapshotJob returns a snapshot capture job.
func NewSnapshotJob(store SnapshotStore, log logger.Logger) *SnapshotJob {
	return &SnapshotJob{store: store, log: log, now: time.Now}
}

func (j *SnapshotJob) Name() string { return "snapshot_capture" }

// Run captures one snapshot batch and prunes expired rows.
func (j *SnapshotJob) Run(ctx context.Context) (int, error) {
	now := j.now().UTC()
	snapTime := now.Truncate(30 * time.Minute)
	n, err := j.store.CaptureSnapshots(ctx, snapTime)
	if err != nil {
		return 0, err
	}
	if pruned, err := j.store.PruneSnapshots(ctx, now); err != nil {
		j.log.Warnf("prune snapshots: %v", err)
	} else if pruned > 0 {
		j.log.Debugf("pruned %d snapshot(s)", pruned)
	}
	return n, nil
}
