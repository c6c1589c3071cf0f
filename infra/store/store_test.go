package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetcap/core/model"
	"github.com/kilianp07/fleetcap/core/stats"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(Config{Driver: "sqlite", DSN: "file::memory:?cache=shared&_pragma=foreign_keys(1)&mode=memory&t=" + t.Name()})
	require.NoError(t, err)
	return New(db)
}

var (
	ctx  = context.Background()
	base = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
)

func TestOpenNormalizesZeroPoolConfig(t *testing.T) {
	// No pool settings at all: migrations and reads must still see the same
	// shared in-memory database across statements.
	db, err := Open(Config{Driver: "sqlite", DSN: "file::memory:?cache=shared&mode=memory&t=" + t.Name()})
	require.NoError(t, err)
	s := New(db)

	rows := []DemandEvent{{StationID: "S1", VehicleTypeID: "compact", EventTime: base, Count: 1}}
	require.NoError(t, s.db.Create(&rows).Error)

	var n int64
	require.NoError(t, s.db.Model(&DemandEvent{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestRefreshAggregates_ReplacesWindow(t *testing.T) {
	s := newTestStore(t)
	events := []DemandEvent{
		{StationID: "S1", VehicleTypeID: "compact", EventTime: base.Add(5 * time.Minute), Count: 2},
		{StationID: "S1", VehicleTypeID: "compact", EventTime: base.Add(20 * time.Minute), Count: 1},
		{StationID: "S1", VehicleTypeID: "compact", EventTime: base.Add(40 * time.Minute), Count: 4},
	}
	require.NoError(t, s.db.Create(&events).Error)

	n, err := s.RefreshAggregates(ctx, base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n) // two half-hour bins

	samples, err := s.DemandHistory(ctx, stats.HistoryFilter{
		StationID: "S1", VehicleTypeID: "compact",
		From: base, To: base.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 3.0, samples[0].Count)
	assert.Equal(t, 4.0, samples[1].Count)

	// a second refresh over the same window must not duplicate
	n, err = s.RefreshAggregates(ctx, base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	samples, err = s.DemandHistory(ctx, stats.HistoryFilter{From: base, To: base.Add(time.Hour)})
	require.NoError(t, err)
	assert.Len(t, samples, 2)
}

func TestActivePairs(t *testing.T) {
	s := newTestStore(t)
	rows := []DemandAggregate{
		{StationID: "S2", VehicleTypeID: "van", TimeBin: base, DemandCount: 1},
		{StationID: "S1", VehicleTypeID: "compact", TimeBin: base, DemandCount: 1},
		{StationID: "S1", VehicleTypeID: "compact", TimeBin: base.Add(30 * time.Minute), DemandCount: 2},
	}
	require.NoError(t, s.db.Create(&rows).Error)

	pairs, err := s.ActivePairs(ctx, base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "S1", pairs[0].StationID)
	assert.Equal(t, "S2", pairs[1].StationID)
}

func TestSnapshots_RoundTripAndPrune(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	snaps := []model.AvailabilitySnapshot{
		{StationID: "S1", VehicleTypeID: "compact", SnapshotTime: now.Add(-time.Hour), AvailableCount: 7, ChargingCount: 1},
		{StationID: "S1", VehicleTypeID: "compact", SnapshotTime: now.Add(-40 * 24 * time.Hour), AvailableCount: 2},
	}
	require.NoError(t, s.InsertSnapshots(ctx, snaps))

	got, err := s.SnapshotsInWindow(ctx, "S1", "compact", now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].AvailableCount)
	assert.Equal(t, 1, got[0].ChargingCount)

	pruned, err := s.PruneSnapshots(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)
}

func TestCaptureSnapshots_FromFleet(t *testing.T) {
	s := newTestStore(t)
	vehicles := []FleetVehicle{
		{ID: "v1", StationID: "S1", VehicleTypeID: "compact", State: string(model.VehicleAvailable)},
		{ID: "v2", StationID: "S1", VehicleTypeID: "compact", State: string(model.VehicleAvailable)},
		{ID: "v3", StationID: "S1", VehicleTypeID: "compact", State: string(model.VehicleInUse)},
		{ID: "v4", StationID: "S2", VehicleTypeID: "van", State: string(model.VehicleMaintenance)},
	}
	require.NoError(t, s.db.Create(&vehicles).Error)

	snapTime := time.Now().UTC().Truncate(30 * time.Minute)
	n, err := s.CaptureSnapshots(ctx, snapTime)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.SnapshotsInWindow(ctx, "S1", "compact", snapTime.Add(-time.Minute), snapTime.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].AvailableCount)
	assert.Equal(t, 1, got[0].InUseCount)
}

func TestReplaceProposedPlans_SupersedesOnlyProposed(t *testing.T) {
	s := newTestStore(t)
	date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	approved := RebalancingPlan{PlanDate: date, ToDepotID: "S9", VehicleTypeID: "van", Quantity: 1,
		ActionType: string(model.PlanPurchase), Status: string(model.PlanApproved)}
	require.NoError(t, s.db.Create(&approved).Error)

	first := []model.RebalancingPlan{{
		PlanDate: date, FromDepotID: "S2", ToDepotID: "S1", VehicleTypeID: "van",
		Quantity: 3, ActionType: model.PlanRelocate, Status: model.PlanProposed,
	}}
	require.NoError(t, s.ReplaceProposedPlans(ctx, date, first))

	second := []model.RebalancingPlan{{
		PlanDate: date, ToDepotID: "S3", VehicleTypeID: "van",
		Quantity: 2, ActionType: model.PlanPurchase, Status: model.PlanProposed,
	}}
	require.NoError(t, s.ReplaceProposedPlans(ctx, date, second))

	plans, err := s.PlansForDate(ctx, date)
	require.NoError(t, err)
	require.Len(t, plans, 2) // the approved row plus the latest proposed batch
	var statuses []model.PlanStatus
	for _, p := range plans {
		statuses = append(statuses, p.Status)
	}
	assert.Contains(t, statuses, model.PlanApproved)
	assert.Contains(t, statuses, model.PlanProposed)
	for _, p := range plans {
		if p.Status == model.PlanProposed {
			assert.Equal(t, "S3", p.ToDepotID)
		}
	}
}

func TestSaveForecasts_ReplacesPerPair(t *testing.T) {
	s := newTestStore(t)
	gen := time.Now().UTC().Truncate(time.Second)
	mk := func(station string, slot int, demand float64) model.ForecastPoint {
		return model.ForecastPoint{
			StationID: station, VehicleTypeID: "compact",
			SlotStart:       base.Add(time.Duration(slot) * 30 * time.Minute),
			PredictedDemand: demand, Confidence: 0.5, GeneratedAt: gen,
		}
	}
	require.NoError(t, s.SaveForecasts(ctx, []model.ForecastPoint{mk("S1", 0, 3), mk("S1", 1, 4)}))
	require.NoError(t, s.SaveForecasts(ctx, []model.ForecastPoint{mk("S1", 0, 9)}))

	got, err := s.ForecastsForPair(ctx, "S1", "compact")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 9.0, got[0].PredictedDemand)
}

func TestAdviceRuns_SaveAndHashLookup(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	runs := []model.AdviceRun{
		{RunID: "run-1", CreatedAt: now.Add(-time.Hour), Actor: "scheduler", InputsJSON: "{}", OutputJSON: "{}", LatencyMs: 12, InputHash: "abc"},
		{RunID: "run-2", CreatedAt: now, Actor: "api", InputsJSON: "{}", OutputJSON: "{}", LatencyMs: 20, InputHash: "abc"},
		{RunID: "run-3", CreatedAt: now, Actor: "api", InputsJSON: "{}", OutputJSON: "{}", LatencyMs: 5, InputHash: "other"},
	}
	for _, r := range runs {
		require.NoError(t, s.SaveAdviceRun(ctx, r))
	}

	got, err := s.AdviceRunsByHash(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "run-2", got[0].RunID)

	pruned, err := s.PruneAdviceRuns(ctx, now.Add(AdviceRunRetention+time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 3, pruned)
}
