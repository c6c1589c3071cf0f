package stats

import (
	"context"
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/fleetcap/core/model"
)

// ErrInvalidWindow indicates a statistics request with a non-positive or
// inverted time range.
var ErrInvalidWindow = errors.New("stats: invalid history window")

// ErrInvalidCycle indicates non-positive trip or turnaround durations. These
// are caller errors and fail fast instead of producing a silent zero.
var ErrInvalidCycle = errors.New("stats: trip and turnaround hours must be positive")

// DemandSample is one time-binned demand observation from the historical
// aggregate.
type DemandSample struct {
	StationID     string
	VehicleTypeID string
	TimeBin       time.Time
	Count         float64
}

// HistoryFilter restricts which samples a statistics run reads.
type HistoryFilter struct {
	StationID     string // empty matches all stations
	VehicleTypeID string // empty matches all vehicle types
	From, To      time.Time
}

// HistoryReader exposes the rolling demand aggregate owned by the store.
type HistoryReader interface {
	DemandHistory(ctx context.Context, f HistoryFilter) ([]DemandSample, error)
}

// Engine derives DemandStats from historical samples. It holds no state
// between runs; every call recomputes from the reader.
type Engine struct {
	history HistoryReader
}

// NewEngine returns an Engine reading from the given history source.
func NewEngine(history HistoryReader) *Engine {
	return &Engine{history: history}
}

// SlotStats groups the samples matching f into half-hour slots and returns
// one DemandStats per slot. Slots with no samples are simply absent.
func (e *Engine) SlotStats(ctx context.Context, f HistoryFilter) (map[model.SlotKey]*model.DemandStats, error) {
	if !f.To.After(f.From) {
		return nil, ErrInvalidWindow
	}
	samples, err := e.history.DemandHistory(ctx, f)
	if err != nil {
		return nil, err
	}
	grouped := make(map[model.SlotKey][]float64)
	for _, s := range samples {
		grouped[slotOf(s)] = append(grouped[slotOf(s)], s.Count)
	}
	res := make(map[model.SlotKey]*model.DemandStats, len(grouped))
	for key, values := range grouped {
		res[key] = summarize(key, values)
	}
	return res, nil
}

// PairStats aggregates every sample of one (station, vehicle type) pair over
// [from, to] into a single DemandStats. A nil result without error means the
// pair has no historical data.
func (e *Engine) PairStats(ctx context.Context, stationID, vehicleTypeID string, from, to time.Time) (*model.DemandStats, error) {
	if !to.After(from) {
		return nil, ErrInvalidWindow
	}
	samples, err := e.history.DemandHistory(ctx, HistoryFilter{
		StationID:     stationID,
		VehicleTypeID: vehicleTypeID,
		From:          from,
		To:            to,
	})
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, nil
	}
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Count
	}
	key := model.SlotKey{StationID: stationID, VehicleTypeID: vehicleTypeID}
	return summarize(key, values), nil
}

// RequiredUnits converts a P90 demand peak into a fleet-unit requirement.
// One vehicle serves one cycle of trip plus turnaround time, so the share of
// the cycle spent on trips bounds how many concurrent rentals a unit covers.
func RequiredUnits(p90, avgTripHours, turnaroundHours float64) (int, error) {
	if avgTripHours <= 0 || turnaroundHours <= 0 {
		return 0, ErrInvalidCycle
	}
	if p90 <= 0 {
		return 0, nil
	}
	cycleHours := avgTripHours + turnaroundHours
	return int(math.Ceil(p90 * avgTripHours / cycleHours)), nil
}

func slotOf(s DemandSample) model.SlotKey {
	bin := 0
	if s.TimeBin.Minute() >= 30 {
		bin = 30
	}
	return model.SlotKey{
		StationID:     s.StationID,
		VehicleTypeID: s.VehicleTypeID,
		DayOfWeek:     int(s.TimeBin.Weekday()),
		Hour:          s.TimeBin.Hour(),
		MinuteBin:     bin,
	}
}

func summarize(key model.SlotKey, values []float64) *model.DemandStats {
	return &model.DemandStats{
		Slot:        key,
		Mean:        stat.Mean(values, nil),
		P90:         Quantile(values, 0.9),
		Min:         floats.Min(values),
		Max:         floats.Max(values),
		SampleCount: len(values),
		RawSamples:  values,
	}
}
