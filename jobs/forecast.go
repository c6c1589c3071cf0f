package jobs

import (
	"context"
	"time"

	"github.com/kilianp07/fleetcap/core/availability"
	"github.com/kilianp07/fleetcap/core/logger"
	"github.com/kilianp07/fleetcap/core/model"
	"github.com/kilianp07/fleetcap/core/stats"
)

// forecastSlots is one day of half-hour points.
const forecastSlots = 48

// ForecastStore is the slice of the store the forecast job reads and
// writes.
type ForecastStore interface {
	ActivePairs(ctx context.Context, from, to time.Time) ([]availability.PairKey, error)
	SaveForecasts(ctx context.Context, points []model.ForecastPoint) error
	PruneForecasts(ctx context.Context, now time.Time) (int64, error)
}

// ForecastJob projects the next 24 hours of demand per station and vehicle
// type from the per-slot history, using P90 as the point estimate.
type ForecastJob struct {
	engine  *stats.Engine
	store   ForecastStore
	history time.Duration
	log     logger.Logger
	now     func() time.Time
}

// NewForecastJob returns a forecast job reading historyDays of aggregates.
func NewForecastJob(engine *stats.Engine, store ForecastStore, historyDays int, log logger.Logger) *ForecastJob {
	return &ForecastJob{
		engine:  engine,
		store:   store,
		history: time.Duration(historyDays) * 24 * time.Hour,
		log:     log,
		now:     time.Now,
	}
}

func (j *ForecastJob) Name() string { return "forecast_generation" }

// Run replaces the stored forecast points of every active pair. Slots with
// no history produce no point; a pair with no history at all simply keeps
// an empty forecast.
func (j *ForecastJob) Run(ctx context.Context) (int, error) {
	now := j.now().UTC()
	from := now.Add(-j.history)

	slots, err := j.engine.SlotStats(ctx, stats.HistoryFilter{From: from, To: now})
	if err != nil {
		return 0, err
	}
	pairs, err := j.store.ActivePairs(ctx, from, now)
	if err != nil {
		return 0, err
	}

	first := now.Truncate(30 * time.Minute).Add(30 * time.Minute)
	var points []model.ForecastPoint
	for _, p := range pairs {
		for i := 0; i < forecastSlots; i++ {
			slotStart := first.Add(time.Duration(i) * 30 * time.Minute)
			key := model.SlotKey{
				StationID:     p.StationID,
				VehicleTypeID: p.VehicleTypeID,
				DayOfWeek:     int(slotStart.Weekday()),
				Hour:          slotStart.Hour(),
				MinuteBin:     minuteBin(slotStart),
			}
			st, ok := slots[key]
			if !ok {
				continue
			}
			points = append(points, model.ForecastPoint{
				StationID:       p.StationID,
				VehicleTypeID:   p.VehicleTypeID,
				SlotStart:       slotStart,
				PredictedDemand: st.P90,
				Confidence:      confidence(st),
				GeneratedAt:     now,
			})
		}
	}
	if err := j.store.SaveForecasts(ctx, points); err != nil {
		return 0, err
	}
	if pruned, err := j.store.PruneForecasts(ctx, now); err != nil {
		j.log.Warnf("prune forecasts: %v", err)
	} else if pruned > 0 {
		j.log.Debugf("pruned %d forecast point(s)", pruned)
	}
	return len(points), nil
}

func minuteBin(t time.Time) int {
	if t.Minute() >= 30 {
		return 30
	}
	return 0
}

// confidence scores a slot by the relative spread between its P90 and its
// mean, clamped to [0.1, 1.0].
func confidence(st *model.DemandStats) float64 {
	if st.Mean <= 0 {
		return 0.1
	}
	c := (st.P90 - st.Mean) / st.Mean
	if c < 0.1 {
		return 0.1
	}
	if c > 1.0 {
		return 1.0
	}
	return c
}
