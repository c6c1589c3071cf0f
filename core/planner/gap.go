package planner

import (
	"errors"
	"math"

	"github.com/kilianp07/fleetcap/core/model"
)

// ErrInvalidConstraints indicates caller-supplied planning constraints that
// cannot produce a meaningful plan. These fail fast at the call boundary.
var ErrInvalidConstraints = errors.New("planner: invalid planning constraints")

// DefaultHorizonDays is the historical window used when the caller leaves it
// unset. The store keeps 56 days, which bounds the maximum.
const (
	DefaultHorizonDays = 7
	MaxHorizonDays     = 56
)

// ValidateConstraints applies defaults and rejects unusable values.
func ValidateConstraints(c *model.PlanningConstraints) error {
	if c.HorizonDays == 0 {
		c.HorizonDays = DefaultHorizonDays
	}
	if c.HorizonDays < 0 || c.HorizonDays > MaxHorizonDays {
		return errors.Join(ErrInvalidConstraints, errors.New("horizon_days out of range"))
	}
	if c.AvgTripHours <= 0 {
		return errors.Join(ErrInvalidConstraints, errors.New("avg_trip_hours must be positive"))
	}
	if c.TurnaroundHours <= 0 {
		return errors.Join(ErrInvalidConstraints, errors.New("turnaround_hours must be positive"))
	}
	if c.SLAMinutes < 0 {
		return errors.Join(ErrInvalidConstraints, errors.New("sla_minutes must not be negative"))
	}
	return nil
}

// Gap returns the signed capacity gap. Positive means shortage, negative
// surplus.
func Gap(requiredUnits, currentAvailable int) int {
	return requiredUnits - currentAvailable
}

// PriorityScore rates the urgency of a shortage on a 0-100 scale. Surpluses
// and balanced pairs score zero. Tight SLA targets add a fixed boost; the
// boosted form is applied uniformly since it carries strictly more signal.
// An unset SLA (zero) boosts nothing.
func PriorityScore(gap int, peakP90 float64, slaMinutes int) float64 {
	if gap <= 0 {
		return 0
	}
	shortageRatio := float64(gap) / math.Max(peakP90, 1.0)
	base := math.Min(shortageRatio*100, 100)
	boost := 0.0
	switch {
	case slaMinutes <= 0:
	case slaMinutes <= 10:
		boost = 20
	case slaMinutes <= 15:
		boost = 10
	}
	return math.Min(base+boost, 100)
}

// Recommend assembles the baseline recommendation for one pair.
func Recommend(stationID, vehicleTypeID string, peakP90 float64, requiredUnits, currentAvailable, slaMinutes int) model.CapacityRecommendation {
	gap := Gap(requiredUnits, currentAvailable)
	return model.CapacityRecommendation{
		StationID:            stationID,
		VehicleTypeID:        vehicleTypeID,
		PeakP90Demand:        peakP90,
		RequiredUnits:        requiredUnits,
		CurrentAvailablePeak: currentAvailable,
		Gap:                  gap,
		Priority:             PriorityScore(gap, peakP90, slaMinutes),
		RecommendedAction:    model.ActionForGap(gap),
	}
}
