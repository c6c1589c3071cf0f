package model

// RecommendedAction classifies the baseline decision for one
// (station, vehicle type) pair.
type RecommendedAction string

const (
	ActionBuy     RecommendedAction = "BUY"
	ActionSurplus RecommendedAction = "SURPLUS"
	ActionOK      RecommendedAction = "OK"
)

// CapacityRecommendation is the deterministic, per-pair planning baseline.
// It is computed fresh per planning request and only summarized into the
// audit record, never persisted directly.
type CapacityRecommendation struct {
	StationID            string            `json:"station_id"`
	VehicleTypeID        string            `json:"vehicle_type_id"`
	PeakP90Demand        float64           `json:"peak_p90_demand"`
	RequiredUnits        int               `json:"required_units"`
	CurrentAvailablePeak int               `json:"current_available_peak_24h"`
	Gap                  int               `json:"gap"` // positive = shortage, negative = surplus
	Priority             float64           `json:"priority"`
	RecommendedAction    RecommendedAction `json:"recommended_action"`
}

// ActionForGap returns the baseline action implied by a signed gap.
func ActionForGap(gap int) RecommendedAction {
	switch {
	case gap > 0:
		return ActionBuy
	case gap < 0:
		return ActionSurplus
	default:
		return ActionOK
	}
}
