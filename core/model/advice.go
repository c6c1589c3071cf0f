package model

// AdviceActionType enumerates the actions the advisory layer can emit.
type AdviceActionType string

const (
	AdviceBuy           AdviceActionType = "BUY"
	AdviceReallocateIn  AdviceActionType = "REALLOCATE_IN"
	AdviceReallocateOut AdviceActionType = "REALLOCATE_OUT"
	AdviceSurplus       AdviceActionType = "SURPLUS"
	AdviceNoAction      AdviceActionType = "NO_ACTION"
)

// CapacityAction is one advised step for a station and vehicle type.
type CapacityAction struct {
	StationID        string           `json:"station_id"`
	VehicleTypeID    string           `json:"vehicle_type_id"`
	ActionType       AdviceActionType `json:"action_type"`
	Units            int              `json:"units"`
	Priority         float64          `json:"priority"`
	Rationale        string           `json:"rationale"`
	EstimatedCost    float64          `json:"estimated_cost,omitempty"`
	RelatedStationID string           `json:"related_station_id,omitempty"`
}

// AdviceSummary aggregates the actions of one advice response.
type AdviceSummary struct {
	TotalCost        float64 `json:"total_cost"`
	StationsAffected int     `json:"stations_affected"`
	UnitsAdded       int     `json:"units_added"`
	UnitsReallocated int     `json:"units_reallocated"`
	Notes            string  `json:"notes"`
}

// CapacityAdviceResponse is the final output of a planning request. It is
// produced fresh per request and only logged, never persisted as-is.
type CapacityAdviceResponse struct {
	Actions []CapacityAction `json:"actions"`
	Summary AdviceSummary    `json:"summary"`
}

// PlanningConstraints carries the caller-supplied knobs of a planning
// request.
type PlanningConstraints struct {
	Objective        string  `json:"objective"`
	HorizonDays      int     `json:"horizon_days"`
	AvgTripHours     float64 `json:"avg_trip_hours"`
	TurnaroundHours  float64 `json:"turnaround_hours"`
	Budget           float64 `json:"budget,omitempty"`
	MaxDailyPurchase int     `json:"max_daily_purchase,omitempty"`
	SLAMinutes       int     `json:"sla_minutes"`
}
