package model

import "time"

// PlanActionType distinguishes relocations from purchases.
type PlanActionType string

const (
	PlanRelocate PlanActionType = "RELOCATE"
	PlanPurchase PlanActionType = "PURCHASE"
)

// PlanStatus tracks the lifecycle of a rebalancing plan row.
type PlanStatus string

const (
	PlanProposed  PlanStatus = "PROPOSED"
	PlanApproved  PlanStatus = "APPROVED"
	PlanExecuted  PlanStatus = "EXECUTED"
	PlanCancelled PlanStatus = "CANCELLED"
)

// RebalancingPlan is one proposed RELOCATE or PURCHASE action for a target
// planning date. Each generation run supersedes the previous still-PROPOSED
// rows for the same date.
type RebalancingPlan struct {
	PlanDate      time.Time      `json:"plan_date"`
	FromDepotID   string         `json:"from_depot_id,omitempty"` // empty for purchases
	ToDepotID     string         `json:"to_depot_id"`
	VehicleTypeID string         `json:"vehicle_type_id"`
	Quantity      int            `json:"quantity"`
	ActionType    PlanActionType `json:"action_type"`
	Priority      float64        `json:"priority"`
	EstimatedCost float64        `json:"estimated_cost"`
	Status        PlanStatus     `json:"status"`
	Reason        string         `json:"reason"`
}

// ForecastPoint is one half-hour demand forecast for a station and vehicle
// type. P90 is the point estimate; Confidence derives from the spread
// between P90 and the mean.
type ForecastPoint struct {
	StationID       string    `json:"station_id"`
	VehicleTypeID   string    `json:"vehicle_type_id"`
	SlotStart       time.Time `json:"slot_start"`
	PredictedDemand float64   `json:"predicted_demand"`
	Confidence      float64   `json:"confidence"`
	GeneratedAt     time.Time `json:"generated_at"`
}
