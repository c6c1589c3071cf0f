package store

import "time"

// DemandEvent is one raw rental demand observation. Owned by the booking
// subsystem; the aggregate refresh job reads it, nothing here writes it.
type DemandEvent struct {
	ID            uint      `gorm:"primaryKey"`
	StationID     string    `gorm:"size:64;index:idx_demand_events_pair"`
	VehicleTypeID string    `gorm:"size:64;index:idx_demand_events_pair"`
	EventTime     time.Time `gorm:"index"`
	Count         float64
}

// DemandAggregate is the time-binned demand view the statistics engine
// reads. Rebuilt by the refresh job; retained for 56 days.
type DemandAggregate struct {
	ID            uint      `gorm:"primaryKey"`
	StationID     string    `gorm:"size:64;index:idx_demand_aggregates_pair"`
	VehicleTypeID string    `gorm:"size:64;index:idx_demand_aggregates_pair"`
	TimeBin       time.Time `gorm:"index"`
	DemandCount   float64
}

// AvailabilitySnapshot is the periodic inventory capture per station and
// vehicle type. Append-only; pruned after 30 days.
type AvailabilitySnapshot struct {
	ID               uint      `gorm:"primaryKey"`
	StationID        string    `gorm:"size:64;index:idx_snapshots_pair"`
	VehicleTypeID    string    `gorm:"size:64;index:idx_snapshots_pair"`
	SnapshotTime     time.Time `gorm:"index"`
	AvailableCount   int
	ChargingCount    int
	MaintenanceCount int
	InUseCount       int
	ReservedCount    int
}

// FleetVehicle mirrors the live status of one vehicle. Owned by the booking
// subsystem; used read-only as the availability fallback.
type FleetVehicle struct {
	ID            string `gorm:"primaryKey;size:64"`
	StationID     string `gorm:"size:64;index:idx_fleet_pair"`
	VehicleTypeID string `gorm:"size:64;index:idx_fleet_pair"`
	State         string `gorm:"size:32;index"`
	UpdatedAt     time.Time
}

// DemandForecast is one half-hour forecast point written by the forecast
// job. Retained for 7 days.
type DemandForecast struct {
	ID              uint      `gorm:"primaryKey"`
	StationID       string    `gorm:"size:64;index:idx_forecasts_pair"`
	VehicleTypeID   string    `gorm:"size:64;index:idx_forecasts_pair"`
	SlotStart       time.Time `gorm:"index"`
	PredictedDemand float64
	Confidence      float64
	GeneratedAt     time.Time
}

// RebalancingPlan is one proposed relocation or purchase row. PROPOSED rows
// for a date are replaced wholesale by each generation run.
type RebalancingPlan struct {
	ID            uint      `gorm:"primaryKey"`
	PlanDate      time.Time `gorm:"index"`
	FromDepotID   string    `gorm:"size:64"`
	ToDepotID     string    `gorm:"size:64"`
	VehicleTypeID string    `gorm:"size:64"`
	Quantity      int
	ActionType    string `gorm:"size:16"`
	Priority      float64
	EstimatedCost float64
	Status        string `gorm:"size:16;index"`
	Reason        string
	CreatedAt     time.Time
}

// AdviceRun is the write-once audit record of a planning run.
type AdviceRun struct {
	RunID      string    `gorm:"primaryKey;size:36"`
	CreatedAt  time.Time `gorm:"index"`
	Actor      string    `gorm:"size:128"`
	InputsJSON string
	OutputJSON string
	LatencyMs  int64
	InputHash  string `gorm:"size:64;index"`
}
