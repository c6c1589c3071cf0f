package model

import "time"

// AvailabilitySnapshot is one periodic inventory observation for a station
// and vehicle type. Snapshots form an append-only time series pruned on a
// trailing retention window.
type AvailabilitySnapshot struct {
	StationID        string    `json:"station_id"`
	VehicleTypeID    string    `json:"vehicle_type_id"`
	SnapshotTime     time.Time `json:"snapshot_time"`
	AvailableCount   int       `json:"available_count"`
	ChargingCount    int       `json:"charging_count"`
	MaintenanceCount int       `json:"maintenance_count"`
	InUseCount       int       `json:"in_use_count"`
	ReservedCount    int       `json:"reserved_count"`
}

// VehicleState enumerates the live status of a fleet vehicle. The planning
// subsystem only reads these records; they are owned by the booking side.
type VehicleState string

const (
	VehicleAvailable   VehicleState = "AVAILABLE"
	VehicleInUse       VehicleState = "IN_USE"
	VehicleReserved    VehicleState = "RESERVED"
	VehicleCharging    VehicleState = "CHARGING"
	VehicleMaintenance VehicleState = "MAINTENANCE"
)
