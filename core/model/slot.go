package model

import "fmt"

// SlotKey identifies one half-hour demand bucket for a station and
// vehicle type. Equality is structural over all five fields.
type SlotKey struct {
	StationID     string `json:"station_id"`
	VehicleTypeID string `json:"vehicle_type_id"`
	DayOfWeek     int    `json:"day_of_week"` // 0=Sunday .. 6=Saturday
	Hour          int    `json:"hour"`        // 0..23
	MinuteBin     int    `json:"minute_bin"`  // 0 or 30
}

// String returns the composite key used when a SlotKey indexes a map
// serialized to JSON.
func (k SlotKey) String() string {
	return fmt.Sprintf("%s|%s|%d|%02d:%02d", k.StationID, k.VehicleTypeID, k.DayOfWeek, k.Hour, k.MinuteBin)
}

// DemandStats holds the statistics derived from historical samples of a
// single slot, or of one (station, vehicle type) window. It is recomputed
// on every statistics run and never mutated incrementally.
type DemandStats struct {
	Slot        SlotKey   `json:"slot"`
	Mean        float64   `json:"mean"`
	P90         float64   `json:"p90"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	SampleCount int       `json:"sample_count"`
	RawSamples  []float64 `json:"raw_samples,omitempty"`
}
