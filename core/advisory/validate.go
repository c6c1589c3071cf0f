package advisory

import (
	"errors"
	"fmt"

	"github.com/kilianp07/fleetcap/core/model"
)

// ErrMissingField indicates a schema violation in the advisory response.
var ErrMissingField = errors.New("advisory: response missing required field")

// ValidateActions checks every action for the required identity fields. The
// external schema is treated as a versioned contract and never trusted.
func ValidateActions(actions []model.CapacityAction) error {
	for i, a := range actions {
		if a.StationID == "" {
			return fmt.Errorf("%w: actions[%d].station_id", ErrMissingField, i)
		}
		if a.VehicleTypeID == "" {
			return fmt.Errorf("%w: actions[%d].vehicle_type_id", ErrMissingField, i)
		}
		if a.ActionType == "" {
			return fmt.Errorf("%w: actions[%d].action_type", ErrMissingField, i)
		}
	}
	return nil
}
