package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kilianp07/fleetcap/core/model"
)

// ReplaceProposedPlans deletes the still-PROPOSED rows for planDate and
// inserts the new batch, atomically, so readers never see a half-replaced
// plan set.
func (s *Store) ReplaceProposedPlans(ctx context.Context, planDate time.Time, plans []model.RebalancingPlan) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_date = ? AND status = ?", planDate, string(model.PlanProposed)).
			Delete(&RebalancingPlan{}).Error; err != nil {
			return fmt.Errorf("clear proposed plans: %w", err)
		}
		for _, p := range plans {
			row := RebalancingPlan{
				PlanDate:      p.PlanDate,
				FromDepotID:   p.FromDepotID,
				ToDepotID:     p.ToDepotID,
				VehicleTypeID: p.VehicleTypeID,
				Quantity:      p.Quantity,
				ActionType:    string(p.ActionType),
				Priority:      p.Priority,
				EstimatedCost: p.EstimatedCost,
				Status:        string(p.Status),
				Reason:        p.Reason,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("insert plan: %w", err)
			}
		}
		return nil
	})
}

// PlansForDate returns every plan row of planDate ordered by priority.
func (s *Store) PlansForDate(ctx context.Context, planDate time.Time) ([]model.RebalancingPlan, error) {
	var rows []RebalancingPlan
	err := s.db.WithContext(ctx).
		Where("plan_date = ?", planDate).
		Order("priority desc, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("plans: %w", err)
	}
	out := make([]model.RebalancingPlan, len(rows))
	for i, r := range rows {
		out[i] = model.RebalancingPlan{
			PlanDate:      r.PlanDate,
			FromDepotID:   r.FromDepotID,
			ToDepotID:     r.ToDepotID,
			VehicleTypeID: r.VehicleTypeID,
			Quantity:      r.Quantity,
			ActionType:    model.PlanActionType(r.ActionType),
			Priority:      r.Priority,
			EstimatedCost: r.EstimatedCost,
			Status:        model.PlanStatus(r.Status),
			Reason:        r.Reason,
		}
	}
	return out, nil
}

// SaveForecasts replaces the forecast points of every pair present in the
// batch, atomically per run.
func (s *Store) SaveForecasts(ctx context.Context, points []model.ForecastPoint) error {
	if len(points) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cleared := make(map[availabilityKey]struct{})
		for _, p := range points {
			key := availabilityKey{p.StationID, p.VehicleTypeID}
			if _, done := cleared[key]; !done {
				if err := tx.Where("station_id = ? AND vehicle_type_id = ?", p.StationID, p.VehicleTypeID).
					Delete(&DemandForecast{}).Error; err != nil {
					return fmt.Errorf("clear forecasts: %w", err)
				}
				cleared[key] = struct{}{}
			}
			row := DemandForecast{
				StationID:       p.StationID,
				VehicleTypeID:   p.VehicleTypeID,
				SlotStart:       p.SlotStart,
				PredictedDemand: p.PredictedDemand,
				Confidence:      p.Confidence,
				GeneratedAt:     p.GeneratedAt,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("insert forecast: %w", err)
			}
		}
		return nil
	})
}

// ForecastsForPair returns the stored forecast points of one pair ordered by
// slot start.
func (s *Store) ForecastsForPair(ctx context.Context, stationID, vehicleTypeID string) ([]model.ForecastPoint, error) {
	var rows []DemandForecast
	err := s.db.WithContext(ctx).
		Where("station_id = ? AND vehicle_type_id = ?", stationID, vehicleTypeID).
		Order("slot_start").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("forecasts: %w", err)
	}
	out := make([]model.ForecastPoint, len(rows))
	for i, r := range rows {
		out[i] = model.ForecastPoint{
			StationID:       r.StationID,
			VehicleTypeID:   r.VehicleTypeID,
			SlotStart:       r.SlotStart,
			PredictedDemand: r.PredictedDemand,
			Confidence:      r.Confidence,
			GeneratedAt:     r.GeneratedAt,
		}
	}
	return out, nil
}
