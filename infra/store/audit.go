package store

import (
	"context"
	"fmt"

	"github.com/kilianp07/fleetcap/core/model"
)

// SaveAdviceRun implements planner.AuditWriter. Records are write-once.
func (s *Store) SaveAdviceRun(ctx context.Context, run model.AdviceRun) error {
	row := AdviceRun{
		RunID:      run.RunID,
		CreatedAt:  run.CreatedAt,
		Actor:      run.Actor,
		InputsJSON: run.InputsJSON,
		OutputJSON: run.OutputJSON,
		LatencyMs:  run.LatencyMs,
		InputHash:  run.InputHash,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("save advice run: %w", err)
	}
	return nil
}

// AdviceRunsByHash returns prior runs with the same input content hash,
// newest first. Used for duplicate-run detection.
func (s *Store) AdviceRunsByHash(ctx context.Context, hash string) ([]model.AdviceRun, error) {
	var rows []AdviceRun
	err := s.db.WithContext(ctx).
		Where("input_hash = ?", hash).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("advice runs: %w", err)
	}
	out := make([]model.AdviceRun, len(rows))
	for i, r := range rows {
		out[i] = model.AdviceRun{
			RunID:      r.RunID,
			CreatedAt:  r.CreatedAt,
			Actor:      r.Actor,
			InputsJSON: r.InputsJSON,
			OutputJSON: r.OutputJSON,
			LatencyMs:  r.LatencyMs,
			InputHash:  r.InputHash,
		}
	}
	return out, nil
}
