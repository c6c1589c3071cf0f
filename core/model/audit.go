package model

import "time"

// AdviceRun is the write-once audit record of one planning run. InputHash is
// a content hash of the serialized inputs used for duplicate-run detection.
type AdviceRun struct {
	RunID      string    `json:"run_id"`
	CreatedAt  time.Time `json:"created_at"`
	Actor      string    `json:"actor"`
	InputsJSON string    `json:"inputs_json"`
	OutputJSON string    `json:"output_json"`
	LatencyMs  int64     `json:"latency_ms"`
	InputHash  string    `json:"input_hash"`
}
