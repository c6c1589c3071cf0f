// Package advisory implements the external advisory client against a
// chat-style completion API with a schema-constrained JSON output.
package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	coreadvisory "github.com/kilianp07/fleetcap/core/advisory"
	"github.com/kilianp07/fleetcap/core/model"
)

const systemPrompt = `You are a fleet capacity planner for a vehicle rental network.
Given baseline recommendations and constraints, propose purchase and
reallocation actions. Respect the budget and the daily purchase limit and
keep the output within the provided JSON schema.`

// OpenAIClient calls a chat-completions endpoint and parses the structured
// advice out of the first choice. It never retries; callers wrap it in
// advisory.Resilient for the fallback behaviour.
type OpenAIClient struct {
	cfg    Config
	client *http.Client
}

// NewOpenAIClient builds a client from cfg.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	cfg.SetDefaults()
	return &OpenAIClient{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat json.RawMessage `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// adviceSchema constrains the model output. Version the schema together with
// the wire types in core/model.
var adviceSchema = json.RawMessage(`{
  "type": "json_schema",
  "json_schema": {
    "name": "capacity_advice",
    "strict": true,
    "schema": {
      "type": "object",
      "additionalProperties": false,
      "required": ["actions", "summary"],
      "properties": {
        "actions": {
          "type": "array",
          "items": {
            "type": "object",
            "additionalProperties": false,
            "required": ["station_id", "vehicle_type_id", "action_type", "units", "priority", "rationale"],
            "properties": {
              "station_id": {"type": "string"},
              "vehicle_type_id": {"type": "string"},
              "action_type": {"type": "string", "enum": ["BUY", "REALLOCATE_IN", "REALLOCATE_OUT", "SURPLUS", "NO_ACTION"]},
              "units": {"type": "integer"},
              "priority": {"type": "number"},
              "rationale": {"type": "string"},
              "estimated_cost": {"type": "number"},
              "related_station_id": {"type": "string"}
            }
          }
        },
        "summary": {
          "type": "object",
          "additionalProperties": false,
          "required": ["total_cost", "stations_affected", "units_added", "units_reallocated", "notes"],
          "properties": {
            "total_cost": {"type": "number"},
            "stations_affected": {"type": "integer"},
            "units_added": {"type": "integer"},
            "units_reallocated": {"type": "integer"},
            "notes": {"type": "string"}
          }
        }
      }
    }
  }
}`)

// GetAdvice implements advisory.Client.
func (c *OpenAIClient) GetAdvice(ctx context.Context, req coreadvisory.Request) (*model.CapacityAdviceResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(payload)},
		},
		ResponseFormat: adviceSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.Organization != "" {
		httpReq.Header.Set("OpenAI-Organization", c.cfg.Organization)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("advisory request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, b)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: choices", coreadvisory.ErrMissingField)
	}
	return parseAdvice([]byte(chat.Choices[0].Message.Content))
}

// parseAdvice decodes the schema-constrained content and enforces the
// contract defensively. Both actions and summary must be present.
func parseAdvice(content []byte) (*model.CapacityAdviceResponse, error) {
	var wire struct {
		Actions *[]model.CapacityAction `json:"actions"`
		Summary *model.AdviceSummary    `json:"summary"`
	}
	if err := json.Unmarshal(content, &wire); err != nil {
		return nil, fmt.Errorf("malformed advice payload: %w", err)
	}
	if wire.Actions == nil {
		return nil, fmt.Errorf("%w: actions", coreadvisory.ErrMissingField)
	}
	if wire.Summary == nil {
		return nil, fmt.Errorf("%w: summary", coreadvisory.ErrMissingField)
	}
	if err := coreadvisory.ValidateActions(*wire.Actions); err != nil {
		return nil, err
	}
	return &model.CapacityAdviceResponse{Actions: *wire.Actions, Summary: *wire.Summary}, nil
}
