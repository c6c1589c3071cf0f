package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetcap/core/logger"
	"github.com/kilianp07/fleetcap/core/model"
	"github.com/kilianp07/fleetcap/core/planner"
)

type fakeAdvisor struct {
	gotDate        time.Time
	gotConstraints model.PlanningConstraints
	gotActor       string
	resp           *model.CapacityAdviceResponse
	err            error
}

func (f *fakeAdvisor) GenerateAdvice(_ context.Context, targetDate time.Time, c model.PlanningConstraints, actor string) (*model.CapacityAdviceResponse, error) {
	f.gotDate = targetDate
	f.gotConstraints = c
	f.gotActor = actor
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakePlanReader struct {
	gotDate time.Time
	plans   []model.RebalancingPlan
}

func (f *fakePlanReader) PlansForDate(_ context.Context, planDate time.Time) ([]model.RebalancingPlan, error) {
	f.gotDate = planDate
	return f.plans, nil
}

func newTestRouter(advisor Advisor, plans PlanReader) (*Handler, http.Handler) {
	h := NewHandler(advisor, plans, time.Minute, logger.NopLogger{})
	cfg := Config{}
	cfg.SetDefaults()
	cfg.RateLimitRPS = 1000
	cfg.RateLimitBurst = 1000
	return h, NewRouter(h, cfg)
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPostAdvice_InlineConstraints(t *testing.T) {
	advisor := &fakeAdvisor{resp: &model.CapacityAdviceResponse{
		Actions: []model.CapacityAction{{
			StationID: "S1", VehicleTypeID: "van", ActionType: model.AdviceBuy, Units: 2, Priority: 80,
		}},
		Summary: model.AdviceSummary{StationsAffected: 1, UnitsAdded: 2},
	}}
	_, r := newTestRouter(advisor, nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/capacity/advice", gin_h{
		"target_date": "2025-07-01",
		"constraints": model.PlanningConstraints{AvgTripHours: 2, TurnaroundHours: 1},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.CapacityAdviceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, "S1", resp.Actions[0].StationID)
	assert.Equal(t, "api", advisor.gotActor)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), advisor.gotDate)
}

// gin_h mirrors gin.H for request bodies without importing gin here.
type gin_h = map[string]any

func TestPostAdvice_BadRequests(t *testing.T) {
	advisor := &fakeAdvisor{resp: &model.CapacityAdviceResponse{}}
	_, r := newTestRouter(advisor, nil)

	cases := []struct {
		name string
		body any
	}{
		{"missing target date", gin_h{"constraints": model.PlanningConstraints{AvgTripHours: 1, TurnaroundHours: 1}}},
		{"bad date format", gin_h{"target_date": "01/07/2025", "constraints": model.PlanningConstraints{AvgTripHours: 1, TurnaroundHours: 1}}},
		{"no constraints", gin_h{"target_date": "2025-07-01"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/v1/capacity/advice", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestPostAdvice_InvalidConstraintsMapTo400(t *testing.T) {
	advisor := &fakeAdvisor{err: planner.ErrInvalidConstraints}
	_, r := newTestRouter(advisor, nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/capacity/advice", gin_h{
		"target_date": "2025-07-01",
		"constraints": model.PlanningConstraints{AvgTripHours: -1},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConstraints_RoundTripAndKeyedAdvice(t *testing.T) {
	advisor := &fakeAdvisor{resp: &model.CapacityAdviceResponse{}}
	_, r := newTestRouter(advisor, nil)

	stored := model.PlanningConstraints{AvgTripHours: 3, TurnaroundHours: 1, SLAMinutes: 10}
	w := doJSON(t, r, http.MethodPut, "/api/v1/capacity/constraints/default", stored)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/capacity/constraints/default", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got model.PlanningConstraints
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 3.0, got.AvgTripHours)
	assert.Equal(t, planner.DefaultHorizonDays, got.HorizonDays) // defaults applied on store

	w = doJSON(t, r, http.MethodPost, "/api/v1/capacity/advice", gin_h{
		"target_date":    "2025-07-01",
		"constraint_key": "default",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.0, advisor.gotConstraints.AvgTripHours)
	assert.Equal(t, 10, advisor.gotConstraints.SLAMinutes)
}

func TestConstraints_UnknownKey(t *testing.T) {
	_, r := newTestRouter(&fakeAdvisor{}, nil)

	w := doJSON(t, r, http.MethodGet, "/api/v1/capacity/constraints/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/capacity/advice", gin_h{
		"target_date": "2025-07-01", "constraint_key": "nope",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutConstraints_Invalid(t *testing.T) {
	_, r := newTestRouter(&fakeAdvisor{}, nil)
	w := doJSON(t, r, http.MethodPut, "/api/v1/capacity/constraints/bad",
		model.PlanningConstraints{AvgTripHours: 0, TurnaroundHours: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPlans(t *testing.T) {
	plans := &fakePlanReader{plans: []model.RebalancingPlan{{
		ToDepotID: "S1", VehicleTypeID: "van", Quantity: 2,
		ActionType: model.PlanPurchase, Status: model.PlanProposed,
	}}}
	_, r := newTestRouter(&fakeAdvisor{}, plans)

	w := doJSON(t, r, http.MethodGet, "/api/v1/plans/2025-07-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got []model.RebalancingPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), plans.gotDate)

	w = doJSON(t, r, http.MethodGet, "/api/v1/plans/not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	_, r := newTestRouter(&fakeAdvisor{}, nil)
	w := doJSON(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter(t *testing.T) {
	h := NewHandler(&fakeAdvisor{}, nil, time.Minute, logger.NopLogger{})
	cfg := Config{}
	cfg.SetDefaults()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	r := NewRouter(h, cfg)

	w := doJSON(t, r, http.MethodGet, "/api/v1/capacity/constraints/x", nil)
	assert.Equal(t, http.StatusNotFound, w.Code) // allowed through, key unknown

	w = doJSON(t, r, http.MethodGet, "/api/v1/capacity/constraints/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
