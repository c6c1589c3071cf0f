// Package api exposes the planning engine over HTTP. The layer stays
// thin: validation and JSON mapping here, all semantics in core.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/kilianp07/fleetcap/core/logger"
	"github.com/kilianp07/fleetcap/core/model"
	"github.com/kilianp07/fleetcap/core/planner"
)

// Advisor runs the capacity planning flow.
type Advisor interface {
	GenerateAdvice(ctx context.Context, targetDate time.Time, c model.PlanningConstraints, actor string) (*model.CapacityAdviceResponse, error)
}

// PlanReader reads stored rebalancing plans.
type PlanReader interface {
	PlansForDate(ctx context.Context, planDate time.Time) ([]model.RebalancingPlan, error)
}

// Handler groups the HTTP handlers and their dependencies.
type Handler struct {
	advisor       Advisor
	plans         PlanReader
	constraints   *cache.Cache
	constraintTTL time.Duration
	log           logger.Logger
}

// NewHandler wires a Handler. plans may be nil, the plan endpoint then
// answers 404.
func NewHandler(advisor Advisor, plans PlanReader, constraintTTL time.Duration, log logger.Logger) *Handler {
	return &Handler{
		advisor:       advisor,
		plans:         plans,
		constraints:   cache.New(constraintTTL, 2*constraintTTL),
		constraintTTL: constraintTTL,
		log:           log,
	}
}

type adviceRequest struct {
	TargetDate    string                     `json:"target_date" binding:"required"`
	ConstraintKey string                     `json:"constraint_key"`
	Constraints   *model.PlanningConstraints `json:"constraints"`
}

// PostAdvice handles POST /api/v1/capacity/advice.
func (h *Handler) PostAdvice(c *gin.Context) {
	var req adviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	targetDate, err := time.ParseInLocation("2006-01-02", req.TargetDate, time.UTC)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid target_date, use YYYY-MM-DD"})
		return
	}

	var constraints model.PlanningConstraints
	switch {
	case req.Constraints != nil:
		constraints = *req.Constraints
	case req.ConstraintKey != "":
		stored, found := h.constraints.Get(req.ConstraintKey)
		if !found {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown constraint_key"})
			return
		}
		constraints = stored.(model.PlanningConstraints)
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "constraints or constraint_key required"})
		return
	}

	resp, err := h.advisor.GenerateAdvice(c.Request.Context(), targetDate, constraints, "api")
	if err != nil {
		if errors.Is(err, planner.ErrInvalidConstraints) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Errorf("generate advice: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "planning failed"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetConstraints handles GET /api/v1/capacity/constraints/:key.
func (h *Handler) GetConstraints(c *gin.Context) {
	key := c.Param("key")
	stored, found := h.constraints.Get(key)
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown constraint key"})
		return
	}
	c.JSON(http.StatusOK, stored.(model.PlanningConstraints))
}

// PutConstraints handles PUT /api/v1/capacity/constraints/:key.
func (h *Handler) PutConstraints(c *gin.Context) {
	key := c.Param("key")
	var constraints model.PlanningConstraints
	if err := c.ShouldBindJSON(&constraints); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := planner.ValidateConstraints(&constraints); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.constraints.Set(key, constraints, h.constraintTTL)
	c.JSON(http.StatusOK, constraints)
}

// GetPlans handles GET /api/v1/plans/:date.
func (h *Handler) GetPlans(c *gin.Context) {
	if h.plans == nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	planDate, err := time.ParseInLocation("2006-01-02", c.Param("date"), time.UTC)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
		return
	}
	plans, err := h.plans.PlansForDate(c.Request.Context(), planDate)
	if err != nil {
		h.log.Errorf("read plans: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "plan lookup failed"})
		return
	}
	c.JSON(http.StatusOK, plans)
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
