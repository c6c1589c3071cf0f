package advisory

import (
	"context"

	"github.com/kilianp07/fleetcap/core/logger"
	"github.com/kilianp07/fleetcap/core/model"
)

// Resilient wraps a Client so that planning always receives advice. Any
// failure of the inner client, transport, timeout, malformed payload or
// schema violation alike, yields the deterministic fallback. There is no
// retry against the endpoint and no error is ever returned to the caller.
type Resilient struct {
	inner Client
	log   logger.Logger
}

// NewResilient builds the wrapper. A nil inner client always falls back.
func NewResilient(inner Client, log logger.Logger) *Resilient {
	return &Resilient{inner: inner, log: log}
}

// GetAdvice returns the inner client's advice or the local fallback.
func (r *Resilient) GetAdvice(ctx context.Context, req Request) *model.CapacityAdviceResponse {
	if r.inner == nil {
		return Fallback(req.Baseline)
	}
	resp, err := r.inner.GetAdvice(ctx, req)
	if err != nil {
		r.log.Warnf("advisory call failed, using fallback: %v", err)
		return Fallback(req.Baseline)
	}
	if err := ValidateActions(resp.Actions); err != nil {
		r.log.Warnf("advisory response rejected, using fallback: %v", err)
		return Fallback(req.Baseline)
	}
	return resp
}
