package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/kilianp07/fleetcap/core/logger"
)

// NewRouter creates and configures the gin router.
func NewRouter(h *Handler, cfg Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", h.Healthz)

	v1 := r.Group("/api/v1")
	v1.Use(RateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))
	{
		v1.POST("/capacity/advice", h.PostAdvice)
		v1.GET("/capacity/constraints/:key", h.GetConstraints)
		v1.PUT("/capacity/constraints/:key", h.PutConstraints)
		v1.GET("/plans/:date", h.GetPlans)
	}

	return r
}

// Serve runs the router until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, r *gin.Engine, port int, log logger.Logger) error {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("api server shutdown: %v", err)
		}
		cancel()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
