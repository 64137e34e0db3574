package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 5 * time.Second

// HealthCheck verifies one backing component. A nil check marks the component
// available without checking; components with no cheap status endpoint report
// as available once their client is constructed.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// HealthHandler reports overall status plus per-component availability. A
// failing component degrades the status but never turns the endpoint into an
// error response.
func (h *HealthHandler) HealthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	services := gin.H{}
	status := "healthy"
	for name, check := range h.checks {
		if check == nil {
			services[name] = "available"
			continue
		}
		if err := check(ctx); err != nil {
			log.Printf("health check %s failed: %v", name, err)
			services[name] = "unavailable"
			status = "degraded"
		} else {
			services[name] = "available"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"services": services,
	})
}
