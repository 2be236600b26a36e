package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck reports whether a dependency is ready to serve.
type ReadinessCheck func() error

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	checks map[string]ReadinessCheck
}

// NewHealthHandler creates a HealthHandler with named readiness checks.
func NewHealthHandler(checks map[string]ReadinessCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Liveness handles GET /healthz
//
//	@Summary  Liveness probe
//	@Tags     health
//	@Produce  json
//	@Success  200  {object}  map[string]string
//	@Router   /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
//
//	@Summary  Readiness probe
//	@Tags     health
//	@Produce  json
//	@Success  200  {object}  map[string]string
//	@Failure  503  {object}  map[string]string
//	@Router   /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	failures := gin.H{}
	for name, check := range h.checks {
		if err := check(); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": failures})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
