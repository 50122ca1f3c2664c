package handler

import (
	"net/http"
	"time"

	"walletstore/internal/core/ports"

	"github.com/gin-gonic/gin"
)

type dependencyStatus struct {
	Status    string         `json:"status"`
	LatencyMS int64          `json:"latency_ms"`
	Error     string         `json:"error,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// HealthCheck handles GET /health. Every store is pinged; any failure marks
// the service degraded with a 503.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		deps := make(map[string]dependencyStatus, len(checkers))
		allHealthy := true

		for _, checker := range checkers {
			start := time.Now()
			err := checker.Ping(ctx)
			dep := dependencyStatus{Status: "healthy", LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				dep.Status = "unhealthy"
				dep.Error = err.Error()
				allHealthy = false
			} else if d, ok := checker.(ports.HealthDetailer); ok {
				details, derr := d.Details(ctx)
				if derr != nil {
					dep.Error = derr.Error()
				}
				dep.Details = details
			}
			deps[checker.Name()] = dep
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
