// Package endpoint provides the operational handlers mounted next to the API.
package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisperd/component"
)

// HealthChecker reports the health of every registered component.
type HealthChecker func(ctx context.Context) []component.Health

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     component.HealthStatus `json:"status"`
	Service    string                 `json:"service"`
	Timestamp  string                 `json:"timestamp"`
	Components []component.Health     `json:"components,omitempty"`
}

var severity = map[component.HealthStatus]int{
	component.StatusHealthy:   0,
	component.StatusDegraded:  1,
	component.StatusUnhealthy: 2,
}

// overall is the worst status in hs, healthy when hs is empty.
func overall(hs []component.Health) component.HealthStatus {
	worst := component.StatusHealthy
	for _, h := range hs {
		if severity[h.Status] > severity[worst] {
			worst = h.Status
		}
	}
	return worst
}

// Health answers 503 while any component is unhealthy and 200 otherwise.
func Health(service string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var hs []component.Health
		if checker != nil {
			hs = checker(c.Request.Context())
		}
		resp := HealthResponse{
			Status:     overall(hs),
			Service:    service,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Components: hs,
		}
		code := http.StatusOK
		if resp.Status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, resp)
	}
}
