package endpoint

import (
	"maps"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisperd/version"
)

var started = time.Now()

// InfoDetails adds service fields to GET /info, such as the active backend.
type InfoDetails func() map[string]any

// Info reports build metadata and uptime merged with details.
func Info(service string, details InfoDetails) gin.HandlerFunc {
	return func(c *gin.Context) {
		b := version.Get()
		body := map[string]any{
			"service":    service,
			"version":    b.Version,
			"git_commit": b.GitCommit,
			"build_time": b.BuildTime,
			"go_version": b.GoVersion,
			"is_dirty":   b.IsDirty,
			"uptime":     time.Since(started).Round(time.Second).String(),
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		}
		if details != nil {
			maps.Copy(body, details())
		}
		c.JSON(http.StatusOK, body)
	}
}
