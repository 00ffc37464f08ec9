package httpapi

import (
	"context"
	"net/http"

	"catalog-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// HealthCheck is one dependency probe reported by /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

func (h Handlers) Healthz(c *gin.Context) {
	for _, hc := range h.Health {
		if err := hc.Check(c.Request.Context()); err != nil {
			logger.FromGin(c).Warn("health check failed", "dependency", hc.Name, "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
