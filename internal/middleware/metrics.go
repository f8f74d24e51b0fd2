package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusfees/fee-management-api/internal/service"
)

// Metrics records per-request counters and latency histograms. The scrape
// endpoint itself is excluded so Prometheus polling does not skew the series.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
