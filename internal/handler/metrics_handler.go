package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/campusfees/fee-management-api/internal/service"
	"github.com/campusfees/fee-management-api/internal/store"
)

// MetricsHandler exposes the health and readiness probes plus the
// Prometheus scrape endpoint.
type MetricsHandler struct {
	metrics *service.MetricsService
	store   *store.Store
	db      *sqlx.DB
}

func NewMetricsHandler(metrics *service.MetricsService, st *store.Store, db *sqlx.DB) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, store: st, db: db}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health reports liveness plus the current store collection sizes, which
// makes a failed hydration visible from the probe.
func (h *MetricsHandler) Health(c *gin.Context) {
	payload := gin.H{"status": "ok"}
	if h.store != nil {
		payload["collections"] = gin.H{
			"feeCategories":    len(h.store.FeeCategories()),
			"upcomingPayments": len(h.store.UpcomingPayments()),
			"notifications":    len(h.store.Notifications()),
		}
	}
	c.JSON(http.StatusOK, payload)
}

// Ready probes the store's KV backend and, when present, the roster
// database. Any unreachable dependency turns the probe 503 so a load
// balancer can pull the instance before writes start failing.
func (h *MetricsHandler) Ready(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if h.store != nil {
		if err := h.store.Ping(c.Request.Context()); err != nil {
			checks["store"] = err.Error()
			healthy = false
		} else {
			checks["store"] = "ok"
		}
	}
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			checks["database"] = err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}

	status := http.StatusOK
	state := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
