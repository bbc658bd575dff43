package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scoutlab/xi-optimizer/internal/services"
)

type HealthHandler struct {
	pool *services.PoolService
}

func NewHealthHandler(pool *services.PoolService) *HealthHandler {
	return &HealthHandler{
		pool: pool,
	}
}

// GetHealth returns basic liveness status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"service":   "xi-optimizer",
	})
}

// GetReady reports readiness: the server is ready once a player pool
// snapshot has been loaded.
func (h *HealthHandler) GetReady(c *gin.Context) {
	refreshedAt := h.pool.RefreshedAt()
	if refreshedAt.IsZero() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "player pool not loaded",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ready",
		"refreshed_at": refreshedAt,
	})
}
