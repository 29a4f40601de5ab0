package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jengzang/carsharing-backend-go/internal/service"
	"github.com/jengzang/carsharing-backend-go/pkg/response"
)

// StatsHandler handles HTTP requests for statistics
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetFleetStats handles GET /api/v1/stats
func (h *StatsHandler) GetFleetStats(c *gin.Context) {
	stats, err := h.statsService.GetFleetStats(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to get statistics", err)
		return
	}

	response.Success(c, stats)
}
