package handler

import (
	"log"
	"strconv"

	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	stats *usecase.StatsService
}

func NewStatsHandler(stats *usecase.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GetDeviceStats serves the dashboard overview. This is an operator-facing
// read path, so store failures surface as errors instead of being
// swallowed like they are on the ingestion side.
func (h *StatsHandler) GetDeviceStats(c *gin.Context) {
	stats, err := h.stats.GetDeviceStats()
	if err != nil {
		log.Printf("Error fetching device stats: %v", err)
		utils.InternalError(c, "Failed to fetch device statistics")
		return
	}

	utils.Success(c, gin.H{
		"stats": stats,
	})
}

func (h *StatsHandler) GetPopularDevices(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			utils.BadRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	popular, err := h.stats.GetPopularDevices(limit)
	if err != nil {
		log.Printf("Error fetching popular devices: %v", err)
		utils.InternalError(c, "Failed to fetch popular devices")
		return
	}

	utils.Success(c, gin.H{
		"popular_devices": popular,
	})
}
