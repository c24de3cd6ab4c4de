package handler

import (
	"context"
	"net/http"
	"time"

	"main/utils"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports Mongo reachability and host load. Degraded storage
// comes back as 503 so the load balancer stops routing ingestion here.
func HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := "ok"
	httpStatus := http.StatusOK
	if err := utils.PingMongo(ctx); err != nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"cpu_usage": utils.GetCPUUsage(),
		"time":      time.Now().UTC(),
	})
}
