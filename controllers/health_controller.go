// controllers/health_controller.go
package controllers

import (
	"fmt"
	"net/http"
	"time"

	"famline/database"
	"famline/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

type HealthController struct {
	redis     *redis.Client
	startedAt time.Time
}

func NewHealthController(redisClient *redis.Client) *HealthController {
	return &HealthController{
		redis:     redisClient,
		startedAt: time.Now(),
	}
}

// HealthCheck reports service health
// @Summary Health check
// @Description Report database and cache health
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.HealthResponse
// @Router /health [get]
func (hc *HealthController) HealthCheck(c *gin.Context) {
	services := map[string]string{
		"database": "healthy",
		"cache":    "healthy",
	}

	dbHealth := database.HealthCheck()
	if dbHealth["status"] != "healthy" {
		services["database"] = "unhealthy"
	}

	if hc.redis != nil {
		if err := hc.redis.Ping(c.Request.Context()).Err(); err != nil {
			services["cache"] = "unhealthy"
		}
	} else {
		services["cache"] = "unavailable"
	}

	uptime := fmt.Sprintf("%.0fs", time.Since(hc.startedAt).Seconds())
	response := utils.HealthCheckResponse(services, "1.0.0", uptime)

	if response.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
