// routes/update.go
package routes

import (
	"famline/controllers"
	"famline/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// SetupUpdateRoutes configures child update routes
func SetupUpdateRoutes(router *gin.RouterGroup, updateController *controllers.UpdateController, redisClient *redis.Client) {
	updates := router.Group("/updates")
	updates.Use(middleware.UpdateRateLimit(redisClient))

	updates.GET("", updateController.GetUpdates)
	updates.POST("", updateController.CreateUpdate)
	updates.GET("/:updateId", updateController.GetUpdate)
	updates.DELETE("/:updateId", updateController.DeleteUpdate)
}
