// routes/auth.go
package routes

import (
	"famline/controllers"
	"famline/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// SetupAuthRoutes configures authentication routes
func SetupAuthRoutes(router *gin.RouterGroup, authController *controllers.AuthController, authMW *middleware.AuthMiddleware, redisClient *redis.Client) {
	auth := router.Group("/auth")
	auth.Use(middleware.AuthRateLimit(redisClient))

	// Public endpoints
	auth.POST("/register", authController.Register)
	auth.POST("/login", authController.Login)
	auth.POST("/refresh", authController.RefreshToken)

	// Endpoints that require a valid token
	protected := auth.Group("")
	protected.Use(authMW.RequireAuth())
	{
		protected.POST("/logout", authController.Logout)
		protected.POST("/change-password", authController.ChangePassword)
	}
}
