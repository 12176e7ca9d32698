// routes/preference.go
package routes

import (
	"famline/controllers"
	"famline/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// SetupPreferenceRoutes configures preference resolution, override, mute,
// template, and bulk operation routes
func SetupPreferenceRoutes(router *gin.RouterGroup, preferenceController *controllers.PreferenceController, redisClient *redis.Client) {
	preferences := router.Group("/preferences")

	// Bulk operations fan out to many documents, so they get a tighter limit
	preferences.POST("/bulk", middleware.BulkRateLimit(redisClient), preferenceController.ExecuteBulkOperation)

	// Per-membership settings
	memberships := preferences.Group("/memberships")
	{
		memberships.GET("/:membershipId", preferenceController.GetEffectiveSettings)
		memberships.PUT("/:membershipId/overrides", preferenceController.UpdateOverrides)
		memberships.DELETE("/:membershipId/overrides", preferenceController.ClearOverrides)
		memberships.POST("/:membershipId/mute", preferenceController.MuteMember)
		memberships.DELETE("/:membershipId/mute", preferenceController.UnmuteMember)
	}

	// Templates
	templates := preferences.Group("/templates")
	{
		templates.GET("", preferenceController.ListTemplates)
		templates.GET("/:templateId", preferenceController.GetTemplate)
	}
}
