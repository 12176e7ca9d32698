// routes/group.go
package routes

import (
	"famline/controllers"

	"github.com/gin-gonic/gin"
)

// SetupGroupRoutes configures group and membership routes
func SetupGroupRoutes(router *gin.RouterGroup, groupController *controllers.GroupController) {
	groups := router.Group("/groups")

	// Group CRUD
	groups.GET("", groupController.GetGroups)
	groups.POST("", groupController.CreateGroup)
	groups.GET("/:groupId", groupController.GetGroup)
	groups.PUT("/:groupId", groupController.UpdateGroup)
	groups.DELETE("/:groupId", groupController.DeleteGroup)

	// Member management
	groups.GET("/:groupId/members", groupController.GetGroupMembers)
	groups.POST("/:groupId/members", groupController.AddMember)

	// Membership routes are keyed by membership id, not group id
	memberships := router.Group("/memberships")
	{
		memberships.DELETE("/:membershipId", groupController.RemoveMember)
		memberships.PUT("/:membershipId/role", groupController.UpdateMemberRole)
	}
}
