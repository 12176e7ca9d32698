// controllers/group_controller.go
package controllers

import (
	"strings"

	"famline/models"
	"famline/services"
	"famline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type GroupController struct {
	groupService *services.GroupService
}

func NewGroupController(groupService *services.GroupService) *GroupController {
	return &GroupController{
		groupService: groupService,
	}
}

// ============== GROUP CRUD ==============

// CreateGroup creates a custom group
// @Summary Create a group
// @Tags Groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateGroupRequest true "Group data"
// @Success 201 {object} models.APIResponse{data=models.Group}
// @Failure 400 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /groups [post]
func (gc *GroupController) CreateGroup(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	group, err := gc.groupService.CreateGroup(c.Request.Context(), userID, req)
	if err != nil {
		logrus.Errorf("Group creation failed for user %s: %v", userID, err)

		switch err.Error() {
		case "validation failed":
			utils.BadRequestResponse(c, "Invalid input data")
		case "group name already exists":
			utils.ConflictResponse(c, "A group with this name already exists")
		case "group limit reached":
			utils.BadRequestResponse(c, "Maximum number of custom groups reached")
		default:
			utils.InternalServerErrorResponse(c, "Failed to create group")
		}
		return
	}

	utils.CreatedResponse(c, "Group created successfully", group)
}

// GetGroups lists the owner's groups with optional filters and settings summary
// @Summary List groups
// @Description List groups, optionally filtered by ids or type, with an optional settings summary
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Param group_ids query string false "Comma separated group ids"
// @Param group_type query string false "Filter by type" Enums(default, custom)
// @Param settings_summary query bool false "Include membership settings summary"
// @Success 200 {object} models.APIResponse{data=models.GroupListResponse}
// @Router /groups [get]
func (gc *GroupController) GetGroups(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var ids []string
	if raw := c.Query("group_ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	groupType := c.Query("group_type")
	if groupType != "" && groupType != models.GroupTypeDefault && groupType != models.GroupTypeCustom {
		utils.BadRequestResponse(c, "group_type must be 'default' or 'custom'")
		return
	}

	withSummary := c.Query("settings_summary") == "true"

	response, err := gc.groupService.GetUserGroups(c.Request.Context(), userID, ids, groupType, withSummary)
	if err != nil {
		logrus.Errorf("Failed to list groups for user %s: %v", userID, err)
		utils.InternalServerErrorResponse(c, "Failed to retrieve groups")
		return
	}

	utils.SuccessResponse(c, "Groups retrieved successfully", response)
}

// GetGroup returns a single group
// @Summary Get a group
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Param groupId path string true "Group ID"
// @Success 200 {object} models.APIResponse{data=models.Group}
// @Failure 404 {object} models.APIResponse
// @Router /groups/{groupId} [get]
func (gc *GroupController) GetGroup(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	groupID := c.Param("groupId")

	group, err := gc.groupService.GetGroup(c.Request.Context(), userID, groupID)
	if err != nil {
		switch err.Error() {
		case "group not found":
			utils.NotFoundResponse(c, "Group")
		default:
			logrus.Errorf("Failed to get group %s: %v", groupID, err)
			utils.InternalServerErrorResponse(c, "Failed to retrieve group")
		}
		return
	}

	utils.SuccessResponse(c, "Group retrieved successfully", group)
}

// UpdateGroup renames a group or changes its defaults
// @Summary Update a group
// @Tags Groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupId path string true "Group ID"
// @Param request body models.UpdateGroupRequest true "Update data"
// @Success 200 {object} models.APIResponse{data=models.Group}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /groups/{groupId} [put]
func (gc *GroupController) UpdateGroup(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	groupID := c.Param("groupId")

	var req models.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	group, err := gc.groupService.UpdateGroup(c.Request.Context(), userID, groupID, req)
	if err != nil {
		logrus.Errorf("Failed to update group %s: %v", groupID, err)

		switch err.Error() {
		case "validation failed":
			utils.BadRequestResponse(c, "Invalid input data")
		case "no fields to update":
			utils.BadRequestResponse(c, "No fields to update")
		case "group not found":
			utils.NotFoundResponse(c, "Group")
		case "default groups cannot be renamed":
			utils.BadRequestResponse(c, "Default groups cannot be renamed")
		case "group name already exists":
			utils.ConflictResponse(c, "A group with this name already exists")
		default:
			utils.InternalServerErrorResponse(c, "Failed to update group")
		}
		return
	}

	utils.SuccessResponse(c, "Group updated successfully", group)
}

// DeleteGroup removes a custom group and its memberships
// @Summary Delete a group
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Param groupId path string true "Group ID"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /groups/{groupId} [delete]
func (gc *GroupController) DeleteGroup(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	groupID := c.Param("groupId")

	err := gc.groupService.DeleteGroup(c.Request.Context(), userID, groupID)
	if err != nil {
		logrus.Errorf("Failed to delete group %s: %v", groupID, err)

		switch err.Error() {
		case "group not found":
			utils.NotFoundResponse(c, "Group")
		case "default groups cannot be deleted":
			utils.BadRequestResponse(c, "Default groups cannot be deleted")
		default:
			utils.InternalServerErrorResponse(c, "Failed to delete group")
		}
		return
	}

	utils.SuccessResponse(c, "Group deleted successfully", nil)
}

// ============== MEMBERSHIPS ==============

// AddMember adds a recipient to a group
// @Summary Add a member to a group
// @Tags Groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupId path string true "Group ID"
// @Param request body models.AddMemberRequest true "Member data"
// @Success 201 {object} models.APIResponse{data=models.GroupMembership}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /groups/{groupId}/members [post]
func (gc *GroupController) AddMember(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	groupID := c.Param("groupId")

	var req models.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	membership, err := gc.groupService.AddMember(c.Request.Context(), userID, groupID, req)
	if err != nil {
		logrus.Errorf("Failed to add member to group %s: %v", groupID, err)

		switch err.Error() {
		case "validation failed":
			utils.BadRequestResponse(c, "Invalid input data")
		case "group not found":
			utils.NotFoundResponse(c, "Group")
		case "recipient not found":
			utils.NotFoundResponse(c, "Recipient")
		case "recipient is not active":
			utils.BadRequestResponse(c, "Recipient is not active")
		case "group has reached maximum member limit":
			utils.BadRequestResponse(c, "Group has reached maximum member limit")
		case "recipient is already a member of this group":
			utils.ConflictResponse(c, "Recipient is already a member of this group")
		default:
			utils.InternalServerErrorResponse(c, "Failed to add member")
		}
		return
	}

	utils.CreatedResponse(c, "Member added successfully", membership)
}

// GetGroupMembers lists a group's memberships
// @Summary List group members
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Param groupId path string true "Group ID"
// @Success 200 {object} models.APIResponse{data=[]models.GroupMembership}
// @Failure 404 {object} models.APIResponse
// @Router /groups/{groupId}/members [get]
func (gc *GroupController) GetGroupMembers(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	groupID := c.Param("groupId")

	members, err := gc.groupService.GetGroupMembers(c.Request.Context(), userID, groupID)
	if err != nil {
		switch err.Error() {
		case "group not found":
			utils.NotFoundResponse(c, "Group")
		default:
			logrus.Errorf("Failed to list members of group %s: %v", groupID, err)
			utils.InternalServerErrorResponse(c, "Failed to retrieve members")
		}
		return
	}

	utils.SuccessResponse(c, "Members retrieved successfully", members)
}

// RemoveMember removes a membership
// @Summary Remove a member
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Param membershipId path string true "Membership ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /memberships/{membershipId} [delete]
func (gc *GroupController) RemoveMember(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	membershipID := c.Param("membershipId")

	err := gc.groupService.RemoveMember(c.Request.Context(), userID, membershipID)
	if err != nil {
		logrus.Errorf("Failed to remove membership %s: %v", membershipID, err)

		switch err.Error() {
		case "membership not found":
			utils.NotFoundResponse(c, "Membership")
		default:
			utils.InternalServerErrorResponse(c, "Failed to remove member")
		}
		return
	}

	utils.SuccessResponse(c, "Member removed successfully", nil)
}

// UpdateMemberRole changes a membership's role
// @Summary Update a member's role
// @Tags Groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param membershipId path string true "Membership ID"
// @Param request body models.UpdateMemberRoleRequest true "Role data"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /memberships/{membershipId}/role [put]
func (gc *GroupController) UpdateMemberRole(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	membershipID := c.Param("membershipId")

	var req models.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	err := gc.groupService.UpdateMemberRole(c.Request.Context(), userID, membershipID, req)
	if err != nil {
		logrus.Errorf("Failed to update role for membership %s: %v", membershipID, err)

		switch err.Error() {
		case "validation failed":
			utils.BadRequestResponse(c, "Invalid input data")
		case "membership not found":
			utils.NotFoundResponse(c, "Membership")
		default:
			utils.InternalServerErrorResponse(c, "Failed to update member role")
		}
		return
	}

	utils.SuccessResponse(c, "Member role updated successfully", nil)
}
