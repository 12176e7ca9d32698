// controllers/preference_controller.go
package controllers

import (
	"famline/models"
	"famline/services"
	"famline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PreferenceController struct {
	preferenceService *services.PreferenceService
	bulkService       *services.BulkService
}

func NewPreferenceController(preferenceService *services.PreferenceService, bulkService *services.BulkService) *PreferenceController {
	return &PreferenceController{
		preferenceService: preferenceService,
		bulkService:       bulkService,
	}
}

// ============== BULK OPERATIONS ==============

// ExecuteBulkOperation applies a preference change across many memberships
// @Summary Execute a bulk preference operation
// @Description Apply update, reset, copy, or apply_template across the resolved target memberships
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.BulkOperationRequest true "Bulk operation"
// @Success 200 {object} models.APIResponse{data=models.BulkOperationResult}
// @Success 207 {object} models.APIResponse{data=models.BulkOperationResult}
// @Failure 400 {object} models.APIResponse
// @Router /preferences/bulk [post]
func (pc *PreferenceController) ExecuteBulkOperation(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.BulkOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	result, err := pc.bulkService.ExecuteBulkOperation(c.Request.Context(), userID, req)
	if err != nil {
		logrus.Errorf("Bulk operation failed for user %s: %v", userID, err)

		switch err.Error() {
		case "validation failed":
			utils.BadRequestResponse(c, "Invalid input data")
		case "settings required for update operation":
			utils.BadRequestResponse(c, "Settings are required for the update operation")
		case "source_group_id required for copy operation":
			utils.BadRequestResponse(c, "Source group is required for the copy operation")
		case "template_id required for apply_template operation":
			utils.BadRequestResponse(c, "Template is required for the apply_template operation")
		case "target ids required":
			utils.BadRequestResponse(c, "Target ids are required for the selected target type")
		case "invalid target id":
			utils.BadRequestResponse(c, "Target ids must be valid object ids")
		case "group not found":
			utils.NotFoundResponse(c, "Source group")
		case "template not found":
			utils.NotFoundResponse(c, "Template")
		default:
			utils.InternalServerErrorResponse(c, "Failed to execute bulk operation")
		}
		return
	}

	if result.AllSucceeded() {
		utils.SuccessResponse(c, "Bulk operation completed successfully", result)
		return
	}

	utils.MultiStatusResponse(c, "Bulk operation completed with failures", result)
}

// ============== EFFECTIVE SETTINGS ==============

// GetEffectiveSettings resolves the settings a membership actually receives
// @Summary Get effective settings for a membership
// @Description Resolve member overrides, group defaults, and system defaults into the effective settings
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Param membershipId path string true "Membership ID"
// @Success 200 {object} models.APIResponse{data=models.EffectiveSettingsResponse}
// @Failure 404 {object} models.APIResponse
// @Router /preferences/memberships/{membershipId} [get]
func (pc *PreferenceController) GetEffectiveSettings(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	membershipID := c.Param("membershipId")

	response, err := pc.preferenceService.GetEffectiveSettings(c.Request.Context(), userID, membershipID)
	if err != nil {
		logrus.Errorf("Failed to resolve effective settings for membership %s: %v", membershipID, err)

		switch err.Error() {
		case "membership not found":
			utils.NotFoundResponse(c, "Membership")
		case "group not found":
			utils.NotFoundResponse(c, "Group")
		default:
			utils.InternalServerErrorResponse(c, "Failed to resolve effective settings")
		}
		return
	}

	utils.SuccessResponse(c, "Effective settings retrieved successfully", response)
}

// UpdateOverrides sets member-level overrides on a membership
// @Summary Update member overrides
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param membershipId path string true "Membership ID"
// @Param request body models.UpdateOverridesRequest true "Override patch"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /preferences/memberships/{membershipId}/overrides [put]
func (pc *PreferenceController) UpdateOverrides(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	membershipID := c.Param("membershipId")

	var req models.UpdateOverridesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	err := pc.preferenceService.UpdateOverrides(c.Request.Context(), userID, membershipID, req)
	if err != nil {
		logrus.Errorf("Failed to update overrides for membership %s: %v", membershipID, err)

		switch err.Error() {
		case "validation failed":
			utils.BadRequestResponse(c, "Invalid input data")
		case "settings required for update operation":
			utils.BadRequestResponse(c, "At least one setting must be provided")
		case "membership not found":
			utils.NotFoundResponse(c, "Membership")
		default:
			utils.InternalServerErrorResponse(c, "Failed to update overrides")
		}
		return
	}

	utils.SuccessResponse(c, "Overrides updated successfully", nil)
}

// ClearOverrides removes all member-level overrides, reverting to group defaults
// @Summary Clear member overrides
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Param membershipId path string true "Membership ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /preferences/memberships/{membershipId}/overrides [delete]
func (pc *PreferenceController) ClearOverrides(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	membershipID := c.Param("membershipId")

	err := pc.preferenceService.ClearOverrides(c.Request.Context(), userID, membershipID)
	if err != nil {
		logrus.Errorf("Failed to clear overrides for membership %s: %v", membershipID, err)

		switch err.Error() {
		case "membership not found":
			utils.NotFoundResponse(c, "Membership")
		default:
			utils.InternalServerErrorResponse(c, "Failed to clear overrides")
		}
		return
	}

	utils.SuccessResponse(c, "Overrides cleared successfully", nil)
}

// ============== MUTE ==============

// MuteMember temporarily silences a membership
// @Summary Mute a membership
// @Description Suppress delivery for a membership until the given time
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param membershipId path string true "Membership ID"
// @Param request body models.MuteMemberRequest true "Mute until"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /preferences/memberships/{membershipId}/mute [post]
func (pc *PreferenceController) MuteMember(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	membershipID := c.Param("membershipId")

	var req models.MuteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	err := pc.preferenceService.Mute(c.Request.Context(), userID, membershipID, req.MuteUntil)
	if err != nil {
		logrus.Errorf("Failed to mute membership %s: %v", membershipID, err)

		switch err.Error() {
		case "mute time must be in the future":
			utils.BadRequestResponse(c, "Mute time must be in the future")
		case "membership not found":
			utils.NotFoundResponse(c, "Membership")
		default:
			utils.InternalServerErrorResponse(c, "Failed to mute membership")
		}
		return
	}

	utils.SuccessResponse(c, "Membership muted successfully", nil)
}

// UnmuteMember restores delivery for a membership
// @Summary Unmute a membership
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Param membershipId path string true "Membership ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /preferences/memberships/{membershipId}/mute [delete]
func (pc *PreferenceController) UnmuteMember(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	membershipID := c.Param("membershipId")

	err := pc.preferenceService.Unmute(c.Request.Context(), userID, membershipID)
	if err != nil {
		logrus.Errorf("Failed to unmute membership %s: %v", membershipID, err)

		switch err.Error() {
		case "membership not found":
			utils.NotFoundResponse(c, "Membership")
		default:
			utils.InternalServerErrorResponse(c, "Failed to unmute membership")
		}
		return
	}

	utils.SuccessResponse(c, "Membership unmuted successfully", nil)
}

// ============== TEMPLATES ==============

// ListTemplates returns the available preference templates
// @Summary List preference templates
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=[]models.PreferenceTemplate}
// @Router /preferences/templates [get]
func (pc *PreferenceController) ListTemplates(c *gin.Context) {
	templates, err := pc.preferenceService.ListTemplates(c.Request.Context())
	if err != nil {
		logrus.Errorf("Failed to list templates: %v", err)
		utils.InternalServerErrorResponse(c, "Failed to retrieve templates")
		return
	}

	utils.SuccessResponse(c, "Templates retrieved successfully", templates)
}

// GetTemplate returns a single preference template
// @Summary Get a preference template
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Param templateId path string true "Template ID"
// @Success 200 {object} models.APIResponse{data=models.PreferenceTemplate}
// @Failure 404 {object} models.APIResponse
// @Router /preferences/templates/{templateId} [get]
func (pc *PreferenceController) GetTemplate(c *gin.Context) {
	templateID := c.Param("templateId")

	template, err := pc.preferenceService.GetTemplate(c.Request.Context(), templateID)
	if err != nil {
		logrus.Errorf("Failed to get template %s: %v", templateID, err)

		switch err.Error() {
		case "template not found":
			utils.NotFoundResponse(c, "Template")
		default:
			utils.InternalServerErrorResponse(c, "Failed to retrieve template")
		}
		return
	}

	utils.SuccessResponse(c, "Template retrieved successfully", template)
}
