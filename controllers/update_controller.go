// controllers/update_controller.go
package controllers

import (
	"strconv"

	"famline/models"
	"famline/services"
	"famline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UpdateController struct {
	updateService *services.UpdateService
}

func NewUpdateController(updateService *services.UpdateService) *UpdateController {
	return &UpdateController{
		updateService: updateService,
	}
}

// CreateUpdate posts a new child update
// @Summary Create an update
// @Tags Updates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateUpdateRequest true "Update data"
// @Success 201 {object} models.APIResponse{data=models.Update}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /updates [post]
func (uc *UpdateController) CreateUpdate(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.CreateUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	update, err := uc.updateService.CreateUpdate(c.Request.Context(), userID, req)
	if err != nil {
		logrus.Errorf("Update creation failed for user %s: %v", userID, err)

		switch err.Error() {
		case "validation failed":
			utils.BadRequestResponse(c, "Invalid input data")
		case "group not found":
			utils.NotFoundResponse(c, "Group")
		default:
			utils.InternalServerErrorResponse(c, "Failed to create update")
		}
		return
	}

	utils.CreatedResponse(c, "Update created successfully", update)
}

// GetUpdates lists the owner's updates with pagination
// @Summary List updates
// @Tags Updates
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} models.APIResponse{data=[]models.Update}
// @Router /updates [get]
func (uc *UpdateController) GetUpdates(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	response, err := uc.updateService.GetOwnerUpdates(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		logrus.Errorf("Failed to list updates for user %s: %v", userID, err)
		utils.InternalServerErrorResponse(c, "Failed to retrieve updates")
		return
	}

	meta := utils.CreatePaginationMeta(page, pageSize, response.TotalCount)
	utils.SuccessResponseWithMeta(c, "Updates retrieved successfully", response.Updates, meta)
}

// GetUpdate returns a single update
// @Summary Get an update
// @Tags Updates
// @Produce json
// @Security BearerAuth
// @Param updateId path string true "Update ID"
// @Success 200 {object} models.APIResponse{data=models.Update}
// @Failure 404 {object} models.APIResponse
// @Router /updates/{updateId} [get]
func (uc *UpdateController) GetUpdate(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	updateID := c.Param("updateId")

	update, err := uc.updateService.GetUpdate(c.Request.Context(), userID, updateID)
	if err != nil {
		switch err.Error() {
		case "update not found":
			utils.NotFoundResponse(c, "Update")
		default:
			logrus.Errorf("Failed to get update %s: %v", updateID, err)
			utils.InternalServerErrorResponse(c, "Failed to retrieve update")
		}
		return
	}

	utils.SuccessResponse(c, "Update retrieved successfully", update)
}

// DeleteUpdate removes an update
// @Summary Delete an update
// @Tags Updates
// @Produce json
// @Security BearerAuth
// @Param updateId path string true "Update ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /updates/{updateId} [delete]
func (uc *UpdateController) DeleteUpdate(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	updateID := c.Param("updateId")

	err := uc.updateService.DeleteUpdate(c.Request.Context(), userID, updateID)
	if err != nil {
		logrus.Errorf("Failed to delete update %s: %v", updateID, err)

		switch err.Error() {
		case "update not found":
			utils.NotFoundResponse(c, "Update")
		default:
			utils.InternalServerErrorResponse(c, "Failed to delete update")
		}
		return
	}

	utils.SuccessResponse(c, "Update deleted successfully", nil)
}
