// controllers/recipient_controller.go
package controllers

import (
	"famline/models"
	"famline/services"
	"famline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RecipientController struct {
	recipientService *services.RecipientService
}

func NewRecipientController(recipientService *services.RecipientService) *RecipientController {
	return &RecipientController{
		recipientService: recipientService,
	}
}

// CreateRecipient adds a recipient to the owner's address book
// @Summary Create a recipient
// @Tags Recipients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateRecipientRequest true "Recipient data"
// @Success 201 {object} models.APIResponse{data=models.Recipient}
// @Failure 400 {object} models.APIResponse
// @Router /recipients [post]
func (rc *RecipientController) CreateRecipient(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.CreateRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	recipient, err := rc.recipientService.CreateRecipient(c.Request.Context(), userID, req)
	if err != nil {
		logrus.Errorf("Recipient creation failed for user %s: %v", userID, err)

		switch err.Error() {
		case "validation failed":
			utils.BadRequestResponse(c, "Invalid input data")
		case "email or phone number is required":
			utils.BadRequestResponse(c, "At least one contact method is required")
		default:
			utils.InternalServerErrorResponse(c, "Failed to create recipient")
		}
		return
	}

	utils.CreatedResponse(c, "Recipient created successfully", recipient)
}

// GetRecipients lists the owner's recipients
// @Summary List recipients
// @Tags Recipients
// @Produce json
// @Security BearerAuth
// @Param active_only query bool false "Only active recipients"
// @Success 200 {object} models.APIResponse{data=[]models.Recipient}
// @Router /recipients [get]
func (rc *RecipientController) GetRecipients(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	activeOnly := c.Query("active_only") == "true"

	recipients, err := rc.recipientService.GetOwnerRecipients(c.Request.Context(), userID, activeOnly)
	if err != nil {
		logrus.Errorf("Failed to list recipients for user %s: %v", userID, err)
		utils.InternalServerErrorResponse(c, "Failed to retrieve recipients")
		return
	}

	utils.SuccessResponse(c, "Recipients retrieved successfully", recipients)
}

// GetRecipient returns a single recipient
// @Summary Get a recipient
// @Tags Recipients
// @Produce json
// @Security BearerAuth
// @Param recipientId path string true "Recipient ID"
// @Success 200 {object} models.APIResponse{data=models.Recipient}
// @Failure 404 {object} models.APIResponse
// @Router /recipients/{recipientId} [get]
func (rc *RecipientController) GetRecipient(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	recipientID := c.Param("recipientId")

	recipient, err := rc.recipientService.GetRecipient(c.Request.Context(), userID, recipientID)
	if err != nil {
		switch err.Error() {
		case "recipient not found":
			utils.NotFoundResponse(c, "Recipient")
		default:
			logrus.Errorf("Failed to get recipient %s: %v", recipientID, err)
			utils.InternalServerErrorResponse(c, "Failed to retrieve recipient")
		}
		return
	}

	utils.SuccessResponse(c, "Recipient retrieved successfully", recipient)
}

// UpdateRecipient updates a recipient's details
// @Summary Update a recipient
// @Tags Recipients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param recipientId path string true "Recipient ID"
// @Param request body models.UpdateRecipientRequest true "Update data"
// @Success 200 {object} models.APIResponse{data=models.Recipient}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /recipients/{recipientId} [put]
func (rc *RecipientController) UpdateRecipient(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	recipientID := c.Param("recipientId")

	var req models.UpdateRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	recipient, err := rc.recipientService.UpdateRecipient(c.Request.Context(), userID, recipientID, req)
	if err != nil {
		logrus.Errorf("Failed to update recipient %s: %v", recipientID, err)

		switch err.Error() {
		case "validation failed":
			utils.BadRequestResponse(c, "Invalid input data")
		case "no fields to update":
			utils.BadRequestResponse(c, "No fields to update")
		case "recipient not found":
			utils.NotFoundResponse(c, "Recipient")
		default:
			utils.InternalServerErrorResponse(c, "Failed to update recipient")
		}
		return
	}

	utils.SuccessResponse(c, "Recipient updated successfully", recipient)
}

// DeactivateRecipient soft deletes a recipient
// @Summary Deactivate a recipient
// @Tags Recipients
// @Produce json
// @Security BearerAuth
// @Param recipientId path string true "Recipient ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /recipients/{recipientId} [delete]
func (rc *RecipientController) DeactivateRecipient(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	recipientID := c.Param("recipientId")

	err := rc.recipientService.DeactivateRecipient(c.Request.Context(), userID, recipientID)
	if err != nil {
		logrus.Errorf("Failed to deactivate recipient %s: %v", recipientID, err)

		switch err.Error() {
		case "recipient not found":
			utils.NotFoundResponse(c, "Recipient")
		default:
			utils.InternalServerErrorResponse(c, "Failed to deactivate recipient")
		}
		return
	}

	utils.SuccessResponse(c, "Recipient deactivated successfully", nil)
}
