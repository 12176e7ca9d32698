// controllers/auth_controller.go
package controllers

import (
	"famline/models"
	"famline/services"
	"famline/utils"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// Register handles account creation
// @Summary Register a new account
// @Description Create an account and seed the default family groups
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} models.APIResponse{data=models.AuthResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	response, err := ac.authService.Register(c.Request.Context(), req)
	if err != nil {
		logrus.Errorf("Registration failed: %v", err)

		switch err.Error() {
		case "user with this email already exists":
			utils.ConflictResponse(c, "User with this email already exists")
		case "validation failed":
			utils.BadRequestResponse(c, "Invalid input data")
		default:
			utils.InternalServerErrorResponse(c, "Failed to create account")
		}
		return
	}

	utils.CreatedResponse(c, "Account created successfully", response)
}

// Login authenticates a user
// @Summary Login
// @Description Authenticate and return an access/refresh token pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.APIResponse{data=models.AuthResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	response, err := ac.authService.Login(c.Request.Context(), req)
	if err != nil {
		logrus.Errorf("Login failed: %v", err)

		switch err.Error() {
		case "invalid email or password":
			utils.UnauthorizedResponse(c, "Invalid email or password")
		case "account is deactivated":
			utils.UnauthorizedResponse(c, "Account is deactivated")
		case "validation failed":
			utils.BadRequestResponse(c, "Invalid input data")
		default:
			utils.InternalServerErrorResponse(c, "Authentication failed")
		}
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}

// RefreshToken exchanges a refresh token for a new token pair
// @Summary Refresh tokens
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} models.APIResponse{data=models.AuthResponse}
// @Failure 401 {object} models.APIResponse
// @Router /auth/refresh [post]
func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	response, err := ac.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		logrus.Errorf("Token refresh failed: %v", err)

		switch err.Error() {
		case "invalid refresh token", "invalid token":
			utils.UnauthorizedResponse(c, "Invalid or expired refresh token")
		case "user not found":
			utils.UnauthorizedResponse(c, "Account no longer exists")
		default:
			utils.InternalServerErrorResponse(c, "Failed to refresh tokens")
		}
		return
	}

	utils.SuccessResponse(c, "Tokens refreshed successfully", response)
}

// Logout revokes the current access token
// @Summary Logout
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /auth/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token == "" {
		utils.UnauthorizedResponse(c, "Missing authorization token")
		return
	}

	if err := ac.authService.Logout(c.Request.Context(), token); err != nil {
		logrus.Errorf("Logout failed: %v", err)
		utils.InternalServerErrorResponse(c, "Failed to logout")
		return
	}

	utils.SuccessResponse(c, "Logged out successfully", nil)
}

// ChangePassword updates the authenticated user's password
// @Summary Change password
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ChangePasswordRequest true "Password change data"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Router /auth/change-password [post]
func (ac *AuthController) ChangePassword(c *gin.Context) {
	userID := utils.GetUserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	err := ac.authService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		logrus.Errorf("Password change failed for user %s: %v", userID, err)

		switch err.Error() {
		case "invalid current password":
			utils.UnauthorizedResponse(c, "Current password is incorrect")
		case "user not found":
			utils.NotFoundResponse(c, "User")
		default:
			utils.InternalServerErrorResponse(c, "Failed to change password")
		}
		return
	}

	utils.SuccessResponse(c, "Password changed successfully", nil)
}
