package middleware

import (
	"errors"
	"famline/models"
	"famline/utils"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	environment string
	logger      *logrus.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(environment string, logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		environment: environment,
		logger:      logger,
	}
}

// Handle returns the error handling middleware
func (eh *ErrorHandler) Handle() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				eh.handlePanic(c, err)
			}
		}()

		c.Next()

		// Handle errors that were set during request processing
		if len(c.Errors) > 0 {
			eh.handleGinErrors(c)
		}
	})
}

// handlePanic handles panic recovery
func (eh *ErrorHandler) handlePanic(c *gin.Context, err interface{}) {
	eh.logger.WithFields(logrus.Fields{
		"panic":      err,
		"stack":      string(debug.Stack()),
		"request_id": c.GetString("request_id"),
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"user_id":    c.GetString("userID"),
	}).Error("Panic recovered")

	response := models.ErrorResponse{
		Error:     "INTERNAL_ERROR",
		Message:   "Internal server error",
		Code:      "PANIC_RECOVERED",
		RequestID: c.GetString("request_id"),
	}

	// Include stack trace in development
	if eh.environment == "development" {
		response.Details = map[string]interface{}{
			"panic": err,
			"stack": string(debug.Stack()),
		}
	}

	c.JSON(http.StatusInternalServerError, response)
	c.Abort()
}

// handleGinErrors handles errors added to gin context
func (eh *ErrorHandler) handleGinErrors(c *gin.Context) {
	lastError := c.Errors.Last()
	if lastError == nil {
		return
	}

	for _, ginErr := range c.Errors {
		eh.logError(c, ginErr.Err)
	}

	eh.processError(c, lastError.Err)
}

// logError logs an error with context
func (eh *ErrorHandler) logError(c *gin.Context, err error) {
	fields := logrus.Fields{
		"error":      err.Error(),
		"request_id": c.GetString("request_id"),
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"user_id":    c.GetString("userID"),
		"ip":         c.ClientIP(),
		"user_agent": c.GetHeader("User-Agent"),
	}

	switch {
	case eh.isClientError(err):
		eh.logger.WithFields(fields).Warn("Client error")
	case eh.isServerError(err):
		eh.logger.WithFields(fields).Error("Server error")
	default:
		eh.logger.WithFields(fields).Error("Unknown error")
	}
}

// processError processes an error and sends appropriate response
func (eh *ErrorHandler) processError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")

	switch {
	case eh.isValidationError(err):
		eh.handleValidationError(c, err, requestID)
	case eh.isMongoError(err):
		eh.handleMongoError(c, err, requestID)
	case eh.isServiceError(err):
		eh.handleServiceError(c, err, requestID)
	default:
		eh.handleGenericError(c, err, requestID)
	}
}

func (eh *ErrorHandler) isValidationError(err error) bool {
	var validationErr validator.ValidationErrors
	return errors.As(err, &validationErr)
}

func (eh *ErrorHandler) isMongoError(err error) bool {
	return mongo.IsDuplicateKeyError(err) ||
		err == mongo.ErrNoDocuments ||
		mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err)
}

func (eh *ErrorHandler) isServiceError(err error) bool {
	var serviceErr utils.ServiceError
	return errors.As(err, &serviceErr)
}

func (eh *ErrorHandler) isClientError(err error) bool {
	if eh.isValidationError(err) || err == mongo.ErrNoDocuments {
		return true
	}
	if serviceErr, ok := utils.GetServiceError(err); ok {
		return serviceErr.StatusCode < http.StatusInternalServerError
	}
	return false
}

func (eh *ErrorHandler) isServerError(err error) bool {
	return mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err) ||
		!eh.isClientError(err)
}

// handleValidationError handles validation errors
func (eh *ErrorHandler) handleValidationError(c *gin.Context, err error, requestID string) {
	var validationErr validator.ValidationErrors
	if !errors.As(err, &validationErr) {
		return
	}

	response := models.ErrorResponse{
		Error:     "VALIDATION_ERROR",
		Message:   "Validation failed",
		Code:      "VALIDATION_FAILED",
		RequestID: requestID,
		Details:   eh.formatValidationErrors(validationErr),
	}
	c.JSON(http.StatusBadRequest, response)
}

// handleMongoError handles MongoDB errors
func (eh *ErrorHandler) handleMongoError(c *gin.Context, err error, requestID string) {
	switch {
	case mongo.IsDuplicateKeyError(err):
		response := models.ErrorResponse{
			Error:     "CONFLICT",
			Message:   "Resource already exists",
			Code:      "DUPLICATE_RESOURCE",
			RequestID: requestID,
		}
		c.JSON(http.StatusConflict, response)

	case err == mongo.ErrNoDocuments:
		response := models.ErrorResponse{
			Error:     "NOT_FOUND",
			Message:   "Resource not found",
			Code:      "RESOURCE_NOT_FOUND",
			RequestID: requestID,
		}
		c.JSON(http.StatusNotFound, response)

	case mongo.IsTimeout(err):
		response := models.ErrorResponse{
			Error:     "TIMEOUT",
			Message:   "Database operation timed out",
			Code:      "DATABASE_TIMEOUT",
			RequestID: requestID,
		}
		c.JSON(http.StatusGatewayTimeout, response)

	case mongo.IsNetworkError(err):
		response := models.ErrorResponse{
			Error:     "SERVICE_UNAVAILABLE",
			Message:   "Database connection error",
			Code:      "DATABASE_CONNECTION_ERROR",
			RequestID: requestID,
		}
		c.JSON(http.StatusServiceUnavailable, response)

	default:
		response := models.ErrorResponse{
			Error:     "INTERNAL_ERROR",
			Message:   "Database error",
			Code:      "DATABASE_ERROR",
			RequestID: requestID,
		}
		c.JSON(http.StatusInternalServerError, response)
	}
}

// handleServiceError handles application service errors
func (eh *ErrorHandler) handleServiceError(c *gin.Context, err error, requestID string) {
	serviceErr, ok := utils.GetServiceError(err)
	if !ok {
		return
	}

	response := models.ErrorResponse{
		Error:     serviceErr.Code,
		Message:   serviceErr.Message,
		Code:      serviceErr.Code,
		RequestID: requestID,
	}

	if serviceErr.Details != "" {
		response.Details = map[string]interface{}{
			"details": serviceErr.Details,
		}
	}

	statusCode := serviceErr.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}
	c.JSON(statusCode, response)
}

// handleGenericError handles unknown errors
func (eh *ErrorHandler) handleGenericError(c *gin.Context, err error, requestID string) {
	response := models.ErrorResponse{
		Error:     "INTERNAL_ERROR",
		Message:   "An unexpected error occurred",
		Code:      "UNKNOWN_ERROR",
		RequestID: requestID,
	}

	// Include error details in development
	if eh.environment == "development" {
		response.Details = map[string]interface{}{
			"original_error": err.Error(),
		}
	}

	c.JSON(http.StatusInternalServerError, response)
}

// formatValidationErrors formats validator.ValidationErrors into a readable format
func (eh *ErrorHandler) formatValidationErrors(validationErrors validator.ValidationErrors) map[string]interface{} {
	errors := make(map[string]interface{})

	for _, err := range validationErrors {
		field := err.Field()
		tag := err.Tag()

		var message string
		switch tag {
		case "required":
			message = "This field is required"
		case "email":
			message = "Must be a valid email address"
		case "min":
			message = "Value is too short"
		case "max":
			message = "Value is too long"
		case "oneof":
			message = "Invalid value"
		case "url":
			message = "Must be a valid URL"
		default:
			message = "Invalid value"
		}

		errors[field] = map[string]interface{}{
			"message": message,
			"tag":     tag,
			"value":   err.Value(),
		}
	}

	return map[string]interface{}{
		"fields": errors,
	}
}

// AbortWithError aborts the request with an error
func AbortWithError(c *gin.Context, statusCode int, errorType, message, code string) {
	response := models.ErrorResponse{
		Error:     errorType,
		Message:   message,
		Code:      code,
		RequestID: c.GetString("request_id"),
	}
	c.JSON(statusCode, response)
	c.Abort()
}

// Helper functions for common errors

// NotFound responds with 404 error
func NotFound(c *gin.Context, message string) {
	AbortWithError(c, http.StatusNotFound, "NOT_FOUND", message, "RESOURCE_NOT_FOUND")
}

// BadRequest responds with 400 error
func BadRequest(c *gin.Context, message string) {
	AbortWithError(c, http.StatusBadRequest, "BAD_REQUEST", message, "INVALID_REQUEST")
}

// Unauthorized responds with 401 error
func Unauthorized(c *gin.Context, message string) {
	AbortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", message, "AUTHENTICATION_REQUIRED")
}

// Forbidden responds with 403 error
func Forbidden(c *gin.Context, message string) {
	AbortWithError(c, http.StatusForbidden, "FORBIDDEN", message, "INSUFFICIENT_PERMISSIONS")
}

// InternalError responds with 500 error
func InternalError(c *gin.Context, message string) {
	AbortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, "INTERNAL_SERVER_ERROR")
}
