package utils

import (
	"fmt"
	"regexp"

	"famline/models"

	"github.com/go-playground/validator/v10"
)

type ValidationService struct {
	validator *validator.Validate
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func NewValidationService() *ValidationService {
	v := validator.New()

	// Register custom validators
	v.RegisterValidation("phone", validatePhone)
	v.RegisterValidation("frequency", validateFrequency)
	v.RegisterValidation("channel", validateChannel)
	v.RegisterValidation("content_type", validateContentType)
	v.RegisterValidation("relationship", validateRelationship)

	return &ValidationService{
		validator: v,
	}
}

func (vs *ValidationService) ValidateStruct(s interface{}) []ValidationError {
	var validationErrors []ValidationError

	err := vs.validator.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Value:   fmt.Sprintf("%v", err.Value()),
				Message: vs.getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

func (vs *ValidationService) getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Invalid email format"
	case "phone":
		return "Invalid phone number format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "frequency":
		return "Invalid notification frequency"
	case "channel":
		return "Invalid delivery channel"
	case "content_type":
		return "Invalid content type"
	case "relationship":
		return "Invalid relationship"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// Custom validation functions
func validatePhone(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	cleaned := regexp.MustCompile(`\D`).ReplaceAllString(phone, "")

	if len(cleaned) < 10 || len(cleaned) > 15 {
		return false
	}

	phoneRegex := regexp.MustCompile(`^\+?[1-9]\d{9,14}$`)
	return phoneRegex.MatchString(phone)
}

func validateFrequency(fl validator.FieldLevel) bool {
	frequency := fl.Field().String()
	validFrequencies := []string{
		models.FrequencyEveryUpdate,
		models.FrequencyDailyDigest,
		models.FrequencyWeeklyDigest,
		models.FrequencyMilestones,
	}

	for _, valid := range validFrequencies {
		if frequency == valid {
			return true
		}
	}
	return false
}

func validateChannel(fl validator.FieldLevel) bool {
	channel := fl.Field().String()
	return channel == models.ChannelEmail || channel == models.ChannelSMS
}

func validateContentType(fl validator.FieldLevel) bool {
	contentType := fl.Field().String()
	validTypes := []string{
		models.ContentTypePhotos,
		models.ContentTypeText,
		models.ContentTypeVideo,
		models.ContentTypeMilestones,
	}

	for _, valid := range validTypes {
		if contentType == valid {
			return true
		}
	}
	return false
}

func validateRelationship(fl validator.FieldLevel) bool {
	relationship := fl.Field().String()
	for _, valid := range models.ValidRelationships {
		if relationship == valid {
			return true
		}
	}
	return false
}
