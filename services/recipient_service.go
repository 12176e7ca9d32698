package services

import (
	"context"
	"errors"
	"famline/models"
	"famline/utils"

	"go.mongodb.org/mongo-driver/bson"
)

type recipientStore interface {
	Create(ctx context.Context, recipient *models.Recipient) error
	GetByID(ctx context.Context, ownerID, recipientID string) (*models.Recipient, error)
	GetOwnerRecipients(ctx context.Context, ownerID string, activeOnly bool) ([]models.Recipient, error)
	Update(ctx context.Context, ownerID, recipientID string, updates bson.M) error
	Deactivate(ctx context.Context, ownerID, recipientID string) error
}

type RecipientService struct {
	recipients recipientStore
	validator  *utils.ValidationService
}

func NewRecipientService(recipients recipientStore) *RecipientService {
	return &RecipientService{
		recipients: recipients,
		validator:  utils.NewValidationService(),
	}
}

func (rs *RecipientService) CreateRecipient(ctx context.Context, ownerID string, req models.CreateRecipientRequest) (*models.Recipient, error) {
	if validationErrors := rs.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, errors.New("validation failed")
	}
	if req.Email == "" && req.Phone == "" {
		return nil, errors.New("email or phone number is required")
	}

	ownerObjID, err := utils.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, errors.New("invalid owner id")
	}

	recipient := &models.Recipient{
		OwnerID:      ownerObjID,
		Name:         req.Name,
		Relationship: req.Relationship,
		Email:        req.Email,
		Phone:        req.Phone,
		IsActive:     true,
	}

	if err := rs.recipients.Create(ctx, recipient); err != nil {
		return nil, err
	}
	return recipient, nil
}

func (rs *RecipientService) GetRecipient(ctx context.Context, ownerID, recipientID string) (*models.Recipient, error) {
	return rs.recipients.GetByID(ctx, ownerID, recipientID)
}

func (rs *RecipientService) GetOwnerRecipients(ctx context.Context, ownerID string, activeOnly bool) ([]models.Recipient, error) {
	return rs.recipients.GetOwnerRecipients(ctx, ownerID, activeOnly)
}

func (rs *RecipientService) UpdateRecipient(ctx context.Context, ownerID, recipientID string, req models.UpdateRecipientRequest) (*models.Recipient, error) {
	if validationErrors := rs.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, errors.New("validation failed")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Relationship != nil {
		updates["relationship"] = *req.Relationship
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if len(updates) == 0 {
		return nil, errors.New("no fields to update")
	}

	if err := rs.recipients.Update(ctx, ownerID, recipientID, updates); err != nil {
		return nil, err
	}
	return rs.recipients.GetByID(ctx, ownerID, recipientID)
}

// DeactivateRecipient soft-deletes; memberships keep their history but the
// recipient stops matching active-only queries.
func (rs *RecipientService) DeactivateRecipient(ctx context.Context, ownerID, recipientID string) error {
	return rs.recipients.Deactivate(ctx, ownerID, recipientID)
}
