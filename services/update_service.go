package services

import (
	"context"
	"errors"
	"famline/models"
	"famline/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type updateStore interface {
	Create(ctx context.Context, update *models.Update) error
	GetByID(ctx context.Context, ownerID, updateID string) (*models.Update, error)
	GetOwnerUpdates(ctx context.Context, ownerID string, page, pageSize int) ([]models.Update, int64, error)
	Delete(ctx context.Context, ownerID, updateID string) error
}

type groupOwnershipChecker interface {
	GetByID(ctx context.Context, ownerID, groupID string) (*models.Group, error)
}

// UpdateService handles the child-update content CRUD. Recipients never log
// in, so every operation is owner-scoped.
type UpdateService struct {
	updates   updateStore
	groups    groupOwnershipChecker
	validator *utils.ValidationService
}

func NewUpdateService(updates updateStore, groups groupOwnershipChecker) *UpdateService {
	return &UpdateService{
		updates:   updates,
		groups:    groups,
		validator: utils.NewValidationService(),
	}
}

func (us *UpdateService) CreateUpdate(ctx context.Context, ownerID string, req models.CreateUpdateRequest) (*models.Update, error) {
	if validationErrors := us.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, errors.New("validation failed")
	}

	ownerObjID, err := utils.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, errors.New("invalid owner id")
	}

	groupIDs := make([]primitive.ObjectID, 0, len(req.GroupIDs))
	for _, id := range req.GroupIDs {
		// ownership check doubles as existence check
		group, err := us.groups.GetByID(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		groupIDs = append(groupIDs, group.ID)
	}

	update := &models.Update{
		OwnerID:     ownerObjID,
		ChildName:   req.ChildName,
		Title:       req.Title,
		Body:        req.Body,
		ContentType: req.ContentType,
		MediaURLs:   req.MediaURLs,
		GroupIDs:    groupIDs,
	}

	if err := us.updates.Create(ctx, update); err != nil {
		return nil, err
	}
	return update, nil
}

func (us *UpdateService) GetUpdate(ctx context.Context, ownerID, updateID string) (*models.Update, error) {
	return us.updates.GetByID(ctx, ownerID, updateID)
}

func (us *UpdateService) GetOwnerUpdates(ctx context.Context, ownerID string, page, pageSize int) (*models.UpdateListResponse, error) {
	updates, total, err := us.updates.GetOwnerUpdates(ctx, ownerID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &models.UpdateListResponse{Updates: updates, TotalCount: total}, nil
}

func (us *UpdateService) DeleteUpdate(ctx context.Context, ownerID, updateID string) error {
	return us.updates.Delete(ctx, ownerID, updateID)
}
