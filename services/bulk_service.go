package services

import (
	"context"
	"errors"
	"famline/models"
	"famline/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Narrow store contracts so the orchestrator depends on behaviour, not on a
// concrete repository. The mongo repositories satisfy these.
type membershipStore interface {
	Find(ctx context.Context, filter models.MembershipFilter) ([]models.GroupMembership, error)
	UpdateOverrides(ctx context.Context, ownerID, membershipID string, patch models.SettingsPatch) error
	SetOverrides(ctx context.Context, ownerID, membershipID string, overrides models.MemberOverrides) error
	ClearOverrides(ctx context.Context, ownerID, membershipID string) error
}

type groupDefaultsStore interface {
	GetDefaults(ctx context.Context, ownerID, groupID string) (*models.GroupDefaults, error)
}

type templateStore interface {
	GetByID(ctx context.Context, id string) (*models.PreferenceTemplate, error)
}

type cacheInvalidator interface {
	InvalidateUserCache(ctx context.Context, ownerID string)
	InvalidateGroupCache(ctx context.Context, groupID string)
}

// BulkService executes one bulk preference operation per request:
// validate → resolve targets → apply per item → aggregate → invalidate.
type BulkService struct {
	memberships membershipStore
	groups      groupDefaultsStore
	templates   templateStore
	cache       cacheInvalidator
	validator   *utils.ValidationService
}

func NewBulkService(memberships membershipStore, groups groupDefaultsStore, templates templateStore, cache cacheInvalidator) *BulkService {
	return &BulkService{
		memberships: memberships,
		groups:      groups,
		templates:   templates,
		cache:       cache,
		validator:   utils.NewValidationService(),
	}
}

// ExecuteBulkOperation runs the whole state machine for one request. A
// returned error is a request-level failure raised before any write; once
// target resolution succeeds every resolved item is attempted and per-item
// failures are reported in the result, never as an error.
func (bs *BulkService) ExecuteBulkOperation(ctx context.Context, ownerID string, req models.BulkOperationRequest) (*models.BulkOperationResult, error) {
	if err := bs.validateRequest(req); err != nil {
		return nil, err
	}

	// Operation-specific inputs are resolved up front so a bad source group
	// or template fails the request, not every item
	var sourceSettings *models.MemberOverrides
	switch req.Operation {
	case models.BulkOpCopy:
		defaults, err := bs.groups.GetDefaults(ctx, ownerID, req.SourceGroupID)
		if err != nil {
			return nil, err
		}
		sourceSettings = overridesFromDefaults(*defaults)
	case models.BulkOpApplyTemplate:
		template, err := bs.templates.GetByID(ctx, req.TemplateID)
		if err != nil {
			return nil, err
		}
		sourceSettings = overridesFromDefaults(template.Settings)
	}

	memberships, err := bs.resolveTargets(ctx, ownerID, req.Target)
	if err != nil {
		return nil, err
	}

	result := &models.BulkOperationResult{
		Operation: req.Operation,
		Results:   make([]models.BulkItemResult, 0, len(memberships)),
	}
	touchedGroups := make(map[string]struct{})

	for _, membership := range memberships {
		item := bs.applyItem(ctx, ownerID, req, membership, sourceSettings)
		switch {
		case item.Skipped:
			result.SkippedCount++
		case item.Success:
			result.SuccessCount++
		default:
			result.FailureCount++
		}
		result.Results = append(result.Results, item)
		touchedGroups[membership.GroupID.Hex()] = struct{}{}
	}

	// Invalidation runs strictly after the write phase, batched: once for the
	// owner, once per distinct group, regardless of per-item outcomes
	bs.cache.InvalidateUserCache(ctx, ownerID)
	for groupID := range touchedGroups {
		bs.cache.InvalidateGroupCache(ctx, groupID)
	}

	logrus.Infof("Bulk %s for user %s: %d succeeded, %d failed, %d skipped",
		req.Operation, ownerID, result.SuccessCount, result.FailureCount, result.SkippedCount)

	return result, nil
}

// applyItem attempts a single membership write. Failures are captured in the
// item result; the batch loop never aborts.
func (bs *BulkService) applyItem(ctx context.Context, ownerID string, req models.BulkOperationRequest, membership models.GroupMembership, sourceSettings *models.MemberOverrides) models.BulkItemResult {
	item := models.BulkItemResult{ID: membership.ID.Hex()}

	var err error
	switch req.Operation {
	case models.BulkOpUpdate:
		if req.PreserveCustomOverrides && membership.Overrides.HasAny() {
			item.Skipped = true
			return item
		}
		err = bs.memberships.UpdateOverrides(ctx, ownerID, membership.ID.Hex(), *req.Settings)

	case models.BulkOpReset:
		err = bs.memberships.ClearOverrides(ctx, ownerID, membership.ID.Hex())

	case models.BulkOpCopy, models.BulkOpApplyTemplate:
		// Writes concrete values, snapshotting the source; nothing links back
		err = bs.memberships.SetOverrides(ctx, ownerID, membership.ID.Hex(), *sourceSettings)
	}

	if err != nil {
		item.Error = err.Error()
		return item
	}

	item.Success = true
	return item
}

func (bs *BulkService) validateRequest(req models.BulkOperationRequest) error {
	if validationErrors := bs.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return errors.New("validation failed")
	}

	switch req.Operation {
	case models.BulkOpUpdate:
		if req.Settings == nil || req.Settings.IsEmpty() {
			return errors.New("settings required for update operation")
		}
		if validationErrors := bs.validator.ValidateStruct(*req.Settings); len(validationErrors) > 0 {
			return errors.New("validation failed")
		}
	case models.BulkOpCopy:
		if req.SourceGroupID == "" {
			return errors.New("source_group_id required for copy operation")
		}
		if !primitive.IsValidObjectID(req.SourceGroupID) {
			return errors.New("invalid target id")
		}
	case models.BulkOpApplyTemplate:
		if req.TemplateID == "" {
			return errors.New("template_id required for apply_template operation")
		}
		if !primitive.IsValidObjectID(req.TemplateID) {
			return errors.New("invalid target id")
		}
	}

	if req.Target.Type != models.BulkTargetAll {
		if len(req.Target.IDs) == 0 {
			return errors.New("target ids required")
		}
		// Malformed ids are a request error, never a store round trip
		for _, id := range req.Target.IDs {
			if !primitive.IsValidObjectID(id) {
				return errors.New("invalid target id")
			}
		}
	}

	return nil
}

// resolveTargets produces the concrete membership set for the request,
// scoped to the owner. Ownership is enforced by the store filter, not
// re-checked per item.
func (bs *BulkService) resolveTargets(ctx context.Context, ownerID string, target models.BulkTarget) ([]models.GroupMembership, error) {
	filter := models.MembershipFilter{
		OwnerID:    ownerID,
		ActiveOnly: true,
	}

	switch target.Type {
	case models.BulkTargetGroups:
		filter.GroupIDs = target.IDs
	case models.BulkTargetRecipients:
		filter.RecipientIDs = target.IDs
	case models.BulkTargetAll:
		if target.Filters != nil {
			// Both filters narrow: relationship AND custom-settings
			filter.RelationshipIn = target.Filters.Relationships
			filter.HasCustomSettings = target.Filters.HasCustomSettings
		}
	}

	return bs.memberships.Find(ctx, filter)
}

// overridesFromDefaults turns a settings bundle into a full override layer.
func overridesFromDefaults(defaults models.GroupDefaults) *models.MemberOverrides {
	frequency := defaults.Frequency
	channels := make([]string, len(defaults.Channels))
	copy(channels, defaults.Channels)
	contentTypes := make([]string, len(defaults.ContentTypes))
	copy(contentTypes, defaults.ContentTypes)

	return &models.MemberOverrides{
		Frequency:    &frequency,
		Channels:     channels,
		ContentTypes: contentTypes,
	}
}
