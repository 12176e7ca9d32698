package services

import (
	"context"
	"errors"
	"famline/models"
	"famline/utils"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

type groupStore interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, ownerID, groupID string) (*models.Group, error)
	GetOwnerGroups(ctx context.Context, ownerID string, ids []string, groupType string) ([]models.Group, error)
	NameExists(ctx context.Context, ownerID, name string) (bool, error)
	CountCustomGroups(ctx context.Context, ownerID string) (int64, error)
	Update(ctx context.Context, ownerID, groupID string, update bson.M) error
	Delete(ctx context.Context, ownerID, groupID string) error
	AdjustMemberCount(ctx context.Context, groupID string, delta int) error
}

type membershipManager interface {
	Create(ctx context.Context, membership *models.GroupMembership) error
	GetByID(ctx context.Context, ownerID, membershipID string) (*models.GroupMembership, error)
	Find(ctx context.Context, filter models.MembershipFilter) ([]models.GroupMembership, error)
	UpdateRole(ctx context.Context, ownerID, membershipID, role string) error
	Delete(ctx context.Context, ownerID, membershipID string) error
	DeleteByGroup(ctx context.Context, groupID string) error
	CountByGroup(ctx context.Context, groupID string) (int64, error)
}

type recipientGetter interface {
	GetByID(ctx context.Context, ownerID, recipientID string) (*models.Recipient, error)
}

// groupCacheStore is the full cache contract: reads for the list paths,
// invalidation for every write path.
type groupCacheStore interface {
	GetUserGroups(ctx context.Context, ownerID string) ([]models.Group, bool)
	SetUserGroups(ctx context.Context, ownerID string, groups []models.Group)
	GetGroupMembers(ctx context.Context, groupID string) ([]models.GroupMembership, bool)
	SetGroupMembers(ctx context.Context, groupID string, memberships []models.GroupMembership)
	InvalidateUserCache(ctx context.Context, ownerID string)
	InvalidateGroupCache(ctx context.Context, groupID string)
}

type GroupService struct {
	groupRepo      groupStore
	membershipRepo membershipManager
	recipientRepo  recipientGetter
	cache          groupCacheStore
	validator      *utils.ValidationService
}

func NewGroupService(groupRepo groupStore, membershipRepo membershipManager, recipientRepo recipientGetter, cache groupCacheStore) *GroupService {
	return &GroupService{
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		recipientRepo:  recipientRepo,
		cache:          cache,
		validator:      utils.NewValidationService(),
	}
}

func (gs *GroupService) CreateGroup(ctx context.Context, ownerID string, req models.CreateGroupRequest) (*models.Group, error) {
	if validationErrors := gs.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, errors.New("validation failed")
	}
	if req.Defaults != nil {
		if validationErrors := gs.validator.ValidateStruct(*req.Defaults); len(validationErrors) > 0 {
			return nil, errors.New("validation failed")
		}
	}

	count, err := gs.groupRepo.CountCustomGroups(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if count >= models.MaxCustomGroupsPerOwner {
		return nil, errors.New("group limit reached")
	}

	// Uniqueness is owner-scoped and case-insensitive; the unique index backs
	// this check against races
	exists, err := gs.groupRepo.NameExists(ctx, ownerID, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.New("group name already exists")
	}

	defaults := models.GroupDefaults{
		Frequency:    models.SystemDefaultFrequency,
		Channels:     append([]string{}, models.SystemDefaultChannels...),
		ContentTypes: append([]string{}, models.SystemDefaultContentTypes...),
	}
	if req.Defaults != nil {
		defaults = *req.Defaults
	}

	ownerObjID, err := utils.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, errors.New("invalid owner id")
	}

	group := models.Group{
		OwnerID:    ownerObjID,
		Name:       req.Name,
		IsDefault:  false,
		Defaults:   defaults,
		MaxMembers: models.DefaultMaxMembersPerGroup,
	}

	if err := gs.groupRepo.Create(ctx, &group); err != nil {
		return nil, err
	}

	gs.cache.InvalidateUserCache(ctx, ownerID)
	return &group, nil
}

// GetUserGroups serves the bulk preferences GET. The cache only backs the
// unfiltered path; narrowed reads go straight to the store.
func (gs *GroupService) GetUserGroups(ctx context.Context, ownerID string, ids []string, groupType string, withSummary bool) (*models.GroupListResponse, error) {
	var groups []models.Group
	var err error

	unfiltered := len(ids) == 0 && groupType == ""
	if unfiltered {
		if cached, ok := gs.cache.GetUserGroups(ctx, ownerID); ok {
			groups = cached
		}
	}

	if groups == nil {
		groups, err = gs.groupRepo.GetOwnerGroups(ctx, ownerID, ids, groupType)
		if err != nil {
			return nil, err
		}
		if unfiltered {
			gs.cache.SetUserGroups(ctx, ownerID, groups)
		}
	}

	resp := &models.GroupListResponse{
		Groups:     groups,
		TotalCount: len(groups),
	}

	if withSummary {
		summary, err := gs.settingsSummary(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		resp.Summary = summary
	}

	return resp, nil
}

func (gs *GroupService) settingsSummary(ctx context.Context, ownerID string) (*models.SettingsSummary, error) {
	memberships, err := gs.membershipRepo.Find(ctx, models.MembershipFilter{
		OwnerID:    ownerID,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}

	summary := &models.SettingsSummary{TotalMemberships: len(memberships)}
	now := time.Now()
	for _, membership := range memberships {
		if membership.Overrides.HasAny() {
			summary.WithOverrides++
		} else {
			summary.Inheriting++
		}
		if IsMuted(membership, now) {
			summary.Muted++
		}
	}

	return summary, nil
}

func (gs *GroupService) GetGroup(ctx context.Context, ownerID, groupID string) (*models.Group, error) {
	return gs.groupRepo.GetByID(ctx, ownerID, groupID)
}

func (gs *GroupService) UpdateGroup(ctx context.Context, ownerID, groupID string, req models.UpdateGroupRequest) (*models.Group, error) {
	if validationErrors := gs.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, errors.New("validation failed")
	}

	group, err := gs.groupRepo.GetByID(ctx, ownerID, groupID)
	if err != nil {
		return nil, err
	}

	update := bson.M{}
	if req.Name != nil {
		if group.IsDefault {
			return nil, errors.New("default groups cannot be renamed")
		}
		exists, err := gs.groupRepo.NameExists(ctx, ownerID, *req.Name)
		if err != nil {
			return nil, err
		}
		// NameExists matches case-insensitively, so a case-only rename of the
		// group itself must not count as a duplicate
		if exists && !strings.EqualFold(*req.Name, group.Name) {
			return nil, errors.New("group name already exists")
		}
		update["name"] = *req.Name
	}
	if req.Defaults != nil {
		if validationErrors := gs.validator.ValidateStruct(*req.Defaults); len(validationErrors) > 0 {
			return nil, errors.New("validation failed")
		}
		update["defaults"] = *req.Defaults
	}

	if len(update) == 0 {
		return nil, errors.New("no fields to update")
	}

	if err := gs.groupRepo.Update(ctx, ownerID, groupID, update); err != nil {
		return nil, err
	}

	// Group defaults feed the cascade, so both regions go stale
	gs.cache.InvalidateUserCache(ctx, ownerID)
	gs.cache.InvalidateGroupCache(ctx, groupID)

	return gs.groupRepo.GetByID(ctx, ownerID, groupID)
}

func (gs *GroupService) DeleteGroup(ctx context.Context, ownerID, groupID string) error {
	group, err := gs.groupRepo.GetByID(ctx, ownerID, groupID)
	if err != nil {
		return err
	}
	if group.IsDefault {
		return errors.New("default groups cannot be deleted")
	}

	if err := gs.groupRepo.Delete(ctx, ownerID, groupID); err != nil {
		return err
	}

	if err := gs.membershipRepo.DeleteByGroup(ctx, groupID); err != nil {
		logrus.Warnf("Failed to delete memberships of group %s: %v", groupID, err)
	}

	gs.cache.InvalidateUserCache(ctx, ownerID)
	gs.cache.InvalidateGroupCache(ctx, groupID)
	return nil
}

func (gs *GroupService) AddMember(ctx context.Context, ownerID, groupID string, req models.AddMemberRequest) (*models.GroupMembership, error) {
	if validationErrors := gs.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, errors.New("validation failed")
	}

	group, err := gs.groupRepo.GetByID(ctx, ownerID, groupID)
	if err != nil {
		return nil, err
	}

	recipient, err := gs.recipientRepo.GetByID(ctx, ownerID, req.RecipientID)
	if err != nil {
		return nil, err
	}
	if !recipient.IsActive {
		return nil, errors.New("recipient is not active")
	}

	count, err := gs.membershipRepo.CountByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if count >= int64(group.MaxMembers) {
		return nil, errors.New("group has reached maximum member limit")
	}

	membership := models.GroupMembership{
		GroupID:     group.ID,
		RecipientID: recipient.ID,
		OwnerID:     group.OwnerID,
		Role:        req.Role,
	}
	if req.Overrides != nil {
		membership.Overrides = *req.Overrides
	}

	if err := gs.membershipRepo.Create(ctx, &membership); err != nil {
		return nil, err
	}

	if err := gs.groupRepo.AdjustMemberCount(ctx, groupID, 1); err != nil {
		logrus.Warnf("Failed to update member count for group %s: %v", groupID, err)
	}

	gs.cache.InvalidateUserCache(ctx, ownerID)
	gs.cache.InvalidateGroupCache(ctx, groupID)

	return &membership, nil
}

func (gs *GroupService) RemoveMember(ctx context.Context, ownerID, membershipID string) error {
	membership, err := gs.membershipRepo.GetByID(ctx, ownerID, membershipID)
	if err != nil {
		return err
	}

	if err := gs.membershipRepo.Delete(ctx, ownerID, membershipID); err != nil {
		return err
	}

	groupID := membership.GroupID.Hex()
	if err := gs.groupRepo.AdjustMemberCount(ctx, groupID, -1); err != nil {
		logrus.Warnf("Failed to update member count for group %s: %v", groupID, err)
	}

	gs.cache.InvalidateUserCache(ctx, ownerID)
	gs.cache.InvalidateGroupCache(ctx, groupID)
	return nil
}

func (gs *GroupService) GetGroupMembers(ctx context.Context, ownerID, groupID string) ([]models.GroupMembership, error) {
	// Ownership check before touching the cache
	if _, err := gs.groupRepo.GetByID(ctx, ownerID, groupID); err != nil {
		return nil, err
	}

	if cached, ok := gs.cache.GetGroupMembers(ctx, groupID); ok {
		return cached, nil
	}

	memberships, err := gs.membershipRepo.Find(ctx, models.MembershipFilter{
		OwnerID:    ownerID,
		GroupIDs:   []string{groupID},
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}

	gs.cache.SetGroupMembers(ctx, groupID, memberships)
	return memberships, nil
}

func (gs *GroupService) UpdateMemberRole(ctx context.Context, ownerID, membershipID string, req models.UpdateMemberRoleRequest) error {
	if validationErrors := gs.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return errors.New("validation failed")
	}

	membership, err := gs.membershipRepo.GetByID(ctx, ownerID, membershipID)
	if err != nil {
		return err
	}

	if err := gs.membershipRepo.UpdateRole(ctx, ownerID, membershipID, req.Role); err != nil {
		return err
	}

	gs.cache.InvalidateGroupCache(ctx, membership.GroupID.Hex())
	return nil
}

// SeedDefaultGroups creates the system default groups for a new owner.
// Idempotent per owner: callers gate on the user's seeded flag.
func (gs *GroupService) SeedDefaultGroups(ctx context.Context, ownerID string) error {
	ownerObjID, err := utils.ObjectIDFromHex(ownerID)
	if err != nil {
		return errors.New("invalid owner id")
	}

	for _, name := range models.DefaultGroupNames {
		group := models.Group{
			OwnerID:   ownerObjID,
			Name:      name,
			IsDefault: true,
			Defaults: models.GroupDefaults{
				Frequency:    models.SystemDefaultFrequency,
				Channels:     append([]string{}, models.SystemDefaultChannels...),
				ContentTypes: append([]string{}, models.SystemDefaultContentTypes...),
			},
			MaxMembers: models.DefaultMaxMembersPerGroup,
		}
		if err := gs.groupRepo.Create(ctx, &group); err != nil {
			return err
		}
	}

	gs.cache.InvalidateUserCache(ctx, ownerID)
	return nil
}
