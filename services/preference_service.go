package services

import (
	"context"
	"errors"
	"famline/models"
	"famline/utils"
	"time"
)

type membershipPreferenceStore interface {
	GetByID(ctx context.Context, ownerID, membershipID string) (*models.GroupMembership, error)
	UpdateOverrides(ctx context.Context, ownerID, membershipID string, patch models.SettingsPatch) error
	ClearOverrides(ctx context.Context, ownerID, membershipID string) error
	SetMuteUntil(ctx context.Context, ownerID, membershipID string, until *time.Time) error
}

type templateLister interface {
	GetByID(ctx context.Context, id string) (*models.PreferenceTemplate, error)
	List(ctx context.Context) ([]models.PreferenceTemplate, error)
}

// PreferenceService handles single-membership preference reads and writes:
// the effective-settings read model, override editing, and mute windows.
type PreferenceService struct {
	memberships membershipPreferenceStore
	groups      groupDefaultsStore
	templates   templateLister
	cache       cacheInvalidator
	validator   *utils.ValidationService
}

func NewPreferenceService(memberships membershipPreferenceStore, groups groupDefaultsStore, templates templateLister, cache cacheInvalidator) *PreferenceService {
	return &PreferenceService{
		memberships: memberships,
		groups:      groups,
		templates:   templates,
		cache:       cache,
		validator:   utils.NewValidationService(),
	}
}

// GetEffectiveSettings resolves the cascade for one membership and evaluates
// the mute window against the current time.
func (ps *PreferenceService) GetEffectiveSettings(ctx context.Context, ownerID, membershipID string) (*models.EffectiveSettingsResponse, error) {
	membership, err := ps.memberships.GetByID(ctx, ownerID, membershipID)
	if err != nil {
		return nil, err
	}

	defaults, err := ps.groups.GetDefaults(ctx, ownerID, membership.GroupID.Hex())
	if err != nil {
		return nil, err
	}

	return &models.EffectiveSettingsResponse{
		MembershipID: membership.ID.Hex(),
		GroupID:      membership.GroupID.Hex(),
		RecipientID:  membership.RecipientID.Hex(),
		Settings:     ResolveEffectiveSettings(*defaults, membership.Overrides),
		Muted:        IsMuted(*membership, time.Now()),
		MuteUntil:    membership.MuteUntil,
	}, nil
}

// UpdateOverrides is the single-item write path; it shares the bulk path's
// validation so an explicit empty set is rejected the same way.
func (ps *PreferenceService) UpdateOverrides(ctx context.Context, ownerID, membershipID string, req models.UpdateOverridesRequest) error {
	if validationErrors := ps.validator.ValidateStruct(req.Settings); len(validationErrors) > 0 {
		return errors.New("validation failed")
	}
	if req.Settings.IsEmpty() {
		return errors.New("settings required for update operation")
	}

	membership, err := ps.memberships.GetByID(ctx, ownerID, membershipID)
	if err != nil {
		return err
	}

	if err := ps.memberships.UpdateOverrides(ctx, ownerID, membershipID, req.Settings); err != nil {
		return err
	}

	ps.invalidate(ctx, ownerID, membership.GroupID.Hex())
	return nil
}

// ClearOverrides reverts the membership to group-default inheritance.
func (ps *PreferenceService) ClearOverrides(ctx context.Context, ownerID, membershipID string) error {
	membership, err := ps.memberships.GetByID(ctx, ownerID, membershipID)
	if err != nil {
		return err
	}

	if err := ps.memberships.ClearOverrides(ctx, ownerID, membershipID); err != nil {
		return err
	}

	ps.invalidate(ctx, ownerID, membership.GroupID.Hex())
	return nil
}

// Mute suspends effective notifications until the given time without
// altering the stored overrides.
func (ps *PreferenceService) Mute(ctx context.Context, ownerID, membershipID string, until time.Time) error {
	if !until.After(time.Now()) {
		return errors.New("mute time must be in the future")
	}

	membership, err := ps.memberships.GetByID(ctx, ownerID, membershipID)
	if err != nil {
		return err
	}

	if err := ps.memberships.SetMuteUntil(ctx, ownerID, membershipID, &until); err != nil {
		return err
	}

	ps.invalidate(ctx, ownerID, membership.GroupID.Hex())
	return nil
}

// Unmute clears the mute window; the membership returns to whatever cascade
// result applied before.
func (ps *PreferenceService) Unmute(ctx context.Context, ownerID, membershipID string) error {
	membership, err := ps.memberships.GetByID(ctx, ownerID, membershipID)
	if err != nil {
		return err
	}

	if err := ps.memberships.SetMuteUntil(ctx, ownerID, membershipID, nil); err != nil {
		return err
	}

	ps.invalidate(ctx, ownerID, membership.GroupID.Hex())
	return nil
}

func (ps *PreferenceService) ListTemplates(ctx context.Context) ([]models.PreferenceTemplate, error) {
	return ps.templates.List(ctx)
}

func (ps *PreferenceService) GetTemplate(ctx context.Context, templateID string) (*models.PreferenceTemplate, error) {
	return ps.templates.GetByID(ctx, templateID)
}

func (ps *PreferenceService) invalidate(ctx context.Context, ownerID, groupID string) {
	ps.cache.InvalidateUserCache(ctx, ownerID)
	ps.cache.InvalidateGroupCache(ctx, groupID)
}
