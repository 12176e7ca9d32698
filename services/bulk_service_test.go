package services

import (
	"context"
	"errors"
	"testing"

	"famline/models"
	"famline/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeMembershipStore struct {
	memberships []models.GroupMembership
	findErr     error
	failIDs     map[string]bool

	lastFilter models.MembershipFilter
	updated    map[string]models.SettingsPatch
	set        map[string]models.MemberOverrides
	cleared    []string
}

func newFakeMembershipStore(memberships ...models.GroupMembership) *fakeMembershipStore {
	return &fakeMembershipStore{
		memberships: memberships,
		failIDs:     map[string]bool{},
		updated:     map[string]models.SettingsPatch{},
		set:         map[string]models.MemberOverrides{},
	}
}

func (f *fakeMembershipStore) Find(ctx context.Context, filter models.MembershipFilter) ([]models.GroupMembership, error) {
	f.lastFilter = filter
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.memberships, nil
}

func (f *fakeMembershipStore) UpdateOverrides(ctx context.Context, ownerID, membershipID string, patch models.SettingsPatch) error {
	if f.failIDs[membershipID] {
		return errors.New("write failed")
	}
	f.updated[membershipID] = patch
	return nil
}

func (f *fakeMembershipStore) SetOverrides(ctx context.Context, ownerID, membershipID string, overrides models.MemberOverrides) error {
	if f.failIDs[membershipID] {
		return errors.New("write failed")
	}
	f.set[membershipID] = overrides
	return nil
}

func (f *fakeMembershipStore) ClearOverrides(ctx context.Context, ownerID, membershipID string) error {
	if f.failIDs[membershipID] {
		return errors.New("write failed")
	}
	f.cleared = append(f.cleared, membershipID)
	return nil
}

type fakeGroupDefaultsStore struct {
	defaults *models.GroupDefaults
	err      error
}

func (f *fakeGroupDefaultsStore) GetDefaults(ctx context.Context, ownerID, groupID string) (*models.GroupDefaults, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.defaults, nil
}

type fakeTemplateStore struct {
	template *models.PreferenceTemplate
	err      error
}

func (f *fakeTemplateStore) GetByID(ctx context.Context, id string) (*models.PreferenceTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.template, nil
}

type fakeCacheInvalidator struct {
	userInvalidations  []string
	groupInvalidations []string
}

func (f *fakeCacheInvalidator) InvalidateUserCache(ctx context.Context, ownerID string) {
	f.userInvalidations = append(f.userInvalidations, ownerID)
}

func (f *fakeCacheInvalidator) InvalidateGroupCache(ctx context.Context, groupID string) {
	f.groupInvalidations = append(f.groupInvalidations, groupID)
}

func newMembership(groupID primitive.ObjectID, overrides models.MemberOverrides) models.GroupMembership {
	return models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		OwnerID:   primitive.NewObjectID(),
		Overrides: overrides,
		IsActive:  true,
	}
}

func newBulkServiceForTest(memberships *fakeMembershipStore, groups *fakeGroupDefaultsStore, templates *fakeTemplateStore, cache *fakeCacheInvalidator) *BulkService {
	return NewBulkService(memberships, groups, templates, cache)
}

func TestExecuteBulkOperation_UpdateAppliesToAllTargets(t *testing.T) {
	groupID := primitive.NewObjectID()
	m1 := newMembership(groupID, models.MemberOverrides{})
	m2 := newMembership(groupID, models.MemberOverrides{})
	store := newFakeMembershipStore(m1, m2)
	cache := &fakeCacheInvalidator{}
	bs := newBulkServiceForTest(store, &fakeGroupDefaultsStore{}, &fakeTemplateStore{}, cache)

	result, err := bs.ExecuteBulkOperation(context.Background(), "owner", models.BulkOperationRequest{
		Operation: models.BulkOpUpdate,
		Target:    models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{groupID.Hex()}},
		Settings:  &models.SettingsPatch{Frequency: utils.StringPtr(models.FrequencyDailyDigest)},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 0, result.FailureCount)
	assert.Equal(t, 0, result.SkippedCount)
	assert.True(t, result.AllSucceeded())
	assert.Len(t, store.updated, 2)
}

func TestExecuteBulkOperation_PreserveCustomOverridesSkips(t *testing.T) {
	groupID := primitive.NewObjectID()
	plain := newMembership(groupID, models.MemberOverrides{})
	custom := newMembership(groupID, models.MemberOverrides{
		Frequency: utils.StringPtr(models.FrequencyEveryUpdate),
	})
	store := newFakeMembershipStore(plain, custom)
	bs := newBulkServiceForTest(store, &fakeGroupDefaultsStore{}, &fakeTemplateStore{}, &fakeCacheInvalidator{})

	result, err := bs.ExecuteBulkOperation(context.Background(), "owner", models.BulkOperationRequest{
		Operation:               models.BulkOpUpdate,
		Target:                  models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{groupID.Hex()}},
		Settings:                &models.SettingsPatch{Frequency: utils.StringPtr(models.FrequencyDailyDigest)},
		PreserveCustomOverrides: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, 0, result.FailureCount)
	assert.True(t, result.AllSucceeded())

	_, plainWritten := store.updated[plain.ID.Hex()]
	_, customWritten := store.updated[custom.ID.Hex()]
	assert.True(t, plainWritten)
	assert.False(t, customWritten)
}

func TestExecuteBulkOperation_PartialFailureReportsPerItem(t *testing.T) {
	groupID := primitive.NewObjectID()
	good := newMembership(groupID, models.MemberOverrides{})
	bad := newMembership(groupID, models.MemberOverrides{})
	store := newFakeMembershipStore(good, bad)
	store.failIDs[bad.ID.Hex()] = true
	bs := newBulkServiceForTest(store, &fakeGroupDefaultsStore{}, &fakeTemplateStore{}, &fakeCacheInvalidator{})

	result, err := bs.ExecuteBulkOperation(context.Background(), "owner", models.BulkOperationRequest{
		Operation: models.BulkOpReset,
		Target:    models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{groupID.Hex()}},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	assert.False(t, result.AllSucceeded())
	assert.False(t, result.AllFailed())
	require.Len(t, result.Results, 2)

	var failed *models.BulkItemResult
	for i := range result.Results {
		if !result.Results[i].Success && !result.Results[i].Skipped {
			failed = &result.Results[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, bad.ID.Hex(), failed.ID)
	assert.Equal(t, "write failed", failed.Error)
}

func TestExecuteBulkOperation_ResetClearsOverrides(t *testing.T) {
	groupID := primitive.NewObjectID()
	m := newMembership(groupID, models.MemberOverrides{
		Frequency: utils.StringPtr(models.FrequencyEveryUpdate),
	})
	store := newFakeMembershipStore(m)
	bs := newBulkServiceForTest(store, &fakeGroupDefaultsStore{}, &fakeTemplateStore{}, &fakeCacheInvalidator{})

	result, err := bs.ExecuteBulkOperation(context.Background(), "owner", models.BulkOperationRequest{
		Operation: models.BulkOpReset,
		Target:    models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{groupID.Hex()}},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, []string{m.ID.Hex()}, store.cleared)
}

func TestExecuteBulkOperation_CopySnapshotsSourceDefaults(t *testing.T) {
	sourceGroup := primitive.NewObjectID()
	targetGroup := primitive.NewObjectID()
	m := newMembership(targetGroup, models.MemberOverrides{})
	store := newFakeMembershipStore(m)
	groups := &fakeGroupDefaultsStore{defaults: &models.GroupDefaults{
		Frequency:    models.FrequencyMilestones,
		Channels:     []string{models.ChannelSMS},
		ContentTypes: []string{models.ContentTypeMilestones},
	}}
	bs := newBulkServiceForTest(store, groups, &fakeTemplateStore{}, &fakeCacheInvalidator{})

	result, err := bs.ExecuteBulkOperation(context.Background(), "owner", models.BulkOperationRequest{
		Operation:     models.BulkOpCopy,
		Target:        models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{targetGroup.Hex()}},
		SourceGroupID: sourceGroup.Hex(),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)

	written, ok := store.set[m.ID.Hex()]
	require.True(t, ok)
	require.NotNil(t, written.Frequency)
	assert.Equal(t, models.FrequencyMilestones, *written.Frequency)
	assert.Equal(t, []string{models.ChannelSMS}, written.Channels)
	assert.Equal(t, []string{models.ContentTypeMilestones}, written.ContentTypes)
}

func TestExecuteBulkOperation_CopyFailsWhenSourceGroupMissing(t *testing.T) {
	bs := newBulkServiceForTest(
		newFakeMembershipStore(),
		&fakeGroupDefaultsStore{err: errors.New("group not found")},
		&fakeTemplateStore{},
		&fakeCacheInvalidator{},
	)

	_, err := bs.ExecuteBulkOperation(context.Background(), "owner", models.BulkOperationRequest{
		Operation:     models.BulkOpCopy,
		Target:        models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{primitive.NewObjectID().Hex()}},
		SourceGroupID: primitive.NewObjectID().Hex(),
	})

	require.EqualError(t, err, "group not found")
}

func TestExecuteBulkOperation_ApplyTemplateWritesTemplateSettings(t *testing.T) {
	groupID := primitive.NewObjectID()
	m := newMembership(groupID, models.MemberOverrides{})
	store := newFakeMembershipStore(m)
	templates := &fakeTemplateStore{template: &models.PreferenceTemplate{
		Name: "Milestones only",
		Settings: models.GroupDefaults{
			Frequency:    models.FrequencyMilestones,
			Channels:     []string{models.ChannelEmail},
			ContentTypes: []string{models.ContentTypeMilestones},
		},
	}}
	bs := newBulkServiceForTest(store, &fakeGroupDefaultsStore{}, templates, &fakeCacheInvalidator{})

	result, err := bs.ExecuteBulkOperation(context.Background(), "owner", models.BulkOperationRequest{
		Operation:  models.BulkOpApplyTemplate,
		Target:     models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{groupID.Hex()}},
		TemplateID: primitive.NewObjectID().Hex(),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)

	written, ok := store.set[m.ID.Hex()]
	require.True(t, ok)
	require.NotNil(t, written.Frequency)
	assert.Equal(t, models.FrequencyMilestones, *written.Frequency)
}

func TestExecuteBulkOperation_ValidationFailures(t *testing.T) {
	bs := newBulkServiceForTest(newFakeMembershipStore(), &fakeGroupDefaultsStore{}, &fakeTemplateStore{}, &fakeCacheInvalidator{})
	ctx := context.Background()
	groupID := primitive.NewObjectID().Hex()

	tests := []struct {
		name    string
		req     models.BulkOperationRequest
		wantErr string
	}{
		{
			name: "update without settings",
			req: models.BulkOperationRequest{
				Operation: models.BulkOpUpdate,
				Target:    models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{groupID}},
			},
			wantErr: "settings required for update operation",
		},
		{
			name: "update with empty settings",
			req: models.BulkOperationRequest{
				Operation: models.BulkOpUpdate,
				Target:    models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{groupID}},
				Settings:  &models.SettingsPatch{},
			},
			wantErr: "settings required for update operation",
		},
		{
			name: "update with invalid frequency",
			req: models.BulkOperationRequest{
				Operation: models.BulkOpUpdate,
				Target:    models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{groupID}},
				Settings:  &models.SettingsPatch{Frequency: utils.StringPtr("hourly")},
			},
			wantErr: "validation failed",
		},
		{
			name: "copy without source group",
			req: models.BulkOperationRequest{
				Operation: models.BulkOpCopy,
				Target:    models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{groupID}},
			},
			wantErr: "source_group_id required for copy operation",
		},
		{
			name: "apply_template without template",
			req: models.BulkOperationRequest{
				Operation: models.BulkOpApplyTemplate,
				Target:    models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{groupID}},
			},
			wantErr: "template_id required for apply_template operation",
		},
		{
			name: "group target without ids",
			req: models.BulkOperationRequest{
				Operation: models.BulkOpReset,
				Target:    models.BulkTarget{Type: models.BulkTargetGroups},
			},
			wantErr: "target ids required",
		},
		{
			name: "unknown operation",
			req: models.BulkOperationRequest{
				Operation: "merge",
				Target:    models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{groupID}},
			},
			wantErr: "validation failed",
		},
		{
			name: "malformed target id",
			req: models.BulkOperationRequest{
				Operation: models.BulkOpReset,
				Target:    models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{"not-a-hex-id"}},
			},
			wantErr: "invalid target id",
		},
		{
			name: "malformed source group id",
			req: models.BulkOperationRequest{
				Operation:     models.BulkOpCopy,
				Target:        models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{groupID}},
				SourceGroupID: "not-a-hex-id",
			},
			wantErr: "invalid target id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bs.ExecuteBulkOperation(ctx, "owner", tt.req)
			require.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestExecuteBulkOperation_AllTargetPassesFilters(t *testing.T) {
	store := newFakeMembershipStore()
	bs := newBulkServiceForTest(store, &fakeGroupDefaultsStore{}, &fakeTemplateStore{}, &fakeCacheInvalidator{})

	_, err := bs.ExecuteBulkOperation(context.Background(), "owner", models.BulkOperationRequest{
		Operation: models.BulkOpReset,
		Target: models.BulkTarget{
			Type: models.BulkTargetAll,
			Filters: &models.BulkTargetFilters{
				Relationships:     []string{models.RelationshipGrandparent},
				HasCustomSettings: utils.BoolPtr(true),
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "owner", store.lastFilter.OwnerID)
	assert.True(t, store.lastFilter.ActiveOnly)
	assert.Equal(t, []string{models.RelationshipGrandparent}, store.lastFilter.RelationshipIn)
	require.NotNil(t, store.lastFilter.HasCustomSettings)
	assert.True(t, *store.lastFilter.HasCustomSettings)
}

func TestExecuteBulkOperation_InvalidatesCacheOncePerGroup(t *testing.T) {
	groupA := primitive.NewObjectID()
	groupB := primitive.NewObjectID()
	store := newFakeMembershipStore(
		newMembership(groupA, models.MemberOverrides{}),
		newMembership(groupA, models.MemberOverrides{}),
		newMembership(groupB, models.MemberOverrides{}),
	)
	cache := &fakeCacheInvalidator{}
	bs := newBulkServiceForTest(store, &fakeGroupDefaultsStore{}, &fakeTemplateStore{}, cache)

	_, err := bs.ExecuteBulkOperation(context.Background(), "owner", models.BulkOperationRequest{
		Operation: models.BulkOpReset,
		Target:    models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{groupA.Hex(), groupB.Hex()}},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, cache.userInvalidations)
	assert.ElementsMatch(t, []string{groupA.Hex(), groupB.Hex()}, cache.groupInvalidations)
}

func TestExecuteBulkOperation_ResetIsIdempotent(t *testing.T) {
	groupID := primitive.NewObjectID()
	m := newMembership(groupID, models.MemberOverrides{
		Frequency: utils.StringPtr(models.FrequencyEveryUpdate),
	})
	store := newFakeMembershipStore(m)
	bs := newBulkServiceForTest(store, &fakeGroupDefaultsStore{}, &fakeTemplateStore{}, &fakeCacheInvalidator{})

	req := models.BulkOperationRequest{
		Operation: models.BulkOpReset,
		Target:    models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{groupID.Hex()}},
	}

	first, err := bs.ExecuteBulkOperation(context.Background(), "owner", req)
	require.NoError(t, err)
	second, err := bs.ExecuteBulkOperation(context.Background(), "owner", req)
	require.NoError(t, err)

	// Resetting an already-clear membership reports the same outcome
	assert.Equal(t, first.SuccessCount, second.SuccessCount)
	assert.Equal(t, first.FailureCount, second.FailureCount)
	assert.Equal(t, []string{m.ID.Hex(), m.ID.Hex()}, store.cleared)
}

type ownerScopedMembershipStore struct {
	fakeMembershipStore
}

func (f *ownerScopedMembershipStore) Find(ctx context.Context, filter models.MembershipFilter) ([]models.GroupMembership, error) {
	f.lastFilter = filter
	var matched []models.GroupMembership
	for _, m := range f.memberships {
		if m.OwnerID.Hex() == filter.OwnerID {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

func TestExecuteBulkOperation_AllTargetIsolatedByOwner(t *testing.T) {
	groupID := primitive.NewObjectID()
	mine := newMembership(groupID, models.MemberOverrides{})
	theirs := newMembership(groupID, models.MemberOverrides{})
	store := &ownerScopedMembershipStore{}
	store.memberships = []models.GroupMembership{mine, theirs}
	store.failIDs = map[string]bool{}
	store.updated = map[string]models.SettingsPatch{}
	store.set = map[string]models.MemberOverrides{}
	bs := NewBulkService(store, &fakeGroupDefaultsStore{}, &fakeTemplateStore{}, &fakeCacheInvalidator{})

	result, err := bs.ExecuteBulkOperation(context.Background(), mine.OwnerID.Hex(), models.BulkOperationRequest{
		Operation: models.BulkOpReset,
		Target:    models.BulkTarget{Type: models.BulkTargetAll},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, []string{mine.ID.Hex()}, store.cleared)
}

func TestBulkUpdateThenResetScenario(t *testing.T) {
	groupID := primitive.NewObjectID()
	m := newMembership(groupID, models.MemberOverrides{})
	store := newFakeMembershipStore(m)
	bs := newBulkServiceForTest(store, &fakeGroupDefaultsStore{}, &fakeTemplateStore{}, &fakeCacheInvalidator{})

	groupDefaults := models.GroupDefaults{
		Frequency: models.FrequencyDailyDigest,
		Channels:  []string{models.ChannelEmail},
	}

	result, err := bs.ExecuteBulkOperation(context.Background(), "owner", models.BulkOperationRequest{
		Operation: models.BulkOpUpdate,
		Target:    models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{groupID.Hex()}},
		Settings:  &models.SettingsPatch{Frequency: utils.StringPtr(models.FrequencyWeeklyDigest)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)

	// Frequency is overridden while channels stay inherited from the group
	patch := store.updated[m.ID.Hex()]
	effective := ResolveEffectiveSettings(groupDefaults, models.MemberOverrides{Frequency: patch.Frequency})
	assert.Equal(t, models.FrequencyWeeklyDigest, effective.Frequency)
	assert.Equal(t, models.SourceMemberOverride, effective.Sources.Frequency)
	assert.Equal(t, []string{models.ChannelEmail}, effective.Channels)
	assert.Equal(t, models.SourceGroupDefault, effective.Sources.Channels)

	// Reset reverts the membership to the group default
	result, err = bs.ExecuteBulkOperation(context.Background(), "owner", models.BulkOperationRequest{
		Operation: models.BulkOpReset,
		Target:    models.BulkTarget{Type: models.BulkTargetGroups, IDs: []string{groupID.Hex()}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, []string{m.ID.Hex()}, store.cleared)

	effective = ResolveEffectiveSettings(groupDefaults, models.MemberOverrides{})
	assert.Equal(t, models.FrequencyDailyDigest, effective.Frequency)
	assert.Equal(t, models.SourceGroupDefault, effective.Sources.Frequency)
}
