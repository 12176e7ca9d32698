package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupMembership links one Recipient to one Group. The (recipient, group)
// pair is unique. Overrides are only meaningful while the membership is active.
type GroupMembership struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	GroupID     primitive.ObjectID `json:"groupId" bson:"groupId"`
	RecipientID primitive.ObjectID `json:"recipientId" bson:"recipientId"`

	// Denormalized from the recipient so target resolution stays owner-scoped
	// without an extra lookup
	OwnerID primitive.ObjectID `json:"ownerId" bson:"ownerId"`

	Role      string          `json:"role" bson:"role"` // admin, member
	Overrides MemberOverrides `json:"overrides" bson:"overrides"`

	IsActive  bool       `json:"isActive" bson:"isActive"`
	MuteUntil *time.Time `json:"muteUntil,omitempty" bson:"muteUntil,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// MemberOverrides is the per-member settings layer. Nil means "inherit from
// the group". An explicit empty set is invalid input and is rejected at the
// validation boundary, never stored.
type MemberOverrides struct {
	Frequency    *string  `json:"frequency,omitempty" bson:"frequency,omitempty"`
	Channels     []string `json:"channels,omitempty" bson:"channels,omitempty"`
	ContentTypes []string `json:"contentTypes,omitempty" bson:"contentTypes,omitempty"`
}

// HasAny reports whether any field overrides the group default.
func (o MemberOverrides) HasAny() bool {
	return o.Frequency != nil || o.Channels != nil || o.ContentTypes != nil
}

// SettingSource tags which cascade layer produced an effective value.
type SettingSource string

const (
	SourceMemberOverride SettingSource = "member_override"
	SourceGroupDefault   SettingSource = "group_default"
	SourceSystemDefault  SettingSource = "system_default"
)

// EffectiveSettings is the resolved, currently-applicable settings for one
// membership. Derived, never stored.
type EffectiveSettings struct {
	Frequency    string   `json:"frequency"`
	Channels     []string `json:"channels"`
	ContentTypes []string `json:"contentTypes"`
	Sources      Sources  `json:"sources"`
}

// Sources records, per field, which layer the value came from.
type Sources struct {
	Frequency    SettingSource `json:"frequency"`
	Channels     SettingSource `json:"channels"`
	ContentTypes SettingSource `json:"contentTypes"`
}

// EffectiveSettingsResponse is the read-model for the effective-settings
// endpoint: cascade result plus mute state.
type EffectiveSettingsResponse struct {
	MembershipID string            `json:"membershipId"`
	GroupID      string            `json:"groupId"`
	RecipientID  string            `json:"recipientId"`
	Settings     EffectiveSettings `json:"settings"`
	Muted        bool              `json:"muted"`
	MuteUntil    *time.Time        `json:"muteUntil,omitempty"`
}

// SettingsPatch carries the fields a write may change. Absent fields are left
// untouched; a present-but-empty set fails validation.
type SettingsPatch struct {
	Frequency    *string  `json:"frequency,omitempty" validate:"omitempty,frequency"`
	Channels     []string `json:"channels,omitempty" validate:"omitempty,min=1,dive,channel"`
	ContentTypes []string `json:"contentTypes,omitempty" validate:"omitempty,min=1,dive,content_type"`
}

// IsEmpty reports whether the patch would change nothing.
func (p SettingsPatch) IsEmpty() bool {
	return p.Frequency == nil && p.Channels == nil && p.ContentTypes == nil
}

type MuteMemberRequest struct {
	MuteUntil time.Time `json:"muteUntil" validate:"required"`
}

type UpdateOverridesRequest struct {
	Settings SettingsPatch `json:"settings" validate:"required"`
}

// ============== BULK OPERATIONS ==============

const (
	BulkOpUpdate        = "update"
	BulkOpReset         = "reset"
	BulkOpCopy          = "copy"
	BulkOpApplyTemplate = "apply_template"

	BulkTargetGroups     = "groups"
	BulkTargetRecipients = "recipients"
	BulkTargetAll        = "all"
)

// BulkOperationRequest is constructed from the request body, validated, and
// consumed once per request.
type BulkOperationRequest struct {
	Operation string     `json:"operation" validate:"required,oneof=update reset copy apply_template"`
	Target    BulkTarget `json:"target" validate:"required"`

	// update / apply_template
	Settings                *SettingsPatch `json:"settings,omitempty"`
	PreserveCustomOverrides bool           `json:"preserveCustomOverrides,omitempty"`

	// copy
	SourceGroupID string `json:"sourceGroupId,omitempty"`

	// apply_template
	TemplateID string `json:"templateId,omitempty"`
}

type BulkTarget struct {
	Type    string             `json:"type" validate:"required,oneof=groups recipients all"`
	IDs     []string           `json:"ids,omitempty"`
	Filters *BulkTargetFilters `json:"filters,omitempty"`
}

// BulkTargetFilters narrow an "all" target. Both filters combine with AND.
type BulkTargetFilters struct {
	Relationships     []string `json:"relationships,omitempty" validate:"omitempty,dive,relationship"`
	HasCustomSettings *bool    `json:"hasCustomSettings,omitempty"`
}

// BulkOperationResult aggregates per-item outcomes. Ephemeral, exists only
// for the duration of the response.
type BulkOperationResult struct {
	Operation    string           `json:"operation"`
	SuccessCount int              `json:"successCount"`
	FailureCount int              `json:"failureCount"`
	SkippedCount int              `json:"skippedCount,omitempty"`
	Results      []BulkItemResult `json:"results"`
}

type BulkItemResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AllSucceeded reports whether no item failed. Skipped items do not count as
// failures.
func (r BulkOperationResult) AllSucceeded() bool {
	return r.FailureCount == 0
}

// AllFailed reports whether nothing could be interpreted as partial success.
func (r BulkOperationResult) AllFailed() bool {
	return r.FailureCount > 0 && r.SuccessCount == 0
}

// MembershipFilter drives target resolution in the membership repository.
// OwnerID is always required; everything else narrows.
type MembershipFilter struct {
	OwnerID           string
	GroupIDs          []string
	RecipientIDs      []string
	RelationshipIn    []string
	HasCustomSettings *bool
	ActiveOnly        bool
}

// ============== PREFERENCE TEMPLATES ==============

// PreferenceTemplate is a named settings bundle consumed by apply_template.
type PreferenceTemplate struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Settings    GroupDefaults      `json:"settings" bson:"settings"`
	IsSystem    bool               `json:"isSystem" bson:"isSystem"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}
