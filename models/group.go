package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Group struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID primitive.ObjectID `json:"ownerId" bson:"ownerId"`
	Name    string             `json:"name" bson:"name" validate:"required,min=2,max=50"`

	// Lowercased copy of Name, backs the owner-scoped case-insensitive unique index
	NameLower string `json:"-" bson:"nameLower"`

	// System-seeded groups cannot be renamed or deleted
	IsDefault bool `json:"isDefault" bson:"isDefault"`

	// Defaults applied to members without overrides
	Defaults GroupDefaults `json:"defaults" bson:"defaults"`

	MemberCount int `json:"memberCount" bson:"memberCount"`
	MaxMembers  int `json:"maxMembers" bson:"maxMembers"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// GroupDefaults is the group-level settings layer of the cascade.
type GroupDefaults struct {
	Frequency    string   `json:"frequency" bson:"frequency" validate:"required,frequency"`
	Channels     []string `json:"channels" bson:"channels" validate:"required,min=1,dive,channel"`
	ContentTypes []string `json:"contentTypes" bson:"contentTypes" validate:"required,min=1,dive,content_type"`
}

// Request DTOs
type CreateGroupRequest struct {
	Name     string         `json:"name" validate:"required,min=2,max=50"`
	Defaults *GroupDefaults `json:"defaults,omitempty"`
}

type UpdateGroupRequest struct {
	Name     *string        `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Defaults *GroupDefaults `json:"defaults,omitempty"`
}

type AddMemberRequest struct {
	RecipientID string           `json:"recipientId" validate:"required"`
	Role        string           `json:"role,omitempty" validate:"omitempty,oneof=admin member"`
	Overrides   *MemberOverrides `json:"overrides,omitempty"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member"`
}

// GroupListResponse is the payload of the bulk preferences GET.
type GroupListResponse struct {
	Groups     []Group          `json:"groups"`
	TotalCount int              `json:"totalCount"`
	Summary    *SettingsSummary `json:"summary,omitempty"`
}

// SettingsSummary aggregates how many memberships inherit vs. override.
type SettingsSummary struct {
	TotalMemberships int `json:"totalMemberships"`
	WithOverrides    int `json:"withOverrides"`
	Inheriting       int `json:"inheriting"`
	Muted            int `json:"muted"`
}

const (
	// Frequencies
	FrequencyEveryUpdate  = "every_update"
	FrequencyDailyDigest  = "daily_digest"
	FrequencyWeeklyDigest = "weekly_digest"
	FrequencyMilestones   = "milestones_only"

	// Channels
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	// Content types
	ContentTypePhotos     = "photos"
	ContentTypeText       = "text"
	ContentTypeVideo      = "video"
	ContentTypeMilestones = "milestones"

	// Group limits
	MaxCustomGroupsPerOwner   = 25
	DefaultMaxMembersPerGroup = 50

	// Group type filter values
	GroupTypeDefault = "default"
	GroupTypeCustom  = "custom"
)

// System defaults, the bottom layer of the cascade.
var (
	SystemDefaultFrequency    = FrequencyWeeklyDigest
	SystemDefaultChannels     = []string{ChannelEmail}
	SystemDefaultContentTypes = []string{ContentTypePhotos, ContentTypeText}
)

// Seeded default groups for every new owner
var DefaultGroupNames = []string{"Immediate Family", "Extended Family", "Friends"}
