package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Update is one child update posted by a parent. Plain content CRUD; delivery
// routing is driven entirely by the preference engine.
type Update struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID primitive.ObjectID `json:"ownerId" bson:"ownerId"`

	ChildName   string   `json:"childName" bson:"childName"`
	Title       string   `json:"title" bson:"title"`
	Body        string   `json:"body,omitempty" bson:"body,omitempty"`
	ContentType string   `json:"contentType" bson:"contentType"` // photos, text, video, milestones
	MediaURLs   []string `json:"mediaUrls,omitempty" bson:"mediaUrls,omitempty"`

	// Group scoping: empty means every group the owner has
	GroupIDs []primitive.ObjectID `json:"groupIds,omitempty" bson:"groupIds,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type CreateUpdateRequest struct {
	ChildName   string   `json:"childName" validate:"required,min=1,max=100"`
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Body        string   `json:"body,omitempty" validate:"omitempty,max=5000"`
	ContentType string   `json:"contentType" validate:"required,content_type"`
	MediaURLs   []string `json:"mediaUrls,omitempty" validate:"omitempty,dive,url"`
	GroupIDs    []string `json:"groupIds,omitempty"`
}

type UpdateListResponse struct {
	Updates    []Update `json:"updates"`
	TotalCount int64    `json:"totalCount"`
}
