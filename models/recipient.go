package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Recipient struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID      primitive.ObjectID `json:"ownerId" bson:"ownerId"`
	Name         string             `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Relationship string             `json:"relationship" bson:"relationship" validate:"required,relationship"`

	// At least one contact method is required; enforced at the service boundary
	Email string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,phone"`

	IsActive bool `json:"isActive" bson:"isActive"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Request DTOs
type CreateRecipientRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	Relationship string `json:"relationship" validate:"required,relationship"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,phone"`
}

type UpdateRecipientRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Relationship *string `json:"relationship,omitempty" validate:"omitempty,relationship"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,phone"`
}

const (
	RelationshipGrandparent = "grandparent"
	RelationshipAunt        = "aunt"
	RelationshipUncle       = "uncle"
	RelationshipSibling     = "sibling"
	RelationshipCousin      = "cousin"
	RelationshipFriend      = "friend"
	RelationshipOther       = "other"
)

var ValidRelationships = []string{
	RelationshipGrandparent,
	RelationshipAunt,
	RelationshipUncle,
	RelationshipSibling,
	RelationshipCousin,
	RelationshipFriend,
	RelationshipOther,
}
