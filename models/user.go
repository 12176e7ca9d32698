package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a parent account: the owner of groups, recipients, and updates.
type User struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email    string             `json:"email" bson:"email"`
	Phone    string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Password string             `json:"-" bson:"password"` // Never include in JSON responses

	FirstName string `json:"firstName" bson:"firstName"`
	LastName  string `json:"lastName" bson:"lastName"`

	// Account Status
	IsActive   bool      `json:"isActive" bson:"isActive"`
	IsVerified bool      `json:"isVerified" bson:"isVerified"`
	LastSeen   time.Time `json:"lastSeen" bson:"lastSeen"`

	// Whether the system default groups have been seeded for this owner
	DefaultGroupsSeeded bool `json:"-" bson:"defaultGroupsSeeded"`

	Role string `json:"role" bson:"role"` // user, admin

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type UpdateUserRequest struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=50"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,phone"`
}

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"

	RoleUser  = "user"
	RoleAdmin = "admin"
)
