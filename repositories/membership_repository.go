package repositories

import (
	"context"
	"errors"
	"famline/models"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MembershipRepository struct {
	collection *mongo.Collection
}

func NewMembershipRepository(db *mongo.Database) *MembershipRepository {
	return &MembershipRepository{
		collection: db.Collection("group_memberships"),
	}
}

func (mr *MembershipRepository) Create(ctx context.Context, membership *models.GroupMembership) error {
	membership.ID = primitive.NewObjectID()
	membership.CreatedAt = time.Now()
	membership.UpdatedAt = time.Now()
	if membership.Role == "" {
		membership.Role = "member"
	}
	membership.IsActive = true

	_, err := mr.collection.InsertOne(ctx, membership)
	if mongo.IsDuplicateKeyError(err) {
		return errors.New("recipient is already a member of this group")
	}
	return err
}

func (mr *MembershipRepository) GetByID(ctx context.Context, ownerID, membershipID string) (*models.GroupMembership, error) {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, errors.New("invalid user ID")
	}
	membershipObjectID, err := primitive.ObjectIDFromHex(membershipID)
	if err != nil {
		return nil, errors.New("invalid membership ID")
	}

	var membership models.GroupMembership
	err = mr.collection.FindOne(ctx, bson.M{
		"_id":     membershipObjectID,
		"ownerId": ownerObjectID,
	}).Decode(&membership)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("membership not found")
		}
		return nil, err
	}

	return &membership, nil
}

// Find resolves memberships for the filter. OwnerID scoping is mandatory:
// no membership outside the owner is ever returned, however the other
// fields are set. A relationship filter joins the recipients collection.
func (mr *MembershipRepository) Find(ctx context.Context, filter models.MembershipFilter) ([]models.GroupMembership, error) {
	ownerObjectID, err := primitive.ObjectIDFromHex(filter.OwnerID)
	if err != nil {
		return nil, errors.New("invalid user ID")
	}

	match := bson.M{"ownerId": ownerObjectID}

	if filter.ActiveOnly {
		match["isActive"] = true
	}

	if len(filter.GroupIDs) > 0 {
		ids, err := toObjectIDs(filter.GroupIDs)
		if err != nil {
			return nil, errors.New("invalid group ID")
		}
		match["groupId"] = bson.M{"$in": ids}
	}

	if len(filter.RecipientIDs) > 0 {
		ids, err := toObjectIDs(filter.RecipientIDs)
		if err != nil {
			return nil, errors.New("invalid recipient ID")
		}
		match["recipientId"] = bson.M{"$in": ids}
	}

	if filter.HasCustomSettings != nil {
		overrideSet := bson.A{
			bson.M{"overrides.frequency": bson.M{"$ne": nil}},
			bson.M{"overrides.channels": bson.M{"$ne": nil}},
			bson.M{"overrides.contentTypes": bson.M{"$ne": nil}},
		}
		if *filter.HasCustomSettings {
			match["$or"] = overrideSet
		} else {
			match["overrides.frequency"] = nil
			match["overrides.channels"] = nil
			match["overrides.contentTypes"] = nil
		}
	}

	pipeline := []bson.M{{"$match": match}}

	// Relationship filtering needs the recipient document
	if len(filter.RelationshipIn) > 0 {
		pipeline = append(pipeline,
			bson.M{"$lookup": bson.M{
				"from":         "recipients",
				"localField":   "recipientId",
				"foreignField": "_id",
				"as":           "recipient",
			}},
			bson.M{"$unwind": "$recipient"},
			bson.M{"$match": bson.M{"recipient.relationship": bson.M{"$in": filter.RelationshipIn}}},
			bson.M{"$project": bson.M{"recipient": 0}},
		)
	}

	cursor, err := mr.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var memberships []models.GroupMembership
	err = cursor.All(ctx, &memberships)
	return memberships, err
}

// UpdateOverrides patches only the provided override fields. Single-document
// conditional update; succeeds or fails independently per call.
func (mr *MembershipRepository) UpdateOverrides(ctx context.Context, ownerID, membershipID string, patch models.SettingsPatch) error {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Frequency != nil {
		set["overrides.frequency"] = *patch.Frequency
	}
	if patch.Channels != nil {
		set["overrides.channels"] = patch.Channels
	}
	if patch.ContentTypes != nil {
		set["overrides.contentTypes"] = patch.ContentTypes
	}

	return mr.updateOne(ctx, ownerID, membershipID, bson.M{"$set": set})
}

// SetOverrides replaces the whole override layer, used by copy and
// apply_template which write a full snapshot.
func (mr *MembershipRepository) SetOverrides(ctx context.Context, ownerID, membershipID string, overrides models.MemberOverrides) error {
	return mr.updateOne(ctx, ownerID, membershipID, bson.M{"$set": bson.M{
		"overrides": overrides,
		"updatedAt": time.Now(),
	}})
}

// ClearOverrides reverts the membership to group-default inheritance.
func (mr *MembershipRepository) ClearOverrides(ctx context.Context, ownerID, membershipID string) error {
	return mr.updateOne(ctx, ownerID, membershipID, bson.M{"$set": bson.M{
		"overrides": models.MemberOverrides{},
		"updatedAt": time.Now(),
	}})
}

func (mr *MembershipRepository) SetMuteUntil(ctx context.Context, ownerID, membershipID string, until *time.Time) error {
	if until == nil {
		return mr.updateOne(ctx, ownerID, membershipID, bson.M{
			"$unset": bson.M{"muteUntil": ""},
			"$set":   bson.M{"updatedAt": time.Now()},
		})
	}
	return mr.updateOne(ctx, ownerID, membershipID, bson.M{"$set": bson.M{
		"muteUntil": *until,
		"updatedAt": time.Now(),
	}})
}

func (mr *MembershipRepository) UpdateRole(ctx context.Context, ownerID, membershipID, role string) error {
	return mr.updateOne(ctx, ownerID, membershipID, bson.M{"$set": bson.M{
		"role":      role,
		"updatedAt": time.Now(),
	}})
}

func (mr *MembershipRepository) Delete(ctx context.Context, ownerID, membershipID string) error {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return errors.New("invalid user ID")
	}
	membershipObjectID, err := primitive.ObjectIDFromHex(membershipID)
	if err != nil {
		return errors.New("invalid membership ID")
	}

	result, err := mr.collection.DeleteOne(ctx, bson.M{
		"_id":     membershipObjectID,
		"ownerId": ownerObjectID,
	})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return errors.New("membership not found")
	}
	return nil
}

// DeleteByGroup removes every membership of a group, used when the group
// itself is deleted.
func (mr *MembershipRepository) DeleteByGroup(ctx context.Context, groupID string) error {
	groupObjectID, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return errors.New("invalid group ID")
	}

	_, err = mr.collection.DeleteMany(ctx, bson.M{"groupId": groupObjectID})
	return err
}

func (mr *MembershipRepository) CountByGroup(ctx context.Context, groupID string) (int64, error) {
	groupObjectID, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return 0, errors.New("invalid group ID")
	}

	return mr.collection.CountDocuments(ctx, bson.M{
		"groupId":  groupObjectID,
		"isActive": true,
	})
}

func (mr *MembershipRepository) updateOne(ctx context.Context, ownerID, membershipID string, update bson.M) error {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return errors.New("invalid user ID")
	}
	membershipObjectID, err := primitive.ObjectIDFromHex(membershipID)
	if err != nil {
		return errors.New("invalid membership ID")
	}

	result, err := mr.collection.UpdateOne(
		ctx,
		bson.M{"_id": membershipObjectID, "ownerId": ownerObjectID},
		update,
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("membership not found")
	}
	return nil
}

func toObjectIDs(hexIDs []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, hexID := range hexIDs {
		id, err := primitive.ObjectIDFromHex(hexID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
