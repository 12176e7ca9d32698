package repositories

import (
	"context"
	"errors"
	"famline/models"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type GroupRepository struct {
	collection *mongo.Collection
}

func NewGroupRepository(db *mongo.Database) *GroupRepository {
	return &GroupRepository{
		collection: db.Collection("groups"),
	}
}

func (gr *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	group.ID = primitive.NewObjectID()
	group.NameLower = strings.ToLower(group.Name)
	group.CreatedAt = time.Now()
	group.UpdatedAt = time.Now()

	if group.MaxMembers == 0 {
		group.MaxMembers = models.DefaultMaxMembersPerGroup
	}

	_, err := gr.collection.InsertOne(ctx, group)
	if mongo.IsDuplicateKeyError(err) {
		return errors.New("group name already exists")
	}
	return err
}

func (gr *GroupRepository) GetByID(ctx context.Context, ownerID, groupID string) (*models.Group, error) {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, errors.New("invalid user ID")
	}
	groupObjectID, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return nil, errors.New("invalid group ID")
	}

	var group models.Group
	err = gr.collection.FindOne(ctx, bson.M{
		"_id":     groupObjectID,
		"ownerId": ownerObjectID,
	}).Decode(&group)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// A group owned by someone else reads as not found; existence of
			// another owner's resources is never leaked
			return nil, errors.New("group not found")
		}
		return nil, err
	}

	return &group, nil
}

// GetOwnerGroups returns the owner's groups, optionally narrowed to specific
// ids or to default/custom only.
func (gr *GroupRepository) GetOwnerGroups(ctx context.Context, ownerID string, ids []string, groupType string) ([]models.Group, error) {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, errors.New("invalid user ID")
	}

	filter := bson.M{"ownerId": ownerObjectID}

	if len(ids) > 0 {
		objectIDs := make([]primitive.ObjectID, 0, len(ids))
		for _, id := range ids {
			objectID, err := primitive.ObjectIDFromHex(id)
			if err != nil {
				return nil, errors.New("invalid group ID")
			}
			objectIDs = append(objectIDs, objectID)
		}
		filter["_id"] = bson.M{"$in": objectIDs}
	}

	switch groupType {
	case models.GroupTypeDefault:
		filter["isDefault"] = true
	case models.GroupTypeCustom:
		filter["isDefault"] = false
	}

	opts := options.Find().SetSort(bson.D{{Key: "isDefault", Value: -1}, {Key: "nameLower", Value: 1}})
	cursor, err := gr.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []models.Group
	err = cursor.All(ctx, &groups)
	return groups, err
}

// GetDefaults returns only the settings layer of one group.
func (gr *GroupRepository) GetDefaults(ctx context.Context, ownerID, groupID string) (*models.GroupDefaults, error) {
	group, err := gr.GetByID(ctx, ownerID, groupID)
	if err != nil {
		return nil, err
	}
	defaults := group.Defaults
	return &defaults, nil
}

func (gr *GroupRepository) NameExists(ctx context.Context, ownerID, name string) (bool, error) {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return false, errors.New("invalid user ID")
	}

	count, err := gr.collection.CountDocuments(ctx, bson.M{
		"ownerId":   ownerObjectID,
		"nameLower": strings.ToLower(name),
	})
	return count > 0, err
}

func (gr *GroupRepository) CountCustomGroups(ctx context.Context, ownerID string) (int64, error) {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return 0, errors.New("invalid user ID")
	}

	return gr.collection.CountDocuments(ctx, bson.M{
		"ownerId":   ownerObjectID,
		"isDefault": false,
	})
}

func (gr *GroupRepository) Update(ctx context.Context, ownerID, groupID string, update bson.M) error {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return errors.New("invalid user ID")
	}
	groupObjectID, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return errors.New("invalid group ID")
	}

	if name, ok := update["name"].(string); ok {
		update["nameLower"] = strings.ToLower(name)
	}
	update["updatedAt"] = time.Now()

	result, err := gr.collection.UpdateOne(
		ctx,
		bson.M{"_id": groupObjectID, "ownerId": ownerObjectID},
		bson.M{"$set": update},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.New("group name already exists")
		}
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("group not found")
	}
	return nil
}

func (gr *GroupRepository) Delete(ctx context.Context, ownerID, groupID string) error {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return errors.New("invalid user ID")
	}
	groupObjectID, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return errors.New("invalid group ID")
	}

	result, err := gr.collection.DeleteOne(ctx, bson.M{
		"_id":     groupObjectID,
		"ownerId": ownerObjectID,
	})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return errors.New("group not found")
	}
	return nil
}

// AdjustMemberCount maintains the derived member counter; delta may be
// negative.
func (gr *GroupRepository) AdjustMemberCount(ctx context.Context, groupID string, delta int) error {
	groupObjectID, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return errors.New("invalid group ID")
	}

	_, err = gr.collection.UpdateOne(
		ctx,
		bson.M{"_id": groupObjectID},
		bson.M{
			"$inc": bson.M{"memberCount": delta},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	return err
}
