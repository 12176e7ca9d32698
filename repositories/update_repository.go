package repositories

import (
	"context"
	"errors"
	"famline/models"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UpdateRepository struct {
	collection *mongo.Collection
}

func NewUpdateRepository(db *mongo.Database) *UpdateRepository {
	return &UpdateRepository{
		collection: db.Collection("updates"),
	}
}

func (ur *UpdateRepository) Create(ctx context.Context, update *models.Update) error {
	update.ID = primitive.NewObjectID()
	update.CreatedAt = time.Now()
	update.UpdatedAt = time.Now()

	_, err := ur.collection.InsertOne(ctx, update)
	return err
}

func (ur *UpdateRepository) GetByID(ctx context.Context, ownerID, updateID string) (*models.Update, error) {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, errors.New("invalid user ID")
	}
	updateObjectID, err := primitive.ObjectIDFromHex(updateID)
	if err != nil {
		return nil, errors.New("invalid update ID")
	}

	var update models.Update
	err = ur.collection.FindOne(ctx, bson.M{
		"_id":     updateObjectID,
		"ownerId": ownerObjectID,
	}).Decode(&update)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("update not found")
		}
		return nil, err
	}

	return &update, nil
}

func (ur *UpdateRepository) GetOwnerUpdates(ctx context.Context, ownerID string, page, pageSize int) ([]models.Update, int64, error) {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, 0, errors.New("invalid user ID")
	}

	filter := bson.M{"ownerId": ownerObjectID}

	total, err := ur.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := ur.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var updates []models.Update
	if err := cursor.All(ctx, &updates); err != nil {
		return nil, 0, err
	}

	return updates, total, nil
}

func (ur *UpdateRepository) Delete(ctx context.Context, ownerID, updateID string) error {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return errors.New("invalid user ID")
	}
	updateObjectID, err := primitive.ObjectIDFromHex(updateID)
	if err != nil {
		return errors.New("invalid update ID")
	}

	result, err := ur.collection.DeleteOne(ctx, bson.M{
		"_id":     updateObjectID,
		"ownerId": ownerObjectID,
	})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return errors.New("update not found")
	}
	return nil
}
