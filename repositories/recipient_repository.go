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

type RecipientRepository struct {
	collection *mongo.Collection
}

func NewRecipientRepository(db *mongo.Database) *RecipientRepository {
	return &RecipientRepository{
		collection: db.Collection("recipients"),
	}
}

func (rr *RecipientRepository) Create(ctx context.Context, recipient *models.Recipient) error {
	recipient.ID = primitive.NewObjectID()
	recipient.IsActive = true
	recipient.CreatedAt = time.Now()
	recipient.UpdatedAt = time.Now()

	_, err := rr.collection.InsertOne(ctx, recipient)
	return err
}

func (rr *RecipientRepository) GetByID(ctx context.Context, ownerID, recipientID string) (*models.Recipient, error) {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, errors.New("invalid user ID")
	}
	recipientObjectID, err := primitive.ObjectIDFromHex(recipientID)
	if err != nil {
		return nil, errors.New("invalid recipient ID")
	}

	var recipient models.Recipient
	err = rr.collection.FindOne(ctx, bson.M{
		"_id":     recipientObjectID,
		"ownerId": ownerObjectID,
	}).Decode(&recipient)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("recipient not found")
		}
		return nil, err
	}

	return &recipient, nil
}

func (rr *RecipientRepository) GetOwnerRecipients(ctx context.Context, ownerID string, activeOnly bool) ([]models.Recipient, error) {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, errors.New("invalid user ID")
	}

	filter := bson.M{"ownerId": ownerObjectID}
	if activeOnly {
		filter["isActive"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := rr.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recipients []models.Recipient
	err = cursor.All(ctx, &recipients)
	return recipients, err
}

func (rr *RecipientRepository) Update(ctx context.Context, ownerID, recipientID string, update bson.M) error {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return errors.New("invalid user ID")
	}
	recipientObjectID, err := primitive.ObjectIDFromHex(recipientID)
	if err != nil {
		return errors.New("invalid recipient ID")
	}

	update["updatedAt"] = time.Now()

	result, err := rr.collection.UpdateOne(
		ctx,
		bson.M{"_id": recipientObjectID, "ownerId": ownerObjectID},
		bson.M{"$set": update},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("recipient not found")
	}
	return nil
}

// Deactivate soft-deletes: memberships stay but are excluded by active-only
// target resolution.
func (rr *RecipientRepository) Deactivate(ctx context.Context, ownerID, recipientID string) error {
	return rr.Update(ctx, ownerID, recipientID, bson.M{"isActive": false})
}
