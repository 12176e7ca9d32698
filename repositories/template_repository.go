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

type TemplateRepository struct {
	collection *mongo.Collection
}

func NewTemplateRepository(db *mongo.Database) *TemplateRepository {
	return &TemplateRepository{
		collection: db.Collection("preference_templates"),
	}
}

func (tr *TemplateRepository) Create(ctx context.Context, template *models.PreferenceTemplate) error {
	template.ID = primitive.NewObjectID()
	template.CreatedAt = time.Now()
	template.UpdatedAt = time.Now()

	_, err := tr.collection.InsertOne(ctx, template)
	return err
}

// GetByID resolves a template id to its settings bundle.
func (tr *TemplateRepository) GetByID(ctx context.Context, id string) (*models.PreferenceTemplate, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid template ID")
	}

	var template models.PreferenceTemplate
	err = tr.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&template)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("template not found")
		}
		return nil, err
	}

	return &template, nil
}

func (tr *TemplateRepository) List(ctx context.Context) ([]models.PreferenceTemplate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := tr.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []models.PreferenceTemplate
	err = cursor.All(ctx, &templates)
	return templates, err
}
