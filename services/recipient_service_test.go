package services

import (
	"context"
	"errors"
	"testing"

	"famline/models"
	"famline/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeRecipientStore struct {
	recipient   *models.Recipient
	created     []*models.Recipient
	lastUpdates map[string]interface{}
	deactivated []string
}

func (f *fakeRecipientStore) Create(ctx context.Context, recipient *models.Recipient) error {
	recipient.ID = primitive.NewObjectID()
	f.created = append(f.created, recipient)
	return nil
}

func (f *fakeRecipientStore) GetByID(ctx context.Context, ownerID, recipientID string) (*models.Recipient, error) {
	if f.recipient == nil {
		return nil, errors.New("recipient not found")
	}
	return f.recipient, nil
}

func (f *fakeRecipientStore) GetOwnerRecipients(ctx context.Context, ownerID string, activeOnly bool) ([]models.Recipient, error) {
	if f.recipient == nil {
		return nil, nil
	}
	return []models.Recipient{*f.recipient}, nil
}

func (f *fakeRecipientStore) Update(ctx context.Context, ownerID, recipientID string, updates bson.M) error {
	f.lastUpdates = updates
	return nil
}

func (f *fakeRecipientStore) Deactivate(ctx context.Context, ownerID, recipientID string) error {
	f.deactivated = append(f.deactivated, recipientID)
	return nil
}

func TestCreateRecipient_RequiresContactMethod(t *testing.T) {
	store := &fakeRecipientStore{}
	rs := NewRecipientService(store)

	_, err := rs.CreateRecipient(context.Background(), primitive.NewObjectID().Hex(), models.CreateRecipientRequest{
		Name:         "Grandma June",
		Relationship: models.RelationshipGrandparent,
	})

	require.EqualError(t, err, "email or phone number is required")
	assert.Empty(t, store.created)
}

func TestCreateRecipient_EmailAloneSuffices(t *testing.T) {
	store := &fakeRecipientStore{}
	rs := NewRecipientService(store)

	recipient, err := rs.CreateRecipient(context.Background(), primitive.NewObjectID().Hex(), models.CreateRecipientRequest{
		Name:         "Grandma June",
		Relationship: models.RelationshipGrandparent,
		Email:        "june@example.com",
	})

	require.NoError(t, err)
	assert.True(t, recipient.IsActive)
	assert.Equal(t, "june@example.com", recipient.Email)
	require.Len(t, store.created, 1)
}

func TestCreateRecipient_InvalidRelationship(t *testing.T) {
	rs := NewRecipientService(&fakeRecipientStore{})

	_, err := rs.CreateRecipient(context.Background(), primitive.NewObjectID().Hex(), models.CreateRecipientRequest{
		Name:         "Bob",
		Relationship: "neighbor",
		Email:        "bob@example.com",
	})

	require.EqualError(t, err, "validation failed")
}

func TestUpdateRecipient_NoFields(t *testing.T) {
	rs := NewRecipientService(&fakeRecipientStore{})

	_, err := rs.UpdateRecipient(context.Background(), "owner", "recipient", models.UpdateRecipientRequest{})

	require.EqualError(t, err, "no fields to update")
}

func TestUpdateRecipient_PartialUpdate(t *testing.T) {
	store := &fakeRecipientStore{recipient: &models.Recipient{
		ID:   primitive.NewObjectID(),
		Name: "Sara Chen",
	}}
	rs := NewRecipientService(store)

	_, err := rs.UpdateRecipient(context.Background(), "owner", store.recipient.ID.Hex(), models.UpdateRecipientRequest{
		Relationship: utils.StringPtr(models.RelationshipFriend),
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"relationship": models.RelationshipFriend}, store.lastUpdates)
}

func TestDeactivateRecipient(t *testing.T) {
	store := &fakeRecipientStore{}
	rs := NewRecipientService(store)

	err := rs.DeactivateRecipient(context.Background(), "owner", "recipient-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"recipient-1"}, store.deactivated)
}
