package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"famline/models"
	"famline/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubMembershipStore struct {
	memberships []models.GroupMembership
	failIDs     map[string]bool
}

func (s *stubMembershipStore) Find(ctx context.Context, filter models.MembershipFilter) ([]models.GroupMembership, error) {
	return s.memberships, nil
}

func (s *stubMembershipStore) UpdateOverrides(ctx context.Context, ownerID, membershipID string, patch models.SettingsPatch) error {
	if s.failIDs[membershipID] {
		return errors.New("write failed")
	}
	return nil
}

func (s *stubMembershipStore) SetOverrides(ctx context.Context, ownerID, membershipID string, overrides models.MemberOverrides) error {
	return nil
}

func (s *stubMembershipStore) ClearOverrides(ctx context.Context, ownerID, membershipID string) error {
	return nil
}

type stubGroupDefaults struct{}

func (stubGroupDefaults) GetDefaults(ctx context.Context, ownerID, groupID string) (*models.GroupDefaults, error) {
	return &models.GroupDefaults{Frequency: models.FrequencyWeeklyDigest}, nil
}

type stubTemplates struct{}

func (stubTemplates) GetByID(ctx context.Context, id string) (*models.PreferenceTemplate, error) {
	return nil, errors.New("template not found")
}

type stubCache struct{}

func (stubCache) InvalidateUserCache(ctx context.Context, ownerID string)   {}
func (stubCache) InvalidateGroupCache(ctx context.Context, groupID string) {}

func newBulkTestRouter(store *stubMembershipStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	bulkService := services.NewBulkService(store, stubGroupDefaults{}, stubTemplates{}, stubCache{})
	controller := NewPreferenceController(nil, bulkService)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", primitive.NewObjectID().Hex())
		c.Next()
	})
	router.POST("/preferences/bulk", controller.ExecuteBulkOperation)
	return router
}

func postBulk(t *testing.T, router *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/preferences/bulk", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func bulkMembership(groupID primitive.ObjectID) models.GroupMembership {
	return models.GroupMembership{
		ID:       primitive.NewObjectID(),
		GroupID:  groupID,
		IsActive: true,
	}
}

func TestExecuteBulkOperation_AllSuccessReturns200(t *testing.T) {
	groupID := primitive.NewObjectID()
	store := &stubMembershipStore{
		memberships: []models.GroupMembership{bulkMembership(groupID), bulkMembership(groupID)},
		failIDs:     map[string]bool{},
	}
	router := newBulkTestRouter(store)

	w := postBulk(t, router, map[string]interface{}{
		"operation": "update",
		"target":    map[string]interface{}{"type": "groups", "ids": []string{groupID.Hex()}},
		"settings":  map[string]interface{}{"frequency": models.FrequencyDailyDigest},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
}

func TestExecuteBulkOperation_PartialFailureReturns207(t *testing.T) {
	groupID := primitive.NewObjectID()
	good := bulkMembership(groupID)
	bad := bulkMembership(groupID)
	store := &stubMembershipStore{
		memberships: []models.GroupMembership{good, bad},
		failIDs:     map[string]bool{bad.ID.Hex(): true},
	}
	router := newBulkTestRouter(store)

	w := postBulk(t, router, map[string]interface{}{
		"operation": "update",
		"target":    map[string]interface{}{"type": "groups", "ids": []string{groupID.Hex()}},
		"settings":  map[string]interface{}{"frequency": models.FrequencyDailyDigest},
	})

	assert.Equal(t, http.StatusMultiStatus, w.Code)
}

func TestExecuteBulkOperation_ValidationErrorsReturn400(t *testing.T) {
	groupID := primitive.NewObjectID().Hex()

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{
			name: "update without settings",
			body: map[string]interface{}{
				"operation": "update",
				"target":    map[string]interface{}{"type": "groups", "ids": []string{groupID}},
			},
		},
		{
			name: "copy without source group",
			body: map[string]interface{}{
				"operation": "copy",
				"target":    map[string]interface{}{"type": "groups", "ids": []string{groupID}},
			},
		},
		{
			name: "apply_template without template",
			body: map[string]interface{}{
				"operation": "apply_template",
				"target":    map[string]interface{}{"type": "groups", "ids": []string{groupID}},
			},
		},
		{
			name: "group target without ids",
			body: map[string]interface{}{
				"operation": "reset",
				"target":    map[string]interface{}{"type": "groups"},
			},
		},
		{
			name: "unknown operation",
			body: map[string]interface{}{
				"operation": "merge",
				"target":    map[string]interface{}{"type": "groups", "ids": []string{groupID}},
			},
		},
		{
			name: "malformed target id",
			body: map[string]interface{}{
				"operation": "reset",
				"target":    map[string]interface{}{"type": "groups", "ids": []string{"not-a-hex-id"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newBulkTestRouter(&stubMembershipStore{failIDs: map[string]bool{}})
			w := postBulk(t, router, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestExecuteBulkOperation_MissingTemplateReturns404(t *testing.T) {
	router := newBulkTestRouter(&stubMembershipStore{failIDs: map[string]bool{}})

	w := postBulk(t, router, map[string]interface{}{
		"operation":  "apply_template",
		"target":     map[string]interface{}{"type": "groups", "ids": []string{primitive.NewObjectID().Hex()}},
		"templateId": primitive.NewObjectID().Hex(),
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}
