package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"famline/models"
	"famline/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubGroupStore struct {
	group       *models.Group
	customCount int64
	nameTaken   bool
}

func (s *stubGroupStore) Create(ctx context.Context, group *models.Group) error {
	group.ID = primitive.NewObjectID()
	return nil
}

func (s *stubGroupStore) GetByID(ctx context.Context, ownerID, groupID string) (*models.Group, error) {
	return s.group, nil
}

func (s *stubGroupStore) GetOwnerGroups(ctx context.Context, ownerID string, ids []string, groupType string) ([]models.Group, error) {
	return nil, nil
}

func (s *stubGroupStore) NameExists(ctx context.Context, ownerID, name string) (bool, error) {
	return s.nameTaken, nil
}

func (s *stubGroupStore) CountCustomGroups(ctx context.Context, ownerID string) (int64, error) {
	return s.customCount, nil
}

func (s *stubGroupStore) Update(ctx context.Context, ownerID, groupID string, update bson.M) error {
	return nil
}

func (s *stubGroupStore) Delete(ctx context.Context, ownerID, groupID string) error {
	return nil
}

func (s *stubGroupStore) AdjustMemberCount(ctx context.Context, groupID string, delta int) error {
	return nil
}

type stubMembershipManager struct {
	groupCount int64
}

func (s *stubMembershipManager) Create(ctx context.Context, membership *models.GroupMembership) error {
	membership.ID = primitive.NewObjectID()
	return nil
}

func (s *stubMembershipManager) GetByID(ctx context.Context, ownerID, membershipID string) (*models.GroupMembership, error) {
	return nil, nil
}

func (s *stubMembershipManager) Find(ctx context.Context, filter models.MembershipFilter) ([]models.GroupMembership, error) {
	return nil, nil
}

func (s *stubMembershipManager) UpdateRole(ctx context.Context, ownerID, membershipID, role string) error {
	return nil
}

func (s *stubMembershipManager) Delete(ctx context.Context, ownerID, membershipID string) error {
	return nil
}

func (s *stubMembershipManager) DeleteByGroup(ctx context.Context, groupID string) error {
	return nil
}

func (s *stubMembershipManager) CountByGroup(ctx context.Context, groupID string) (int64, error) {
	return s.groupCount, nil
}

type stubRecipientGetter struct {
	recipient *models.Recipient
}

func (s *stubRecipientGetter) GetByID(ctx context.Context, ownerID, recipientID string) (*models.Recipient, error) {
	return s.recipient, nil
}

type stubGroupCache struct{}

func (stubGroupCache) GetUserGroups(ctx context.Context, ownerID string) ([]models.Group, bool) {
	return nil, false
}
func (stubGroupCache) SetUserGroups(ctx context.Context, ownerID string, groups []models.Group) {}
func (stubGroupCache) GetGroupMembers(ctx context.Context, groupID string) ([]models.GroupMembership, bool) {
	return nil, false
}
func (stubGroupCache) SetGroupMembers(ctx context.Context, groupID string, memberships []models.GroupMembership) {
}
func (stubGroupCache) InvalidateUserCache(ctx context.Context, ownerID string)  {}
func (stubGroupCache) InvalidateGroupCache(ctx context.Context, groupID string) {}

func newGroupTestRouter(groups *stubGroupStore, memberships *stubMembershipManager, recipients *stubRecipientGetter) *gin.Engine {
	gin.SetMode(gin.TestMode)

	groupService := services.NewGroupService(groups, memberships, recipients, stubGroupCache{})
	controller := NewGroupController(groupService)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", primitive.NewObjectID().Hex())
		c.Next()
	})
	router.POST("/groups", controller.CreateGroup)
	router.POST("/groups/:groupId/members", controller.AddMember)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateGroup_GroupLimitReturns400(t *testing.T) {
	router := newGroupTestRouter(
		&stubGroupStore{customCount: models.MaxCustomGroupsPerOwner},
		&stubMembershipManager{},
		&stubRecipientGetter{},
	)

	w := postJSON(t, router, "/groups", map[string]interface{}{"name": "One Too Many"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateGroup_DuplicateNameReturns409(t *testing.T) {
	router := newGroupTestRouter(
		&stubGroupStore{nameTaken: true},
		&stubMembershipManager{},
		&stubRecipientGetter{},
	)

	w := postJSON(t, router, "/groups", map[string]interface{}{"name": "Friends"})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAddMember_MemberLimitReturns400(t *testing.T) {
	group := &models.Group{ID: primitive.NewObjectID(), Name: "Friends", MaxMembers: 1}
	recipient := &models.Recipient{ID: primitive.NewObjectID(), IsActive: true}
	router := newGroupTestRouter(
		&stubGroupStore{group: group},
		&stubMembershipManager{groupCount: 1},
		&stubRecipientGetter{recipient: recipient},
	)

	w := postJSON(t, router, "/groups/"+group.ID.Hex()+"/members", map[string]interface{}{
		"recipientId": recipient.ID.Hex(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
