package cache

import (
	"context"
	"testing"
	"time"

	"famline/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestCache(t *testing.T) (*GroupCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewGroupCache(client), mr
}

func TestGroupCache_UserGroupsRoundTrip(t *testing.T) {
	gc, _ := newTestCache(t)
	ctx := context.Background()

	groups := []models.Group{
		{
			ID:      primitive.NewObjectID(),
			OwnerID: primitive.NewObjectID(),
			Name:    "Immediate Family",
			Defaults: models.GroupDefaults{
				Frequency: models.FrequencyEveryUpdate,
				Channels:  []string{models.ChannelEmail},
			},
		},
	}

	_, ok := gc.GetUserGroups(ctx, "owner-1")
	assert.False(t, ok)

	gc.SetUserGroups(ctx, "owner-1", groups)

	cached, ok := gc.GetUserGroups(ctx, "owner-1")
	require.True(t, ok)
	require.Len(t, cached, 1)
	assert.Equal(t, groups[0].ID, cached[0].ID)
	assert.Equal(t, "Immediate Family", cached[0].Name)
	assert.Equal(t, models.FrequencyEveryUpdate, cached[0].Defaults.Frequency)
}

func TestGroupCache_GroupMembersRoundTrip(t *testing.T) {
	gc, _ := newTestCache(t)
	ctx := context.Background()

	memberships := []models.GroupMembership{
		{
			ID:          primitive.NewObjectID(),
			GroupID:     primitive.NewObjectID(),
			RecipientID: primitive.NewObjectID(),
			IsActive:    true,
		},
	}

	gc.SetGroupMembers(ctx, "group-1", memberships)

	cached, ok := gc.GetGroupMembers(ctx, "group-1")
	require.True(t, ok)
	require.Len(t, cached, 1)
	assert.Equal(t, memberships[0].ID, cached[0].ID)
}

func TestGroupCache_InvalidateUserCache(t *testing.T) {
	gc, _ := newTestCache(t)
	ctx := context.Background()

	gc.SetUserGroups(ctx, "owner-1", []models.Group{{Name: "Friends"}})
	gc.InvalidateUserCache(ctx, "owner-1")

	_, ok := gc.GetUserGroups(ctx, "owner-1")
	assert.False(t, ok)
}

func TestGroupCache_InvalidateGroupCache(t *testing.T) {
	gc, _ := newTestCache(t)
	ctx := context.Background()

	gc.SetGroupMembers(ctx, "group-1", []models.GroupMembership{{IsActive: true}})
	gc.InvalidateGroupCache(ctx, "group-1")

	_, ok := gc.GetGroupMembers(ctx, "group-1")
	assert.False(t, ok)
}

func TestGroupCache_InvalidationIsScoped(t *testing.T) {
	gc, _ := newTestCache(t)
	ctx := context.Background()

	gc.SetUserGroups(ctx, "owner-1", []models.Group{{Name: "Friends"}})
	gc.SetUserGroups(ctx, "owner-2", []models.Group{{Name: "Extended Family"}})

	gc.InvalidateUserCache(ctx, "owner-1")

	_, ok := gc.GetUserGroups(ctx, "owner-1")
	assert.False(t, ok)
	_, ok = gc.GetUserGroups(ctx, "owner-2")
	assert.True(t, ok)
}

func TestGroupCache_EntriesExpire(t *testing.T) {
	gc, mr := newTestCache(t)
	ctx := context.Background()

	gc.SetUserGroups(ctx, "owner-1", []models.Group{{Name: "Friends"}})

	mr.FastForward(defaultTTL + time.Second)

	_, ok := gc.GetUserGroups(ctx, "owner-1")
	assert.False(t, ok)
}

func TestGroupCache_CorruptEntryIsAMiss(t *testing.T) {
	gc, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(userGroupsKeyPrefix+"owner-1", "not json"))

	_, ok := gc.GetUserGroups(ctx, "owner-1")
	assert.False(t, ok)
}
