package cache

import (
	"context"
	"encoding/json"
	"famline/models"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	userGroupsKeyPrefix   = "cache:groups:user:"
	groupMembersKeyPrefix = "cache:members:group:"

	// Safety net only. Correctness comes from explicit invalidation on the
	// write path, never from expiry.
	defaultTTL = 5 * time.Minute
)

// GroupCache caches per-owner group lists and per-group member lists.
// Constructed once per process with an injected client; invalidation is
// explicit and synchronous with the write path. A cache miss is never an
// error, and cache failures never change a request outcome.
type GroupCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGroupCache(client *redis.Client) *GroupCache {
	return &GroupCache{
		client: client,
		ttl:    defaultTTL,
	}
}

// GetUserGroups returns the cached group list for an owner, if present.
func (gc *GroupCache) GetUserGroups(ctx context.Context, ownerID string) ([]models.Group, bool) {
	data, err := gc.client.Get(ctx, userGroupsKeyPrefix+ownerID).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.Warnf("Group cache read failed for owner %s: %v", ownerID, err)
		}
		return nil, false
	}

	var groups []models.Group
	if err := json.Unmarshal(data, &groups); err != nil {
		logrus.Warnf("Group cache entry corrupt for owner %s: %v", ownerID, err)
		return nil, false
	}

	return groups, true
}

func (gc *GroupCache) SetUserGroups(ctx context.Context, ownerID string, groups []models.Group) {
	data, err := json.Marshal(groups)
	if err != nil {
		logrus.Warnf("Group cache marshal failed for owner %s: %v", ownerID, err)
		return
	}

	if err := gc.client.Set(ctx, userGroupsKeyPrefix+ownerID, data, gc.ttl).Err(); err != nil {
		logrus.Warnf("Group cache write failed for owner %s: %v", ownerID, err)
	}
}

// GetGroupMembers returns the cached membership list for a group, if present.
func (gc *GroupCache) GetGroupMembers(ctx context.Context, groupID string) ([]models.GroupMembership, bool) {
	data, err := gc.client.Get(ctx, groupMembersKeyPrefix+groupID).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.Warnf("Member cache read failed for group %s: %v", groupID, err)
		}
		return nil, false
	}

	var memberships []models.GroupMembership
	if err := json.Unmarshal(data, &memberships); err != nil {
		logrus.Warnf("Member cache entry corrupt for group %s: %v", groupID, err)
		return nil, false
	}

	return memberships, true
}

func (gc *GroupCache) SetGroupMembers(ctx context.Context, groupID string, memberships []models.GroupMembership) {
	data, err := json.Marshal(memberships)
	if err != nil {
		logrus.Warnf("Member cache marshal failed for group %s: %v", groupID, err)
		return
	}

	if err := gc.client.Set(ctx, groupMembersKeyPrefix+groupID, data, gc.ttl).Err(); err != nil {
		logrus.Warnf("Member cache write failed for group %s: %v", groupID, err)
	}
}

// InvalidateUserCache drops the owner's group list. Best-effort cleanup:
// a failure is logged, the next successful invalidation self-heals.
func (gc *GroupCache) InvalidateUserCache(ctx context.Context, ownerID string) {
	if err := gc.client.Del(ctx, userGroupsKeyPrefix+ownerID).Err(); err != nil {
		logrus.Warnf("Group cache invalidation failed for owner %s: %v", ownerID, err)
	}
}

// InvalidateGroupCache drops the member list of one group.
func (gc *GroupCache) InvalidateGroupCache(ctx context.Context, groupID string) {
	if err := gc.client.Del(ctx, groupMembersKeyPrefix+groupID).Err(); err != nil {
		logrus.Warnf("Member cache invalidation failed for group %s: %v", groupID, err)
	}
}
