package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"teamnet-go/internal/services"
	"teamnet-go/internal/storage"

	"github.com/redis/go-redis/v9"
)

const presenceKeyPrefix = "presence:user:"

// redisPresenceStore is the Redis implementation of services.PresenceStore.
// A user is online while their heartbeat key exists; the key expires on its
// own when heartbeats stop, so a crashed client goes offline without any
// cleanup pass.
type redisPresenceStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPresenceStore creates a new Redis-backed presence store. ttl is
// how long a user stays online after their last heartbeat.
func NewRedisPresenceStore(client *redis.Client, ttl time.Duration) services.PresenceStore {
	return &redisPresenceStore{client: client, ttl: ttl}
}

func presenceKey(userID uint) string {
	return fmt.Sprintf("%s%d", presenceKeyPrefix, userID)
}

// Heartbeat refreshes the user's presence key TTL, creating it if absent.
func (r *redisPresenceStore) Heartbeat(ctx context.Context, userID uint) error {
	if err := r.client.Set(ctx, presenceKey(userID), "online", r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to record heartbeat for user %d: %w", userID, err)
	}
	return nil
}

// Remove deletes the user's presence key immediately (explicit disconnect).
func (r *redisPresenceStore) Remove(ctx context.Context, userID uint) error {
	if err := r.client.Del(ctx, presenceKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to remove presence for user %d: %w", userID, err)
	}
	return nil
}

// IsOnline reports whether the user's presence key exists.
func (r *redisPresenceStore) IsOnline(ctx context.Context, userID uint) (bool, error) {
	n, err := r.client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check presence for user %d: %w", userID, err)
	}
	return n > 0, nil
}

// OnlineUserIDs scans the presence keyspace and returns the ids of every
// currently-online user.
func (r *redisPresenceStore) OnlineUserIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	iter := r.client.Scan(ctx, 0, presenceKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		idStr := strings.TrimPrefix(iter.Val(), presenceKeyPrefix)
		id, err := storage.StrToUint(idStr)
		if err != nil {
			continue // skip malformed keys
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan presence keys: %w", err)
	}
	return ids, nil
}
