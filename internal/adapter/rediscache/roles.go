// Package rediscache caches role lookups in Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"timesheet-api/internal/ports"
)

const keyPrefix = "timesheet:roles:"

// RoleCache fronts a RoleResolver with Redis. Redis failures fall through
// to the resolver so authorization never depends on the cache.
type RoleCache struct {
	rc   *redis.Client
	next ports.RoleResolver
	ttl  time.Duration
	log  *logrus.Logger
}

func NewRoleCache(rc *redis.Client, next ports.RoleResolver, ttl time.Duration, log *logrus.Logger) *RoleCache {
	return &RoleCache{rc: rc, next: next, ttl: ttl, log: log}
}

// NewClient connects to Redis and pings it.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("redis address is empty")
	}
	rc := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 3 * time.Second,
		PoolSize:    10,
	})
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(c).Err(); err != nil {
		rc.Close()
		return nil, fmt.Errorf("redis connect error: %v", err)
	}
	return rc, nil
}

func key(userID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

func (c *RoleCache) RoleNames(ctx context.Context, userID int64) ([]string, error) {
	raw, err := c.rc.Get(ctx, key(userID)).Result()
	if err == nil {
		var names []string
		if err := json.Unmarshal([]byte(raw), &names); err == nil {
			return names, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.WithError(err).WithField("user_id", userID).Warn("role cache read failed")
	}

	names, err := c.next.RoleNames(ctx, userID)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(names)
	if err == nil {
		if err := c.rc.Set(ctx, key(userID), b, c.ttl).Err(); err != nil {
			c.log.WithError(err).WithField("user_id", userID).Warn("role cache write failed")
		}
	}
	return names, nil
}

// Invalidate drops the cached roles of userID.
func (c *RoleCache) Invalidate(ctx context.Context, userID int64) error {
	if err := c.rc.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("role cache invalidate: %w", err)
	}
	return nil
}
