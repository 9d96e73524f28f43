package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trendcloud/internal/domain/hashtag"
)

// SnapshotCache keeps the latest aggregated snapshot in Redis so a restarted
// process can serve before its first refresh completes
type SnapshotCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisClient creates a Redis client and checks the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 2,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping redis at %s: %w", addr, err)
	}

	return client, nil
}

// NewSnapshotCache creates a new snapshot cache. A zero ttl keeps the key forever.
func NewSnapshotCache(client *redis.Client, key string, ttl time.Duration) *SnapshotCache {
	if key == "" {
		key = "trendcloud:snapshot"
	}
	return &SnapshotCache{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// SaveSnapshot stores the snapshot as JSON
func (c *SnapshotCache) SaveSnapshot(ctx context.Context, s hashtag.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("error marshaling snapshot: %w", err)
	}

	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("error writing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the cached snapshot or hashtag.ErrNoSnapshot
func (c *SnapshotCache) LoadSnapshot(ctx context.Context) (*hashtag.Snapshot, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, hashtag.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("error reading snapshot: %w", err)
	}

	var s hashtag.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("error unmarshaling snapshot: %w", err)
	}
	return &s, nil
}
