package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis stores `session:<token> -> {"userId": ...}` with a native TTL.
type Redis struct {
	client *redis.Client
}

func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, token string) (string, bool, error) {
	raw, err := r.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil || e.UserID == "" {
		// unreadable entries are treated as a miss; the store re-populates them
		return "", false, nil
	}
	return e.UserID, true, nil
}

func (r *Redis) Set(ctx context.Context, token, userID string, ttl time.Duration) error {
	raw, err := json.Marshal(entry{UserID: userID})
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKey(token), raw, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, sessionKey(token)).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
