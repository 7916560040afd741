package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fieldsync-server/internal/domain"

	"github.com/redis/go-redis/v9"
)

const syncStateKeyPrefix = "syncstate:"

// SyncStateRepository keeps the per-user bookkeeping behind the sync status
// endpoint. Get returns a zero-value state when the user has never synced.
type SyncStateRepository interface {
	Save(ctx context.Context, userID string, state *domain.SyncState) error
	Get(ctx context.Context, userID string) (*domain.SyncState, error)
}

type redisSyncStateRepository struct {
	client *redis.Client
}

func NewRedisSyncStateRepository(client *redis.Client) SyncStateRepository {
	return &redisSyncStateRepository{client: client}
}

func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func (r *redisSyncStateRepository) Save(ctx context.Context, userID string, state *domain.SyncState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal sync state: %w", err)
	}

	if err := r.client.Set(ctx, syncStateKeyPrefix+userID, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save sync state: %w", err)
	}

	return nil
}

func (r *redisSyncStateRepository) Get(ctx context.Context, userID string) (*domain.SyncState, error) {
	data, err := r.client.Get(ctx, syncStateKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return &domain.SyncState{Status: domain.SyncStatusSynced}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	var state domain.SyncState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sync state: %w", err)
	}

	return &state, nil
}
