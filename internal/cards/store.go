package cards

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists card records per customer.
type Store interface {
	Put(ctx context.Context, userID int, rec CardRecord) error
	List(ctx context.Context, userID int) ([]CardRecord, error)
	Delete(ctx context.Context, userID int, cardID string) error
}

// RedisStore keeps each customer's cards in a Redis hash keyed by card id.
// A non-zero TTL re-arms on every write so abandoned vaults age out.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisStore creates a card vault on the given Redis client.
func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: redisClient, ttl: ttl}
}

func (s *RedisStore) key(userID int) string {
	return fmt.Sprintf("cards:user:%d", userID)
}

// Put stores or replaces a card record.
func (s *RedisStore) Put(ctx context.Context, userID int, rec CardRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("cards: record has no id")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cards: marshal record: %w", err)
	}
	key := s.key(userID)
	if err := s.redis.HSet(ctx, key, rec.ID, data).Err(); err != nil {
		return fmt.Errorf("cards: store record: %w", err)
	}
	if s.ttl > 0 {
		if err := s.redis.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("cards: refresh ttl: %w", err)
		}
	}
	return nil
}

// List returns the customer's cards, oldest first.
func (s *RedisStore) List(ctx context.Context, userID int) ([]CardRecord, error) {
	entries, err := s.redis.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cards: list records: %w", err)
	}
	records := make([]CardRecord, 0, len(entries))
	for _, raw := range entries {
		var rec CardRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("cards: unmarshal record: %w", err)
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// Delete removes one card. Deleting an unknown card is not an error.
func (s *RedisStore) Delete(ctx context.Context, userID int, cardID string) error {
	if err := s.redis.HDel(ctx, s.key(userID), cardID).Err(); err != nil {
		return fmt.Errorf("cards: delete record: %w", err)
	}
	return nil
}
