package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps turns in a capped Redis list per conversation.
type RedisStore struct {
	client   *redis.Client
	prefix   string
	ttl      time.Duration
	maxTurns int64
}

var _ Store = (*RedisStore)(nil)

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "ontollm:"
	TTL      time.Duration // Expiration for conversations, default 0 (no expiration)
	MaxTurns int           // Turns kept per conversation, default 20
}

// NewRedisStore creates a new Redis memory store
func NewRedisStore(opts RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "ontollm:"
	}
	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 20
	}

	return &RedisStore{
		client:   client,
		prefix:   prefix,
		ttl:      opts.TTL,
		maxTurns: int64(maxTurns),
	}
}

func (s *RedisStore) conversationKey(entityID, processID string) string {
	return fmt.Sprintf("%smemory:%s:%s", s.prefix, entityID, processID)
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Record pushes a turn to the head of the conversation list.
func (s *RedisStore) Record(ctx context.Context, turn Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return errors.Wrap(err, "failed to marshal turn")
	}

	key := s.conversationKey(turn.EntityID, turn.ProcessID)
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, s.maxTurns-1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to save turn to redis")
	}
	return nil
}

// Recall returns up to n turns, most recent first.
func (s *RedisStore) Recall(ctx context.Context, entityID, processID string, n int) ([]Turn, error) {
	if n <= 0 {
		return nil, nil
	}
	items, err := s.client.LRange(ctx, s.conversationKey(entityID, processID), 0, int64(n-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load turns from redis")
	}

	turns := make([]Turn, 0, len(items))
	for _, item := range items {
		var turn Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
