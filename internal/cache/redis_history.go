package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"repbep/internal/ai"
)

// RedisHistory stores each session as a redis list of JSON entries with a sliding TTL.
// It shares history between instances but does not serialize them.
type RedisHistory struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewRedisHistory(client *redisv9.Client, ttl time.Duration) *RedisHistory {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisHistory{client: client, ttl: ttl}
}

func (c *RedisHistory) Append(ctx context.Context, sessionID string, msg ai.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal history entry failed: %w", err)
	}
	key := c.historyKey(sessionID)
	_, err = c.client.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis append history failed: %w", err)
	}
	return nil
}

func (c *RedisHistory) Get(ctx context.Context, sessionID string) ([]ai.ChatMessage, error) {
	raw, err := c.client.LRange(ctx, c.historyKey(sessionID), 0, -1).Result()
	if err != nil && err != redisv9.Nil {
		return nil, fmt.Errorf("redis get history failed: %w", err)
	}

	messages := make([]ai.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg ai.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal cached history failed: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (c *RedisHistory) Clear(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, c.historyKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete history failed: %w", err)
	}
	return nil
}

func (c *RedisHistory) historyKey(sessionID string) string {
	return "chat:history:" + sessionID
}
