package messages

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cdCorey/woocommerce-sage-erp-connector/internal/application/export"
)

// RedisBuffer implements export.MessageSink on Redis. Messages persist across
// process restarts so a failed run's diagnostics survive until the next
// display opportunity.
type RedisBuffer struct {
	client *redis.Client
	key    string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisBuffer creates a new Redis-backed message buffer
func NewRedisBuffer(cfg RedisConfig) (*RedisBuffer, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisBuffer{client: client, key: "connector:messages"}, nil
}

// NewRedisBufferWithClient creates a buffer with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisBufferWithClient(client *redis.Client, key string) *RedisBuffer {
	if key == "" {
		key = "connector:messages"
	}
	return &RedisBuffer{client: client, key: key}
}

// Append buffers the messages
func (b *RedisBuffer) Append(ctx context.Context, messages ...string) error {
	if len(messages) == 0 {
		return nil
	}
	values := make([]interface{}, len(messages))
	for i, message := range messages {
		values[i] = message
	}
	if err := b.client.RPush(ctx, b.key, values...).Err(); err != nil {
		return fmt.Errorf("failed to buffer messages: %w", err)
	}
	return nil
}

// Drain returns all buffered messages and clears the buffer atomically
func (b *RedisBuffer) Drain(ctx context.Context) ([]string, error) {
	pipe := b.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, b.key, 0, -1)
	pipe.Del(ctx, b.key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to drain messages: %w", err)
	}
	return rangeCmd.Val(), nil
}

// Close closes the Redis client
func (b *RedisBuffer) Close() error {
	return b.client.Close()
}

// Ensure RedisBuffer implements MessageSink
var _ export.MessageSink = (*RedisBuffer)(nil)
