package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue is a FIFO list queue: producers LPUSH, consumers BRPOP.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(rawURL string) (*redis.Client, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewRedisQueue returns a queue stored under key.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

// Send pushes the encoded message onto the queue.
func (q *RedisQueue) Send(ctx context.Context, msg Message) error {
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode queue message: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue analysis %s: %w", msg.AnalysisID, err)
	}
	return nil
}

// Receive pops the oldest message body, waiting up to timeout.
func (q *RedisQueue) Receive(ctx context.Context, timeout time.Duration) (string, error) {
	result, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoMessage
		}
		return "", fmt.Errorf("dequeue: %w", err)
	}
	if len(result) < 2 {
		return "", fmt.Errorf("dequeue: expected 2 elements, got %d", len(result))
	}
	return result[1], nil
}

// Len returns the number of waiting messages.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}

// Ping checks the Redis connection.
func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

var (
	_ Client   = (*RedisQueue)(nil)
	_ Consumer = (*RedisQueue)(nil)
)
