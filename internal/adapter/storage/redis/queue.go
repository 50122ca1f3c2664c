package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ReceiptQueue implements ports.ReceiptQueue as a Redis list.
type ReceiptQueue struct {
	client *goredis.Client
	name   string
}

// NewReceiptQueue creates a queue backed by the list at name.
func NewReceiptQueue(client *goredis.Client, name string) *ReceiptQueue {
	return &ReceiptQueue{client: client, name: name}
}

// Name returns the list key.
func (q *ReceiptQueue) Name() string {
	return q.name
}

// Enqueue appends key to the tail of the list.
func (q *ReceiptQueue) Enqueue(ctx context.Context, key string) error {
	if err := q.client.RPush(ctx, q.name, key).Err(); err != nil {
		return fmt.Errorf("redis queue push: %w", err)
	}
	return nil
}

// Dequeue blocks up to timeout for the head of the list.
// Returns "", nil on timeout.
func (q *ReceiptQueue) Dequeue(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := q.client.BLPop(ctx, timeout, q.name).Result()
	if err != nil {
		if err == goredis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("redis queue pop: %w", err)
	}
	// BLPOP replies with [list, value]
	return res[1], nil
}

// Len returns the number of pending keys.
func (q *ReceiptQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.name).Result()
	if err != nil {
		return 0, fmt.Errorf("redis queue len: %w", err)
	}
	return n, nil
}
