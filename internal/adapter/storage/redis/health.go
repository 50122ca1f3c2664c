package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// HealthCheck pings Redis and, when a receipt queue is attached, reports
// how many receipt keys are waiting for the notifier.
type HealthCheck struct {
	client *goredis.Client
	queue  *ReceiptQueue
}

// NewHealthCheck creates a Redis health checker. queue may be nil.
func NewHealthCheck(client *goredis.Client, queue *ReceiptQueue) *HealthCheck {
	return &HealthCheck{client: client, queue: queue}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	if err := h.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "redis"
}

// Details returns the pending receipt count under "queue_depth".
func (h *HealthCheck) Details(ctx context.Context) (map[string]any, error) {
	if h.queue == nil {
		return nil, nil
	}
	n, err := h.queue.Len(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"queue": h.queue.Name(), "queue_depth": n}, nil
}
