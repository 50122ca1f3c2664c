package ports

import "context"

// HealthChecker reports whether a backing store is reachable and usable.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Name() string
}

// HealthDetailer is implemented by checkers that can report extra state,
// such as the receipt backlog, alongside a successful ping.
type HealthDetailer interface {
	Details(ctx context.Context) (map[string]any, error)
}
