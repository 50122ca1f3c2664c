package postgres

import (
	"context"
	"errors"
	"fmt"
)

var errSchemaMissing = errors.New("records table missing, migration has not run")

// HealthCheck verifies the connection and that the records schema exists.
type HealthCheck struct {
	pool Pool
}

// NewHealthCheck creates a PostgreSQL health checker.
func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	var migrated bool
	err := h.pool.QueryRow(ctx, `SELECT to_regclass('records') IS NOT NULL`).Scan(&migrated)
	if err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	if !migrated {
		return errSchemaMissing
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}
