package repository

import (
	"context"

	"github.com/BarkinBalci/click-vote-service/internal/domain"
)

// MetricsQuery represents a metrics query parameters
type MetricsQuery struct {
	ButtonID string
	From     int64
	To       int64
	GroupBy  string
}

// MetricsGroupResult represents aggregated metrics for a specific group
type MetricsGroupResult struct {
	GroupValue string
	TotalCount uint64
}

// MetricsResult represents the result of a metrics query
type MetricsResult struct {
	TotalCount   uint64
	UniqueActors uint64
	Groups       []MetricsGroupResult
}

// ClickRepository defines the interface for the analytics copy of the click log
type ClickRepository interface {
	// InsertBatch inserts a batch of clicks into the storage
	InsertBatch(ctx context.Context, events []*domain.ClickEvent) (int, error)

	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error

	// GetMetrics retrieves aggregated metrics based on the query
	GetMetrics(ctx context.Context, query MetricsQuery) (*MetricsResult, error)
}
