// Package warehouse executes validated read-only SQL against the analytical
// warehouse and returns bounded result sets.
package warehouse

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/config"
)

// QueryResult holds the rows returned by a warehouse query.
type QueryResult struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
	// Truncated is set when the row cap cut the result short.
	Truncated bool `json:"truncated,omitempty"`
}

// Executor runs read-only SQL. Zero returned rows is a successful execution,
// not an error.
type Executor interface {
	Query(ctx context.Context, sqlQuery string) (*QueryResult, error)
	Ping(ctx context.Context) error
	Close()
}

// New creates the executor for the configured warehouse type.
func New(ctx context.Context, cfg *config.WarehouseConfig, logger *zap.Logger) (Executor, error) {
	switch cfg.Type {
	case "postgres":
		return NewPostgresExecutor(ctx, cfg, logger)
	case "sqlserver":
		return NewSQLServerExecutor(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported warehouse type: %q", cfg.Type)
	}
}
