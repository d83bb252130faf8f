package warehouse

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/config"
)

// PostgresExecutor runs queries against a PostgreSQL warehouse through a
// pgx connection pool.
type PostgresExecutor struct {
	pool    *pgxpool.Pool
	maxRows int
	logger  *zap.Logger
}

var _ Executor = (*PostgresExecutor)(nil)

// postgresConnString builds a PostgreSQL URL with proper escaping. All
// user-provided fields must be URL-escaped so special characters in
// passwords (@, /, #, ?) do not break URL parsing.
func postgresConnString(cfg *config.WarehouseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		url.QueryEscape(cfg.Database),
		sslMode,
		cfg.MaxConnections,
	)
}

// NewPostgresExecutor creates a PostgresExecutor and verifies connectivity.
func NewPostgresExecutor(ctx context.Context, cfg *config.WarehouseConfig, logger *zap.Logger) (*PostgresExecutor, error) {
	pool, err := pgxpool.New(ctx, postgresConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect to postgres warehouse: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres warehouse: %w", err)
	}

	return &PostgresExecutor{
		pool:    pool,
		maxRows: cfg.MaxResultRows,
		logger:  logger.Named("warehouse-postgres"),
	}, nil
}

// Query runs a single read-only statement and returns up to MaxResultRows
// rows. The statement is wrapped in a limiting subquery; one extra row is
// requested to detect truncation.
func (e *PostgresExecutor) Query(ctx context.Context, sqlQuery string) (*QueryResult, error) {
	queryToRun := wrapWithLimit(sqlQuery, e.maxRows)

	rows, err := e.pool.Query(ctx, queryToRun)
	if err != nil {
		return nil, fmt.Errorf("execute warehouse query: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	result := &QueryResult{Columns: columns, Rows: make([]map[string]any, 0)}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}

		if e.maxRows > 0 && len(result.Rows) >= e.maxRows {
			result.Truncated = true
			break
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			rowMap[col] = values[i]
		}
		result.Rows = append(result.Rows, rowMap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate warehouse rows: %w", err)
	}

	result.RowCount = len(result.Rows)
	e.logger.Debug("warehouse query executed",
		zap.Int("rows", result.RowCount),
		zap.Bool("truncated", result.Truncated))
	return result, nil
}

// Ping implements Executor.
func (e *PostgresExecutor) Ping(ctx context.Context) error {
	return e.pool.Ping(ctx)
}

// Close implements Executor.
func (e *PostgresExecutor) Close() {
	e.pool.Close()
}

// wrapWithLimit bounds a statement's result set by wrapping it in a limiting
// subquery. One extra row is fetched so the caller can tell a full page from
// a truncated one. Non-positive limits leave the statement untouched.
func wrapWithLimit(sqlQuery string, maxRows int) string {
	if maxRows <= 0 {
		return sqlQuery
	}
	return fmt.Sprintf("SELECT * FROM (%s) AS _limited LIMIT %d", sqlQuery, maxRows+1)
}
