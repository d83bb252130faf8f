package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/config"
)

// SQLServerExecutor runs queries against a SQL Server warehouse through
// database/sql with the mssql driver.
type SQLServerExecutor struct {
	db      *sql.DB
	maxRows int
	logger  *zap.Logger
}

var _ Executor = (*SQLServerExecutor)(nil)

func sqlServerConnString(cfg *config.WarehouseConfig) string {
	query := url.Values{}
	query.Set("database", cfg.Database)
	if cfg.SSLMode == "disable" {
		query.Set("encrypt", "disable")
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		RawQuery: query.Encode(),
	}
	return u.String()
}

// NewSQLServerExecutor creates a SQLServerExecutor. database/sql opens
// connections lazily; reachability is checked by Ping.
func NewSQLServerExecutor(cfg *config.WarehouseConfig, logger *zap.Logger) (*SQLServerExecutor, error) {
	db, err := sql.Open("sqlserver", sqlServerConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("open sqlserver warehouse: %w", err)
	}
	db.SetMaxOpenConns(int(cfg.MaxConnections))

	return &SQLServerExecutor{
		db:      db,
		maxRows: cfg.MaxResultRows,
		logger:  logger.Named("warehouse-sqlserver"),
	}, nil
}

// Query runs a single read-only statement bounded by a TOP clause.
func (e *SQLServerExecutor) Query(ctx context.Context, sqlQuery string) (*QueryResult, error) {
	queryToRun := wrapWithTop(sqlQuery, e.maxRows)

	rows, err := e.db.QueryContext(ctx, queryToRun)
	if err != nil {
		return nil, fmt.Errorf("execute warehouse query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read result columns: %w", err)
	}

	result := &QueryResult{Columns: columns, Rows: make([]map[string]any, 0)}
	values := make([]any, len(columns))
	scanTargets := make([]any, len(columns))
	for i := range values {
		scanTargets[i] = &values[i]
	}

	for rows.Next() {
		if e.maxRows > 0 && len(result.Rows) >= e.maxRows {
			result.Truncated = true
			break
		}

		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("scan warehouse row: %w", err)
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			value := values[i]
			if raw, ok := value.([]byte); ok {
				value = string(raw)
			}
			rowMap[col] = value
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
func (e *SQLServerExecutor) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

// Close implements Executor.
func (e *SQLServerExecutor) Close() {
	_ = e.db.Close()
}

func wrapWithTop(sqlQuery string, maxRows int) string {
	if maxRows <= 0 {
		return sqlQuery
	}
	return fmt.Sprintf("SELECT TOP (%d) * FROM (%s) AS _limited", maxRows+1, sqlQuery)
}
