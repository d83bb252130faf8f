package warehouse

import "context"

// MockExecutor is a configurable mock of Executor for tests.
type MockExecutor struct {
	QueryFunc func(ctx context.Context, sqlQuery string) (*QueryResult, error)
	PingFunc  func(ctx context.Context) error

	QueryCalls int
	LastSQL    string
	CloseCalls int
}

var _ Executor = (*MockExecutor)(nil)

// Query implements Executor.
func (m *MockExecutor) Query(ctx context.Context, sqlQuery string) (*QueryResult, error) {
	m.QueryCalls++
	m.LastSQL = sqlQuery
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sqlQuery)
	}
	return &QueryResult{Columns: []string{}, Rows: []map[string]any{}}, nil
}

// Ping implements Executor.
func (m *MockExecutor) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// Close implements Executor.
func (m *MockExecutor) Close() {
	m.CloseCalls++
}
