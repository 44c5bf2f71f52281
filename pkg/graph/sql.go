package graph

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// SQLSession adapts a database/sql connection to the Session contract.
// Driver packages embed or wrap it after opening their *sql.DB; Run, Close
// and cursor handling are shared here.
type SQLSession struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// Run executes the query and returns a cursor over its rows.
func (s *SQLSession) Run(ctx context.Context, query string) (Result, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if s.Logger != nil {
		s.Logger.Debug("executing validation query", "query", query)
	}

	//nolint:rowserrcheck // rows.Err() surfaces through Result.Err after iteration
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	return &sqlResult{rows: rows, keys: cols}, nil
}

// Close closes the database connection.
func (s *SQLSession) Close(_ context.Context) error {
	if s.DB != nil {
		if s.Logger != nil {
			s.Logger.Debug("closing database connection")
		}
		return s.DB.Close()
	}
	return nil
}

// sqlResult cursors over *sql.Rows, scanning each row into generic values.
// []byte column values are normalized to string so text comes back the same
// regardless of driver.
type sqlResult struct {
	rows   *sql.Rows
	keys   []string
	rec    *Record
	err    error
	closed bool
}

func (r *sqlResult) Next(_ context.Context) bool {
	if r.err != nil || r.closed {
		return false
	}
	if !r.rows.Next() {
		r.err = r.rows.Err()
		_ = r.Close()
		return false
	}

	values := make([]any, len(r.keys))
	ptrs := make([]any, len(r.keys))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		r.err = fmt.Errorf("failed to scan row: %w", err)
		_ = r.Close()
		return false
	}
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}

	r.rec = &Record{Keys: r.keys, Values: values}
	return true
}

func (r *sqlResult) Record() *Record { return r.rec }

func (r *sqlResult) Err() error { return r.err }

func (r *sqlResult) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.rows.Close()
}
