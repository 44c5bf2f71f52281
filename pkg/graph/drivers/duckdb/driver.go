//go:build cgo

// Package duckdb provides a DuckDB-backed graph session driver, handy for
// local analysis over exported asset snapshots. DuckDB LIST columns surface
// as multi-valued fields.
//
// Import this package with a blank identifier to register the driver:
//
//	import _ "github.com/baseline-labs/driftwatch/pkg/graph/drivers/duckdb"
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/baseline-labs/driftwatch/pkg/graph"
)

func init() {
	graph.Register("duckdb", func(logger *slog.Logger) graph.Driver { return New(logger) })
}

// Driver opens DuckDB-backed graph sessions.
type Driver struct {
	logger *slog.Logger
}

// New creates a duckdb driver. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{logger: logger}
}

// Connect opens a DuckDB database. An empty or ":memory:" database path
// opens an in-memory instance.
func (d *Driver) Connect(ctx context.Context, cfg graph.Config) (graph.Session, error) {
	path := databasePath(cfg)

	d.logger.Debug("connecting to duckdb", slog.String("path", path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	return &graph.SQLSession{DB: db, Logger: d.logger}, nil
}

func databasePath(cfg graph.Config) string {
	if cfg.Database == "" {
		return ":memory:"
	}
	return cfg.Database
}

var _ graph.Driver = (*Driver)(nil)
