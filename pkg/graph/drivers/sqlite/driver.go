// Package sqlite provides a SQLite-backed graph session driver using the
// pure-Go modernc.org/sqlite driver. It needs no external service, which
// also makes it the default backend for tests and local experiments.
//
// Import this package with a blank identifier to register the driver:
//
//	import _ "github.com/baseline-labs/driftwatch/pkg/graph/drivers/sqlite"
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/baseline-labs/driftwatch/pkg/graph"
)

func init() {
	graph.Register("sqlite", func(logger *slog.Logger) graph.Driver { return New(logger) })
}

// Driver opens SQLite-backed graph sessions.
type Driver struct {
	logger *slog.Logger
}

// New creates a sqlite driver. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{logger: logger}
}

// Connect opens a SQLite database. An empty or ":memory:" database path
// opens an in-memory instance pinned to a single connection, since each new
// connection would otherwise see its own empty database.
func (d *Driver) Connect(ctx context.Context, cfg graph.Config) (graph.Session, error) {
	path := cfg.Database
	if path == "" {
		path = ":memory:"
	}

	d.logger.Debug("connecting to sqlite", slog.String("path", path))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	return &graph.SQLSession{DB: db, Logger: d.logger}, nil
}

var _ graph.Driver = (*Driver)(nil)
