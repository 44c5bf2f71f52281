// Package postgres provides a PostgreSQL-backed graph session driver, for
// deployments that mirror their asset inventory into a relational warehouse.
//
// Import this package with a blank identifier to register the driver:
//
//	import _ "github.com/baseline-labs/driftwatch/pkg/graph/drivers/postgres"
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver "pgx"

	"github.com/baseline-labs/driftwatch/pkg/graph"
)

func init() {
	graph.Register("postgres", func(logger *slog.Logger) graph.Driver { return New(logger) })
}

// Driver opens PostgreSQL-backed graph sessions.
type Driver struct {
	logger *slog.Logger
}

// New creates a postgres driver. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{logger: logger}
}

// Connect opens and pings a PostgreSQL connection.
func (d *Driver) Connect(ctx context.Context, cfg graph.Config) (graph.Session, error) {
	dsn := buildDSN(cfg)

	d.logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &graph.SQLSession{DB: db, Logger: d.logger}, nil
}

// buildDSN constructs a key=value PostgreSQL connection string.
func buildDSN(cfg graph.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
}

var _ graph.Driver = (*Driver)(nil)
