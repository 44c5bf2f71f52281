// Package neo4j provides the bolt-protocol graph session driver for Neo4j,
// the primary asset graph backend. Sessions are opened in read mode: drift
// detection never mutates the graph.
//
// Import this package with a blank identifier to register the driver:
//
//	import _ "github.com/baseline-labs/driftwatch/pkg/graph/drivers/neo4j"
package neo4j

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/baseline-labs/driftwatch/pkg/graph"
)

func init() {
	factory := func(logger *slog.Logger) graph.Driver { return New(logger) }
	graph.Register("neo4j", factory)
	graph.Register("bolt", factory)
}

// Driver opens Neo4j-backed graph sessions.
type Driver struct {
	logger *slog.Logger
}

// New creates a neo4j driver. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{logger: logger}
}

// Connect dials the bolt endpoint, verifies connectivity, and opens a
// read-mode session.
func (d *Driver) Connect(ctx context.Context, cfg graph.Config) (graph.Session, error) {
	uri := boltURI(cfg)

	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	d.logger.Debug("connecting to neo4j", slog.String("uri", uri), slog.String("user", cfg.Username))

	drv, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := drv.VerifyConnectivity(ctx); err != nil {
		_ = drv.Close(ctx)
		return nil, fmt.Errorf("failed to verify neo4j connectivity: %w", err)
	}

	sess := drv.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: cfg.Database,
	})

	return &session{driver: drv, session: sess, logger: d.logger}, nil
}

// boltURI returns the configured URI, or builds one from host/port.
func boltURI(cfg graph.Config) string {
	if cfg.URI != "" {
		return cfg.URI
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 7687
	}
	return fmt.Sprintf("bolt://%s:%d", host, port)
}

// session owns both the bolt session and its parent driver; Close releases
// both.
type session struct {
	driver  neo4j.DriverWithContext
	session neo4j.SessionWithContext
	logger  *slog.Logger
}

func (s *session) Run(ctx context.Context, query string) (graph.Result, error) {
	s.logger.Debug("executing validation query", "query", query)

	res, err := s.session.Run(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &result{res: res}, nil
}

func (s *session) Close(ctx context.Context) error {
	return errors.Join(s.session.Close(ctx), s.driver.Close(ctx))
}

// result adapts the bolt cursor. Bolt values pass through as-is: scalars stay
// typed and list properties arrive as []any, which is exactly the multi-valued
// field shape consumers flatten.
type result struct {
	res neo4j.ResultWithContext
	rec *graph.Record
	err error
}

func (r *result) Next(ctx context.Context) bool {
	if r.err != nil {
		return false
	}
	if !r.res.Next(ctx) {
		r.err = r.res.Err()
		return false
	}

	nrec := r.res.Record()
	r.rec = &graph.Record{Keys: nrec.Keys, Values: nrec.Values}
	return true
}

func (r *result) Record() *graph.Record { return r.rec }

func (r *result) Err() error { return r.err }

// Close is a no-op: bolt cursors are reclaimed when their session closes.
func (r *result) Close() error { return nil }

var _ graph.Driver = (*Driver)(nil)
