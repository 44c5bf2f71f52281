//go:build cgo

package main

import (
	// The DuckDB graph driver wraps github.com/marcboeker/go-duckdb, which
	// only compiles with cgo enabled.
	_ "github.com/baseline-labs/driftwatch/pkg/graph/drivers/duckdb"
)
