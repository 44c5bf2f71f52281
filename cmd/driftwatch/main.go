// Command driftwatch detects baseline drift in asset graphs.
package main

import (
	"os"

	"github.com/baseline-labs/driftwatch/internal/cli"

	// Graph drivers register themselves on import. The DuckDB driver needs
	// cgo and is imported from drivers_cgo.go.
	_ "github.com/baseline-labs/driftwatch/pkg/graph/drivers/neo4j"
	_ "github.com/baseline-labs/driftwatch/pkg/graph/drivers/postgres"
	_ "github.com/baseline-labs/driftwatch/pkg/graph/drivers/sqlite"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
