package graph

// Config describes how to reach an asset graph. Drivers consume the fields
// relevant to their backend and ignore the rest: the neo4j driver wants URI
// and credentials, SQL drivers want host/port/database or a file path in
// Database.
type Config struct {
	// Type selects a registered driver ("neo4j", "postgres", "duckdb",
	// "sqlite", ...).
	Type string

	// URI is a full connection URI for drivers that take one
	// (e.g. bolt://host:7687).
	URI string

	Host     string
	Port     int
	Database string
	Username string
	Password string

	// Options carries driver-specific settings (e.g. sslmode for postgres).
	Options map[string]string
}
