package config

// Default configuration values.
const (
	DefaultDetectorsDir = "detectors"
	DefaultGraphType    = "neo4j"
	DefaultNeo4jURI     = "bolt://localhost:7687"
)

// ApplyDefaults applies default values to a ProjectConfig.
func ApplyDefaults(c *ProjectConfig) {
	if c == nil {
		return
	}
	if c.DetectorsDir == "" {
		c.DetectorsDir = DefaultDetectorsDir
	}
}

// ApplyGraphDefaults applies default values to a GraphConfig based on the
// backend type.
func ApplyGraphDefaults(g *GraphConfig) {
	if g == nil {
		return
	}
	if g.Type == "" {
		g.Type = DefaultGraphType
	}

	// Apply type-specific defaults
	switch g.Type {
	case "neo4j", "bolt":
		if g.URI == "" && g.Host == "" {
			g.URI = DefaultNeo4jURI
		}
	case "postgres":
		if g.Port == 0 {
			g.Port = 5432
		}
		if g.Host == "" && g.URI == "" {
			g.Host = "localhost"
		}
	}
}
