// Package graph defines the query session contract driftwatch uses to talk
// to an asset graph, plus a registry of session drivers.
//
// A Session executes an opaque validation query and returns a Result cursor
// over records. The engine never parses or rewrites queries; whatever query
// language the backing store speaks is passed through verbatim. Concrete
// drivers live in pkg/graph/drivers/ subdirectories and register themselves
// via init(); importing a driver package enables it.
package graph

import "context"

// Record is one query result row: named fields in column order. Values are
// scalars or flat sequences of scalars, exactly as produced by the driver.
type Record struct {
	Keys   []string
	Values []any
}

// Get returns the value for the named field and whether the field exists.
func (r *Record) Get(key string) (any, bool) {
	for i, k := range r.Keys {
		if k == key {
			return r.Values[i], true
		}
	}
	return nil, false
}

// AsMap returns the record as a field-name to value mapping.
func (r *Record) AsMap() map[string]any {
	m := make(map[string]any, len(r.Keys))
	for i, k := range r.Keys {
		m[k] = r.Values[i]
	}
	return m
}

// Result is a cursor over the records of one query execution. It follows the
// database/sql iteration shape: Next advances and reports whether a record is
// available, Record returns the current record, Err reports the first error
// encountered during iteration, and Close releases the cursor. Close is safe
// to call more than once.
type Result interface {
	Next(ctx context.Context) bool
	Record() *Record
	Err() error
	Close() error
}

// Session executes opaque queries against an asset graph. Sessions are
// stateless per call: no transaction semantics are assumed by consumers.
// A Session is not safe for concurrent use unless its driver documents
// otherwise.
type Session interface {
	// Run executes the query and returns a cursor over its results.
	Run(ctx context.Context, query string) (Result, error)

	// Close releases the session and its underlying connection.
	Close(ctx context.Context) error
}
