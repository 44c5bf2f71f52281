// Package graphtest provides a scripted in-memory graph.Session for tests.
package graphtest

import (
	"context"
	"sync"

	"github.com/baseline-labs/driftwatch/pkg/graph"
)

// Script describes the outcome of one Run call.
type Script struct {
	// Records are yielded in order.
	Records []*graph.Record

	// RunErr, if set, is returned by Run itself.
	RunErr error

	// IterErr, if set, surfaces from Result.Err after Records are exhausted,
	// simulating a mid-stream query failure.
	IterErr error
}

// Session replays scripts in call order; the last script repeats for any
// further calls. It records every query it sees.
type Session struct {
	mu      sync.Mutex
	scripts []Script
	calls   int

	// Queries holds every query string passed to Run, in order.
	Queries []string

	// Closed reports whether Close was called.
	Closed bool
}

// NewSession builds a scripted session. With no scripts every Run returns an
// empty result.
func NewSession(scripts ...Script) *Session {
	return &Session{scripts: scripts}
}

// Run returns the next scripted result.
func (s *Session) Run(_ context.Context, query string) (graph.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Queries = append(s.Queries, query)

	var script Script
	if len(s.scripts) > 0 {
		i := s.calls
		if i >= len(s.scripts) {
			i = len(s.scripts) - 1
		}
		script = s.scripts[i]
	}
	s.calls++

	if script.RunErr != nil {
		return nil, script.RunErr
	}
	return &result{records: script.Records, iterErr: script.IterErr}, nil
}

// Close marks the session closed.
func (s *Session) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// Calls reports how many times Run was invoked.
func (s *Session) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type result struct {
	records []*graph.Record
	iterErr error
	pos     int
	rec     *graph.Record
	err     error
}

func (r *result) Next(_ context.Context) bool {
	if r.err != nil {
		return false
	}
	if r.pos >= len(r.records) {
		r.err = r.iterErr
		return false
	}
	r.rec = r.records[r.pos]
	r.pos++
	return true
}

func (r *result) Record() *graph.Record { return r.rec }

func (r *result) Err() error { return r.err }

func (r *result) Close() error { return nil }

// Records builds records sharing one key set, one per value row.
func Records(keys []string, rows ...[]any) []*graph.Record {
	recs := make([]*graph.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, &graph.Record{Keys: keys, Values: row})
	}
	return recs
}

// Row is shorthand for a []any value row.
func Row(values ...any) []any { return values }

var _ graph.Session = (*Session)(nil)
