package drift

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/baseline-labs/driftwatch/pkg/graph"
)

// Detector evaluates one validation query against a graph session and
// reports the result rows its baseline does not accept.
//
// A Detector is not safe for concurrent use. Run detectors that share a
// persisted document from a single goroutine, or make each goroutine load
// its own copy.
type Detector struct {
	name       string
	query      string
	properties []string
	typ        Type
	baseline   *Baseline
}

// NewDetector builds a detector with an empty baseline.
func NewDetector(name, query string, properties []string, typ Type) (*Detector, error) {
	if name == "" {
		return nil, errors.New("detector name must not be empty")
	}
	if query == "" {
		return nil, fmt.Errorf("detector %q: validation query must not be empty", name)
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("detector %q: invalid detector type %d", name, int(typ))
	}
	return &Detector{
		name:       name,
		query:      query,
		properties: properties,
		typ:        typ,
		baseline:   NewBaseline(nil),
	}, nil
}

// Name returns the detector's unique name.
func (d *Detector) Name() string { return d.name }

// Query returns the validation query. The engine never parses it; the graph
// session decides what the text means.
func (d *Detector) Query() string { return d.query }

// Properties returns the labels describing what the query's columns mean.
func (d *Detector) Properties() []string {
	out := make([]string, len(d.properties))
	copy(out, d.properties)
	return out
}

// Type returns the detector type.
func (d *Detector) Type() Type { return d.typ }

// Baseline returns the detector's accepted rows.
func (d *Detector) Baseline() *Baseline { return d.baseline }

// Detect runs the validation query and yields an Insight for every result
// row the baseline does not accept. Insights carry the values the query
// returned, not their normalized form.
//
// With updateBaseline set, each drifted row is reported once per run even if
// the query returns it several times, and all reported rows join the
// baseline when the sequence is consumed to completion. Breaking out early,
// a query failure, and a normalization failure all leave the baseline
// untouched. Without updateBaseline the baseline never changes and repeated
// drifted rows are reported as often as the query returns them.
//
// Errors surface as the second element of the sequence: a
// QueryExecutionError when the session rejects the query or fails while
// streaming results, a NormalizationError when a value cannot be reduced to
// its comparable form. The first error ends the sequence.
func (d *Detector) Detect(ctx context.Context, sess graph.Session, updateBaseline bool) iter.Seq2[*Insight, error] {
	return func(yield func(*Insight, error) bool) {
		res, err := sess.Run(ctx, d.query)
		if err != nil {
			yield(nil, &QueryExecutionError{Detector: d.name, Query: d.query, Err: err})
			return
		}
		defer func() { _ = res.Close() }()

		var staged [][]string
		var stagedKeys map[string]struct{}

		for res.Next(ctx) {
			rec := res.Record()
			row, err := Normalize(rec)
			if err != nil {
				var nerr *NormalizationError
				if errors.As(err, &nerr) {
					nerr.Detector = d.name
				}
				yield(nil, err)
				return
			}
			if d.baseline.Contains(row) {
				continue
			}
			if updateBaseline {
				key := rowKey(row)
				if _, ok := stagedKeys[key]; ok {
					continue
				}
				if stagedKeys == nil {
					stagedKeys = make(map[string]struct{})
				}
				stagedKeys[key] = struct{}{}
				staged = append(staged, row)
			}
			if !yield(newInsight(rec), nil) {
				return
			}
		}
		if err := res.Err(); err != nil {
			yield(nil, &QueryExecutionError{Detector: d.name, Query: d.query, Err: err})
			return
		}

		for _, row := range staged {
			d.baseline.Add(row)
		}
	}
}

// Refresh replaces the baseline wholesale with the validation query's
// current result set and returns the new baseline size. Nothing is removed
// or added piecemeal: rows absent from the results drop out, every returned
// row becomes accepted. On any error the existing baseline stays as it was.
func (d *Detector) Refresh(ctx context.Context, sess graph.Session) (int, error) {
	res, err := sess.Run(ctx, d.query)
	if err != nil {
		return 0, &QueryExecutionError{Detector: d.name, Query: d.query, Err: err}
	}
	defer func() { _ = res.Close() }()

	var rows [][]string
	for res.Next(ctx) {
		row, err := Normalize(res.Record())
		if err != nil {
			var nerr *NormalizationError
			if errors.As(err, &nerr) {
				nerr.Detector = d.name
			}
			return 0, err
		}
		rows = append(rows, row)
	}
	if err := res.Err(); err != nil {
		return 0, &QueryExecutionError{Detector: d.name, Query: d.query, Err: err}
	}

	d.baseline.Replace(rows)
	return d.baseline.Len(), nil
}
