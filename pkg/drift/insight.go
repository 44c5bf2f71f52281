package drift

import "github.com/baseline-labs/driftwatch/pkg/graph"

// Insight is one drifted result row. It carries the column names and the
// values as the query returned them, before normalization, so reports show
// operators what the graph actually holds.
type Insight struct {
	Keys   []string `json:"keys"`
	Values []any    `json:"values"`
}

func newInsight(rec *graph.Record) *Insight {
	keys := make([]string, len(rec.Keys))
	copy(keys, rec.Keys)
	values := make([]any, len(rec.Values))
	copy(values, rec.Values)
	return &Insight{Keys: keys, Values: values}
}

// Get returns the value of the named column and whether the column exists.
func (in *Insight) Get(key string) (any, bool) {
	for i, k := range in.Keys {
		if k == key {
			return in.Values[i], true
		}
	}
	return nil, false
}

// AsMap returns the insight as a column-to-value map.
func (in *Insight) AsMap() map[string]any {
	m := make(map[string]any, len(in.Keys))
	for i, k := range in.Keys {
		m[k] = in.Values[i]
	}
	return m
}
