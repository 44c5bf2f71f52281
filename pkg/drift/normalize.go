package drift

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/baseline-labs/driftwatch/pkg/graph"
)

// Delimiter joins the elements of a multi-valued field into one comparable
// string. Elements are not escaped, so an element that itself contains the
// delimiter makes the join ambiguous; this is kept as-is because escaping
// would change the normalized form of every already-persisted baseline.
const Delimiter = "|"

// Normalize reduces one record to the canonical row used for baseline
// comparison: one string per column, in column order. Sequence values join
// their elements with Delimiter, preserving element order (element order is
// significant). Scalars render deterministically; nil renders as the empty
// string. Pure: the same record always produces the same row.
func Normalize(rec *graph.Record) ([]string, error) {
	row := make([]string, len(rec.Values))
	for i, v := range rec.Values {
		s, err := normalizeValue(v)
		if err != nil {
			var nerr *NormalizationError
			if errors.As(err, &nerr) && i < len(rec.Keys) {
				nerr.Column = rec.Keys[i]
			}
			return nil, err
		}
		row[i] = s
	}
	return row, nil
}

// normalizeValue flattens a single field value to its comparable string.
func normalizeValue(v any) (string, error) {
	switch seq := v.(type) {
	case []any:
		parts := make([]string, len(seq))
		for i, el := range seq {
			s, ok := scalarString(el)
			if !ok {
				return "", &NormalizationError{Value: el}
			}
			parts[i] = s
		}
		return strings.Join(parts, Delimiter), nil
	case []string:
		return strings.Join(seq, Delimiter), nil
	default:
		s, ok := scalarString(v)
		if !ok {
			return "", &NormalizationError{Value: v}
		}
		return s, nil
	}
}

// scalarString renders one scalar deterministically across runs and drivers.
func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return strconv.Itoa(x), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), true
	default:
		return "", false
	}
}
