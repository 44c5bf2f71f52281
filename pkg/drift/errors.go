package drift

import "fmt"

// QueryExecutionError reports that the graph session failed while executing
// a detector's validation query. Fatal for the current Detect or Refresh
// call; the baseline is left untouched.
type QueryExecutionError struct {
	Detector string
	Query    string
	Err      error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("detector %q: validation query failed: %v", e.Detector, e.Err)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }

// NormalizationError reports a result value that cannot be reduced to a
// comparable scalar. Detect and Refresh abort on the first such value rather
// than skipping the row.
type NormalizationError struct {
	Detector string
	Column   string
	Value    any
}

func (e *NormalizationError) Error() string {
	msg := fmt.Sprintf("cannot normalize value of type %T in column %q", e.Value, e.Column)
	if e.Detector != "" {
		msg = fmt.Sprintf("detector %q: %s", e.Detector, msg)
	}
	return msg
}

// SchemaValidationError reports a malformed persisted detector document:
// unparseable content, a missing or mistyped field, an unknown field, or an
// unknown detector type code.
type SchemaValidationError struct {
	Path   string // source file, when known
	Field  string // offending field, when known
	Reason string
}

func (e *SchemaValidationError) Error() string {
	msg := "invalid detector document"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	return msg + ": " + e.Reason
}
