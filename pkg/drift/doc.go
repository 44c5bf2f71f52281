// Package drift implements baseline drift detection for asset graphs.
//
// A Detector owns a validation query, a detector type tag, and the baseline
// of previously accepted result rows (its "expectations"). Detect classifies
// each live result row as known or drifted and yields insights for the
// drifted ones; Refresh re-captures the baseline wholesale. LoadFile and
// SaveFile persist detector state as structured documents.
//
// The engine consumes a graph.Session, treats the validation query as an
// opaque string, never retries, and never writes durable storage on its own;
// persistence is the caller's call.
package drift
