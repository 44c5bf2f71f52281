// Package runner drives detector documents through the drift engine: it
// discovers documents in a directory, runs each detector against a graph
// session, persists baseline changes, and records run history.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/baseline-labs/driftwatch/internal/history"
	"github.com/baseline-labs/driftwatch/pkg/drift"
	"github.com/baseline-labs/driftwatch/pkg/graph"
)

// Options configures one runner invocation.
type Options struct {
	Update      bool     // absorb reported rows and save the changed documents
	Environment string   // recorded in run history
	Select      []string // detector names to run; empty runs all
}

// Finding is one drifted row tagged with the detector that reported it.
type Finding struct {
	Detector   string
	Path       string
	Properties []string
	Insight    *drift.Insight
}

// Result summarizes one invocation.
type Result struct {
	Run       *history.Run // nil when history is disabled or unavailable
	Findings  []Finding
	Errors    []FileError
	Detectors int      // detectors executed
	Saved     []string // documents rewritten after baseline changes
	Duration  time.Duration
}

// HasErrors reports whether any documents were skipped.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Summary returns a human-readable summary.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"Detectors: %d | Drifted: %d | Saved: %d | Skipped files: %d | Duration: %s",
		r.Detectors, len(r.Findings), len(r.Saved), len(r.Errors),
		r.Duration.Round(time.Millisecond),
	)
}

// Runner executes detectors loaded from a directory against a graph session.
type Runner struct {
	sess   graph.Session
	store  *history.Store
	logger *slog.Logger
}

// New builds a runner. store may be nil to disable run history.
func New(sess graph.Session, store *history.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{sess: sess, store: store, logger: logger}
}

// DetectDir runs every selected detector under dir and collects the rows
// their baselines do not accept. With opts.Update set, reported rows join
// their baselines and the changed documents are saved in place.
//
// Unloadable documents are skipped and reported in the result. A query or
// normalization failure aborts the run; the error names the detector.
func (r *Runner) DetectDir(ctx context.Context, dir string, opts Options) (*Result, error) {
	start := time.Now()
	r.logger.Info("starting drift detection", "dir", dir, "update", opts.Update)

	result := &Result{}
	loaded, err := r.load(dir, result)
	if err != nil {
		return nil, err
	}

	mode := history.ModeReport
	if opts.Update {
		mode = history.ModeUpdate
	}
	r.beginRun(result, opts.Environment, mode)

	runErr := r.detect(ctx, loaded, opts, result)
	r.completeRun(result, runErr)
	result.Duration = time.Since(start)

	if runErr != nil {
		r.logger.Error("drift detection failed", "error", runErr)
		return result, runErr
	}
	r.logger.Info("drift detection finished",
		"detectors", result.Detectors, "drifted", len(result.Findings))
	return result, nil
}

// RefreshDir replaces the baseline of every selected detector under dir
// with its query's current result set and saves the documents.
func (r *Runner) RefreshDir(ctx context.Context, dir string, opts Options) (*Result, error) {
	start := time.Now()
	r.logger.Info("starting baseline refresh", "dir", dir)

	result := &Result{}
	loaded, err := r.load(dir, result)
	if err != nil {
		return nil, err
	}

	r.beginRun(result, opts.Environment, history.ModeRefresh)

	runErr := r.refresh(ctx, loaded, opts, result)
	r.completeRun(result, runErr)
	result.Duration = time.Since(start)

	if runErr != nil {
		r.logger.Error("baseline refresh failed", "error", runErr)
		return result, runErr
	}
	r.logger.Info("baseline refresh finished", "detectors", result.Detectors)
	return result, nil
}

func (r *Runner) load(dir string, result *Result) ([]Loaded, error) {
	loaded, fileErrors, err := LoadAll(dir)
	if err != nil {
		return nil, err
	}
	result.Errors = fileErrors
	for _, fe := range fileErrors {
		r.logger.Warn("skipping detector document", "path", fe.Path, "error", fe.Message)
	}
	return loaded, nil
}

func (r *Runner) detect(ctx context.Context, loaded []Loaded, opts Options, result *Result) error {
	for _, l := range loaded {
		if !selected(l.Detector.Name(), opts.Select) {
			continue
		}
		result.Detectors++
		r.logger.Debug("running detector", "name", l.Detector.Name(), "path", l.Path)

		drifted := 0
		for insight, err := range l.Detector.Detect(ctx, r.sess, opts.Update) {
			if err != nil {
				return err
			}
			drifted++
			finding := Finding{
				Detector:   l.Detector.Name(),
				Path:       l.Path,
				Properties: l.Detector.Properties(),
				Insight:    insight,
			}
			result.Findings = append(result.Findings, finding)
			r.recordFinding(result, finding)
		}
		r.logger.Debug("detector finished", "name", l.Detector.Name(), "drifted", drifted)

		if opts.Update && drifted > 0 {
			if err := drift.SaveFile(l.Detector, l.Path); err != nil {
				return err
			}
			result.Saved = append(result.Saved, l.Path)
		}
	}
	return nil
}

func (r *Runner) refresh(ctx context.Context, loaded []Loaded, opts Options, result *Result) error {
	for _, l := range loaded {
		if !selected(l.Detector.Name(), opts.Select) {
			continue
		}
		result.Detectors++

		rows, err := l.Detector.Refresh(ctx, r.sess)
		if err != nil {
			return err
		}
		r.logger.Debug("refreshed baseline", "name", l.Detector.Name(), "rows", rows)

		if err := drift.SaveFile(l.Detector, l.Path); err != nil {
			return err
		}
		result.Saved = append(result.Saved, l.Path)
	}
	return nil
}

// beginRun records the run start. History is best-effort: a recording
// failure downgrades to a warning and the detection proceeds without it.
func (r *Runner) beginRun(result *Result, environment, mode string) {
	if r.store == nil {
		return
	}
	run, err := r.store.BeginRun(environment, mode)
	if err != nil {
		r.logger.Warn("failed to record run start", "error", err)
		return
	}
	result.Run = run
}

func (r *Runner) completeRun(result *Result, runErr error) {
	if r.store == nil || result.Run == nil {
		return
	}
	status := history.RunStatusCompleted
	msg := ""
	if runErr != nil {
		status = history.RunStatusFailed
		msg = runErr.Error()
	}
	if err := r.store.CompleteRun(result.Run.ID, status, result.Detectors, len(result.Findings), msg); err != nil {
		r.logger.Warn("failed to record run completion", "error", err)
	}
}

func (r *Runner) recordFinding(result *Result, f Finding) {
	if r.store == nil || result.Run == nil {
		return
	}
	if err := r.store.RecordFinding(result.Run.ID, f.Detector, f.Insight); err != nil {
		r.logger.Warn("failed to record finding", "error", err)
	}
}

func selected(name string, sel []string) bool {
	if len(sel) == 0 {
		return true
	}
	return slices.Contains(sel, name)
}
