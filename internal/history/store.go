package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/baseline-labs/driftwatch/pkg/drift"
)

// Store records runs and findings in SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (creating if needed) the history database at path and brings
// its schema up to date. Use ":memory:" for a throwaway database.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if path == ":memory:" {
		// Every pool connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	s := &Store{db: db, path: path, logger: logger}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func generateID() string {
	return uuid.New().String()
}

// BeginRun records the start of an engine invocation.
func (s *Store) BeginRun(environment, mode string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("history database not opened")
	}

	run := &Run{
		ID:          generateID(),
		Environment: environment,
		Mode:        mode,
		Status:      RunStatusRunning,
		StartedAt:   time.Now().UTC(),
	}
	s.logger.Debug("recording run start",
		slog.String("id", run.ID),
		slog.String("environment", environment),
		slog.String("mode", mode))

	_, err := s.db.Exec(
		`INSERT INTO runs (id, environment, mode, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Environment, run.Mode, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run finished with its totals.
func (s *Store) CompleteRun(id string, status RunStatus, detectors, drifted int, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("history database not opened")
	}

	now := time.Now().UTC()
	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}

	result, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, detectors = ?, drifted = ?, error = ? WHERE id = ?`,
		string(status), now, detectors, drifted, errorPtr, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// RecordFinding stores one drifted row under a run. Column names and values
// are serialized as JSON so rows of any width fit the same schema.
func (s *Store) RecordFinding(runID, detector string, insight *drift.Insight) error {
	if s.db == nil {
		return fmt.Errorf("history database not opened")
	}

	columns, err := json.Marshal(insight.Keys)
	if err != nil {
		return fmt.Errorf("failed to encode finding columns: %w", err)
	}
	values, err := json.Marshal(insight.Values)
	if err != nil {
		return fmt.Errorf("failed to encode finding values: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO findings (id, run_id, detector, columns, row_values, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		generateID(), runID, detector, string(columns), string(values), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record finding: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("history database not opened")
	}

	run, err := scanRun(s.db.QueryRow(
		`SELECT id, environment, mode, status, started_at, completed_at, detectors, drifted, error
		 FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first. An empty environment
// matches every environment; limit <= 0 means no limit.
func (s *Store) ListRuns(environment string, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("history database not opened")
	}

	query := `SELECT id, environment, mode, status, started_at, completed_at, detectors, drifted, error
		 FROM runs`
	args := []any{}
	if environment != "" {
		query += ` WHERE environment = ?`
		args = append(args, environment)
	}
	query += ` ORDER BY started_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListFindings returns the findings recorded under a run, oldest first.
func (s *Store) ListFindings(runID string) ([]*Finding, error) {
	if s.db == nil {
		return nil, fmt.Errorf("history database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, detector, columns, row_values, created_at
		 FROM findings WHERE run_id = ? ORDER BY created_at, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	defer rows.Close()

	var findings []*Finding
	for rows.Next() {
		f := &Finding{}
		var columns, values string
		if err := rows.Scan(&f.ID, &f.RunID, &f.Detector, &columns, &values, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		if err := json.Unmarshal([]byte(columns), &f.Columns); err != nil {
			return nil, fmt.Errorf("failed to decode finding columns: %w", err)
		}
		if err := json.Unmarshal([]byte(values), &f.Values); err != nil {
			return nil, fmt.Errorf("failed to decode finding values: %w", err)
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var status string
	var completedAt sql.NullTime
	var errMsg sql.NullString

	err := row.Scan(&run.ID, &run.Environment, &run.Mode, &status, &run.StartedAt,
		&completedAt, &run.Detectors, &run.Drifted, &errMsg)
	if err != nil {
		return nil, err
	}

	run.Status = RunStatus(status)
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return run, nil
}
