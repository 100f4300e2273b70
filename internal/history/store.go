// Package history records completed runs in a local SQLite database. The
// store is a peripheral collaborator: the execution core stays stateless and
// commands write a summary row only after a run finishes.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/maestro/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Run kinds stored in the runs table.
const (
	KindTask     = "task"
	KindParallel = "parallel"
	KindWorkflow = "workflow"
)

// Run is one recorded command execution.
type Run struct {
	ID              string
	Kind            string
	Name            string
	Status          string
	StepsCompleted  int
	StepsFailed     int
	DurationSeconds float64
	Summary         map[string]interface{}
	CreatedAt       time.Time
}

// Store manages the SQLite run history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath and
// initializes the schema. ":memory:" is accepted for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout goes first so the remaining pragmas wait on locks held by
	// a concurrent maestro process.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun inserts a run row and returns its generated ID.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Summary == nil {
		run.Summary = map[string]interface{}{}
	}
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return "", fmt.Errorf("encode run summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, name, status, steps_completed, steps_failed, duration_seconds, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.Name, run.Status,
		run.StepsCompleted, run.StepsFailed, run.DurationSeconds, string(summaryJSON))
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return run.ID, nil
}

// RecordTaskRun records a single-task execution.
func (s *Store) RecordTaskRun(ctx context.Context, result models.AgentResult) (string, error) {
	completed, failed := 1, 0
	if result.Failed() {
		completed, failed = 0, 1
	}
	return s.RecordRun(ctx, Run{
		Kind:            KindTask,
		Name:            result.Agent + "." + result.Action,
		Status:          result.Status,
		StepsCompleted:  completed,
		StepsFailed:     failed,
		DurationSeconds: result.DurationSeconds,
		Summary:         map[string]interface{}{"error": result.Error},
	})
}

// RecordWorkflowRun records a completed workflow.
func (s *Store) RecordWorkflowRun(ctx context.Context, result models.WorkflowResult) (string, error) {
	status := models.StatusSuccess
	if result.StepsFailed > 0 || !result.QualityGatesPassed {
		status = models.StatusError
	}
	return s.RecordRun(ctx, Run{
		Kind:            KindWorkflow,
		Name:            result.WorkflowName,
		Status:          status,
		StepsCompleted:  result.StepsCompleted,
		StepsFailed:     result.StepsFailed,
		DurationSeconds: result.TotalDuration,
		Summary:         result.Summary,
	})
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means a
// default of 20.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, name, status, steps_completed, steps_failed, duration_seconds, summary, created_at
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var summaryJSON string
		if err := rows.Scan(&run.ID, &run.Kind, &run.Name, &run.Status,
			&run.StepsCompleted, &run.StepsFailed, &run.DurationSeconds,
			&summaryJSON, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
			run.Summary = map[string]interface{}{}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Prune deletes runs older than the retention window and returns the number
// of rows removed.
func (s *Store) Prune(ctx context.Context, keepDays int) (int64, error) {
	if keepDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -keepDays).UTC()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}
