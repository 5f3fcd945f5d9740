package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/squint-lang/squint/pkg/core"
)

// SQLiteStore implements core.Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite run-history store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying connection for tests.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func generateID() string {
	return uuid.New().String()
}

// CreateRun records the start of a compile run.
func (s *SQLiteStore) CreateRun(source, kernel string, strict bool) (*core.Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &core.Run{
		ID:        generateID(),
		Source:    source,
		Kernel:    kernel,
		Strict:    strict,
		Status:    core.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, source, kernel, strict, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Kernel, run.Strict, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*core.Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &core.Run{}
	var completedAt sql.NullTime
	var errMsg sql.NullString

	err := s.db.QueryRow(
		`SELECT id, source, kernel, strict, status, instructions, started_at, completed_at, error
		 FROM runs WHERE id = ?`,
		id,
	).Scan(&run.ID, &run.Source, &run.Kernel, &run.Strict, &run.Status, &run.Instructions, &run.StartedAt, &completedAt, &errMsg)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}

	return run, nil
}

// CompleteRun marks a run as finished with the given status and the
// number of instructions emitted.
func (s *SQLiteStore) CompleteRun(id string, status core.RunStatus, instructions int, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}

	result, err := s.db.Exec(
		`UPDATE runs SET status = ?, instructions = ?, completed_at = ?, error = ? WHERE id = ?`,
		status, instructions, now, errorPtr, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return nil
}

// ListRuns retrieves the most recent runs, newest first. A limit of 0
// or less means no limit.
func (s *SQLiteStore) ListRuns(limit int) ([]*core.Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	query := `SELECT id, source, kernel, strict, status, instructions, started_at, completed_at, error
	          FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*core.Run
	for rows.Next() {
		run := &core.Run{}
		var completedAt sql.NullTime
		var errMsg sql.NullString

		err := rows.Scan(&run.ID, &run.Source, &run.Kernel, &run.Strict, &run.Status, &run.Instructions, &run.StartedAt, &completedAt, &errMsg)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if completedAt.Valid {
			run.CompletedAt = &completedAt.Time
		}
		if errMsg.Valid {
			run.Error = errMsg.String
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Ensure SQLiteStore implements the store interface
var _ core.Store = (*SQLiteStore)(nil)
