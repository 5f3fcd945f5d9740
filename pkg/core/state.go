package core

import "time"

// Store defines the interface for compile-run history persistence.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	CreateRun(source, kernel string, strict bool) (*Run, error)
	GetRun(id string) (*Run, error)
	CompleteRun(id string, status RunStatus, instructions int, errMsg string) error
	ListRuns(limit int) ([]*Run, error)
}

// RunStatus represents the status of a compile run.
type RunStatus string

// Run status constants.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run represents a single compilation of one SQUINT source file.
type Run struct {
	ID           string
	Source       string
	Kernel       string
	Strict       bool
	Status       RunStatus
	Instructions int
	StartedAt    time.Time
	CompletedAt  *time.Time
	Error        string
}
