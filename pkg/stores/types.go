package stores

import (
	"context"
	"time"
)

// RunStatus represents the status of a bootstrap run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusAborted   RunStatus = "aborted"
)

// StageStatus represents the recorded outcome of one pipeline stage.
type StageStatus string

const (
	StageStatusCompleted StageStatus = "completed"
	StageStatusSkipped   StageStatus = "skipped"
	StageStatusWarning   StageStatus = "warning"
	StageStatusFailed    StageStatus = "failed"
)

// Run is one recorded bootstrap invocation.
type Run struct {
	ID          string     `json:"id"`
	Target      string     `json:"target"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
}

// StageRecord is the recorded outcome of one stage within a run.
type StageRecord struct {
	RunID      string        `json:"run_id"`
	Position   int           `json:"position"`
	Stage      string        `json:"stage"`
	Status     StageStatus   `json:"status"`
	Message    string        `json:"message,omitempty"`
	Duration   time.Duration `json:"duration"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// Journal persists bootstrap runs and their per-stage outcomes.
type Journal interface {
	// Init opens the journal and applies pending migrations.
	Init(ctx context.Context) error

	// Close releases the journal.
	Close() error

	// BeginRun records the start of a bootstrap run.
	BeginRun(ctx context.Context, run *Run) error

	// FinishRun records a run's terminal status.
	FinishRun(ctx context.Context, runID string, status RunStatus, runErr error) error

	// RecordStage appends one stage outcome to a run.
	RecordStage(ctx context.Context, record *StageRecord) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	// StagesForRun returns a run's stage records in pipeline order.
	StagesForRun(ctx context.Context, runID string) ([]*StageRecord, error)
}
