package stores

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteJournal implements Journal on a local SQLite database.
type SQLiteJournal struct {
	db   *sql.DB
	path string
}

// NewSQLiteJournal creates a journal backed by the database at path.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	return &SQLiteJournal{path: path}, nil
}

// Init opens the database, enables WAL mode and applies migrations.
func (j *SQLiteJournal) Init(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", j.path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping journal: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return fmt.Errorf("migrate journal: %w", err)
	}

	j.db = db
	return nil
}

func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close releases the database.
func (j *SQLiteJournal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// BeginRun records the start of a bootstrap run.
func (j *SQLiteJournal) BeginRun(ctx context.Context, run *Run) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (id, target, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Target, string(run.Status), run.StartedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record run start: %w", err)
	}
	return nil
}

// FinishRun records a run's terminal status and completion time.
func (j *SQLiteJournal) FinishRun(ctx context.Context, runID string, status RunStatus, runErr error) error {
	var errText *string
	if runErr != nil {
		s := runErr.Error()
		errText = &s
	}
	_, err := j.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(status), time.Now().UTC(), errText, runID,
	)
	if err != nil {
		return fmt.Errorf("record run completion: %w", err)
	}
	return nil
}

// RecordStage appends one stage outcome to a run.
func (j *SQLiteJournal) RecordStage(ctx context.Context, record *StageRecord) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO stage_records (run_id, position, stage, status, message, duration_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.RunID, record.Position, record.Stage, string(record.Status),
		record.Message, record.Duration.Milliseconds(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record stage %s: %w", record.Stage, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (j *SQLiteJournal) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, target, status, started_at, completed_at, error
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var status string
		var completedAt sql.NullTime
		var errText sql.NullString
		if err := rows.Scan(&run.ID, &run.Target, &status, &run.StartedAt, &completedAt, &errText); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Status = RunStatus(status)
		if completedAt.Valid {
			t := completedAt.Time
			run.CompletedAt = &t
		}
		if errText.Valid {
			s := errText.String
			run.Error = &s
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// StagesForRun returns a run's stage records in pipeline order.
func (j *SQLiteJournal) StagesForRun(ctx context.Context, runID string) ([]*StageRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT run_id, position, stage, status, message, duration_ms, recorded_at
		 FROM stage_records WHERE run_id = ? ORDER BY position ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	var records []*StageRecord
	for rows.Next() {
		record := &StageRecord{}
		var status string
		var durationMS int64
		if err := rows.Scan(&record.RunID, &record.Position, &record.Stage, &status,
			&record.Message, &durationMS, &record.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan stage record: %w", err)
		}
		record.Status = StageStatus(status)
		record.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, record)
	}
	return records, rows.Err()
}
