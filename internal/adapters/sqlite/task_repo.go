// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/nudge/internal/ports/secondary"
)

// TaskRepository implements secondary.TaskRepository with SQLite. Expiry is
// emulated store-side: expired rows are invisible to readers and reaped by
// PurgeExpired.
type TaskRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTaskRepository creates a new SQLite task repository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db, now: time.Now}
}

const taskSelectCols = "id, title, description, due_at, targets, channel_id, message_id, permalink, created_at, expires_at"

// scanTask scans a task row into a TaskRecord.
func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*secondary.TaskRecord, error) {
	var (
		desc      sql.NullString
		permalink sql.NullString
		targets   string
	)

	record := &secondary.TaskRecord{}
	err := scanner.Scan(
		&record.ID, &record.Title, &desc, &record.DueAt, &targets,
		&record.ChannelID, &record.MessageID, &permalink,
		&record.CreatedAt, &record.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	record.Description = desc.String
	record.Permalink = permalink.String
	if err := json.Unmarshal([]byte(targets), &record.Targets); err != nil {
		return nil, fmt.Errorf("failed to decode targets: %w", err)
	}

	record.DueAt = record.DueAt.UTC()
	record.CreatedAt = record.CreatedAt.UTC()
	record.ExpiresAt = record.ExpiresAt.UTC()
	return record, nil
}

// Create persists a new task record.
func (r *TaskRepository) Create(ctx context.Context, task *secondary.TaskRecord) error {
	var desc, permalink sql.NullString
	if task.Description != "" {
		desc = sql.NullString{String: task.Description, Valid: true}
	}
	if task.Permalink != "" {
		permalink = sql.NullString{String: task.Permalink, Valid: true}
	}

	targets, err := json.Marshal(task.Targets)
	if err != nil {
		return fmt.Errorf("failed to encode targets: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO tasks (id, title, description, due_at, targets, channel_id, message_id, permalink, created_at, expires_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		task.ID, task.Title, desc, task.DueAt.UTC(), string(targets),
		task.ChannelID, task.MessageID, permalink,
		task.CreatedAt.UTC(), task.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID retrieves a live task record by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*secondary.TaskRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskSelectCols+" FROM tasks WHERE id = ? AND expires_at > ?",
		id, r.now().UTC(),
	)

	record, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, secondary.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return record, nil
}

// List retrieves all live task records, newest first.
func (r *TaskRepository) List(ctx context.Context) ([]*secondary.TaskRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskSelectCols+" FROM tasks WHERE expires_at > ? ORDER BY created_at DESC",
		r.now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var records []*secondary.TaskRecord
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return records, nil
}

// Ping checks the database connection.
func (r *TaskRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// PurgeExpired deletes rows past their expiry. Returns the number reaped.
func (r *TaskRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM tasks WHERE expires_at <= ?", r.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired tasks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged tasks: %w", err)
	}
	return n, nil
}

// Ensure TaskRepository implements the interface
var _ secondary.TaskRepository = (*TaskRepository)(nil)
