// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// external systems.
package secondary

import (
	"context"
	"errors"
	"time"
)

// ErrTaskNotFound is returned when no live record exists for a task ID.
// The escalation evaluator treats it as a no-op, since triggers may outlive
// the record they reference.
var ErrTaskNotFound = errors.New("task not found")

// TaskRepository defines the secondary port for task record persistence.
// Records are written once at creation and read-only thereafter; expiry is
// honored by the store's own lifecycle.
type TaskRepository interface {
	// Create persists a new task record.
	Create(ctx context.Context, task *TaskRecord) error

	// GetByID retrieves a live task record, or ErrTaskNotFound when the
	// record is absent or expired.
	GetByID(ctx context.Context, id string) (*TaskRecord, error)

	// List retrieves all live task records, newest first.
	List(ctx context.Context) ([]*TaskRecord, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

// TaskRecord represents a task as stored in persistence.
type TaskRecord struct {
	ID          string
	Title       string
	Description string
	DueAt       time.Time
	Targets     []string
	ChannelID   string
	MessageID   string
	Permalink   string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}
