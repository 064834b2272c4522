// Package primary defines the primary ports (driving interfaces) for the
// nudge application, plus the request/response types they exchange.
package primary

import (
	"context"
	"time"
)

// TaskService is the primary port for task creation and retrieval.
type TaskService interface {
	// CreateTask validates the request, posts the announcement, persists
	// the task record and registers its reminder and escalation triggers.
	CreateTask(ctx context.Context, req CreateTaskRequest) (*CreateTaskResponse, error)

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, taskID string) (*Task, error)

	// ListTasks lists unexpired tasks, newest first.
	ListTasks(ctx context.Context) ([]*Task, error)
}

// EscalationService is the primary port for trigger-time escalation runs.
type EscalationService interface {
	// Escalate evaluates acknowledgment state for the task and messages
	// every assignee who has not acknowledged it. A missing record is a
	// no-op success, not an error.
	Escalate(ctx context.Context, taskID string) (*EscalationResult, error)
}

// ReminderService is the primary port for trigger-time channel reminders.
type ReminderService interface {
	// Remind posts a reminder into the announcement channel. A missing
	// record is a no-op success. mode distinguishes the fast cadence in
	// logs only.
	Remind(ctx context.Context, taskID, mode string) error
}

// PolicyOffset is one entry of a custom reminder policy, measured backward
// from the due instant.
type PolicyOffset struct {
	Amount int    `json:"amount"`
	Unit   string `json:"unit"` // minutes | hours | days | weeks
}

// CreateTaskRequest carries the inbound creation payload.
type CreateTaskRequest struct {
	Title       string
	Description string
	DueDate     string
	Targets     string

	// EstimatedDurationHours anchors the final check at dueAt minus this
	// many hours. Zero means the configured default.
	EstimatedDurationHours float64

	Comment string
	Link    string

	// Policy is the custom reminder policy; empty means the default
	// three-point schedule.
	Policy []PolicyOffset
}

// CreateTaskResponse is returned on successful creation.
type CreateTaskResponse struct {
	TaskID    string
	MessageID string
}

// Task is the read model of a task record.
type Task struct {
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

// EscalationResult reports what a single evaluation run did.
type EscalationResult struct {
	// Skipped is true when the task record was absent (expired or never
	// fully created) and the run was a no-op.
	Skipped bool

	// FullyAcknowledged is true when no individual target was missing.
	FullyAcknowledged bool

	// Missing lists individual targets without the completion marker.
	Missing []string

	// Escalated lists recipients a direct message was actually delivered
	// to; a subset of Missing when some deliveries fail.
	Escalated []string
}
