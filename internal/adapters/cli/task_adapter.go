// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/nudge/internal/ports/primary"
)

// TaskAdapter is a thin adapter that translates CLI operations to service
// calls. It depends only on the service interfaces, enabling easy testing
// with mocks.
type TaskAdapter struct {
	tasks       primary.TaskService
	escalations primary.EscalationService
	out         io.Writer
}

// NewTaskAdapter creates a new TaskAdapter with the given services.
func NewTaskAdapter(tasks primary.TaskService, escalations primary.EscalationService, out io.Writer) *TaskAdapter {
	return &TaskAdapter{
		tasks:       tasks,
		escalations: escalations,
		out:         out,
	}
}

// Create creates a new task.
func (a *TaskAdapter) Create(ctx context.Context, req primary.CreateTaskRequest) error {
	resp, err := a.tasks.CreateTask(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created task %s (announcement %s)\n", resp.TaskID, resp.MessageID)
	return nil
}

// Show displays details for a single task.
func (a *TaskAdapter) Show(ctx context.Context, taskID string) error {
	task, err := a.tasks.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}

	fmt.Fprintf(a.out, "\nTask:    %s\n", task.ID)
	fmt.Fprintf(a.out, "Title:   %s\n", task.Title)
	if task.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", task.Description)
	}
	fmt.Fprintf(a.out, "Due:     %s\n", task.DueAt.Format(time.RFC3339))
	fmt.Fprintf(a.out, "Targets: %s\n", strings.Join(task.Targets, ", "))
	fmt.Fprintf(a.out, "Channel: %s\n", task.ChannelID)
	if task.Permalink != "" {
		fmt.Fprintf(a.out, "Link:    %s\n", task.Permalink)
	}
	fmt.Fprintf(a.out, "Expires: %s\n", task.ExpiresAt.Format(time.RFC3339))
	fmt.Fprintln(a.out)

	return nil
}

// List lists unexpired tasks, newest first.
func (a *TaskAdapter) List(ctx context.Context) error {
	tasks, err := a.tasks.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-38s %-22s %s\n", "ID", "DUE", "TITLE")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, task := range tasks {
		fmt.Fprintf(a.out, "%-38s %-22s %s\n", task.ID, task.DueAt.Format("2006-01-02 15:04 MST"), task.Title)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Nudge runs one escalation pass for a task and reports what it did.
func (a *TaskAdapter) Nudge(ctx context.Context, taskID string) error {
	result, err := a.escalations.Escalate(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to escalate task: %w", err)
	}

	switch {
	case result.Skipped:
		fmt.Fprintf(a.out, "Task %s has no live record; nothing to do\n", taskID)
	case result.FullyAcknowledged:
		fmt.Fprintf(a.out, "✓ Task %s is fully acknowledged\n", taskID)
	default:
		fmt.Fprintf(a.out, "Missing acknowledgments: %s\n", strings.Join(result.Missing, ", "))
		fmt.Fprintf(a.out, "Escalated to: %s\n", strings.Join(result.Escalated, ", "))
	}
	return nil
}
