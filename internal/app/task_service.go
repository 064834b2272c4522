package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/nudge/internal/core/duetime"
	"github.com/example/nudge/internal/core/schedule"
	"github.com/example/nudge/internal/core/target"
	"github.com/example/nudge/internal/ports/primary"
	"github.com/example/nudge/internal/ports/secondary"
)

// TaskServiceImpl implements the TaskService interface. It is the announcer:
// it validates input, posts the announcement, persists the record and hands
// the reminder plan to the registrar.
type TaskServiceImpl struct {
	taskRepo  secondary.TaskRepository
	chat      secondary.ChatGateway
	registrar *TriggerRegistrar
	settings  Settings
	logger    *zap.Logger

	now func() time.Time
}

// NewTaskService creates a new TaskService with injected dependencies.
func NewTaskService(
	taskRepo secondary.TaskRepository,
	chat secondary.ChatGateway,
	scheduler secondary.TriggerScheduler,
	settings Settings,
	logger *zap.Logger,
) *TaskServiceImpl {
	return &TaskServiceImpl{
		taskRepo:  taskRepo,
		chat:      chat,
		registrar: NewTriggerRegistrar(scheduler, settings.Location.String()),
		settings:  settings,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateTask creates a task: validation, announcement, record, triggers.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, req primary.CreateTaskRequest) (*primary.CreateTaskResponse, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" {
		return nil, primary.NewValidationError("title is required")
	}
	if strings.TrimSpace(req.DueDate) == "" {
		return nil, primary.NewValidationError("dueDate is required")
	}

	dueAt, err := duetime.Resolve(req.DueDate, s.settings.Location)
	if err != nil {
		return nil, primary.NewValidationError("invalid dueDate: %v", err)
	}

	now := s.now().UTC()
	if !dueAt.After(now) {
		return nil, primary.NewValidationError("dueDate must be in the future")
	}

	targets, unknown := target.Resolve(req.Targets, s.settings.Directory)
	if len(unknown) > 0 {
		return nil, &primary.UnknownTargetError{Names: unknown}
	}
	if len(targets) == 0 {
		return nil, primary.NewValidationError("at least one target is required")
	}

	policy, err := toPolicy(req.Policy)
	if err != nil {
		return nil, primary.NewValidationError("invalid reminderPolicy: %v", err)
	}

	taskID := uuid.NewString()

	text := s.announcementText(title, description, dueAt, targets, req.Comment, req.Link)
	messageID, err := s.chat.PostMessage(ctx, s.settings.ChannelID, text)
	if err != nil {
		return nil, fmt.Errorf("failed to post announcement: %w", err)
	}

	// Best-effort: a task without a permalink is still a task.
	permalink, err := s.chat.GetPermalink(ctx, s.settings.ChannelID, messageID)
	if err != nil {
		s.logger.Warn("failed to fetch announcement permalink",
			zap.String("task_id", taskID),
			zap.Error(err))
		permalink = ""
	}

	record := &secondary.TaskRecord{
		ID:          taskID,
		Title:       title,
		Description: description,
		DueAt:       dueAt,
		Targets:     targets,
		ChannelID:   s.settings.ChannelID,
		MessageID:   messageID,
		Permalink:   permalink,
		CreatedAt:   now,
		ExpiresAt:   dueAt.AddDate(0, 0, s.settings.ExpiryDays),
	}
	if err := s.taskRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create task record: %w", err)
	}

	estDuration := time.Duration(req.EstimatedDurationHours * float64(time.Hour))
	triggers, err := schedule.Plan(dueAt, now, policy, estDuration, s.settings.Schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to plan triggers: %w", err)
	}

	if err := s.registrar.Register(ctx, taskID, triggers); err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		zap.String("task_id", taskID),
		zap.Time("due_at", dueAt),
		zap.Int("targets", len(targets)),
		zap.Int("triggers", len(triggers)))

	return &primary.CreateTaskResponse{
		TaskID:    taskID,
		MessageID: messageID,
	}, nil
}

// GetTask retrieves a task by ID.
func (s *TaskServiceImpl) GetTask(ctx context.Context, taskID string) (*primary.Task, error) {
	record, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", taskID, err)
	}
	return recordToTask(record), nil
}

// ListTasks lists unexpired tasks.
func (s *TaskServiceImpl) ListTasks(ctx context.Context) ([]*primary.Task, error) {
	records, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	tasks := make([]*primary.Task, len(records))
	for i, r := range records {
		tasks[i] = recordToTask(r)
	}
	return tasks, nil
}

func (s *TaskServiceImpl) announcementText(title, description string, dueAt time.Time, targets []string, comment, link string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*New task:* %s\n", title)
	if description != "" {
		fmt.Fprintf(&b, "*Description:* %s\n", description)
	}
	fmt.Fprintf(&b, "*Due:* %s\n", s.settings.formatDue(dueAt))
	fmt.Fprintf(&b, "*Owner(s):* %s\n", formatMentions(targets))
	if comment = strings.TrimSpace(comment); comment != "" {
		fmt.Fprintf(&b, "*Comment:* %s\n", comment)
	}
	if link = strings.TrimSpace(link); link != "" {
		fmt.Fprintf(&b, "*Link:* %s\n", link)
	}
	fmt.Fprintf(&b, "\nPlease react with %s when done.", s.settings.completionMarker())
	return b.String()
}

func toPolicy(offsets []primary.PolicyOffset) (schedule.Policy, error) {
	var p schedule.Policy
	for _, o := range offsets {
		if o.Amount <= 0 {
			return schedule.Policy{}, fmt.Errorf("offset amount must be positive, got %d", o.Amount)
		}
		off := schedule.Offset{
			Amount: o.Amount,
			Unit:   schedule.Unit(o.Unit),
		}
		// Reject unknown units before any side effect is performed.
		if _, err := off.Duration(); err != nil {
			return schedule.Policy{}, err
		}
		p.Offsets = append(p.Offsets, off)
	}
	return p, nil
}

func recordToTask(r *secondary.TaskRecord) *primary.Task {
	return &primary.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		DueAt:       r.DueAt,
		Targets:     r.Targets,
		ChannelID:   r.ChannelID,
		MessageID:   r.MessageID,
		Permalink:   r.Permalink,
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
	}
}

// Ensure TaskServiceImpl implements the interface
var _ primary.TaskService = (*TaskServiceImpl)(nil)
