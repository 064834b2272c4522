package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/nudge/internal/ports/primary"
	"github.com/example/nudge/internal/ports/secondary"
)

// ReminderServiceImpl implements the ReminderService interface: it posts a
// channel reminder mentioning every target of a task.
type ReminderServiceImpl struct {
	taskRepo secondary.TaskRepository
	chat     secondary.ChatGateway
	settings Settings
	logger   *zap.Logger
}

// NewReminderService creates a new ReminderService with injected dependencies.
func NewReminderService(
	taskRepo secondary.TaskRepository,
	chat secondary.ChatGateway,
	settings Settings,
	logger *zap.Logger,
) *ReminderServiceImpl {
	return &ReminderServiceImpl{
		taskRepo: taskRepo,
		chat:     chat,
		settings: settings,
		logger:   logger,
	}
}

// Remind posts a reminder into the announcement channel.
func (s *ReminderServiceImpl) Remind(ctx context.Context, taskID, mode string) error {
	record, err := s.taskRepo.GetByID(ctx, taskID)
	if errors.Is(err, secondary.ErrTaskNotFound) {
		s.logger.Info("reminder skipped, task record absent",
			zap.String("task_id", taskID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load task %s: %w", taskID, err)
	}

	text := fmt.Sprintf("Reminder: please complete and react %s for task *%s* %s",
		s.settings.completionMarker(), record.Title, formatMentions(record.Targets))
	if record.Permalink != "" {
		text += "\n" + record.Permalink
	}

	if _, err := s.chat.PostMessage(ctx, record.ChannelID, text); err != nil {
		return fmt.Errorf("failed to post reminder for task %s: %w", taskID, err)
	}

	s.logger.Info("reminder posted",
		zap.String("task_id", taskID),
		zap.String("mode", mode))
	return nil
}

// Ensure ReminderServiceImpl implements the interface
var _ primary.ReminderService = (*ReminderServiceImpl)(nil)
