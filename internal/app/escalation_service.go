package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/nudge/internal/core/target"
	"github.com/example/nudge/internal/ports/primary"
	"github.com/example/nudge/internal/ports/secondary"
)

// EscalationServiceImpl implements the EscalationService interface. It runs
// at trigger time, recomputes acknowledgment state from the live reaction set
// and messages whoever is missing. It keeps no memory between runs.
type EscalationServiceImpl struct {
	taskRepo secondary.TaskRepository
	chat     secondary.ChatGateway
	settings Settings
	logger   *zap.Logger
}

// NewEscalationService creates a new EscalationService with injected dependencies.
func NewEscalationService(
	taskRepo secondary.TaskRepository,
	chat secondary.ChatGateway,
	settings Settings,
	logger *zap.Logger,
) *EscalationServiceImpl {
	return &EscalationServiceImpl{
		taskRepo: taskRepo,
		chat:     chat,
		settings: settings,
		logger:   logger,
	}
}

// Escalate evaluates one task and escalates to unacknowledged assignees.
func (s *EscalationServiceImpl) Escalate(ctx context.Context, taskID string) (*primary.EscalationResult, error) {
	record, err := s.taskRepo.GetByID(ctx, taskID)
	if errors.Is(err, secondary.ErrTaskNotFound) {
		// Triggers may outlive or race the record; that is not an error.
		s.logger.Info("escalation skipped, task record absent",
			zap.String("task_id", taskID))
		return &primary.EscalationResult{Skipped: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task %s: %w", taskID, err)
	}

	reactions, err := s.chat.GetReactions(ctx, record.ChannelID, record.MessageID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reactions for task %s: %w", taskID, err)
	}

	acknowledged := make(map[string]bool)
	for _, r := range reactions {
		if r.Name != s.settings.CompletionEmoji {
			continue
		}
		for _, id := range r.UserIDs {
			acknowledged[id] = true
		}
	}

	var missing []string
	for _, t := range record.Targets {
		if target.IsPseudo(t) {
			continue
		}
		if !acknowledged[t] {
			missing = append(missing, t)
		}
	}

	result := &primary.EscalationResult{Missing: missing}
	if len(missing) == 0 {
		result.FullyAcknowledged = true
		s.logger.Info("task fully acknowledged",
			zap.String("task_id", taskID))
		return result, nil
	}

	text := fmt.Sprintf("You haven't completed %s task *%s* due %s. Please complete the task ASAP.",
		s.settings.completionMarker(), record.Title, s.settings.formatDue(record.DueAt))

	for _, recipient := range missing {
		dm, err := s.chat.OpenDirectConversation(ctx, recipient)
		if err != nil {
			s.logger.Warn("failed to open direct conversation",
				zap.String("task_id", taskID),
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		if _, err := s.chat.PostMessage(ctx, dm, text); err != nil {
			s.logger.Warn("failed to deliver escalation",
				zap.String("task_id", taskID),
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		result.Escalated = append(result.Escalated, recipient)
	}

	s.logger.Info("escalation run complete",
		zap.String("task_id", taskID),
		zap.Int("missing", len(result.Missing)),
		zap.Int("escalated", len(result.Escalated)))

	return result, nil
}

// Ensure EscalationServiceImpl implements the interface
var _ primary.EscalationService = (*EscalationServiceImpl)(nil)
