package app

import (
	"context"

	"github.com/example/nudge/internal/core/schedule"
	"github.com/example/nudge/internal/ports/primary"
	"github.com/example/nudge/internal/ports/secondary"
)

// TriggerRegistrar converts planned triggers into durable registrations with
// the dispatcher. Each registration is an upsert keyed by trigger name, so
// re-running an identical plan converges instead of duplicating.
type TriggerRegistrar struct {
	scheduler secondary.TriggerScheduler
	timezone  string
}

// NewTriggerRegistrar creates a registrar expressing fire specs in the given
// organization timezone.
func NewTriggerRegistrar(scheduler secondary.TriggerScheduler, timezone string) *TriggerRegistrar {
	return &TriggerRegistrar{
		scheduler: scheduler,
		timezone:  timezone,
	}
}

// Register upserts one registration per planned trigger. The first failure
// aborts the remaining registrations; triggers already registered stay
// registered (an orphaned trigger is tolerated by the evaluator's
// record-absent no-op rule).
func (r *TriggerRegistrar) Register(ctx context.Context, taskID string, triggers []schedule.Trigger) error {
	for _, tr := range triggers {
		name := triggerName(taskID, tr.Label)
		def := secondary.TriggerDefinition{
			Name:        name,
			TaskID:      taskID,
			Handler:     string(tr.Handler),
			FireAt:      tr.FireAt,
			Every:       tr.Every,
			WindowStart: tr.WindowStart,
			WindowEnd:   tr.WindowEnd,
			Timezone:    r.timezone,
			Payload: secondary.TriggerPayload{
				TaskID: taskID,
				Mode:   tr.Mode,
			},
		}
		if err := r.scheduler.Upsert(ctx, def); err != nil {
			return &primary.RegistrationError{Name: name, Err: err}
		}
	}
	return nil
}
