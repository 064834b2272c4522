package secondary

import (
	"context"
	"time"
)

// TriggerScheduler defines the secondary port for registering time-based
// triggers with the dispatcher. Registration is a single upsert: repeating it
// for the same name updates the existing registration in place, so re-running
// a plan converges without duplicate or stale triggers.
type TriggerScheduler interface {
	Upsert(ctx context.Context, def TriggerDefinition) error
}

// TriggerPayload is the opaque payload a fired trigger delivers to its
// handler.
type TriggerPayload struct {
	TaskID string `json:"taskId"`
	Mode   string `json:"mode,omitempty"`
}

// TriggerDefinition describes one durable trigger registration. Exactly one
// of FireAt (one-shot) or Every (repeating, bounded by the window) is set.
type TriggerDefinition struct {
	// Name uniquely identifies the registration for upsert purposes.
	Name string

	// TaskID is the owning task.
	TaskID string

	// Handler names the invocation target ("remind" or "escalate").
	Handler string

	// FireAt is the one-shot fire instant.
	FireAt time.Time

	// Every is the repeat interval; zero for one-shot triggers.
	Every time.Duration

	// WindowStart and WindowEnd bound a repeating trigger.
	WindowStart time.Time
	WindowEnd   time.Time

	// Timezone is the organization zone the fire spec is expressed in,
	// kept so wall-clock expectations survive daylight-saving shifts.
	Timezone string

	Payload TriggerPayload
}
