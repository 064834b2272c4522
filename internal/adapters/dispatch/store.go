// Package dispatch contains the embedded trigger dispatcher: a durable
// trigger store plus a polling loop that invokes registered handlers when
// triggers come due.
package dispatch

import (
	"context"
	"time"

	"github.com/example/nudge/internal/ports/secondary"
)

// Trigger states.
const (
	StateScheduled = "scheduled"
	StateFired     = "fired"
	StateExpired   = "expired"
)

// Trigger is one durable trigger row.
type Trigger struct {
	Name        string
	TaskID      string
	Handler     string
	FireAt      time.Time
	Every       time.Duration
	WindowStart time.Time
	WindowEnd   time.Time
	Timezone    string
	Payload     secondary.TriggerPayload
	State       string
	LastFiredAt time.Time
}

// Repeating reports whether the trigger fires on an interval.
func (t *Trigger) Repeating() bool {
	return t.Every > 0
}

// TriggerStore is the durable store the dispatcher drains.
type TriggerStore interface {
	// Due returns the triggers ready to fire at now: scheduled one-shots
	// whose fire instant has passed, and repeating triggers inside their
	// window whose interval has elapsed since the last firing.
	Due(ctx context.Context, now time.Time) ([]*Trigger, error)

	// MarkFired records a firing. One-shot triggers leave the scheduled
	// state; repeating triggers update their last-fired instant.
	MarkFired(ctx context.Context, name string, firedAt time.Time) error

	// ExpireLapsed retires repeating triggers whose window has closed.
	// Returns the number retired.
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
}
