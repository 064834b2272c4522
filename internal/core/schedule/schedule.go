// Package schedule contains the pure logic for turning a due instant and a
// reminder policy into an ordered list of planned triggers.
//
// Two rules apply to every reminder candidate:
//
//   - business-hour clamp: a candidate strictly between local midnight and the
//     business-hour start is shifted forward to that hour on the same local day.
//     Shifting rather than dropping preserves the warning when the arithmetic
//     lands overnight.
//   - window filter: a candidate is kept only if now < candidate < dueAt, which
//     makes planning idempotent near the due time and keeps triggers out of
//     the past.
//
// The final check is exempt from the window filter: it is the one trigger
// guaranteed to be scheduled even when every reminder candidate is filtered.
package schedule

import (
	"fmt"
	"time"
)

// Handler identifies which invocation path a trigger targets.
type Handler string

const (
	// HandlerRemind posts a reminder into the announcement channel.
	HandlerRemind Handler = "remind"
	// HandlerEscalate runs the escalation evaluation.
	HandlerEscalate Handler = "escalate"
)

// ModeFast marks the high-frequency repeating reminder.
const ModeFast = "fast"

// Unit is a custom-policy offset unit.
type Unit string

const (
	UnitMinutes Unit = "minutes"
	UnitHours   Unit = "hours"
	UnitDays    Unit = "days"
	UnitWeeks   Unit = "weeks"
)

// Offset is a backward distance from the due instant.
type Offset struct {
	Amount int
	Unit   Unit
}

// Duration converts the offset to a fixed duration. Days and weeks are fixed
// 24-hour multiples; calendar arithmetic is intentionally not used here.
func (o Offset) Duration() (time.Duration, error) {
	switch o.Unit {
	case UnitMinutes:
		return time.Duration(o.Amount) * time.Minute, nil
	case UnitHours:
		return time.Duration(o.Amount) * time.Hour, nil
	case UnitDays:
		return time.Duration(o.Amount) * 24 * time.Hour, nil
	case UnitWeeks:
		return time.Duration(o.Amount) * 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown offset unit %q", o.Unit)
	}
}

// Policy selects the reminder schedule. An empty Offsets list means the
// default three-point schedule; otherwise each offset is measured backward
// from the due instant.
type Policy struct {
	Offsets []Offset
}

// IsDefault reports whether the default schedule applies.
func (p Policy) IsDefault() bool {
	return len(p.Offsets) == 0
}

// Trigger is a planned trigger registration. One-shot triggers carry FireAt;
// the repeating fast reminder carries Every plus a bounding window.
type Trigger struct {
	Label   string
	Handler Handler
	Mode    string

	FireAt time.Time

	Every       time.Duration
	WindowStart time.Time
	WindowEnd   time.Time
}

// Repeating reports whether the trigger fires on an interval.
func (t Trigger) Repeating() bool {
	return t.Every > 0
}

// Config carries the organization-wide scheduling knobs.
type Config struct {
	// Location is the fixed organization zone for wall-clock arithmetic.
	Location *time.Location

	// ReminderHour is the local hour for day-before / day-of reminders.
	ReminderHour int

	// BusinessHourStart is the local hour overnight candidates shift to.
	BusinessHourStart int

	// FinalCheckOffset is how long before the due instant the escalation
	// check is anchored when no per-task estimate is supplied.
	FinalCheckOffset time.Duration

	// FastWindow enables the repeating fast reminder when the due instant
	// is at most this far away. Zero disables it.
	FastWindow time.Duration

	// FastInterval is the cadence of the fast reminder.
	FastInterval time.Duration
}

// Plan computes the ordered trigger list for a task.
//
// estDuration overrides Config.FinalCheckOffset when positive; it is the
// caller-estimated task duration, anchoring the final check at
// dueAt - estDuration.
func Plan(dueAt, now time.Time, policy Policy, estDuration time.Duration, cfg Config) ([]Trigger, error) {
	var out []Trigger

	if policy.IsDefault() {
		out = append(out, defaultCandidates(dueAt, now, cfg)...)
	} else {
		custom, err := customCandidates(dueAt, now, policy, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, custom...)
	}

	if cfg.FastWindow > 0 && dueAt.Sub(now) <= cfg.FastWindow {
		out = append(out, Trigger{
			Label:       "remind-fast",
			Handler:     HandlerRemind,
			Mode:        ModeFast,
			Every:       cfg.FastInterval,
			WindowStart: now.UTC(),
			WindowEnd:   dueAt.UTC(),
		})
	}

	out = append(out, finalCheck(dueAt, estDuration, cfg))
	return out, nil
}

func defaultCandidates(dueAt, now time.Time, cfg Config) []Trigger {
	dueLocal := dueAt.In(cfg.Location)
	y, m, d := dueLocal.Date()
	atReminderHour := time.Date(y, m, d, cfg.ReminderHour, 0, 0, 0, cfg.Location)

	var out []Trigger
	candidates := []struct {
		label  string
		fireAt time.Time
	}{
		{"day-before", atReminderHour.AddDate(0, 0, -2)},
		{"day-of", atReminderHour.AddDate(0, 0, -1)},
		{"halfway", now.Add(dueAt.Sub(now) / 2)},
	}
	for _, c := range candidates {
		fireAt := clampBusinessHours(c.fireAt, cfg)
		if !inWindow(fireAt, now, dueAt) {
			continue
		}
		out = append(out, Trigger{
			Label:   c.label,
			Handler: HandlerRemind,
			FireAt:  fireAt.UTC(),
		})
	}
	return out
}

func customCandidates(dueAt, now time.Time, policy Policy, cfg Config) ([]Trigger, error) {
	var out []Trigger
	seen := make(map[string]int)
	for _, o := range policy.Offsets {
		d, err := o.Duration()
		if err != nil {
			return nil, err
		}
		fireAt := clampBusinessHours(dueAt.Add(-d), cfg)
		if !inWindow(fireAt, now, dueAt) {
			continue
		}

		// Repeated offsets get an ordinal suffix so every registration
		// name stays distinct.
		label := fmt.Sprintf("in-%d-%s", o.Amount, o.Unit)
		seen[label]++
		if n := seen[label]; n > 1 {
			label = fmt.Sprintf("%s-%d", label, n)
		}

		out = append(out, Trigger{
			Label:   label,
			Handler: HandlerRemind,
			FireAt:  fireAt.UTC(),
		})
	}
	return out, nil
}

// finalCheck anchors the mandatory escalation trigger at dueAt - offset. The
// business-hour clamp still applies, but never past the due instant itself;
// in that case the unclamped anchor wins.
func finalCheck(dueAt time.Time, estDuration time.Duration, cfg Config) Trigger {
	offset := cfg.FinalCheckOffset
	if estDuration > 0 {
		offset = estDuration
	}
	anchor := dueAt.Add(-offset)
	fireAt := clampBusinessHours(anchor, cfg)
	if !fireAt.Before(dueAt) {
		fireAt = anchor
	}
	return Trigger{
		Label:   "final-check",
		Handler: HandlerEscalate,
		FireAt:  fireAt.UTC(),
	}
}

// clampBusinessHours shifts an instant falling strictly between local
// midnight and the business-hour start forward to that hour, same local day.
func clampBusinessHours(t time.Time, cfg Config) time.Time {
	lt := t.In(cfg.Location)
	y, m, d := lt.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, cfg.Location)
	open := midnight.Add(time.Duration(cfg.BusinessHourStart) * time.Hour)

	if lt.After(midnight) && lt.Before(open) {
		return open
	}
	return t
}

func inWindow(c, now, dueAt time.Time) bool {
	return c.After(now) && c.Before(dueAt)
}
