package dispatch

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/nudge/internal/ports/secondary"
)

// SQLiteStore persists triggers in the application database. It is both the
// registration port the services write through and the store the dispatcher
// drains.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a trigger store on an open database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Upsert registers a trigger, replacing any prior registration with the same
// name. A replaced trigger returns to the scheduled state but keeps its
// last-fired instant so a repeating trigger does not double-fire after a
// re-registration.
func (s *SQLiteStore) Upsert(ctx context.Context, def secondary.TriggerDefinition) error {
	payload, err := json.Marshal(def.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode trigger payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO triggers (name, task_id, handler, fire_at, every_seconds, window_start, window_end, timezone, payload, state, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'scheduled', ?)
		ON CONFLICT(name) DO UPDATE SET
			task_id = excluded.task_id,
			handler = excluded.handler,
			fire_at = excluded.fire_at,
			every_seconds = excluded.every_seconds,
			window_start = excluded.window_start,
			window_end = excluded.window_end,
			timezone = excluded.timezone,
			payload = excluded.payload,
			state = 'scheduled',
			updated_at = excluded.updated_at`,
		def.Name, def.TaskID, def.Handler,
		nullTime(def.FireAt), int64(def.Every/time.Second),
		nullTime(def.WindowStart), nullTime(def.WindowEnd),
		def.Timezone, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert trigger %s: %w", def.Name, err)
	}
	return nil
}

// Due returns the triggers ready to fire at now.
func (s *SQLiteStore) Due(ctx context.Context, now time.Time) ([]*Trigger, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, task_id, handler, fire_at, every_seconds, window_start, window_end, timezone, payload, state, last_fired_at
		FROM triggers
		WHERE state = 'scheduled'
		  AND (
			(every_seconds = 0 AND fire_at <= ?)
			OR (every_seconds > 0 AND window_start <= ? AND window_end > ?)
		  )
		ORDER BY name`,
		now.UTC(), now.UTC(), now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query due triggers: %w", err)
	}
	defer rows.Close()

	var due []*Trigger
	for rows.Next() {
		trigger, err := scanTrigger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trigger: %w", err)
		}
		// Interval gating for repeating triggers happens here rather than
		// in SQL so the arithmetic stays in one language.
		if trigger.Repeating() && !trigger.LastFiredAt.IsZero() &&
			now.Sub(trigger.LastFiredAt) < trigger.Every {
			continue
		}
		due = append(due, trigger)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate triggers: %w", err)
	}
	return due, nil
}

// MarkFired records a firing.
func (s *SQLiteStore) MarkFired(ctx context.Context, name string, firedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE triggers
		SET last_fired_at = ?,
		    state = CASE WHEN every_seconds = 0 THEN 'fired' ELSE state END,
		    updated_at = ?
		WHERE name = ?`,
		firedAt.UTC(), time.Now().UTC(), name,
	)
	if err != nil {
		return fmt.Errorf("failed to mark trigger %s fired: %w", name, err)
	}
	return nil
}

// ExpireLapsed retires repeating triggers whose window has closed.
func (s *SQLiteStore) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE triggers
		SET state = 'expired', updated_at = ?
		WHERE state = 'scheduled' AND every_seconds > 0 AND window_end <= ?`,
		time.Now().UTC(), now.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire lapsed triggers: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count expired triggers: %w", err)
	}
	return n, nil
}

func scanTrigger(scanner interface {
	Scan(dest ...any) error
}) (*Trigger, error) {
	var (
		fireAt      sql.NullTime
		windowStart sql.NullTime
		windowEnd   sql.NullTime
		lastFired   sql.NullTime
		timezone    sql.NullString
		everySecs   int64
		payload     string
	)

	trigger := &Trigger{}
	err := scanner.Scan(
		&trigger.Name, &trigger.TaskID, &trigger.Handler,
		&fireAt, &everySecs, &windowStart, &windowEnd,
		&timezone, &payload, &trigger.State, &lastFired,
	)
	if err != nil {
		return nil, err
	}

	trigger.Every = time.Duration(everySecs) * time.Second
	trigger.Timezone = timezone.String
	if fireAt.Valid {
		trigger.FireAt = fireAt.Time.UTC()
	}
	if windowStart.Valid {
		trigger.WindowStart = windowStart.Time.UTC()
	}
	if windowEnd.Valid {
		trigger.WindowEnd = windowEnd.Time.UTC()
	}
	if lastFired.Valid {
		trigger.LastFiredAt = lastFired.Time.UTC()
	}
	if err := json.Unmarshal([]byte(payload), &trigger.Payload); err != nil {
		return nil, fmt.Errorf("failed to decode trigger payload: %w", err)
	}
	return trigger, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// Ensure SQLiteStore implements both interfaces
var (
	_ secondary.TriggerScheduler = (*SQLiteStore)(nil)
	_ TriggerStore               = (*SQLiteStore)(nil)
)
