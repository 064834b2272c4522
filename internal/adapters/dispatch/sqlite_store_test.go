package dispatch_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/nudge/internal/adapters/dispatch"
	"github.com/example/nudge/internal/db"
	"github.com/example/nudge/internal/ports/secondary"
)

func setupStore(t *testing.T) (*dispatch.SQLiteStore, *sql.DB) {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	t.Cleanup(func() {
		testDB.Close()
	})
	return dispatch.NewSQLiteStore(testDB), testDB
}

func oneShot(name string, fireAt time.Time) secondary.TriggerDefinition {
	return secondary.TriggerDefinition{
		Name:     name,
		TaskID:   "task-1",
		Handler:  "remind",
		FireAt:   fireAt,
		Timezone: "America/New_York",
		Payload:  secondary.TriggerPayload{TaskID: "task-1"},
	}
}

func repeating(name string, start, end time.Time, every time.Duration) secondary.TriggerDefinition {
	return secondary.TriggerDefinition{
		Name:        name,
		TaskID:      "task-1",
		Handler:     "remind",
		Every:       every,
		WindowStart: start,
		WindowEnd:   end,
		Timezone:    "America/New_York",
		Payload:     secondary.TriggerPayload{TaskID: "task-1", Mode: "fast"},
	}
}

func TestSQLiteStore_UpsertIsIdempotent(t *testing.T) {
	store, testDB := setupStore(t)
	ctx := context.Background()

	def := oneShot("task-1-day-of", time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	for i := 0; i < 3; i++ {
		if err := store.Upsert(ctx, def); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	var count int
	if err := testDB.QueryRow("SELECT COUNT(*) FROM triggers").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 registration after repeated upserts, got %d", count)
	}
}

func TestSQLiteStore_UpsertRevivesFiredTrigger(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	fireAt := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

	def := oneShot("task-1-final-check", fireAt)
	if err := store.Upsert(ctx, def); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.MarkFired(ctx, def.Name, fireAt); err != nil {
		t.Fatalf("MarkFired failed: %v", err)
	}

	// Re-registering the same name reschedules it.
	if err := store.Upsert(ctx, def); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	due, err := store.Due(ctx, fireAt.Add(time.Minute))
	if err != nil {
		t.Fatalf("Due failed: %v", err)
	}
	if len(due) != 1 || due[0].Name != def.Name {
		t.Fatalf("expected revived trigger due, got %v", due)
	}
}

func TestSQLiteStore_DueOneShot(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 19, 19, 0, 0, 0, time.UTC)

	for name, fireAt := range map[string]time.Time{
		"task-1-day-before": now.Add(-24 * time.Hour),
		"task-1-day-of":     now,
		"task-1-later":      now.Add(time.Hour),
	} {
		if err := store.Upsert(ctx, oneShot(name, fireAt)); err != nil {
			t.Fatalf("Upsert %s failed: %v", name, err)
		}
	}

	due, err := store.Due(ctx, now)
	if err != nil {
		t.Fatalf("Due failed: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 due triggers, got %d", len(due))
	}

	// Firing removes a one-shot from future sweeps.
	for _, trigger := range due {
		if err := store.MarkFired(ctx, trigger.Name, now); err != nil {
			t.Fatalf("MarkFired failed: %v", err)
		}
	}
	due, err = store.Due(ctx, now)
	if err != nil {
		t.Fatalf("Due failed: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("expected no due triggers after firing, got %d", len(due))
	}
}

func TestSQLiteStore_DueRepeatingHonorsInterval(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 19, 12, 0, 0, 0, time.UTC)
	end := start.Add(7 * time.Hour)

	def := repeating("task-1-remind-fast", start, end, 5*time.Minute)
	if err := store.Upsert(ctx, def); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// Before the window opens: nothing due.
	due, err := store.Due(ctx, start.Add(-time.Minute))
	if err != nil {
		t.Fatalf("Due failed: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("expected nothing due before window, got %d", len(due))
	}

	// Inside the window: due, then gated until the interval elapses.
	now := start.Add(time.Minute)
	due, err = store.Due(ctx, now)
	if err != nil {
		t.Fatalf("Due failed: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected trigger due inside window, got %d", len(due))
	}
	if err := store.MarkFired(ctx, def.Name, now); err != nil {
		t.Fatalf("MarkFired failed: %v", err)
	}

	due, err = store.Due(ctx, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Due failed: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("expected interval gating to hold, got %d due", len(due))
	}

	due, err = store.Due(ctx, now.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("Due failed: %v", err)
	}
	if len(due) != 1 {
		t.Errorf("expected trigger due after interval, got %d", len(due))
	}
}

func TestSQLiteStore_ExpireLapsed(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 19, 12, 0, 0, 0, time.UTC)
	end := start.Add(7 * time.Hour)

	if err := store.Upsert(ctx, repeating("task-1-remind-fast", start, end, 5*time.Minute)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	n, err := store.ExpireLapsed(ctx, end.Add(time.Minute))
	if err != nil {
		t.Fatalf("ExpireLapsed failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 retired trigger, got %d", n)
	}

	due, err := store.Due(ctx, end.Add(time.Minute))
	if err != nil {
		t.Fatalf("Due failed: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("expected retired trigger to stay silent, got %d due", len(due))
	}
}
