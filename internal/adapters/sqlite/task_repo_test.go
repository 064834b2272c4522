package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/nudge/internal/adapters/sqlite"
	"github.com/example/nudge/internal/db"
	"github.com/example/nudge/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
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
	return testDB
}

func testRecord(id string, expiresAt time.Time) *secondary.TaskRecord {
	return &secondary.TaskRecord{
		ID:          id,
		Title:       "Ship the quarterly report",
		Description: "Numbers for Q4",
		DueAt:       time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC),
		Targets:     []string{"U-SHAO", "!channel"},
		ChannelID:   "C123",
		MessageID:   "msg-1",
		Permalink:   "https://chat.example.com/p/1",
		CreatedAt:   time.Date(2026, 1, 10, 14, 0, 0, 0, time.UTC),
		ExpiresAt:   expiresAt,
	}
}

func TestTaskRepository_CreateAndGet(t *testing.T) {
	repo := sqlite.NewTaskRepository(setupTestDB(t))
	ctx := context.Background()

	record := testRecord("task-1", time.Now().UTC().Add(30*24*time.Hour))
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "task-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != record.Title {
		t.Errorf("expected title %q, got %q", record.Title, got.Title)
	}
	if !got.DueAt.Equal(record.DueAt) {
		t.Errorf("expected due %v, got %v", record.DueAt, got.DueAt)
	}
	if len(got.Targets) != 2 || got.Targets[0] != "U-SHAO" || got.Targets[1] != "!channel" {
		t.Errorf("targets did not round-trip: %v", got.Targets)
	}
	if got.Permalink != record.Permalink {
		t.Errorf("expected permalink %q, got %q", record.Permalink, got.Permalink)
	}
}

func TestTaskRepository_GetMissing(t *testing.T) {
	repo := sqlite.NewTaskRepository(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), "nope")
	if !errors.Is(err, secondary.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskRepository_ExpiredRecordInvisible(t *testing.T) {
	repo := sqlite.NewTaskRepository(setupTestDB(t))
	ctx := context.Background()

	expired := testRecord("task-old", time.Now().UTC().Add(-time.Hour))
	if err := repo.Create(ctx, expired); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := repo.GetByID(ctx, "task-old"); !errors.Is(err, secondary.ErrTaskNotFound) {
		t.Fatalf("expected expired record to read as absent, got %v", err)
	}

	records, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected expired record excluded from List, got %d", len(records))
	}
}

func TestTaskRepository_ListNewestFirst(t *testing.T) {
	repo := sqlite.NewTaskRepository(setupTestDB(t))
	ctx := context.Background()

	older := testRecord("task-1", time.Now().UTC().Add(24*time.Hour))
	older.CreatedAt = time.Date(2026, 1, 9, 10, 0, 0, 0, time.UTC)
	newer := testRecord("task-2", time.Now().UTC().Add(24*time.Hour))
	newer.CreatedAt = time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)

	for _, r := range []*secondary.TaskRecord{older, newer} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	records, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "task-2" {
		t.Errorf("expected newest first, got %s", records[0].ID)
	}
}

func TestTaskRepository_Ping(t *testing.T) {
	repo := sqlite.NewTaskRepository(setupTestDB(t))

	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestTaskRepository_PurgeExpired(t *testing.T) {
	repo := sqlite.NewTaskRepository(setupTestDB(t))
	ctx := context.Background()

	live := testRecord("task-live", time.Now().UTC().Add(24*time.Hour))
	dead := testRecord("task-dead", time.Now().UTC().Add(-24*time.Hour))
	for _, r := range []*secondary.TaskRecord{live, dead} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	n, err := repo.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged row, got %d", n)
	}
	if _, err := repo.GetByID(ctx, "task-live"); err != nil {
		t.Errorf("live record should survive purge: %v", err)
	}
}
