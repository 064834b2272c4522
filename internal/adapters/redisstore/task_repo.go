// Package redisstore contains a Redis implementation of the task record
// store. Expiry is native: records are written with EXPIREAT and disappear
// on their own, so readers never see a stale task.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/nudge/internal/ports/secondary"
)

// TaskRepository implements secondary.TaskRepository with Redis.
type TaskRepository struct {
	client *redis.Client
	prefix string
}

// NewTaskRepository creates a Redis task repository. prefix namespaces the
// task keys (e.g. "task:").
func NewTaskRepository(client *redis.Client, prefix string) *TaskRepository {
	return &TaskRepository{client: client, prefix: prefix}
}

// record is the stored JSON shape of a task.
type record struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueAt       time.Time `json:"dueAt"`
	Targets     []string  `json:"targets"`
	ChannelID   string    `json:"channelId"`
	MessageID   string    `json:"messageId"`
	Permalink   string    `json:"permalink,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (r *TaskRepository) key(id string) string {
	return r.prefix + id
}

// Create persists a new task record with its expiry.
func (r *TaskRepository) Create(ctx context.Context, task *secondary.TaskRecord) error {
	data, err := json.Marshal(record{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueAt:       task.DueAt.UTC(),
		Targets:     task.Targets,
		ChannelID:   task.ChannelID,
		MessageID:   task.MessageID,
		Permalink:   task.Permalink,
		CreatedAt:   task.CreatedAt.UTC(),
		ExpiresAt:   task.ExpiresAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}

	key := r.key(task.ID)
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store task: %w", err)
	}
	if err := r.client.ExpireAt(ctx, key, task.ExpiresAt).Err(); err != nil {
		return fmt.Errorf("failed to set task expiry: %w", err)
	}
	return nil
}

// GetByID retrieves a live task record, or ErrTaskNotFound once expired.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*secondary.TaskRecord, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, secondary.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return decode(data)
}

// List retrieves all live task records, newest first.
func (r *TaskRepository) List(ctx context.Context) ([]*secondary.TaskRecord, error) {
	var records []*secondary.TaskRecord
	var cursor uint64

	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan tasks: %w", err)
		}

		for _, key := range keys {
			data, err := r.client.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				// Expired between SCAN and GET.
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to get task %s: %w", key, err)
			}
			rec, err := decode(data)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Ping checks the Redis connection.
func (r *TaskRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func decode(data []byte) (*secondary.TaskRecord, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode task: %w", err)
	}
	return &secondary.TaskRecord{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		DueAt:       rec.DueAt,
		Targets:     rec.Targets,
		ChannelID:   rec.ChannelID,
		MessageID:   rec.MessageID,
		Permalink:   rec.Permalink,
		CreatedAt:   rec.CreatedAt,
		ExpiresAt:   rec.ExpiresAt,
	}, nil
}

// Ensure TaskRepository implements the interface
var _ secondary.TaskRepository = (*TaskRepository)(nil)
