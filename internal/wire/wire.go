// Package wire provides dependency injection for the nudge application.
// It builds the full object graph from a loaded configuration.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/example/nudge/internal/adapters/dispatch"
	"github.com/example/nudge/internal/adapters/redisstore"
	"github.com/example/nudge/internal/adapters/slackchat"
	"github.com/example/nudge/internal/adapters/sqlite"
	"github.com/example/nudge/internal/app"
	"github.com/example/nudge/internal/config"
	"github.com/example/nudge/internal/core/schedule"
	"github.com/example/nudge/internal/db"
	"github.com/example/nudge/internal/ports/primary"
	"github.com/example/nudge/internal/ports/secondary"
)

// Container holds the wired application services and the infrastructure they
// run on. Close releases the underlying connections.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	TaskService       primary.TaskService
	ReminderService   primary.ReminderService
	EscalationService primary.EscalationService

	Dispatcher *dispatch.Dispatcher
	TaskRepo   secondary.TaskRepository

	chat     *slackchat.Gateway
	database *sql.DB
	redis    *redis.Client
}

// New builds the application from configuration. The SQLite database is
// always opened: triggers are durable there even when task records live
// in Redis.
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.Store.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		database: database,
	}

	switch cfg.Store.Backend {
	case "redis":
		c.redis = redis.NewClient(&redis.Options{Addr: cfg.Store.RedisAddr})
		c.TaskRepo = redisstore.NewTaskRepository(c.redis, cfg.Store.RedisPrefix)
	default:
		c.TaskRepo = sqlite.NewTaskRepository(database)
	}

	chat := slackchat.New(cfg.Slack.Token)
	c.chat = chat
	triggerStore := dispatch.NewSQLiteStore(database)

	settings := app.Settings{
		Location:        loc,
		ChannelID:       cfg.Slack.ChannelID,
		CompletionEmoji: cfg.Slack.CompletionEmoji,
		Directory:       cfg.Directory,
		Schedule: schedule.Config{
			Location:          loc,
			ReminderHour:      cfg.Reminders.ReminderHour,
			BusinessHourStart: cfg.Reminders.BusinessHourStart,
			FinalCheckOffset:  time.Duration(cfg.Reminders.FinalCheckOffsetHours * float64(time.Hour)),
			FastWindow:        time.Duration(cfg.Reminders.FastWindowHours) * time.Hour,
			FastInterval:      time.Duration(cfg.Reminders.FastIntervalMinutes) * time.Minute,
		},
		ExpiryDays: cfg.Reminders.ExpiryDays,
	}

	c.TaskService = app.NewTaskService(c.TaskRepo, chat, triggerStore, settings, logger)
	c.ReminderService = app.NewReminderService(c.TaskRepo, chat, settings, logger)
	c.EscalationService = app.NewEscalationService(c.TaskRepo, chat, settings, logger)

	interval := time.Duration(cfg.Dispatcher.PollIntervalSeconds) * time.Second
	c.Dispatcher = dispatch.NewDispatcher(triggerStore, interval, logger)
	c.Dispatcher.Handle("remind", func(ctx context.Context, p secondary.TriggerPayload) error {
		return c.ReminderService.Remind(ctx, p.TaskID, p.Mode)
	})
	c.Dispatcher.Handle("escalate", func(ctx context.Context, p secondary.TriggerPayload) error {
		_, err := c.EscalationService.Escalate(ctx, p.TaskID)
		return err
	})

	return c, nil
}

// Health probes the task store and the chat platform. A failure of either
// means the service cannot announce, remind or escalate.
func (c *Container) Health(ctx context.Context) error {
	if err := c.TaskRepo.Ping(ctx); err != nil {
		return fmt.Errorf("task store unreachable: %w", err)
	}
	if err := c.chat.Ping(ctx); err != nil {
		return fmt.Errorf("chat platform unreachable: %w", err)
	}
	return nil
}

// PurgeExpired reaps expired task rows when the sqlite backend is active.
// Redis records expire natively, so there is nothing to do there.
func (c *Container) PurgeExpired(ctx context.Context) (int64, error) {
	repo, ok := c.TaskRepo.(*sqlite.TaskRepository)
	if !ok {
		return 0, nil
	}
	return repo.PurgeExpired(ctx)
}

// Close releases database and cache connections.
func (c *Container) Close() error {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.Logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if c.database != nil {
		return c.database.Close()
	}
	return nil
}
