package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/nudge/internal/ports/secondary"
)

// HandlerFunc handles one trigger firing.
type HandlerFunc func(ctx context.Context, payload secondary.TriggerPayload) error

// Dispatcher polls the trigger store and invokes the handler registered for
// each due trigger. Handler failures are logged and the trigger is still
// marked fired; the services behind the handlers are safe to re-run, so a
// missed delivery is recovered by the next trigger, not by retry storms.
type Dispatcher struct {
	store    TriggerStore
	handlers map[string]HandlerFunc
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewDispatcher creates a dispatcher polling at the given interval.
func NewDispatcher(store TriggerStore, interval time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		handlers: make(map[string]HandlerFunc),
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle registers the handler invoked for triggers carrying the given
// handler name.
func (d *Dispatcher) Handle(name string, fn HandlerFunc) {
	d.handlers[name] = fn
}

// Run polls until the context is cancelled. One sweep runs immediately so
// triggers that came due while the process was down fire on startup.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.sweep(ctx)
		}
	}
}

// sweep fires everything due and retires lapsed repeating triggers.
func (d *Dispatcher) sweep(ctx context.Context) {
	now := d.now()

	if n, err := d.store.ExpireLapsed(ctx, now); err != nil {
		d.logger.Error("failed to expire lapsed triggers", zap.Error(err))
	} else if n > 0 {
		d.logger.Info("retired lapsed triggers", zap.Int64("count", n))
	}

	due, err := d.store.Due(ctx, now)
	if err != nil {
		d.logger.Error("failed to load due triggers", zap.Error(err))
		return
	}

	for _, trigger := range due {
		d.fire(ctx, trigger, now)
	}
}

func (d *Dispatcher) fire(ctx context.Context, trigger *Trigger, now time.Time) {
	handler, ok := d.handlers[trigger.Handler]
	if !ok {
		d.logger.Error("no handler registered for trigger",
			zap.String("trigger", trigger.Name),
			zap.String("handler", trigger.Handler))
		return
	}

	if err := handler(ctx, trigger.Payload); err != nil {
		d.logger.Error("trigger handler failed",
			zap.String("trigger", trigger.Name),
			zap.String("handler", trigger.Handler),
			zap.Error(err))
	}

	if err := d.store.MarkFired(ctx, trigger.Name, now); err != nil {
		d.logger.Error("failed to mark trigger fired",
			zap.String("trigger", trigger.Name),
			zap.Error(err))
		return
	}

	d.logger.Info("fired trigger",
		zap.String("trigger", trigger.Name),
		zap.String("handler", trigger.Handler),
		zap.String("task", trigger.TaskID))
}
