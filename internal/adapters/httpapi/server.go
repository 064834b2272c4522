// Package httpapi exposes the task service over HTTP.
package httpapi

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/example/nudge/internal/ports/primary"
	"github.com/example/nudge/internal/ports/secondary"
)

// HealthFunc probes the service's collaborators; a non-nil error means the
// service is not fit to take traffic.
type HealthFunc func(ctx context.Context) error

// Server wraps the Fiber app serving the task API.
type Server struct {
	app     *fiber.App
	taskSvc primary.TaskService
	health  HealthFunc
	logger  *zap.Logger
}

// NewServer creates the HTTP server with its routes registered. health may be
// nil, in which case /healthz only reports process liveness.
func NewServer(taskSvc primary.TaskService, health HealthFunc, log *zap.Logger) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}),
		taskSvc: taskSvc,
		health:  health,
		logger:  log,
	}

	s.app.Use(recover.New())
	s.app.Use(logger.New())

	s.app.Get("/healthz", s.healthz)
	v1 := s.app.Group("/api/v1")
	v1.Post("/tasks", s.createTask)
	v1.Get("/tasks", s.listTasks)
	v1.Get("/tasks/:id", s.getTask)

	return s
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) healthz(c *fiber.Ctx) error {
	if s.health != nil {
		if err := s.health(c.UserContext()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) createTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request body",
		})
	}

	policy := make([]primary.PolicyOffset, 0, len(req.Policy))
	for _, off := range req.Policy {
		policy = append(policy, primary.PolicyOffset{Amount: off.Amount, Unit: off.Unit})
	}

	resp, err := s.taskSvc.CreateTask(c.UserContext(), primary.CreateTaskRequest{
		Title:                  req.Title,
		Description:            req.Description,
		DueDate:                req.DueDate,
		Targets:                req.Targets,
		EstimatedDurationHours: req.EstimatedDurationHours,
		Comment:                req.Comment,
		Link:                   req.Link,
		Policy:                 policy,
	})
	if err != nil {
		return s.handleTaskError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(CreateTaskResponse{
		TaskID:    resp.TaskID,
		MessageID: resp.MessageID,
	})
}

func (s *Server) getTask(c *fiber.Ctx) error {
	task, err := s.taskSvc.GetTask(c.UserContext(), c.Params("id"))
	if errors.Is(err, secondary.ErrTaskNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "task not found",
		})
	}
	if err != nil {
		return s.handleTaskError(c, err)
	}
	return c.JSON(toTaskResponse(task))
}

func (s *Server) listTasks(c *fiber.Ctx) error {
	tasks, err := s.taskSvc.ListTasks(c.UserContext())
	if err != nil {
		return s.handleTaskError(c, err)
	}

	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskResponse(task))
	}
	return c.JSON(out)
}

// handleTaskError maps service errors onto HTTP statuses. Validation and
// unknown-target failures are the caller's fault; everything else is ours.
func (s *Server) handleTaskError(c *fiber.Ctx, err error) error {
	var validationErr *primary.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_failed",
			Message: validationErr.Reason,
		})
	}

	var unknownErr *primary.UnknownTargetError
	if errors.As(err, &unknownErr) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "unknown_targets",
			Message: unknownErr.Error(),
		})
	}

	s.logger.Error("request failed",
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: "internal server error",
	})
}

func toTaskResponse(task *primary.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueAt:       task.DueAt,
		Targets:     task.Targets,
		ChannelID:   task.ChannelID,
		MessageID:   task.MessageID,
		Permalink:   task.Permalink,
		CreatedAt:   task.CreatedAt,
		ExpiresAt:   task.ExpiresAt,
	}
}
