package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	dpotel "github.com/dayplanhq/dayplan/internal/adapter/otel"
	"github.com/dayplanhq/dayplan/internal/domain"
	"github.com/dayplanhq/dayplan/internal/domain/task"
	"github.com/dayplanhq/dayplan/internal/port/database"
	"github.com/dayplanhq/dayplan/internal/port/messagequeue"
)

// TaskService holds all task business logic. Every task mutation in the
// system goes through this service: the REST handlers and the command
// dispatcher both call it, so state workflow rules cannot be bypassed by
// either entry point.
type TaskService struct {
	store   database.Store
	queue   messagequeue.Queue
	metrics *dpotel.Metrics
}

// NewTaskService creates a new TaskService. queue may be nil to disable
// event publishing; metrics may be nil.
func NewTaskService(store database.Store, queue messagequeue.Queue, metrics *dpotel.Metrics) *TaskService {
	return &TaskService{store: store, queue: queue, metrics: metrics}
}

// Create persists a new task for userID. The task always starts in
// Not Started regardless of the request; priority defaults to MEDIUM.
func (s *TaskService) Create(ctx context.Context, req task.CreateRequest, userID string) (*task.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	priority := req.Priority
	if priority == "" {
		priority = task.PriorityMedium
	}

	now := time.Now().UTC()
	t := &task.Task{
		ID:            uuid.NewString(),
		UserID:        userID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		State:         task.StateNotStarted,
		Priority:      priority,
		Category:      req.Category,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		DueDate:       req.DueDate,
		DueTime:       req.DueTime,
		ReminderTime:  req.ReminderTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if s.metrics != nil {
		s.metrics.TasksCreated.Add(ctx, 1)
	}
	s.publish(ctx, messagequeue.SubjectTaskCreated, t)
	return t, nil
}

// Get returns one task owned by userID.
func (s *TaskService) Get(ctx context.Context, id, userID string) (*task.Task, error) {
	return s.store.GetTask(ctx, id, userID)
}

// List returns the user's tasks, optionally filtered by state.
func (s *TaskService) List(ctx context.Context, userID string, state *task.State) ([]task.Task, error) {
	return s.store.ListTasks(ctx, userID, state)
}

// SearchByTitle returns the user's tasks whose title contains pattern,
// case-insensitively.
func (s *TaskService) SearchByTitle(ctx context.Context, pattern, userID string) ([]task.Task, error) {
	return s.store.SearchTasksByTitle(ctx, pattern, userID)
}

// Update applies the non-nil fields of req to the task. A state change is
// validated against the workflow before anything is persisted; an invalid
// transition leaves the task untouched, including the other fields in the
// same request.
func (s *TaskService) Update(ctx context.Context, id string, req task.UpdateRequest, userID string) (*task.Task, error) {
	t, err := s.store.GetTask(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.State != nil && !t.State.CanTransitionTo(*req.State) {
		return nil, fmt.Errorf("%w from '%s' to '%s'. Allowed transitions: %v",
			domain.ErrInvalidTransition, t.State, *req.State, t.State.ValidTransitions())
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
		}
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Priority != nil {
		p, err := task.ParsePriority(string(*req.Priority))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
		}
		t.Priority = p
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.ScheduledDate != nil {
		t.ScheduledDate = *req.ScheduledDate
	}
	if req.ScheduledTime != nil {
		t.ScheduledTime = *req.ScheduledTime
	}
	if req.DueDate != nil {
		t.DueDate = *req.DueDate
	}
	if req.DueTime != nil {
		t.DueTime = *req.DueTime
	}
	if req.ReminderTime != nil {
		t.ReminderTime = req.ReminderTime
	}
	if req.State != nil {
		t.State = *req.State
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.publish(ctx, messagequeue.SubjectTaskUpdated, t)
	return t, nil
}

// Delete removes a task owned by userID.
func (s *TaskService) Delete(ctx context.Context, id, userID string) error {
	t, err := s.store.GetTask(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteTask(ctx, id, userID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.publish(ctx, messagequeue.SubjectTaskDeleted, t)
	return nil
}

// publish sends a task lifecycle event. Publishing is best-effort: the
// database write already succeeded, so a queue failure is logged and the
// call still counts as successful.
func (s *TaskService) publish(ctx context.Context, subject string, t *task.Task) {
	if s.queue == nil {
		return
	}

	data, err := json.Marshal(t)
	if err != nil {
		slog.Error("failed to marshal task for queue", "task_id", t.ID, "error", err)
		return
	}

	if err := s.queue.Publish(ctx, subject, data); err != nil {
		slog.Error("failed to publish task event", "subject", subject, "task_id", t.ID, "error", err)
	}
}
